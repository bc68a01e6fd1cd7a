package cap

// otype occupies the low OtypeBits bits of every sealed/unsealed
// capability. The top of that range is reserved for the sealing taxonomy:
// unsealed, sentry, one reserved-special slot, then user-sealed types
// counting down from MaxSealedOtype.
const (
	OtypeBits = 23

	maxOtype = (1 << OtypeBits) - 1

	// OtypeUnsealed marks an ordinary, dereferenceable capability.
	OtypeUnsealed = maxOtype
	// OtypeSentry marks a capability callable only via jump-and-link.
	OtypeSentry = maxOtype - 1
	// OtypeReserved is a single reserved-special otype value, neither
	// unsealed, sentry, nor a valid user object type.
	OtypeReserved = maxOtype - 2
	// MaxSealedOtype is the highest otype a CSeal/CCall pair may use as a
	// user-defined object type; valid user types are [0, MaxSealedOtype].
	MaxSealedOtype = maxOtype - 3
)

// IsUnsealed reports whether c carries no seal at all.
func (c Capability) IsUnsealed() bool { return c.Otype == OtypeUnsealed }

// IsSealedEntry reports whether c is a sentry capability.
func (c Capability) IsSealedEntry() bool { return c.Otype == OtypeSentry }

// IsSealedWithType reports whether c is sealed with a user object type,
// returning that type when true.
func (c Capability) IsSealedWithType() (uint64, bool) {
	if c.Otype <= MaxSealedOtype {
		return c.Otype, true
	}
	return 0, false
}

// IsReservedOtype reports whether c's otype is the reserved-special slot.
func (c Capability) IsReservedOtype() bool { return c.Otype == OtypeReserved }

// Sealed reports whether c carries any seal (sentry, user type, or the
// reserved slot) — i.e. the negation of IsUnsealed.
func (c Capability) Sealed() bool { return !c.IsUnsealed() }
