// Package cap implements the abstract CHERI capability value and the pure
// predicates and derivations defined over it. Nothing in this package
// touches memory, register state, or exceptions — those live in mem,
// regfile, and except respectively.
package cap

import "fmt"

// Capability is the canonical in-register form. Top is split into (Top,
// TopMax) to represent the exclusive 65-bit upper bound (up to 2^64)
// without a bignum: TopMax true means the exact top is 2^64 and the Top
// field is then ignored.
type Capability struct {
	Tag    bool
	Base   uint64
	Top    uint64
	TopMax bool
	Cursor uint64
	Perms  Perm
	UPerms UPerm
	Otype  uint64

	// pesbtCache preserves the raw 64-bit PESBT word of an untagged
	// capability loaded from memory, so compressed128 round-trips the
	// exact bytes of invalid/foreign data. Zero for capabilities not
	// produced by decompressing memory.
	pesbtCache uint64
}

// PesbtCache exposes the cached raw PESBT word for the compressed128 codec.
// Callers outside that codec should not rely on this value meaning
// anything for tagged capabilities.
func (c Capability) PesbtCache() uint64 { return c.pesbtCache }

// WithPesbtCache returns a copy of c carrying the given cached PESBT word.
func (c Capability) WithPesbtCache(v uint64) Capability {
	c.pesbtCache = v
	return c
}

// NullCapability is the null capability: untagged and unsealed
// (OtypeUnsealed), with every other field zero.
func NullCapability() Capability {
	return Capability{Otype: OtypeUnsealed}
}

// MaxPermissionsCapability returns the architecturally maximal capability
// used to initialise PCC, DDC, KCC, KDC, EPCC, and ErrorEPCC at reset:
// tag set, bounds [0, 2^64), all permissions, cursor at addr.
func MaxPermissionsCapability(addr uint64) Capability {
	return Capability{
		Tag:    true,
		Base:   0,
		Top:    0,
		TopMax: true,
		Cursor: addr,
		Perms:  PermAll,
		UPerms: UPermAll,
		Otype:  OtypeUnsealed,
	}
}

// topValue returns the exact 65-bit top as (value, exact2to64).
func (c Capability) topValue() (uint64, bool) {
	if c.TopMax {
		return 0, true
	}
	return c.Top, false
}

// Length65 returns the exact length (top - base) as (value, exact2to64);
// exact2to64 is true when the length is exactly 2^64 (only possible when
// base == 0 and top == 2^64).
func (c Capability) Length65() (uint64, bool) {
	if c.TopMax {
		if c.Base == 0 {
			return 0, true
		}
		return ^uint64(0) - c.Base + 1, false
	}
	return c.Top - c.Base, false
}

// GetLength returns the capability's length, saturating 2^64 to
// math.MaxUint64 for the 64-bit accessor.
func (c Capability) GetLength() uint64 {
	v, exact := c.Length65()
	if exact {
		return ^uint64(0)
	}
	return v
}

// Offset returns cursor - base, modulo 2^64.
func (c Capability) Offset() uint64 { return c.Cursor - c.Base }

// addrEnd returns addr+nbytes as (sum, overflowed); overflowed means the
// true 65-bit sum is sum+2^64.
func addrEnd(addr, nbytes uint64) (sum uint64, overflowed bool) {
	sum = addr + nbytes
	return sum, sum < addr
}

// InBounds reports whether [addr, addr+nbytes) falls within [base, top).
func (c Capability) InBounds(addr, nbytes uint64) bool {
	if addr < c.Base {
		return false
	}
	end, overflowed := addrEnd(addr, nbytes)
	if overflowed {
		return c.TopMax && end == 0
	}
	if c.TopMax {
		return true
	}
	return end <= c.Top
}

// IsNullSentinel implements the BEZ/BNZ comparison: tag unset, base zero,
// and offset (cursor-base) zero. Top and permissions are not considered,
// matching the architectural definition exactly.
func (c Capability) IsNullSentinel() bool {
	return !c.Tag && c.Base == 0 && c.Cursor == c.Base
}

// SetSealed returns a copy of c sealed with the given user object type.
func (c Capability) SetSealed(otype uint64) Capability {
	c.Otype = otype
	return c
}

// MakeSealedEntry returns a copy of c sealed as a sentry.
func (c Capability) MakeSealedEntry() Capability {
	c.Otype = OtypeSentry
	return c
}

// UnsealEntry returns a copy of c with any seal removed.
func (c Capability) UnsealEntry() Capability {
	c.Otype = OtypeUnsealed
	return c
}

// SetUnsealed is an alias for UnsealEntry.
func (c Capability) SetUnsealed() Capability { return c.UnsealEntry() }

// AssertMonotone panics if child enlarges bounds or permissions beyond
// parent: a derivation that violates monotonicity is a caller bug, not an
// architectural exception. It always panics on a violation; there is no
// non-panicking mode.
func AssertMonotone(parent, child Capability) {
	if !child.Tag {
		return
	}
	if child.Base < parent.Base {
		panic(fmt.Sprintf("cap: monotonicity violation: base %#x < parent base %#x", child.Base, parent.Base))
	}
	ct, ctMax := child.topValue()
	pt, ptMax := parent.topValue()
	if (ctMax && !ptMax) || (!ctMax && !ptMax && ct > pt) {
		panic(fmt.Sprintf("cap: monotonicity violation: top exceeds parent top"))
	}
	if child.Perms&^parent.Perms != 0 {
		panic(fmt.Sprintf("cap: monotonicity violation: perms %#x not subset of parent %#x", child.Perms, parent.Perms))
	}
	if child.UPerms&^parent.UPerms != 0 {
		panic(fmt.Sprintf("cap: monotonicity violation: uperms %#x not subset of parent %#x", child.UPerms, parent.UPerms))
	}
}

// TestSubset implements CTestSubset: reports whether b's tag, bounds,
// permissions, and user permissions are all contained within a's.
func (a Capability) TestSubset(b Capability) bool {
	if a.Tag != b.Tag {
		return false
	}
	if b.Base < a.Base {
		return false
	}
	bt, btMax := b.topValue()
	at, atMax := a.topValue()
	if btMax && !atMax {
		return false
	}
	if !btMax && !atMax && bt > at {
		return false
	}
	if b.Perms&^a.Perms != 0 {
		return false
	}
	return b.UPerms&^a.UPerms == 0
}
