package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// Seal implements CSeal: seals cs with the object type carried in ct's
// cursor, requiring ct to be unsealed, in bounds, carry SEAL, and address a
// value within the sealed otype range.
func (c *Context) Seal(cs, ct cap.Capability) (cap.Capability, *except.Trap) {
	return c.sealCommon(cs, ct, false)
}

// CSeal implements CCSeal: Seal's conditional form — ct untagged, or
// ct.cursor == all-ones, makes the operation a no-op that copies cs through
// unchanged instead of trapping.
func (c *Context) CSeal(cs, ct cap.Capability) (cap.Capability, *except.Trap) {
	return c.sealCommon(cs, ct, true)
}

func (c *Context) sealCommon(cs, ct cap.Capability, conditional bool) (cap.Capability, *except.Trap) {
	if !cs.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if !ct.Tag {
		if conditional {
			return cs, nil
		}
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if conditional && ct.Cursor == ^uint64(0) {
		return cs, nil
	}
	if cs.Sealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	if ct.Sealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	if !ct.Perms.Has(cap.PermSeal) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindPermSeal)
	}
	if !ct.InBounds(ct.Cursor, 1) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	if ct.Cursor > cap.MaxSealedOtype {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	if !c.Codec.RepresentableWhenSealed(cs, cs.Cursor) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindInexact)
	}
	return cs.SetSealed(ct.Cursor), nil
}

// SealEntry implements CSealEntry: seals an executable, unsealed cs as a
// sentry, callable only via Jr/Jalr.
func SealEntry(cs cap.Capability) (cap.Capability, *except.Trap) {
	if !cs.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if !cs.IsUnsealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	if !cs.Perms.Has(cap.PermExecute) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindPermExecute)
	}
	return cs.MakeSealedEntry(), nil
}

// Unseal implements CUnseal: removes cs's seal using ct as the authorising
// unsealing capability. ct must be unsealed, carry UNSEAL, be in bounds at
// its own cursor, and that cursor must equal cs's otype. The result keeps
// GLOBAL only if both cs and ct carried it.
func Unseal(cs, ct cap.Capability) (cap.Capability, *except.Trap) {
	if !cs.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if !ct.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if cs.IsUnsealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	if !ct.IsUnsealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	otype, ok := cs.IsSealedWithType()
	if !ok || ct.Cursor != otype {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindType)
	}
	if !ct.Perms.Has(cap.PermUnseal) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindPermUnseal)
	}
	if !ct.InBounds(ct.Cursor, 1) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	if ct.Cursor > cap.MaxSealedOtype {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	result := cs.SetUnsealed()
	if cs.Perms.Has(cap.PermGlobal) && ct.Perms.Has(cap.PermGlobal) {
		result.Perms |= cap.PermGlobal
	} else {
		result.Perms &^= cap.PermGlobal
	}
	return result, nil
}
