package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// AndPerm implements CAndPerm: restricts cb's perms/uperms to the subset
// also present in rt (rt packs perms in the low bits and uperms above them
// at cap.UPermsShift, the same layout GetPerm produces).
func AndPerm(cb cap.Capability, rt uint64) (cap.Capability, *except.Trap) {
	if !cb.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if cb.Sealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	result := cb
	result.Perms = cb.Perms & cap.Perm(rt)
	result.UPerms = cb.UPerms & cap.UPerm(rt>>cap.UPermsShift)
	return result, nil
}

// ClearTag implements CClearTag: returns cb with its tag forced off,
// leaving every other field untouched.
func ClearTag(cb cap.Capability) cap.Capability {
	result := cb
	result.Tag = false
	return result
}

// IncOffset implements CIncOffset: adds delta to cb's offset (cursor - base
// mod 2^64), trapping SEAL on a tagged sealed input with nonzero delta (the
// zero-delta exception the mutation-in-place group reserves for identity
// operations), and marking the result unrepresentable rather than trapping
// when the codec cannot encode the new cursor.
func (c *Context) IncOffset(cb cap.Capability, delta uint64) (cap.Capability, *except.Trap) {
	if cb.Tag && cb.Sealed() && delta != 0 {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	newCursor := cb.Base + cb.Offset() + delta
	result := cb
	result.Cursor = newCursor
	return c.deriveOrUnrepresentable(cb, result), nil
}

// SetAddr implements CSetAddr in terms of IncOffset: equivalent to
// IncOffset(cb, targetAddr-cgetaddr(cb)).
func (c *Context) SetAddr(cb cap.Capability, targetAddr uint64) (cap.Capability, *except.Trap) {
	return c.IncOffset(cb, targetAddr-cb.Cursor)
}

// AndAddr implements CAndAddr in terms of IncOffset: equivalent to
// IncOffset(cb, (cgetaddr(cb)&rt)-cgetaddr(cb)).
func (c *Context) AndAddr(cb cap.Capability, mask uint64) (cap.Capability, *except.Trap) {
	target := cb.Cursor & mask
	return c.IncOffset(cb, target-cb.Cursor)
}

// SetOffset implements CSetOffset: like IncOffset but sets the offset
// absolutely rather than relative to the current offset.
func (c *Context) SetOffset(cb cap.Capability, newOffset uint64) (cap.Capability, *except.Trap) {
	if cb.Tag && cb.Sealed() && newOffset != cb.Offset() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	result := cb
	result.Cursor = cb.Base + newOffset
	return c.deriveOrUnrepresentable(cb, result), nil
}

// SetBounds implements CSetBounds: narrows cb to [cb.cursor, cb.cursor+len),
// with len rounded up by the codec's RoundLengthUp; the base stays at
// cb.cursor. LENGTH is raised when cb.cursor+len, before rounding, exceeds
// cb's own top.
func (c *Context) SetBounds(cb cap.Capability, length uint64) (cap.Capability, *except.Trap) {
	return c.setBounds(cb, length, false)
}

// SetBoundsExact implements CSetBoundsExact: as SetBounds, but raises
// INEXACT instead of silently widening when round_length_up would enlarge
// the requested length.
func (c *Context) SetBoundsExact(cb cap.Capability, length uint64) (cap.Capability, *except.Trap) {
	return c.setBounds(cb, length, true)
}

func (c *Context) setBounds(cb cap.Capability, length uint64, mustBeExact bool) (cap.Capability, *except.Trap) {
	if !cb.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if cb.Sealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	cursor := cb.Cursor
	if cursor < cb.Base {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	newTop := cursor + length
	if newTop < cursor { // 65-bit overflow: CSetBounds never produces a full-range cap
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	if !cb.TopMax && newTop > cb.Top {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}

	rounded := c.Codec.RoundLengthUp(length)
	exact := rounded == length
	if mustBeExact && !exact {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindInexact)
	}
	result := cb
	result.Base = cursor
	result.TopMax = false
	result.Top = cursor + rounded
	result.Cursor = cursor
	cap.AssertMonotone(cb, result)
	return result, nil
}

// CopyType implements CCopyType: copies ct's otype into cb's offset so the
// result points at that object type's value, returning an all-ones,
// untagged capability when ct is unsealed.
func CopyType(cb, ct cap.Capability) (cap.Capability, *except.Trap) {
	if !cb.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if cb.Sealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	otype, ok := ct.IsSealedWithType()
	if !ok {
		result := cap.NullCapability()
		result.Tag = false
		result.Cursor = ^uint64(0)
		result.Base = ^uint64(0)
		return result, nil
	}
	if !cb.InBounds(otype, 1) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	result := cb
	result.Cursor = cb.Base + (otype - cb.Base)
	return result, nil
}

// BuildCap implements CBuildCap: constructs a new capability from
// untagged/candidate fields carried in ct, authorised by cb's bounds and
// permissions (cb must contain ct's [base,top) and ct's perms/uperms must
// be a subset of cb's). The sentry flag propagates from ct; otherwise the
// result is unsealed.
func BuildCap(cb, ct cap.Capability) (cap.Capability, *except.Trap) {
	if !cb.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if cb.Sealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	if ct.Base < cb.Base {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	ctTop, ctTopMax := ct.Top, ct.TopMax
	cbTop, cbTopMax := cb.Top, cb.TopMax
	if (ctTopMax && !cbTopMax) || (!ctTopMax && !cbTopMax && ctTop > cbTop) {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindLength)
	}
	if ct.Perms&^cb.Perms != 0 {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindUsrDefine)
	}
	if ct.UPerms&^cb.UPerms != 0 {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindUsrDefine)
	}
	result := cb
	result.Base = ct.Base
	result.Top = ct.Top
	result.TopMax = ct.TopMax
	result.Perms = ct.Perms
	result.UPerms = ct.UPerms
	result.Cursor = ct.Base + ct.Offset()
	if ct.IsSealedEntry() {
		result = result.MakeSealedEntry()
	} else {
		result = result.SetUnsealed()
	}
	return result, nil
}

// IncBase implements the deprecated CIncBase opcode as reserved: it always
// raises RI rather than performing any base adjustment.
func IncBase() *except.Trap { return except.RaiseRI() }

// SetLen implements the deprecated CSetLen opcode: same RI treatment as
// IncBase.
func SetLen() *except.Trap { return except.RaiseRI() }
