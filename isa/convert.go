package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// FromPtr implements CFromPtr: rt == 0 always yields the null capability
// regardless of cb; otherwise cb must be tagged and unsealed, and the
// result is cb with its cursor set to rt, marked unrepresentable rather
// than trapping if the codec cannot encode it.
func (c *Context) FromPtr(cb cap.Capability, rt uint64) (cap.Capability, *except.Trap) {
	if rt == 0 {
		return cap.NullCapability(), nil
	}
	if !cb.Tag {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindTag)
	}
	if cb.Sealed() {
		return cap.Capability{}, except.RaiseC2NoReg(except.KindSeal)
	}
	result := cb
	result.Cursor = rt
	return c.deriveOrUnrepresentable(cb, result), nil
}

// ToPtr implements CToPtr: returns cb's cursor relative to ct's base. ct
// must be tagged (TAG trap otherwise); an untagged cb, or a cb whose cursor
// falls outside [ct.base, ct.top], returns 0 rather than trapping.
func ToPtr(cb, ct cap.Capability) (uint64, *except.Trap) {
	if !ct.Tag {
		return 0, except.RaiseC2NoReg(except.KindTag)
	}
	if !cb.Tag {
		return 0, nil
	}
	if !ct.InBounds(cb.Cursor, 0) {
		return 0, nil
	}
	return cb.Cursor - ct.Base, nil
}
