package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// CCallResult carries the outputs of a successful CCall: the unsealed
// capability installed as IDC and the still-sealed branch target cs, whose
// cursor is the architectural branch address.
type CCallResult struct {
	IDC    cap.Capability
	Target cap.Capability
}

// CCall implements CCall: cs and cb must be sealed with the same user
// object type, cs must carry EXECUTE and CCALL, cb must lack EXECUTE and
// carry CCALL, and cs's cursor must be in cs's own bounds. On success cb is
// unsealed into IDC and cs (still sealed) becomes the branch target.
func CCall(cs, cb cap.Capability) (CCallResult, *except.Trap) {
	if !cs.Tag {
		return CCallResult{}, except.RaiseC2NoReg(except.KindTag)
	}
	if !cb.Tag {
		return CCallResult{}, except.RaiseC2NoReg(except.KindTag)
	}
	csType, csSealed := cs.IsSealedWithType()
	if !csSealed {
		return CCallResult{}, except.RaiseC2NoReg(except.KindSeal)
	}
	cbType, cbSealed := cb.IsSealedWithType()
	if !cbSealed {
		return CCallResult{}, except.RaiseC2NoReg(except.KindSeal)
	}
	if csType != cbType {
		return CCallResult{}, except.RaiseC2NoReg(except.KindType)
	}
	if !cs.Perms.Has(cap.PermExecute) {
		return CCallResult{}, except.RaiseC2NoReg(except.KindPermExecute)
	}
	if cb.Perms.Has(cap.PermExecute) {
		return CCallResult{}, except.RaiseC2NoReg(except.KindPermExecute)
	}
	if !cs.InBounds(cs.Cursor, 1) {
		return CCallResult{}, except.RaiseC2NoReg(except.KindLength)
	}
	if !cs.Perms.Has(cap.PermCCall) {
		return CCallResult{}, except.RaiseC2NoReg(except.KindPermCCall)
	}
	if !cb.Perms.Has(cap.PermCCall) {
		return CCallResult{}, except.RaiseC2NoReg(except.KindPermCCall)
	}
	return CCallResult{IDC: cb.SetUnsealed(), Target: cs}, nil
}

// CReturn implements CReturn: the RETURN trap is always raised, the domain
// transition is handled entirely by the collaborator's exception vector.
func CReturn() *except.Trap {
	return except.RaiseC2NoReg(except.KindReturn)
}
