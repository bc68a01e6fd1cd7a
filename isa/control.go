package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// checkJumpTarget implements the shared precondition Jr/Jalr apply to cb:
// tagged, not sealed-with-type (sentries are allowed), EXECUTE, GLOBAL, in
// bounds for a 4-byte fetch, and 4-byte aligned.
func checkJumpTarget(cb cap.Capability) *except.Trap {
	if !cb.Tag {
		return except.RaiseC2NoReg(except.KindTag)
	}
	if _, sealed := cb.IsSealedWithType(); sealed {
		return except.RaiseC2NoReg(except.KindSeal)
	}
	if !cb.Perms.Has(cap.PermExecute) {
		return except.RaiseC2NoReg(except.KindPermExecute)
	}
	if !cb.Perms.Has(cap.PermGlobal) {
		return except.RaiseC2NoReg(except.KindGlobal)
	}
	if !cb.InBounds(cb.Cursor, 4) {
		return except.RaiseC2NoReg(except.KindLength)
	}
	if cb.Cursor%4 != 0 {
		return except.RaiseC0(except.KindAdEL, cb.Cursor)
	}
	return nil
}

// Jr implements CJR: validates cb as a jump target and returns it as the
// next PCC, unsealing it first if it was a sentry.
func Jr(cb cap.Capability) (cap.Capability, *except.Trap) {
	if trap := checkJumpTarget(cb); trap != nil {
		return cap.Capability{}, trap
	}
	target := cb
	if target.IsSealedEntry() {
		target = target.UnsealEntry()
	}
	return target, nil
}

// Jalr implements CJALR: as Jr, plus a link capability equal to PCC with
// its offset advanced by 8 (past the branch delay slot), written to cd.
// If cb was a sentry, both the branch target and the link capability
// become sentries to preserve the compartmentalised-call property.
func Jalr(pcc, cb cap.Capability) (target, link cap.Capability, trap *except.Trap) {
	if trap = checkJumpTarget(cb); trap != nil {
		return cap.Capability{}, cap.Capability{}, trap
	}
	link = pcc
	link.Cursor += 8
	target = cb
	if target.IsSealedEntry() {
		target = target.UnsealEntry()
		link = link.MakeSealedEntry()
	}
	return target, link, nil
}
