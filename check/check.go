// Package check implements the priority-ordered capability access check
// shared by instruction semantics and the memory access path.
package check

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// Engine runs the four-stage tag/seal/permission/bounds check every
// capability-gated access goes through. The zero value is usable;
// OnTypeMismatch is an optional, non-trapping diagnostic hook fired after
// a successful check whenever the checked capability's otype differs from
// pcc's. It never affects the trap decision; it exists purely so an
// embedder can log or count this condition if it cares to.
type Engine struct {
	OnTypeMismatch func(pcc, checked cap.Capability, regnum int)
}

// Check validates c for an access of nbytes at addr requiring perm,
// attributing any failure to capability register regnum. It returns nil on
// success. pcc is consulted only for the diagnostic hook, never for a trap
// decision.
func (e *Engine) Check(c cap.Capability, perm cap.Perm, addr, nbytes uint64, regnum int, pcc cap.Capability) *except.Trap {
	if !c.Tag {
		return except.RaiseC2WithAddr(except.KindTag, regnum, addr)
	}
	if c.Sealed() {
		return except.RaiseC2WithAddr(except.KindSeal, regnum, addr)
	}
	if missing, ok := c.Perms.Missing(perm); ok {
		return except.RaiseC2WithAddr(permKind(missing), regnum, addr)
	}
	if !c.InBounds(addr, nbytes) {
		return except.RaiseC2WithAddr(except.KindLength, regnum, addr)
	}
	if e.OnTypeMismatch != nil && pcc.Otype != c.Otype {
		e.OnTypeMismatch(pcc, c, regnum)
	}
	return nil
}

func permKind(p cap.Perm) except.Kind {
	switch p {
	case cap.PermExecute:
		return except.KindPermExecute
	case cap.PermLoad:
		return except.KindPermLoad
	case cap.PermStore:
		return except.KindPermStore
	case cap.PermLoadCap:
		return except.KindPermLoadCap
	case cap.PermStoreCap:
		return except.KindPermStoreCap
	case cap.PermStoreLocal:
		return except.KindPermStoreLocal
	case cap.PermSeal:
		return except.KindPermSeal
	case cap.PermUnseal:
		return except.KindPermUnseal
	case cap.PermCCall:
		return except.KindPermCCall
	case cap.PermAccessSysRegs:
		return except.KindAccessSysRegs
	case cap.PermGlobal:
		return except.KindGlobal
	default:
		return except.KindPermExecute
	}
}
