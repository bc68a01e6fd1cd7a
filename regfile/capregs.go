package regfile

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// Hwr indices, matching the parallel capability debugger index space
// (32-41): DDC, PCC, UserTlsCap, PrivTlsCap, KR1C, KR2C, KCC, KDC,
// EPCC, ErrorEPCC.
const (
	HwrDDC = iota
	HwrPCC
	HwrUserTlsCap
	HwrPrivTlsCap
	HwrKR1C
	HwrKR2C
	HwrKCC
	HwrKDC
	HwrEPCC
	HwrErrorEPCC

	numHwr
)

// hwrAccess describes the privilege an instruction needs to touch a given
// HWR: DDC and UserTlsCap are always accessible; PrivTlsCap requires
// ACCESS_SYS_REGS on PCC; KR1C/KR2C require kernel mode; KCC, KDC, EPCC,
// ErrorEPCC require both kernel mode and ACCESS_SYS_REGS.
type hwrAccess struct {
	requireKernel        bool
	requireAccessSysRegs bool
}

var hwrTable = map[int]hwrAccess{
	HwrDDC:        {},
	HwrUserTlsCap: {},
	HwrPrivTlsCap: {requireAccessSysRegs: true},
	HwrKR1C:       {requireKernel: true},
	HwrKR2C:       {requireKernel: true},
	HwrKCC:        {requireKernel: true, requireAccessSysRegs: true},
	HwrKDC:        {requireKernel: true, requireAccessSysRegs: true},
	HwrEPCC:       {requireKernel: true, requireAccessSysRegs: true},
	HwrErrorEPCC:  {requireKernel: true, requireAccessSysRegs: true},

	// PCC itself is not gated by the table above: it is read directly by
	// instruction semantics rather than through ReadHwr/WriteHwr, but is
	// kept in the same storage and reset path as the other HWRs.
	HwrPCC: {},
}

// CapRegs holds the 32 general-purpose capability registers plus the
// named hardware capability registers. Register index 0 is null for most
// reads but aliases DDC for specific load/store/FromPtr/ToPtr/BuildCap
// operations, which is why this type exposes ReadOrNull and ReadOrDDC as
// two distinct methods rather than one helper with a hidden switch:
// callers pick the one their operation's published semantics actually
// uses.
type CapRegs struct {
	gpcr [32]cap.Capability // index 0 is never read back; see ReadOrNull/ReadOrDDC
	hwr  [numHwr]cap.Capability
}

// NewCapRegs returns a capability register file at reset: PCC, DDC, KCC,
// KDC, EPCC, ErrorEPCC hold the architecturally maximal capability with
// cursor at pc; every other register (general-purpose and remaining HWRs)
// holds the null capability.
func NewCapRegs(pc uint64) *CapRegs {
	r := &CapRegs{}
	for idx := range r.hwr {
		r.hwr[idx] = cap.NullCapability()
	}
	max := cap.MaxPermissionsCapability(pc)
	for _, idx := range []int{HwrPCC, HwrDDC, HwrKCC, HwrKDC, HwrEPCC, HwrErrorEPCC} {
		r.hwr[idx] = max
	}
	for i := range r.gpcr {
		r.gpcr[i] = cap.NullCapability()
	}
	return r
}

// ReadOrNull reads general capability register n, returning the null
// capability for n == 0 regardless of anything ever written there — the
// "most reads" half of the register-0 contract.
func (r *CapRegs) ReadOrNull(n int) cap.Capability {
	if n == 0 {
		return cap.NullCapability()
	}
	return r.gpcr[n]
}

// ReadOrDDC reads general capability register n, substituting DDC for
// n == 0 — the accessor used by load/store, FromPtr/ToPtr, and BuildCap.
func (r *CapRegs) ReadOrDDC(n int) cap.Capability {
	if n == 0 {
		return r.hwr[HwrDDC]
	}
	return r.gpcr[n]
}

// Write writes general capability register n. A write to n == 0 is
// discarded: no accessor in this architecture ever observes it, so there
// is no real storage behind it, matching real CHERI-MIPS hardware's
// treatment of $c0 as wired rather than backed by a flip-flop.
func (r *CapRegs) Write(n int, c cap.Capability) {
	if n == 0 {
		return
	}
	r.gpcr[n] = c
}

// PCC, DDC, and the remaining named HWRs are read directly by instruction
// semantics that don't go through the privilege-checked ReadHwr/WriteHwr
// path (PC-check and branch-target-check entrypoints, for instance, always
// need PCC regardless of privilege).
func (r *CapRegs) PCC() cap.Capability     { return r.hwr[HwrPCC] }
func (r *CapRegs) SetPCC(c cap.Capability) { r.hwr[HwrPCC] = c }
func (r *CapRegs) DDC() cap.Capability     { return r.hwr[HwrDDC] }
func (r *CapRegs) SetDDC(c cap.Capability) { r.hwr[HwrDDC] = c }
func (r *CapRegs) EPCC() cap.Capability     { return r.hwr[HwrEPCC] }
func (r *CapRegs) SetEPCC(c cap.Capability) { r.hwr[HwrEPCC] = c }
func (r *CapRegs) ErrorEPCC() cap.Capability     { return r.hwr[HwrErrorEPCC] }
func (r *CapRegs) SetErrorEPCC(c cap.Capability) { r.hwr[HwrErrorEPCC] = c }
func (r *CapRegs) KCC() cap.Capability     { return r.hwr[HwrKCC] }
func (r *CapRegs) SetKCC(c cap.Capability) { r.hwr[HwrKCC] = c }
func (r *CapRegs) KDC() cap.Capability     { return r.hwr[HwrKDC] }
func (r *CapRegs) SetKDC(c cap.Capability) { r.hwr[HwrKDC] = c }

// ReadHwr validates the caller's privilege before returning the register,
// raising ACCESS_SYS_REGS on a wrong access and RI on an index this table
// does not recognise.
func (r *CapRegs) ReadHwr(idx int, kernelMode bool, pcc cap.Capability) (cap.Capability, *except.Trap) {
	access, ok := hwrTable[idx]
	if !ok {
		return cap.Capability{}, except.RaiseRI()
	}
	if trap := checkHwrAccess(access, kernelMode, pcc); trap != nil {
		return cap.Capability{}, trap
	}
	return r.hwr[idx], nil
}

// WriteHwr is ReadHwr's write counterpart.
func (r *CapRegs) WriteHwr(idx int, kernelMode bool, pcc, c cap.Capability) *except.Trap {
	access, ok := hwrTable[idx]
	if !ok {
		return except.RaiseRI()
	}
	if trap := checkHwrAccess(access, kernelMode, pcc); trap != nil {
		return trap
	}
	r.hwr[idx] = c
	return nil
}

func checkHwrAccess(access hwrAccess, kernelMode bool, pcc cap.Capability) *except.Trap {
	if access.requireKernel && !kernelMode {
		return except.RaiseC2NoReg(except.KindAccessSysRegs)
	}
	if access.requireAccessSysRegs && !pcc.Perms.Has(cap.PermAccessSysRegs) {
		return except.RaiseC2NoReg(except.KindAccessSysRegs)
	}
	return nil
}

// RawReadHwr reads a named hardware capability register by its debug
// index (32-41 minus the 32 offset) without the privilege check ReadHwr
// enforces: the debugger interface observes architectural state directly.
func (r *CapRegs) RawReadHwr(idx int) (cap.Capability, bool) {
	if idx < 0 || idx >= numHwr {
		return cap.Capability{}, false
	}
	return r.hwr[idx], true
}

// RawWriteHwr is RawReadHwr's write counterpart, used only by the debug
// package.
func (r *CapRegs) RawWriteHwr(idx int, c cap.Capability) bool {
	if idx < 0 || idx >= numHwr {
		return false
	}
	r.hwr[idx] = c
	return true
}

// ClearReg implements the bulk register-clear operation: bit 0 clears
// DDC, bits 1..31 clear the correspondingly-indexed general register.
func (r *CapRegs) ClearReg(mask uint32) {
	if mask&1 != 0 {
		r.hwr[HwrDDC] = cap.NullCapability()
	}
	for i := 1; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			r.gpcr[i] = cap.NullCapability()
		}
	}
}
