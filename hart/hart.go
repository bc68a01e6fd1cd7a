// Package hart wires the register file, check engine, memory access
// path, and instruction semantics into the single object an embedding
// translator drives one instruction at a time.
package hart

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/check"
	"github.com/cherigo/cp2/encoding"
	"github.com/cherigo/cp2/except"
	"github.com/cherigo/cp2/isa"
	"github.com/cherigo/cp2/mem"
	"github.com/cherigo/cp2/regfile"
	"github.com/cherigo/cp2/stats"
)

// pccRegnum is the sentinel capability-register index attributed to a
// trap raised against PCC itself rather than an explicit operand register.
const pccRegnum = 0xff

// instructionWidth is the number of bytes the PC-check and
// branch-target-check entrypoints validate: one MIPS instruction word.
const instructionWidth = 4

// Config holds the boot-time unaligned-access and representability
// policy flags: a hart is immutable in its codec and alignment policy
// once constructed.
type Config struct {
	// UnalignedOK disables the AdEL/AdES alignment fault on integer
	// load/store, mirrored into isa.Context.Mem.UnalignedOK.
	UnalignedOK bool

	// RaiseOnUnrepresentable is stored but not read: nothing passes it to
	// isa.Context, and an unrepresentable derivation always clears the tag
	// without trapping, whatever this flag holds. INEXACT is never raised.
	RaiseOnUnrepresentable bool
}

// Hart is one emulated CHERI-MIPS hart: register files, memory access
// path, statistics, and the isa.Context that ties them together for
// every instruction semantic this module implements.
type Hart struct {
	Int *regfile.IntRegs
	Cap *regfile.CapRegs

	Check *check.Engine
	Mem   *mem.Access
	DDC   *mem.DDCAccess

	Stats     *stats.Counters
	Histogram *stats.BoundsHistogram

	Config Config

	ctx *isa.Context
}

// New constructs a hart at reset: PCC/DDC/KCC/KDC/EPCC/ErrorEPCC hold the
// architecturally maximal capability with cursor at pc; every other
// register is null. codec selects one of the wire encodings for this
// hart's lifetime, fixed at construction.
func New(pc uint64, codec encoding.Codec, backing mem.Memory, cfg Config) *Hart {
	intRegs := regfile.NewIntRegs()
	intRegs.SetPC(pc)
	capRegs := regfile.NewCapRegs(pc)

	checkEngine := &check.Engine{}
	access := &mem.Access{Mem: backing, Check: checkEngine, Codec: codec, UnalignedOK: cfg.UnalignedOK}
	ddc := &mem.DDCAccess{Access: access}
	counters := &stats.Counters{}
	histogram := &stats.BoundsHistogram{}

	h := &Hart{
		Int:       intRegs,
		Cap:       capRegs,
		Check:     checkEngine,
		Mem:       access,
		DDC:       ddc,
		Stats:     counters,
		Histogram: histogram,
		Config:    cfg,
	}
	h.ctx = &isa.Context{
		Cap:        capRegs,
		Int:        intRegs,
		Check:      checkEngine,
		Codec:      codec,
		Mem:        access,
		DDC:        ddc,
		KernelMode: kernelModeFromStatus(intRegs.Status()),
		Stats:      counters,
	}
	return h
}

// Context returns the isa.Context instruction semantics operate on.
// KernelMode is refreshed from Status before being returned, since
// Status may have changed since the last instruction (an ERET or a
// direct CP0 write).
func (h *Hart) Context() *isa.Context {
	h.ctx.KernelMode = kernelModeFromStatus(h.Int.Status())
	return h.ctx
}

// statusKSUMask, statusEXL, and statusERL are the standard MIPS32 CP0
// Status bit positions: KSU occupies bits 3:4 (00 = kernel), EXL is bit
// 1, ERL is bit 2; either exception-level bit forces kernel mode
// regardless of KSU, per the MIPS privileged resource architecture.
const (
	statusKSUMask = 0x18
	statusEXL     = 0x2
	statusERL     = 0x4
)

func kernelModeFromStatus(status uint64) bool {
	if status&(statusEXL|statusERL) != 0 {
		return true
	}
	return status&statusKSUMask == 0
}

// CheckPC runs before every instruction to validate PCC bounds/permissions
// against nextPC. It updates PCC's cursor to nextPC before checking so a
// LENGTH fault reports the correct EPC, then advances the instruction
// counters.
func (h *Hart) CheckPC(nextPC uint64) *except.Trap {
	pcc := h.Cap.PCC()
	pcc.Cursor = nextPC
	h.Cap.SetPCC(pcc)

	trap := h.Check.Check(pcc, cap.PermExecute, nextPC, instructionWidth, pccRegnum, pcc)

	kernel := kernelModeFromStatus(h.Int.Status())
	h.Stats.RecordInstruction(kernel)
	if trap != nil {
		return trap
	}
	return nil
}

// CheckBranchTarget validates a control-transfer target against PCC before
// the transfer commits, without yet moving PCC's cursor there: the target
// is checked as a staged value, leaving the actual cursor update to the
// subsequent CheckPC call once the branch resolves.
func (h *Hart) CheckBranchTarget(target uint64) *except.Trap {
	pcc := h.Cap.PCC()
	return h.Check.Check(pcc, cap.PermExecute, target, instructionWidth, pccRegnum, pcc)
}

// InstallPCC replaces PCC outright, the way Jr/Jalr/CCall/exception
// dispatch all eventually do: those operations return the capability to
// install rather than mutating PCC themselves, so the orchestrator
// commits it here after any associated register file trap is ruled out.
func (h *Hart) InstallPCC(c cap.Capability) {
	h.Cap.SetPCC(c)
}
