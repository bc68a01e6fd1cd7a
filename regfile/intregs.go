// Package regfile implements a 64-bit MIPS hart's register file with a
// parallel CHERI capability register file: the integer GPRs and CP0
// scalars in IntRegs, and the general capability registers plus hardware
// registers in CapRegs.
package regfile

import "github.com/pkg/errors"

// Integer register indices, matching the debugger index space (0-31 are
// GPRs; the scalars below continue the same index space the debug package
// exposes verbatim).
const (
	RegStatus = 32
	RegLO     = 33
	RegHI     = 34
	RegBadVAddr = 35
	RegCause  = 36
	RegPC     = 37

	numGPR = 32
)

// IntRegs holds the 32 general-purpose integer registers plus the CP0
// scalars a CHERI-MIPS hart exposes through the same index space: a plain
// map keyed by register index rather than a fixed struct, so the debugger
// index space and the instruction-semantics accessors share one lookup
// path.
type IntRegs struct {
	vals map[int]uint64
}

// NewIntRegs returns a register file with every GPR and CP0 scalar
// initialised to zero.
func NewIntRegs() *IntRegs {
	r := &IntRegs{vals: make(map[int]uint64, numGPR+6)}
	for i := 0; i < numGPR; i++ {
		r.vals[i] = 0
	}
	for _, idx := range []int{RegStatus, RegLO, RegHI, RegBadVAddr, RegCause, RegPC} {
		r.vals[idx] = 0
	}
	return r
}

// GPR reads general-purpose register n. Register 0 is not hardwired to
// zero on this ISA — unlike classic MIPS — so it is read and written like
// any other slot.
func (r *IntRegs) GPR(n int) uint64 { return r.vals[n] }

// SetGPR writes general-purpose register n.
func (r *IntRegs) SetGPR(n int, v uint64) { r.vals[n] = v }

// Read reads any indexed scalar (GPR or CP0 register) by its debugger
// index, returning an error for an index this register file does not own
// (FPU/FCR indices live in a separate file the debug package addresses
// directly).
func (r *IntRegs) Read(idx int) (uint64, error) {
	v, ok := r.vals[idx]
	if !ok {
		return 0, errors.Errorf("regfile: invalid integer register index %d", idx)
	}
	return v, nil
}

// Write writes any indexed scalar by its debugger index.
func (r *IntRegs) Write(idx int, v uint64) error {
	if _, ok := r.vals[idx]; !ok {
		return errors.Errorf("regfile: invalid integer register index %d", idx)
	}
	r.vals[idx] = v
	return nil
}

func (r *IntRegs) PC() uint64        { return r.vals[RegPC] }
func (r *IntRegs) SetPC(v uint64)    { r.vals[RegPC] = v }
func (r *IntRegs) Status() uint64    { return r.vals[RegStatus] }
func (r *IntRegs) SetStatus(v uint64) { r.vals[RegStatus] = v }
func (r *IntRegs) Cause() uint64     { return r.vals[RegCause] }
func (r *IntRegs) SetCause(v uint64) { r.vals[RegCause] = v }
func (r *IntRegs) BadVAddr() uint64     { return r.vals[RegBadVAddr] }
func (r *IntRegs) SetBadVAddr(v uint64) { r.vals[RegBadVAddr] = v }
