// Package debug implements a fixed, index-addressed debugger register
// surface and the remote protocol that exposes it, built against this
// module's own register files.
package debug

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
	"github.com/cherigo/cp2/regfile"
)

// Integer debug register indices: 0-37 integer/CP0, 38-69 FPR, 70-71
// FCR31/FCR0.
const (
	numIntRegs  = 72
	fprBase     = 38
	fprCount    = 32
	idxFCR31    = 70
	idxFCR0     = 71
)

// Capability debug register indices: 0-31 general caps, 32-41 named HWRs
// (same order as regfile.HwrDDC..HwrErrorEPCC), 42 cap cause, 43 tag
// bitset.
const (
	numCapRegs  = 44
	idxCapCause = 42
	idxTagBits  = 43
	hwrDebugBase = 32
)

// fcr31RWMask restricts FCR31 writes to bits 0-17 (rounding mode, flags,
// enables and cause) and bits 23-24 (FCC0 and FS); every other bit is
// read-only from the debugger. Floating-point computation itself is out of scope: this
// table only ever saves and restores the raw bit pattern.
const fcr31RWMask = 0x0183ffff

// Table is the fixed, index-addressed register surface this package
// exposes: local state dumps and the GDB remote server both read and
// write through this type rather than touching the register files
// directly, so the two surfaces can never disagree on layout.
type Table struct {
	Int *regfile.IntRegs
	Cap *regfile.CapRegs

	fpr   [fprCount]uint64
	fcr31 uint64
	fcr0  uint64

	lastTrap *except.Trap
}

// NewTable wraps a hart's register files in the debugger's fixed index
// space. fcr0 is the read-only FPU implementation/revision register;
// real hardware wires it to a fixed value, so this table does too.
func NewTable(ir *regfile.IntRegs, cr *regfile.CapRegs) *Table {
	return &Table{Int: ir, Cap: cr, fcr0: 0}
}

// RecordTrap latches the most recently raised trap so ReadCap(idxCapCause)
// can report it; call this from the hart's exception dispatch after every
// trapped instruction.
func (t *Table) RecordTrap(tr *except.Trap) {
	t.lastTrap = tr
}

// ReadInt reads integer debug register idx. ok is false for an index this
// table does not define, in which case the caller should treat the read
// as returning zero bytes.
func (t *Table) ReadInt(idx int) (v uint64, ok bool) {
	switch {
	case idx >= 0 && idx <= regfile.RegPC:
		val, err := t.Int.Read(idx)
		if err != nil {
			return 0, false
		}
		return val, true
	case idx >= fprBase && idx < fprBase+fprCount:
		return t.fpr[idx-fprBase], true
	case idx == idxFCR31:
		return t.fcr31, true
	case idx == idxFCR0:
		return t.fcr0, true
	default:
		return 0, false
	}
}

// WriteInt writes integer debug register idx. Indices beyond the defined
// range are silently ignored.
func (t *Table) WriteInt(idx int, v uint64) {
	switch {
	case idx == regfile.RegStatus:
		t.Int.SetStatus(v)
	case idx == regfile.RegCause:
		t.Int.SetCause(v)
	case idx >= 0 && idx <= regfile.RegPC:
		t.Int.Write(idx, v)
	case idx >= fprBase && idx < fprBase+fprCount:
		t.fpr[idx-fprBase] = v
	case idx == idxFCR31:
		t.fcr31 = (v & fcr31RWMask) | (t.fcr31 &^ fcr31RWMask)
	case idx == idxFCR0:
		// FCR0 is read-only; writes are ignored.
	default:
		// Indices beyond 71 are silently ignored.
	}
}

// ReadCap reads capability debug register idx.
func (t *Table) ReadCap(idx int) (c cap.Capability, ok bool) {
	switch {
	case idx >= 0 && idx < 32:
		return t.Cap.ReadOrNull(idx), true
	case idx >= hwrDebugBase && idx < hwrDebugBase+10:
		return t.Cap.RawReadHwr(idx - hwrDebugBase)
	case idx == idxCapCause:
		return cap.Capability{}, false // scalar register, see ReadCapCause
	case idx == idxTagBits:
		return cap.Capability{}, false // scalar register, see TagBitset
	default:
		return cap.Capability{}, false
	}
}

// WriteCap writes capability debug register idx. Index 0 is discarded,
// matching Cap.Write's treatment of $c0; indices 42 and 43 are read-only
// observations of derived state and accept no write.
func (t *Table) WriteCap(idx int, c cap.Capability) {
	switch {
	case idx >= 0 && idx < 32:
		t.Cap.Write(idx, c)
	case idx >= hwrDebugBase && idx < hwrDebugBase+10:
		t.Cap.RawWriteHwr(idx-hwrDebugBase, c)
	}
}

// ReadCapCause packs the most recently recorded trap into the CP2 cause
// register format: exception code in bits 15:8, faulting register number
// in bits 7:0.
func (t *Table) ReadCapCause() uint64 {
	if t.lastTrap == nil || t.lastTrap.Class != except.ClassCP2 {
		return 0
	}
	return uint64(t.lastTrap.Kind)<<8 | uint64(t.lastTrap.RegisterIndex&0xff)
}

// TagBitset returns index 43: bit 0 is DDC's tag, bits 1-31 are general
// capability registers c1..c31, bit 32 is PCC's tag.
func (t *Table) TagBitset() uint64 {
	var bits uint64
	if ddc, ok := t.Cap.RawReadHwr(regfile.HwrDDC); ok && ddc.Tag {
		bits |= 1
	}
	for i := 1; i < 32; i++ {
		if t.Cap.ReadOrNull(i).Tag {
			bits |= 1 << uint(i)
		}
	}
	if pcc, ok := t.Cap.RawReadHwr(regfile.HwrPCC); ok && pcc.Tag {
		bits |= 1 << 32
	}
	return bits
}
