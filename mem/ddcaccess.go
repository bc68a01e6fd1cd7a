package mem

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// DDCAccess wraps Access for loads and stores relative to the default data
// capability, plus the right/left variants MIPS's unaligned load/store
// instructions (LWR/SWR and friends) need. Those instructions affect only
// the bytes of the aligned eight-byte unit on one side of addr; the helpers
// here read or write the whole aligned unit and leave selecting and merging
// those bytes to the caller.
type DDCAccess struct {
	Access *Access
}

// Load reads size bytes at addr through DDC.
func (d *DDCAccess) Load(ddc cap.Capability, regnum int, addr, size uint64, pcc cap.Capability) (uint64, *except.Trap) {
	return d.Access.LoadInt(ddc, regnum, addr, size, pcc)
}

// Store writes size bytes at addr through DDC.
func (d *DDCAccess) Store(ddc cap.Capability, regnum int, addr, size, value uint64, pcc cap.Capability) *except.Trap {
	return d.Access.StoreInt(ddc, regnum, addr, size, value, pcc)
}

// LoadRight services LWR-style instructions: it always reads the full
// aligned eight-byte unit containing addr (never faulting on addr's own
// misalignment, matching MIPS's *R instructions being defined for any
// byte address) and returns it for the caller to merge into the
// destination register according to addr's low bits and endianness.
func (d *DDCAccess) LoadRight(ddc cap.Capability, regnum int, addr uint64, pcc cap.Capability) (uint64, *except.Trap) {
	aligned := addr &^ 7
	saved := d.Access.UnalignedOK
	d.Access.UnalignedOK = true
	defer func() { d.Access.UnalignedOK = saved }()
	return d.Access.LoadInt(ddc, regnum, aligned, 8, pcc)
}

// LoadLeft is LoadRight's counterpart for LWL-style instructions: same
// aligned eight-byte read, left to the caller to select and shift.
func (d *DDCAccess) LoadLeft(ddc cap.Capability, regnum int, addr uint64, pcc cap.Capability) (uint64, *except.Trap) {
	return d.LoadRight(ddc, regnum, addr, pcc)
}

// StoreRight/StoreLeft service SWR/SWL: the caller has already merged the
// bytes it owns into value using the prior aligned read, so this simply
// writes the merged aligned word back.
func (d *DDCAccess) StoreRight(ddc cap.Capability, regnum int, addr uint64, value uint64, pcc cap.Capability) *except.Trap {
	aligned := addr &^ 7
	saved := d.Access.UnalignedOK
	d.Access.UnalignedOK = true
	defer func() { d.Access.UnalignedOK = saved }()
	return d.Access.StoreInt(ddc, regnum, aligned, 8, value, pcc)
}

func (d *DDCAccess) StoreLeft(ddc cap.Capability, regnum int, addr uint64, value uint64, pcc cap.Capability) *except.Trap {
	return d.StoreRight(ddc, regnum, addr, value, pcc)
}
