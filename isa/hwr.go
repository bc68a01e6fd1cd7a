package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

// ReadHwr implements CReadHwr: dispatches through the register file's
// privilege-gated HWR table, attributing the caller's privilege to the
// Context's current KernelMode and PCC.
func (c *Context) ReadHwr(idx int) (cap.Capability, *except.Trap) {
	return c.Cap.ReadHwr(idx, c.KernelMode, c.Cap.PCC())
}

// WriteHwr implements CWriteHwr.
func (c *Context) WriteHwr(idx int, cs cap.Capability) *except.Trap {
	return c.Cap.WriteHwr(idx, c.KernelMode, c.Cap.PCC(), cs)
}
