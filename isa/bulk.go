package isa

// ClearReg implements the Bulk ClearReg(mask) operation by delegating
// straight to the register file, which already owns the bit-0-means-DDC
// convention.
func (c *Context) ClearReg(mask uint32) {
	c.Cap.ClearReg(mask)
}
