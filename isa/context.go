// Package isa implements the CHERI capability instruction set: one
// function per instruction, each composing the Check Engine, the
// capability value helpers, and the register file, writing results back
// exactly as the instruction's semantics require.
//
// The functions here take capability values (and, where an instruction
// needs the codec, memory or registers, a *Context) rather than operand
// indices, and return their result together with the trap (if any) the
// operation raised; the branch predicates return only a bool. None of them
// touch a real decoder or translator; that wiring belongs to whatever
// embeds this module.
package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/check"
	"github.com/cherigo/cp2/encoding"
	"github.com/cherigo/cp2/mem"
	"github.com/cherigo/cp2/regfile"
	"github.com/cherigo/cp2/stats"
)

// Context bundles the collaborators every instruction semantic needs.
// One Context is constructed per hart (see the hart package) and reused
// across every instruction that hart executes.
type Context struct {
	Cap   *regfile.CapRegs
	Int   *regfile.IntRegs
	Check *check.Engine
	Codec encoding.Codec
	Mem   *mem.Access
	DDC   *mem.DDCAccess

	// KernelMode gates the privileged HWRs, mirroring CP0 Status's KSU
	// field; the hart orchestrator keeps this in sync with Status.
	KernelMode bool

	// Stats is an optional observer; every instruction semantic here works
	// correctly whether or not one is attached.
	Stats *stats.Counters
}

// deriveOrUnrepresentable applies codec representability before
// committing a derivation that changed a tagged capability's cursor: if
// the result is no longer representable under the hart's codec, its tag
// is cleared and its bit pattern replaced with MarkUnrepresentable(cursor)
// rather than raising a trap.
func (c *Context) deriveOrUnrepresentable(parent, child cap.Capability) cap.Capability {
	if !child.Tag {
		return child
	}
	if c.Codec.Representable(child, child.Cursor) {
		return child
	}
	if c.Stats != nil {
		c.Stats.UnrepresentableCaps++
	}
	return c.Codec.MarkUnrepresentable(child.Cursor)
}
