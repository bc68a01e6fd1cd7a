package isa

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/check"
	"github.com/cherigo/cp2/encoding/uncompressed256"
	"github.com/cherigo/cp2/mem"
	"github.com/cherigo/cp2/regfile"
	"github.com/cherigo/cp2/stats"
)

func maxPerms(cursor uint64) cap.Capability { return cap.MaxPermissionsCapability(cursor) }

func fullCap(base, top uint64) cap.Capability {
	return cap.Capability{Tag: true, Base: base, Top: top, Cursor: base, Perms: cap.PermAll, UPerms: cap.UPermAll, Otype: cap.OtypeUnsealed}
}

func newContext() *Context {
	access := &mem.Access{Mem: mem.NewSim(uint64(uncompressed256.Codec{}.Size())), Check: &check.Engine{}, Codec: uncompressed256.Codec{}}
	return &Context{
		Cap:   regfile.NewCapRegs(0),
		Int:   regfile.NewIntRegs(),
		Check: access.Check,
		Codec: access.Codec,
		Mem:   access,
		DDC:   &mem.DDCAccess{Access: access},
		Stats: &stats.Counters{},
	}
}
