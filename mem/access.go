package mem

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/check"
	"github.com/cherigo/cp2/encoding"
	"github.com/cherigo/cp2/except"
)

// Access implements the checked load/store path against any Memory
// collaborator, parameterised by one Codec fixed at construction: every
// capability this Access reads or writes is encoded and decoded the way
// that one codec defines. Access does not check representability.
type Access struct {
	Mem   Memory
	Check *check.Engine
	Codec encoding.Codec

	// UnalignedOK selects the unaligned-access policy: when true,
	// LoadInt/StoreInt accept any address and let the caller's host
	// load/store path handle alignment; when false, a misaligned address
	// raises AdEL/AdES.
	UnalignedOK bool
}

func (a *Access) checkAligned(addr, size uint64, regnum int, isStore bool) *except.Trap {
	if a.UnalignedOK || addr%size == 0 {
		return nil
	}
	if isStore {
		return except.RaiseC0(except.KindAdES, addr)
	}
	return except.RaiseC0(except.KindAdEL, addr)
}

// LoadInt implements integer load through capability cb: Check Engine with
// LOAD, alignment policy, then Ldq, returning the size bytes at addr
// zero-extended.
func (a *Access) LoadInt(cb cap.Capability, regnum int, addr, size uint64, pcc cap.Capability) (uint64, *except.Trap) {
	if trap := a.Check.Check(cb, cap.PermLoad, addr, size, regnum, pcc); trap != nil {
		return 0, trap
	}
	if trap := a.checkAligned(addr, size, regnum, false); trap != nil {
		return 0, trap
	}
	v, err := a.Mem.Ldq(addr)
	if err != nil {
		return 0, except.RaiseC0(except.KindAdEL, addr)
	}
	if size < 8 {
		v &= uint64(1)<<(8*size) - 1
	}
	return v, nil
}

// StoreInt implements integer store through capability cb: Check Engine
// with STORE, alignment policy, then Stq, clearing any tag the store's
// bytes overlap.
func (a *Access) StoreInt(cb cap.Capability, regnum int, addr, size, value uint64, pcc cap.Capability) *except.Trap {
	if trap := a.Check.Check(cb, cap.PermStore, addr, size, regnum, pcc); trap != nil {
		return trap
	}
	if trap := a.checkAligned(addr, size, regnum, true); trap != nil {
		return trap
	}
	if size < 8 {
		old, err := a.Mem.Ldq(addr)
		if err != nil {
			return except.RaiseC0(except.KindAdES, addr)
		}
		mask := uint64(1)<<(8*size) - 1
		value = old&^mask | value&mask
	}
	if err := a.Mem.TagInvalidate(addr, size); err != nil {
		return except.RaiseC0(except.KindAdES, addr)
	}
	if err := a.Mem.Stq(addr, value); err != nil {
		return except.RaiseC0(except.KindAdES, addr)
	}
	return nil
}

// LoadCap implements capability load through cb: Check Engine with LOAD
// only, unlike StoreCap. A missing LOAD_CAP does not trap; it silently
// clears the tag of the loaded value instead.
func (a *Access) LoadCap(cb cap.Capability, regnum int, addr uint64, pcc cap.Capability) (cap.Capability, *except.Trap) {
	size := uint64(a.Codec.Size())
	if trap := a.Check.Check(cb, cap.PermLoad, addr, size, regnum, pcc); trap != nil {
		return cap.Capability{}, trap
	}
	if trap := a.checkAligned(addr, size, regnum, false); trap != nil {
		return cap.Capability{}, trap
	}

	buf := make([]byte, size)
	for i := uint64(0); i < size; i += 8 {
		w, err := a.Mem.Ldq(addr + i)
		if err != nil {
			return cap.Capability{}, except.RaiseC0(except.KindAdEL, addr)
		}
		buf[i], buf[i+1], buf[i+2], buf[i+3] = byte(w), byte(w>>8), byte(w>>16), byte(w>>24)
		buf[i+4], buf[i+5], buf[i+6], buf[i+7] = byte(w>>32), byte(w>>40), byte(w>>48), byte(w>>56)
	}
	tag, err := a.Mem.TagGet(addr)
	if err != nil {
		return cap.Capability{}, except.RaiseC0(except.KindAdEL, addr)
	}

	c := a.Codec.Decompress(buf, tag)
	if sideCodec, ok := a.Codec.(encoding.SideTableCodec); ok {
		sideBuf, sideTag, err := a.Mem.TagGetM128(addr)
		if err != nil {
			return cap.Capability{}, except.RaiseC0(except.KindAdEL, addr)
		}
		if len(sideBuf) != sideCodec.SideTableSize() {
			sideBuf = make([]byte, sideCodec.SideTableSize())
		}
		c = sideCodec.DecodeSideTable(sideBuf, c)
		c.Tag = c.Tag && sideTag
	}
	if !cb.Perms.Has(cap.PermLoadCap) {
		c.Tag = false
	}
	return c, nil
}

// StoreCap implements capability store through cb: Check Engine with
// STORE_CAP (and STORE_LOCAL when the stored value is tagged and
// non-global), then writes wire bytes and tag.
func (a *Access) StoreCap(cb cap.Capability, regnum int, addr uint64, val cap.Capability, pcc cap.Capability) *except.Trap {
	size := uint64(a.Codec.Size())
	perm := cap.PermStore | cap.PermStoreCap
	if val.Tag && !val.Perms.Has(cap.PermGlobal) {
		perm |= cap.PermStoreLocal
	}
	if trap := a.Check.Check(cb, perm, addr, size, regnum, pcc); trap != nil {
		return trap
	}
	if trap := a.checkAligned(addr, size, regnum, true); trap != nil {
		return trap
	}

	if err := a.Mem.TagInvalidate(addr, size); err != nil {
		return except.RaiseC0(except.KindAdES, addr)
	}

	buf := a.Codec.Compress(val)
	for i := uint64(0); i < size; i += 8 {
		w := uint64(buf[i]) | uint64(buf[i+1])<<8 | uint64(buf[i+2])<<16 | uint64(buf[i+3])<<24 |
			uint64(buf[i+4])<<32 | uint64(buf[i+5])<<40 | uint64(buf[i+6])<<48 | uint64(buf[i+7])<<56
		if err := a.Mem.Stq(addr+i, w); err != nil {
			return except.RaiseC0(except.KindAdES, addr)
		}
	}
	if err := a.Mem.TagSet(addr, val.Tag); err != nil {
		return except.RaiseC0(except.KindAdES, addr)
	}
	if sideCodec, ok := a.Codec.(encoding.SideTableCodec); ok {
		if err := a.Mem.TagSetM128(addr, sideCodec.EncodeSideTable(val), val.Tag); err != nil {
			return except.RaiseC0(except.KindAdES, addr)
		}
	}
	return nil
}
