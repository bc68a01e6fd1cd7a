package mem

import "encoding/binary"

const pageSize = 4096
const pageShift = 12

// Sim is a reference Memory backing for hosts that have no real emulator
// attached: tests, the debugger's local state dumps, and cmd/cherisim's
// demo mode. It is a sparse, fixed-size page map: this package never needs
// protection bits or overlapping-region splitting, only byte storage and a
// parallel tag bit per capability-sized region.
type Sim struct {
	pages map[uint64][]byte
	tags  map[uint64]bool
	side  map[uint64][]byte

	// granularity is the byte size of one tag region: the wire size of
	// whichever capability encoding this backing store is paired with, so
	// a data store anywhere inside a capability-sized region invalidates
	// that whole region's tag regardless of the encoding's width.
	granularity uint64
}

// NewSim returns an empty backing store with tag regions granularity bytes
// wide; all memory reads as zero and all tags read as false until written.
func NewSim(granularity uint64) *Sim {
	return &Sim{
		pages:       make(map[uint64][]byte),
		tags:        make(map[uint64]bool),
		side:        make(map[uint64][]byte),
		granularity: granularity,
	}
}

func (s *Sim) page(addr uint64) []byte {
	key := addr >> pageShift
	p, ok := s.pages[key]
	if !ok {
		p = make([]byte, pageSize)
		s.pages[key] = p
	}
	return p
}

func (s *Sim) Ldq(addr uint64) (uint64, error) {
	off := addr & (pageSize - 1)
	if off+8 <= pageSize {
		return binary.LittleEndian.Uint64(s.page(addr)[off : off+8]), nil
	}
	// straddles a page boundary: read byte by byte.
	var buf [8]byte
	for i := 0; i < 8; i++ {
		a := addr + uint64(i)
		buf[i] = s.page(a)[a&(pageSize-1)]
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (s *Sim) Stq(addr uint64, v uint64) error {
	off := addr & (pageSize - 1)
	if off+8 <= pageSize {
		binary.LittleEndian.PutUint64(s.page(addr)[off:off+8], v)
		return nil
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	for i := 0; i < 8; i++ {
		a := addr + uint64(i)
		s.page(a)[a&(pageSize-1)] = buf[i]
	}
	return nil
}

func (s *Sim) alignedTagKey(addr uint64) uint64 {
	return addr &^ (s.granularity - 1)
}

func (s *Sim) TagGet(addr uint64) (bool, error) {
	return s.tags[s.alignedTagKey(addr)], nil
}

func (s *Sim) TagSet(addr uint64, tag bool) error {
	s.tags[s.alignedTagKey(addr)] = tag
	return nil
}

func (s *Sim) TagInvalidate(addr, nbytes uint64) error {
	start := s.alignedTagKey(addr)
	end := s.alignedTagKey(addr + nbytes - 1)
	for k := start; k <= end; k += s.granularity {
		s.tags[k] = false
	}
	return nil
}

func (s *Sim) TagGetM128(addr uint64) ([]byte, bool, error) {
	key := s.alignedTagKey(addr)
	return s.side[key], s.tags[key], nil
}

func (s *Sim) TagSetM128(addr uint64, data []byte, tag bool) error {
	key := s.alignedTagKey(addr)
	cp := make([]byte, len(data))
	copy(cp, data)
	s.side[key] = cp
	s.tags[key] = tag
	return nil
}

var _ Memory = (*Sim)(nil)
