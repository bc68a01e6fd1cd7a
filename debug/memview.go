package debug

import "github.com/cherigo/cp2/mem"

// SimMemView adapts a *mem.Sim's quad-word-oriented Ldq/Stq into the flat
// byte-range MemReader/MemWriter the RSP 'm'/'M' commands want, the way a
// real debugger addresses target memory without going through the
// capability-checked load/store path.
type SimMemView struct {
	Sim *mem.Sim
}

func (v *SimMemView) ReadBytes(addr, length uint64) ([]byte, error) {
	out := make([]byte, length)
	for i := uint64(0); i < length; i++ {
		a := addr + i
		base := a &^ 7
		word, err := v.Sim.Ldq(base)
		if err != nil {
			return nil, err
		}
		shift := (a & 7) * 8
		out[i] = byte(word >> shift)
	}
	return out, nil
}

func (v *SimMemView) WriteBytes(addr uint64, data []byte) error {
	for i, b := range data {
		a := addr + uint64(i)
		base := a &^ 7
		word, err := v.Sim.Ldq(base)
		if err != nil {
			return err
		}
		shift := (a & 7) * 8
		word &^= uint64(0xff) << shift
		word |= uint64(b) << shift
		if err := v.Sim.Stq(base, word); err != nil {
			return err
		}
	}
	return nil
}
