package encoding

import "encoding/binary"

// PutU64/GetU64 wrap the little-endian 64-bit word packing every wire
// layout in this package uses.
func PutU64(buf []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(buf[off:off+8], v)
}

func GetU64(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off : off+8])
}
