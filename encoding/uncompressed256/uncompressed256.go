// Package uncompressed256 implements a lossless 256-bit capability wire
// format: four 64-bit words carrying (perms|otype), cursor, base, and
// length directly. Word0 and the length word are each XORed with all-ones
// on the wire. An all-zero region therefore decodes as an unsealed
// capability with every permission and user permission bit set, base and
// cursor zero, and top 2^64; it is untagged, and IsNullSentinel holds for it.
package uncompressed256

import (
	"math"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/encoding"
)

const (
	wordAllOnes = ^uint64(0)
	size        = 32

	otypeShift  = 32
	otypeMask   = (uint64(1) << cap.OtypeBits) - 1
	upermsShift = otypeShift + cap.OtypeBits
	upermsMask  = (uint64(1) << cap.UPermBits) - 1
	permsShift  = 1
)

// Codec is the uncompressed256 encoding.Codec.
type Codec struct{}

var _ encoding.Codec = Codec{}

func (Codec) Size() int { return size }

func (Codec) Compress(c cap.Capability) []byte {
	sealedBit := uint64(0)
	if c.Sealed() {
		sealedBit = 1
	}
	word0 := (c.Otype&otypeMask)<<otypeShift |
		(uint64(c.UPerms)&upermsMask)<<upermsShift |
		uint64(c.Perms)<<permsShift |
		sealedBit
	word0 ^= wordAllOnes

	length := c.GetLength()

	buf := make([]byte, size)
	encoding.PutU64(buf, 0, word0)
	encoding.PutU64(buf, 8, c.Cursor)
	encoding.PutU64(buf, 16, c.Base)
	encoding.PutU64(buf, 24, length^wordAllOnes)
	return buf
}

func (Codec) Decompress(b []byte, tag bool) cap.Capability {
	word0 := encoding.GetU64(b, 0) ^ wordAllOnes
	cursor := encoding.GetU64(b, 8)
	base := encoding.GetU64(b, 16)
	length := encoding.GetU64(b, 24) ^ wordAllOnes

	otype := (word0 >> otypeShift) & otypeMask
	uperms := cap.UPerm((word0 >> upermsShift) & upermsMask)
	perms := cap.Perm((word0 >> permsShift) & uint64(cap.PermAll))

	c := cap.Capability{
		Tag:    tag,
		Base:   base,
		Cursor: cursor,
		Perms:  perms,
		UPerms: uperms,
		Otype:  otype,
	}
	top := base + length
	if (length == math.MaxUint64 && base == 0) || top < base {
		c.TopMax = true
	} else {
		c.Top = top
	}
	return c
}

// Representable is always true: every field is stored directly, independent
// of cursor. The length word saturates 2^64 to 2^64-1, so a capability with
// base 0 and top 2^64-1 decodes with top 2^64.
func (Codec) Representable(c cap.Capability, newCursor uint64) bool { return true }

func (Codec) RepresentableWhenSealed(c cap.Capability, newCursor uint64) bool { return true }

// AlignMaskForLength is the identity alignment: any base is exactly
// representable at any length.
func (Codec) AlignMaskForLength(length uint64) uint64 { return 0 }

// RoundLengthUp is the identity: this format never loses precision.
func (Codec) RoundLengthUp(length uint64) uint64 { return length }

// MarkUnrepresentable never legitimately fires for this codec (Representable
// is always true), but is implemented for interface completeness.
func (Codec) MarkUnrepresentable(cursor uint64) cap.Capability {
	c := cap.NullCapability()
	c.Cursor = cursor
	return c
}
