// Package magic128 implements the 128-bit "magic" wire format of spec
// §4.1/§6: base and cursor are stored directly and losslessly in the two
// in-line words, while otype, permissions, and length live in an
// out-of-band side table keyed by the same aligned address as the tag bit
// (mem.Memory.TagGetM128/TagSetM128). It is the encoding with the least
// compression and the most memory overhead of the three, included for
// hosts that would rather trade memory for the complexity of compressed128's
// exponent scheme.
package magic128

import (
	"math"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/encoding"
)

const (
	size     = 16
	sideSize = 16

	otypeMask   = (uint64(1) << cap.OtypeBits) - 1
	permsShift  = cap.OtypeBits
	permsMask   = uint64(cap.PermAll)
	upermsShift = permsShift + 12
	upermsMask  = (uint64(1) << cap.UPermBits) - 1
	sealedShift = upermsShift + cap.UPermBits

	allOnes64 = ^uint64(0)
)

// Codec is the magic128 encoding.Codec. It also implements
// encoding.SideTableCodec.
type Codec struct{}

var _ encoding.Codec = Codec{}
var _ encoding.SideTableCodec = Codec{}

func (Codec) Size() int { return size }

func (Codec) Compress(c cap.Capability) []byte {
	buf := make([]byte, size)
	encoding.PutU64(buf, 0, c.Base)
	encoding.PutU64(buf, 8, c.Cursor)
	return buf
}

func (Codec) Decompress(b []byte, tag bool) cap.Capability {
	return cap.Capability{
		Tag:    tag,
		Base:   encoding.GetU64(b, 0),
		Cursor: encoding.GetU64(b, 8),
		Otype:  cap.OtypeUnsealed,
	}
}

func (Codec) SideTableSize() int { return sideSize }

// EncodeSideTable packs (otype⊕MAX, perms, sealed, length⊕MAX) per spec
// §6's magic128 wire layout, with uperms parked in otherwise-unused bits of
// word0 — an extension the published layout omits because it predates
// user-defined permissions, but which this package's abstract Capability
// still needs to round trip.
func (Codec) EncodeSideTable(c cap.Capability) []byte {
	word0 := (c.Otype ^ otypeMask) & otypeMask
	word0 |= (uint64(c.Perms) & permsMask) << permsShift
	word0 |= (uint64(c.UPerms) & upermsMask) << upermsShift
	if c.Sealed() {
		word0 |= 1 << sealedShift
	}

	buf := make([]byte, sideSize)
	encoding.PutU64(buf, 0, word0)
	encoding.PutU64(buf, 8, c.GetLength()^allOnes64)
	return buf
}

func (Codec) DecodeSideTable(b []byte, c cap.Capability) cap.Capability {
	word0 := encoding.GetU64(b, 0)
	length := encoding.GetU64(b, 8) ^ allOnes64

	c.Otype = (word0 & otypeMask) ^ otypeMask
	c.Perms = cap.Perm((word0 >> permsShift) & permsMask)
	c.UPerms = cap.UPerm((word0 >> upermsShift) & upermsMask)
	top := c.Base + length
	if length == math.MaxUint64 || top < c.Base {
		c.TopMax = true
		c.Top = 0
	} else {
		c.TopMax = false
		c.Top = top
	}
	return c
}

// Representable is always true: base and cursor are stored directly, and
// the side table carries length exactly (saturating only at the single
// 2^64 boundary uncompressed256 also saturates at).
func (Codec) Representable(c cap.Capability, newCursor uint64) bool { return true }

func (Codec) RepresentableWhenSealed(c cap.Capability, newCursor uint64) bool { return true }

func (Codec) AlignMaskForLength(length uint64) uint64 { return 0 }

func (Codec) RoundLengthUp(length uint64) uint64 { return length }

func (Codec) MarkUnrepresentable(cursor uint64) cap.Capability {
	c := cap.NullCapability()
	c.Cursor = cursor
	return c
}
