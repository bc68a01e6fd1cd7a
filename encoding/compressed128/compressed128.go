// Package compressed128 implements a 128-bit compressed capability wire
// format: a direct 64-bit cursor word plus a 64-bit PESBT
// (permissions/exponent/sealed/base/top) word laid out as
// perms(12)|uperms(4)|otype(23)|topMax(1)|exponent(6)|baseMantissa(9)|
// topMantissa(9). Base and top outside the mantissa's window are inferred
// from the cursor at decode time, which is what makes a capability whose
// bounds have drifted too far from its cursor become unrepresentable.
//
// This is a deliberate simplification of the correction-bit scheme real
// CHERI-128 "Concentrate" hardware uses: representability is modelled
// directly off the mantissa window's reach rather than reconstructing the
// hardware's exact correction logic bit-for-bit.
package compressed128

import (
	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/encoding"
)

const (
	size = 16

	mantissaBits = 9
	mantissaMask = uint64(1)<<mantissaBits - 1

	// maxExponent keeps exponent+mantissaBits strictly under 64 so window
	// computations never shift by the full word width (a 64-bit shift
	// count is defined to yield zero in Go, which would corrupt the
	// window arithmetic), while still fitting the 6-bit exponent field.
	maxExponent = 54

	topMantissaShift  = 0
	baseMantissaShift = topMantissaShift + mantissaBits
	exponentShift     = baseMantissaShift + mantissaBits
	exponentMask      = uint64(0x3F)
	topMaxShift        = exponentShift + 6
	otypeShift         = topMaxShift + 1
	otypeMask          = (uint64(1) << cap.OtypeBits) - 1
	upermsShift        = otypeShift + cap.OtypeBits
	upermsMask         = (uint64(1) << cap.UPermBits) - 1
	permsShift         = upermsShift + cap.UPermBits
	permsMask          = uint64(cap.PermAll)
)

// Codec is the compressed128 encoding.Codec.
type Codec struct{}

var _ encoding.Codec = Codec{}

func (Codec) Size() int { return size }

func (Codec) Compress(c cap.Capability) []byte {
	buf := make([]byte, size)
	encoding.PutU64(buf, 0, c.Cursor)

	if !c.Tag {
		encoding.PutU64(buf, 8, c.PesbtCache())
		return buf
	}

	encoding.PutU64(buf, 8, packPesbt(c))
	return buf
}

func (Codec) Decompress(b []byte, tag bool) cap.Capability {
	cursor := encoding.GetU64(b, 0)
	pesbt := encoding.GetU64(b, 8)

	topMantissa := (pesbt >> topMantissaShift) & mantissaMask
	baseMantissa := (pesbt >> baseMantissaShift) & mantissaMask
	exponent := (pesbt >> exponentShift) & exponentMask
	topMax := (pesbt>>topMaxShift)&1 == 1
	otype := (pesbt >> otypeShift) & otypeMask
	uperms := cap.UPerm((pesbt >> upermsShift) & upermsMask)
	perms := cap.Perm((pesbt >> permsShift) & permsMask)

	c := cap.Capability{
		Tag:    tag,
		Cursor: cursor,
		Base:   reconstructBase(baseMantissa, exponent, cursor),
		TopMax: topMax,
		Perms:  perms,
		UPerms: uperms,
		Otype:  otype,
	}
	if !topMax {
		c.Top = reconstructTop(topMantissa, exponent, cursor)
	}
	return c.WithPesbtCache(pesbt)
}

// Representable reports whether c's bounds survive the round trip once the
// cursor becomes newCursor: re-derive the canonical exponent and mantissas
// for c's actual (base, top), then reconstruct relative to newCursor and
// compare.
func (Codec) Representable(c cap.Capability, newCursor uint64) bool {
	if !c.Tag {
		return true
	}
	exponent := chooseExponent(c)
	baseMantissa := (c.Base >> exponent) & mantissaMask

	base2 := reconstructBase(baseMantissa, exponent, newCursor)
	if base2 != c.Base {
		return false
	}
	if c.TopMax {
		return true
	}
	topMantissa := (c.Top >> exponent) & mantissaMask
	top2 := reconstructTop(topMantissa, exponent, newCursor)
	return top2 == c.Top
}

// RepresentableWhenSealed is identical to Representable here: this
// simplified scheme does not distinguish a sealed-capability precision
// bucket from the unsealed one.
func (Codec) RepresentableWhenSealed(c cap.Capability, newCursor uint64) bool {
	return Codec{}.Representable(c, newCursor)
}

func (Codec) AlignMaskForLength(length uint64) uint64 {
	return uint64(1)<<exponentForLength(length) - 1
}

func (Codec) RoundLengthUp(length uint64) uint64 {
	step := uint64(1) << exponentForLength(length)
	return (length + step - 1) &^ (step - 1)
}

func (Codec) MarkUnrepresentable(cursor uint64) cap.Capability {
	c := cap.NullCapability()
	c.Cursor = cursor
	return c
}

func packPesbt(c cap.Capability) uint64 {
	exponent := chooseExponent(c)
	baseMantissa := (c.Base >> exponent) & mantissaMask

	var topMantissa, topMaxBit uint64
	if c.TopMax {
		topMaxBit = 1
	} else {
		topMantissa = (c.Top >> exponent) & mantissaMask
	}

	return topMantissa<<topMantissaShift |
		baseMantissa<<baseMantissaShift |
		exponent<<exponentShift |
		topMaxBit<<topMaxShift |
		(c.Otype&otypeMask)<<otypeShift |
		(uint64(c.UPerms)&upermsMask)<<upermsShift |
		(uint64(c.Perms)&permsMask)<<permsShift
}

// chooseExponent picks the smallest exponent such that a single
// 2^(exponent+9)-sized window can hold c's whole [base, top) region, so
// base and top differ by at most one window once their high bits are
// dropped.
func chooseExponent(c cap.Capability) uint64 {
	if c.TopMax {
		return maxExponent
	}
	return exponentForLength(c.Top - c.Base)
}

func exponentForLength(length uint64) uint64 {
	e := uint64(0)
	for e < maxExponent {
		window := uint64(1) << (e + mantissaBits)
		if length <= window {
			break
		}
		e++
	}
	return e
}

// reconstructBase and reconstructTop recover a full 64-bit value from its
// 9-bit mantissa and exponent by correcting the cursor's own high bits by
// the signed difference between the mantissa and the cursor's mantissa at
// the same exponent, normalized into a window-wide range centered on the
// cursor. This is the mechanism that makes a capability whose bounds
// drift too far from the cursor become unrepresentable: once the true
// value falls more than half a window away, the normalized difference can
// no longer reach it.
//
// The two functions normalize to adjacent ranges, [-256,255] for the base
// and [-255,256] for the top, rather than sharing one: base and top are
// stored as independent mantissas, and when a region's length is an exact
// multiple of the window size the two mantissas can be numerically equal
// while still describing values one full window apart. Resolving base
// downward and top upward on that tie keeps base <= top, matching the
// asymmetric correction real CHERI-128 hardware applies to bottom vs top.
func reconstructBase(mantissa, exponent, cursor uint64) uint64 {
	return reconstructWithTieBreak(mantissa, exponent, cursor, false)
}

func reconstructTop(mantissa, exponent, cursor uint64) uint64 {
	return reconstructWithTieBreak(mantissa, exponent, cursor, true)
}

func reconstructWithTieBreak(mantissa, exponent, cursor uint64, roundUpOnTie bool) uint64 {
	cursorShifted := cursor >> exponent
	cursorMantissa := cursorShifted & mantissaMask

	diff := int64(mantissa) - int64(cursorMantissa)
	if roundUpOnTie {
		switch {
		case diff <= -256:
			diff += 512
		case diff > 256:
			diff -= 512
		}
	} else {
		switch {
		case diff < -256:
			diff += 512
		case diff >= 256:
			diff -= 512
		}
	}
	return uint64(int64(cursorShifted) + diff) << exponent
}
