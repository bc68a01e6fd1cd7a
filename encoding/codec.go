// Package encoding defines the interface shared by the wire formats a
// hart can be configured with, and the byte-packing helpers they share.
package encoding

import "github.com/cherigo/cp2/cap"

// Codec maps the abstract capability to and from one of the wire formats.
// Exactly one Codec is selected for a given hart at construction time:
// semantics are parameterised by the codec trait rather than duplicated
// per encoding.
type Codec interface {
	// Size is the number of bytes Compress produces and Decompress expects.
	Size() int

	// Compress encodes c into Size() bytes. The caller must not call
	// Compress on a tagged capability that fails Representable(c, c.Cursor);
	// the implementations do not check this, and encode such a capability
	// without reporting an error.
	Compress(c cap.Capability) []byte

	// Decompress decodes b (which must be Size() bytes) with the given tag
	// bit. Fields not architecturally meaningful for an untagged
	// capability are still populated deterministically so inspection
	// instructions (CGetBase, CGetLen, ...) remain well-defined on
	// untagged capabilities.
	Decompress(b []byte, tag bool) cap.Capability

	// Representable reports whether c, if its cursor were newCursor, would
	// round-trip exactly through Compress/Decompress. Used before
	// committing any cursor-changing derivation to a tagged capability.
	Representable(c cap.Capability, newCursor uint64) bool

	// RepresentableWhenSealed is Representable restricted to the sealed
	// case. All three codecs in this module answer it exactly as they answer
	// Representable.
	RepresentableWhenSealed(c cap.Capability, newCursor uint64) bool

	// AlignMaskForLength returns the mask SetBoundsExact must apply to base
	// to guarantee exact representability of a region of the given length.
	AlignMaskForLength(length uint64) uint64

	// RoundLengthUp returns the smallest length >= length that some
	// suitably aligned base can represent exactly.
	RoundLengthUp(length uint64) uint64

	// MarkUnrepresentable returns the codec-specific bit pattern produced
	// when a tagged operation's result cannot be represented: tag is
	// cleared and the wire bytes are deterministic in cursor alone.
	MarkUnrepresentable(cursor uint64) cap.Capability
}

// SideTableCodec is implemented by codecs whose Size() bytes hold only part
// of a capability's fields, with the remainder kept in an out-of-band side
// table (magic128) — keyed by the same aligned address as the tag bit, via
// mem.Memory.TagGetM128/TagSetM128. mem.Access type-asserts a Codec against
// this interface to decide whether a load/store must also touch the side
// table; compressed128 and uncompressed256 do not implement it because
// they are self-contained within Size() bytes.
type SideTableCodec interface {
	// SideTableSize is the number of bytes EncodeSideTable produces.
	SideTableSize() int

	// EncodeSideTable packs the fields Compress does not carry.
	EncodeSideTable(c cap.Capability) []byte

	// DecodeSideTable merges the side table bytes into a capability
	// already populated by Decompress.
	DecodeSideTable(b []byte, c cap.Capability) cap.Capability
}
