package isa

import "github.com/cherigo/cp2/cap"

// GetAddr returns cb's cursor, the CGetAddr instruction.
func GetAddr(cb cap.Capability) uint64 { return cb.Cursor }

// GetBase returns cb's base, CGetBase.
func GetBase(cb cap.Capability) uint64 { return cb.Base }

// GetLen returns cb's saturated 64-bit length, CGetLen.
func GetLen(cb cap.Capability) uint64 { return cb.GetLength() }

// GetOffset returns cb's cursor relative to base, CGetOffset.
func GetOffset(cb cap.Capability) uint64 { return cb.Offset() }

// GetPerm packs architectural and user permissions into one register value
// the way CGetPerm does: perms in the low bits, uperms shifted above them.
func GetPerm(cb cap.Capability) uint64 {
	return uint64(cb.Perms) | uint64(cb.UPerms)<<cap.UPermsShift
}

// GetTag returns cb's tag bit as 0 or 1, CGetTag.
func GetTag(cb cap.Capability) uint64 {
	if cb.Tag {
		return 1
	}
	return 0
}

// GetType returns cb's otype, CGetType. Untagged capabilities report their
// otype masked to the representable range rather than sign-extended.
func GetType(cb cap.Capability) uint64 {
	if !cb.Tag && cb.Otype > cap.MaxSealedOtype {
		return cb.Otype & cap.MaxSealedOtype
	}
	return cb.Otype
}

// GetSealed reports whether cb carries any seal as 0 or 1, CGetSealed.
func GetSealed(cb cap.Capability) uint64 {
	if cb.Sealed() {
		return 1
	}
	return 0
}

// GetPCC returns PCC as-is, CGetPCC; the caller is responsible for updating
// the result's cursor from the live PC the way the PC-check entrypoint does.
func (c *Context) GetPCC() cap.Capability {
	return c.Cap.PCC()
}
