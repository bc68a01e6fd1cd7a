package isa

import (
	"testing"

	"github.com/cherigo/cp2/cap"
)

func TestInspectionAccessors(t *testing.T) {
	c := fullCap(0x1000, 0x2000)
	c.Cursor = 0x1800
	c.UPerms = 0x5

	if GetAddr(c) != 0x1800 {
		t.Fatalf("GetAddr: got %#x", GetAddr(c))
	}
	if GetBase(c) != 0x1000 {
		t.Fatalf("GetBase: got %#x", GetBase(c))
	}
	if GetLen(c) != 0x1000 {
		t.Fatalf("GetLen: got %#x", GetLen(c))
	}
	if GetOffset(c) != 0x800 {
		t.Fatalf("GetOffset: got %#x", GetOffset(c))
	}
	if GetTag(c) != 1 {
		t.Fatal("GetTag: expected 1")
	}
	if GetSealed(c) != 0 {
		t.Fatal("GetSealed: expected 0 for unsealed")
	}
	perm := GetPerm(c)
	if cap.Perm(perm)&cap.PermAll != c.Perms ||cap.UPerm(perm>>cap.UPermsShift) != c.UPerms {
		t.Fatalf("GetPerm round-trip mismatch: %#x", perm)
	}
}

func TestGetTypeMasksUntaggedOtype(t *testing.T) {
	c := cap.Capability{Tag: false, Otype: cap.OtypeUnsealed}
	if GetType(c) != cap.OtypeUnsealed&cap.MaxSealedOtype {
		t.Fatalf("got %#x", GetType(c))
	}
}
