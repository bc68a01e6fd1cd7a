package isa

import (
	"testing"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

func TestAndPermRestrictsToSubset(t *testing.T) {
	c := fullCap(0, 0x1000)
	rt := uint64(cap.PermLoad|cap.PermStore) | uint64(0x3)<<cap.UPermsShift

	result, trap := AndPerm(c, rt)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if result.Perms != cap.PermLoad|cap.PermStore {
		t.Fatalf("got perms %#x", result.Perms)
	}
	if result.UPerms != 0x3 {
		t.Fatalf("got uperms %#x", result.UPerms)
	}
}

func TestAndPermTrapsOnSealed(t *testing.T) {
	c := fullCap(0, 0x1000)
	c.Otype = 5
	if _, trap := AndPerm(c, uint64(cap.PermAll)); trap == nil || trap.Kind != except.KindSeal {
		t.Fatalf("expected SEAL, got %v", trap)
	}
}

func TestIncOffsetLaws(t *testing.T) {
	ctx := newContext()
	c := fullCap(0, 0x1000)
	c.Cursor = 0x100

	same, trap := ctx.IncOffset(c, 0)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if same.Cursor != c.Cursor {
		t.Fatal("IncOffset(c, 0) must be identity on cursor")
	}

	step1, trap := ctx.IncOffset(c, 0x10)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	step2, trap := ctx.IncOffset(step1, 0x20)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	combined, trap := ctx.IncOffset(c, 0x30)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if step2.Cursor != combined.Cursor {
		t.Fatalf("IncOffset composition law violated: %#x != %#x", step2.Cursor, combined.Cursor)
	}
}

func TestIncOffsetTrapsOnSealedWithNonzeroDelta(t *testing.T) {
	ctx := newContext()
	c := fullCap(0, 0x1000)
	c.Otype = 3
	if _, trap := ctx.IncOffset(c, 1); trap == nil || trap.Kind != except.KindSeal {
		t.Fatalf("expected SEAL, got %v", trap)
	}
	if _, trap := ctx.IncOffset(c, 0); trap != nil {
		t.Fatalf("zero delta on sealed capability must not trap, got %v", trap)
	}
}

func TestSetBoundsNeverEnlarges(t *testing.T) {
	ctx := newContext()
	c := fullCap(0x1000, 0x2000)
	c.Cursor = 0x1000

	result, trap := ctx.SetBounds(c, 0x100)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if result.Base < c.Base || result.Top > c.Top {
		t.Fatalf("SetBounds enlarged bounds: %+v", result)
	}
}

func TestSetBoundsExactLengthMatch(t *testing.T) {
	ctx := newContext()
	c := fullCap(0x1000, 0x2000)
	c.Cursor = 0x1000

	result, trap := ctx.SetBoundsExact(c, 0x100)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if result.Base != 0x1000 || result.Top != 0x1100 {
		t.Fatalf("got base=%#x top=%#x", result.Base, result.Top)
	}
}

func TestSetBoundsExceedingParentTopTraps(t *testing.T) {
	ctx := newContext()
	c := fullCap(0x1000, 0x1100)
	c.Cursor = 0x1000
	if _, trap := ctx.SetBoundsExact(c, 0x200); trap == nil || trap.Kind != except.KindLength {
		t.Fatalf("expected LENGTH, got %v", trap)
	}
}

func TestBuildCapRequiresContainment(t *testing.T) {
	cb := fullCap(0x1000, 0x2000)
	ct := cap.Capability{Tag: true, Base: 0x500, Top: 0x1800, Perms: cap.PermLoad, Otype: cap.OtypeUnsealed}
	if _, trap := BuildCap(cb, ct); trap == nil || trap.Kind != except.KindLength {
		t.Fatalf("expected LENGTH, got %v", trap)
	}

	contained := cap.Capability{Tag: true, Base: 0x1100, Top: 0x1800, Perms: cap.PermLoad, Otype: cap.OtypeUnsealed}
	result, trap := BuildCap(cb, contained)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if result.Base != contained.Base || result.Top != contained.Top || result.Perms != contained.Perms {
		t.Fatalf("got %+v", result)
	}
}

func TestBuildCapRejectsExcessPerms(t *testing.T) {
	cb := cap.Capability{Tag: true, Base: 0x1000, Top: 0x2000, Perms: cap.PermLoad, Otype: cap.OtypeUnsealed}
	ct := cap.Capability{Tag: true, Base: 0x1000, Top: 0x1800, Perms: cap.PermLoad | cap.PermStore, Otype: cap.OtypeUnsealed}
	if _, trap := BuildCap(cb, ct); trap == nil || trap.Kind != except.KindUsrDefine {
		t.Fatalf("expected USRDEFINE, got %v", trap)
	}
}

func TestDeprecatedOpcodesRaiseRI(t *testing.T) {
	if trap := IncBase(); trap == nil || trap.Kind != except.KindRI {
		t.Fatalf("expected RI, got %v", trap)
	}
	if trap := SetLen(); trap == nil || trap.Kind != except.KindRI {
		t.Fatalf("expected RI, got %v", trap)
	}
}
