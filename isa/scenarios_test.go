package isa

import (
	"testing"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/encoding/compressed128"
	"github.com/cherigo/cp2/except"
)

// These mirror the six numbered scenarios used to validate the instruction
// semantics against their published preconditions.

func TestScenarioSetExactBoundsThenExceedParent(t *testing.T) {
	ctx := newContext()
	c1 := cap.MaxPermissionsCapability(0x1000)

	c2, trap := ctx.SetBoundsExact(c1, 0x100)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if c2.Base != 0x1000 || c2.Top != 0x1100 || !c2.Tag {
		t.Fatalf("got %+v", c2)
	}

	if _, trap := ctx.SetBoundsExact(c2, 0x200); trap == nil || trap.Kind != except.KindLength {
		t.Fatalf("expected LENGTH exceeding parent top, got %v", trap)
	}
}

func TestScenarioSealThenJumpFails(t *testing.T) {
	ctx := newContext()
	c1 := cap.MaxPermissionsCapability(0)
	c2 := cap.Capability{Tag: true, Base: 0x42, Top: 0x43, Cursor: 0x42, Perms: cap.PermSeal, Otype: cap.OtypeUnsealed}

	sealed, trap := ctx.Seal(c1, c2)
	if trap != nil {
		t.Fatalf("seal failed: %v", trap)
	}
	if _, trap := Jr(sealed); trap == nil || trap.Kind != except.KindSeal {
		t.Fatalf("expected SEAL on jump through sealed non-sentry, got %v", trap)
	}
}

func TestScenarioSentryCall(t *testing.T) {
	c1 := cap.MaxPermissionsCapability(0x400)
	sentry, trap := SealEntry(c1)
	if trap != nil {
		t.Fatalf("sealentry failed: %v", trap)
	}

	pcc := cap.MaxPermissionsCapability(0)
	target, link, trap := Jalr(pcc, sentry)
	if trap != nil {
		t.Fatalf("jalr failed: %v", trap)
	}
	if target.Sealed() {
		t.Fatal("expected PCC install to be unsealed")
	}
	if !link.IsSealedEntry() {
		t.Fatal("expected returned link capability to be a sentry")
	}
}

func TestScenarioUnrepresentableOffsetClearsTag(t *testing.T) {
	ctx := newContext()
	// uncompressed256 is exactly representable everywhere, so this scenario
	// runs under compressed128, where a cursor 2^48 past a 0x100-byte region
	// cannot be encoded.
	ctx.Codec = compressed128.Codec{}
	c1 := cap.Capability{Tag: true, Base: 0, Top: 0x100, Cursor: 0, Perms: cap.PermAll, Otype: cap.OtypeUnsealed}

	c2, trap := ctx.IncOffset(c1, 0x1_0000_0000_0000)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if c2.Tag {
		t.Fatal("expected tag cleared on unrepresentable offset")
	}
	// The cursor still lands at base + delta.
	if c2.Cursor != c1.Base+0x1_0000_0000_0000 {
		t.Fatalf("got cursor %#x", c2.Cursor)
	}
}

func TestScenarioCCallValidThenTypeMismatch(t *testing.T) {
	cs := cap.Capability{Tag: true, Base: 0, Top: 0x1000, Cursor: 0x10, Perms: cap.PermExecute | cap.PermCCall, Otype: 7}
	cb := cap.Capability{Tag: true, Base: 0, Top: 0x1000, Cursor: 0, Perms: cap.PermCCall, Otype: 7}

	result, trap := CCall(cs, cb)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if result.Target.Cursor != cs.Cursor {
		t.Fatalf("expected branch to cs.cursor, got %#x", result.Target.Cursor)
	}
	if result.IDC.Sealed() {
		t.Fatal("expected unsealed cb left in IDC")
	}

	cb.Otype = 8
	if _, trap := CCall(cs, cb); trap == nil || trap.Kind != except.KindType {
		t.Fatalf("expected TYPE, got %v", trap)
	}
}

func TestScenarioDDCStoreClearsOverlappingCapabilityTag(t *testing.T) {
	ctx := newContext()
	ddc := fullCap(0, 0x1000)
	pcc := fullCap(0, 0x1000)
	val := cap.Capability{Tag: true, Base: 1, Top: 2, Perms: cap.PermGlobal, Otype: cap.OtypeUnsealed}

	if trap := ctx.Mem.StoreCap(ddc, 0, 0x400, val, pcc); trap != nil {
		t.Fatalf("store cap failed: %v", trap)
	}
	if trap := ctx.DDC.Store(ddc, 0, 0x400, 8, 0, pcc); trap != nil {
		t.Fatalf("integer store failed: %v", trap)
	}
	got, trap := ctx.Mem.LoadCap(ddc, 0, 0x400, pcc)
	if trap != nil {
		t.Fatalf("load cap failed: %v", trap)
	}
	if got.Tag {
		t.Fatal("expected overlapping integer store to clear the capability's tag")
	}
}
