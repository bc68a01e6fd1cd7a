package isa

import (
	"testing"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

func TestJrUnsealsSentry(t *testing.T) {
	cb := fullCap(0, 0x1000)
	cb.Cursor = 0x100
	sentry := cb.MakeSealedEntry()

	target, trap := Jr(sentry)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if target.Sealed() {
		t.Fatal("expected unsealed jump target")
	}
}

func TestJrRequiresGlobal(t *testing.T) {
	cb := cap.Capability{Tag: true, Base: 0, Top: 0x1000, Cursor: 0x100, Perms: cap.PermExecute, Otype: cap.OtypeUnsealed}
	if _, trap := Jr(cb); trap == nil || trap.Kind != except.KindGlobal {
		t.Fatalf("expected GLOBAL, got %v", trap)
	}
}

func TestJalrSentryCallLinksSentry(t *testing.T) {
	pcc := fullCap(0, 0x10000)
	pcc.Cursor = 0x40
	cb := fullCap(0, 0x1000)
	cb.Cursor = 0x100
	sentry := cb.MakeSealedEntry()

	target, link, trap := Jalr(pcc, sentry)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if target.Sealed() {
		t.Fatal("expected unsealed jump target")
	}
	if !link.IsSealedEntry() {
		t.Fatal("expected link capability to become a sentry")
	}
	if link.Cursor != pcc.Cursor+8 {
		t.Fatalf("got link cursor %#x, want %#x", link.Cursor, pcc.Cursor+8)
	}
}

func TestJalrPlainCallLeavesLinkUnsealed(t *testing.T) {
	pcc := fullCap(0, 0x10000)
	pcc.Cursor = 0x40
	cb := fullCap(0, 0x1000)
	cb.Cursor = 0x100

	_, link, trap := Jalr(pcc, cb)
	if trap != nil {
		t.Fatalf("unexpected trap: %v", trap)
	}
	if link.Sealed() {
		t.Fatal("expected plain link capability to stay unsealed")
	}
}

func TestJrMisalignedTargetFaultsAdEL(t *testing.T) {
	cb := fullCap(0, 0x1000)
	cb.Cursor = 0x101
	if _, trap := Jr(cb); trap == nil || trap.Kind != except.KindAdEL {
		t.Fatalf("expected AdEL, got %v", trap)
	}
}
