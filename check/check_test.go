package check

import (
	"testing"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

func TestCheckPriorityOrder(t *testing.T) {
	e := &Engine{}
	pcc := cap.MaxPermissionsCapability(0)

	// tag beats everything else
	untagged := cap.Capability{Base: 0, Top: 0x100, Perms: 0}
	if trap := e.Check(untagged, cap.PermLoad, 0, 1, 3, pcc); trap == nil || trap.Kind != except.KindTag {
		t.Fatalf("want TAG, got %v", trap)
	}

	// seal beats perm/bounds
	sealed := cap.Capability{Tag: true, Base: 0, Top: 0x100, Otype: 5}
	if trap := e.Check(sealed, cap.PermLoad, 0, 1, 3, pcc); trap == nil || trap.Kind != except.KindSeal {
		t.Fatalf("want SEAL, got %v", trap)
	}

	// perm beats bounds
	noPerm := cap.Capability{Tag: true, Base: 0, Top: 0x100, Otype: cap.OtypeUnsealed}
	if trap := e.Check(noPerm, cap.PermLoad, 0, 1, 3, pcc); trap == nil || trap.Kind != except.KindPermLoad {
		t.Fatalf("want PERM_LOAD, got %v", trap)
	}

	// bounds fails last
	outOfBounds := cap.Capability{Tag: true, Base: 0, Top: 0x100, Perms: cap.PermLoad, Otype: cap.OtypeUnsealed}
	if trap := e.Check(outOfBounds, cap.PermLoad, 0x200, 1, 3, pcc); trap == nil || trap.Kind != except.KindLength {
		t.Fatalf("want LENGTH, got %v", trap)
	}

	// success
	ok := cap.Capability{Tag: true, Base: 0, Top: 0x100, Perms: cap.PermLoad, Otype: cap.OtypeUnsealed}
	if trap := e.Check(ok, cap.PermLoad, 0x10, 1, 3, pcc); trap != nil {
		t.Fatalf("want success, got %v", trap)
	}
}

func TestOnTypeMismatchIsDiagnosticOnly(t *testing.T) {
	var fired bool
	e := &Engine{OnTypeMismatch: func(pcc, checked cap.Capability, regnum int) { fired = true }}
	pcc := cap.Capability{Tag: true, Otype: 7, Base: 0, Top: 0x100, Perms: cap.PermLoad}
	c := cap.Capability{Tag: true, Otype: cap.OtypeUnsealed, Base: 0, Top: 0x100, Perms: cap.PermLoad}
	if trap := e.Check(c, cap.PermLoad, 0x10, 1, 1, pcc); trap != nil {
		t.Fatalf("type mismatch must never trap, got %v", trap)
	}
	if !fired {
		t.Fatal("expected OnTypeMismatch to fire")
	}
}

func TestMissingPermPriority(t *testing.T) {
	p := cap.PermLoad
	if _, ok := p.Missing(cap.PermExecute | cap.PermLoad); !ok {
		t.Fatal("expected a missing bit")
	}
	if bit, _ := p.Missing(cap.PermExecute | cap.PermLoad); bit != cap.PermExecute {
		t.Fatalf("expected EXECUTE to be reported first, got %v", bit)
	}
}
