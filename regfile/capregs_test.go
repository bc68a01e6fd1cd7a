package regfile

import (
	"testing"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/except"
)

func TestResetState(t *testing.T) {
	r := NewCapRegs(0x1000)
	if !r.PCC().Tag || !r.DDC().Tag || !r.KCC().Tag || !r.KDC().Tag || !r.EPCC().Tag || !r.ErrorEPCC().Tag {
		t.Fatal("expected PCC/DDC/KCC/KDC/EPCC/ErrorEPCC to reset tagged")
	}
	if r.ReadOrNull(5).Tag {
		t.Fatal("expected general registers to reset untagged")
	}
}

func TestRegisterZeroAccessorSplit(t *testing.T) {
	r := NewCapRegs(0)
	ddc := cap.MaxPermissionsCapability(0x42)
	r.SetDDC(ddc)

	if got := r.ReadOrNull(0); got.Tag {
		t.Fatal("ReadOrNull(0) must always be the null capability")
	}
	if got := r.ReadOrDDC(0); got.Cursor != ddc.Cursor || !got.Tag {
		t.Fatal("ReadOrDDC(0) must alias DDC")
	}

	r.Write(0, cap.MaxPermissionsCapability(0x99))
	if got := r.ReadOrNull(0); got.Tag {
		t.Fatal("writes to register 0 must never become observable via ReadOrNull")
	}
}

func TestWriteNonzeroRegisterIsObservable(t *testing.T) {
	r := NewCapRegs(0)
	c := cap.MaxPermissionsCapability(0x10)
	r.Write(3, c)
	if got := r.ReadOrNull(3); got.Cursor != c.Cursor {
		t.Fatal("expected write to register 3 to be observable")
	}
}

func TestHwrAccessControl(t *testing.T) {
	r := NewCapRegs(0)
	pccNoSysRegs := cap.Capability{Tag: true, Perms: cap.PermLoad}
	pccSysRegs := cap.Capability{Tag: true, Perms: cap.PermAccessSysRegs}

	if _, trap := r.ReadHwr(HwrDDC, false, pccNoSysRegs); trap != nil {
		t.Fatalf("DDC should always be accessible, got %v", trap)
	}
	if _, trap := r.ReadHwr(HwrKCC, true, pccNoSysRegs); trap == nil || trap.Kind != except.KindAccessSysRegs {
		t.Fatalf("KCC without ACCESS_SYS_REGS should fault, got %v", trap)
	}
	if _, trap := r.ReadHwr(HwrKCC, false, pccSysRegs); trap == nil || trap.Kind != except.KindAccessSysRegs {
		t.Fatalf("KCC outside kernel mode should fault, got %v", trap)
	}
	if _, trap := r.ReadHwr(HwrKCC, true, pccSysRegs); trap != nil {
		t.Fatalf("KCC with kernel mode and ACCESS_SYS_REGS should succeed, got %v", trap)
	}
	if _, trap := r.ReadHwr(999, true, pccSysRegs); trap == nil || trap.Kind != except.KindRI {
		t.Fatalf("unknown HWR index should raise RI, got %v", trap)
	}
}

func TestClearReg(t *testing.T) {
	r := NewCapRegs(0)
	r.SetDDC(cap.MaxPermissionsCapability(0))
	r.Write(1, cap.MaxPermissionsCapability(0))
	r.Write(2, cap.MaxPermissionsCapability(0))

	r.ClearReg(1 | 1<<1) // clear DDC and general register 1, leave 2
	if r.DDC().Tag {
		t.Fatal("expected DDC cleared")
	}
	if r.ReadOrNull(1).Tag {
		t.Fatal("expected register 1 cleared")
	}
	if !r.ReadOrNull(2).Tag {
		t.Fatal("expected register 2 untouched")
	}
}
