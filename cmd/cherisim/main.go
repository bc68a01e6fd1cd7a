// Command cherisim boots a single hart, runs a handful of capability
// instructions against it, and prints the resulting register state —
// a smoke-test harness for the coprocessor core, not a real translator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cherigo/cp2/cap"
	"github.com/cherigo/cp2/encoding"
	"github.com/cherigo/cp2/encoding/compressed128"
	"github.com/cherigo/cp2/encoding/magic128"
	"github.com/cherigo/cp2/encoding/uncompressed256"
	"github.com/cherigo/cp2/hart"
	"github.com/cherigo/cp2/isa"
	"github.com/cherigo/cp2/mem"
)

var (
	codecName   = flag.String("codec", "uncompressed256", "wire encoding: compressed128, magic128, uncompressed256")
	pc          = flag.Uint64("pc", 0x400000, "initial PC / PCC cursor")
	unalignedOK = flag.Bool("unaligned-ok", false, "disable AdEL/AdES on misaligned integer load/store")
	help        = flag.Bool("help", false, "show usage")
)

func codecByName(name string) (encoding.Codec, error) {
	switch name {
	case "compressed128":
		return compressed128.Codec{}, nil
	case "magic128":
		return magic128.Codec{}, nil
	case "uncompressed256":
		return uncompressed256.Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

func main() {
	flag.Parse()
	if *help {
		fmt.Println("cherisim: smoke-test a CHERI-MIPS capability coprocessor core")
		printFlags()
		return
	}

	codec, err := codecByName(*codecName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cherisim:", err)
		os.Exit(1)
	}

	h := hart.New(*pc, codec, mem.NewSim(uint64(codec.Size())), hart.Config{UnalignedOK: *unalignedOK})
	ctx := h.Context()

	// Derive a bounded, sealed-entry capability from PCC and thread it
	// through a handful of instructions so the dump below shows every
	// register class moving: general caps, PCC, and the integer file.
	region, trap := ctx.SetBoundsExact(h.Cap.PCC(), 0x1000)
	if trap != nil {
		fmt.Fprintln(os.Stderr, "cherisim: setboundsexact failed:", trap)
		os.Exit(1)
	}
	h.Cap.Write(1, region)

	sentry, trap := isa.SealEntry(region)
	if trap != nil {
		fmt.Fprintln(os.Stderr, "cherisim: sealentry failed:", trap)
		os.Exit(1)
	}
	h.Cap.Write(2, sentry)

	target, link, trap := isa.Jalr(h.Cap.PCC(), sentry)
	if trap != nil {
		fmt.Fprintln(os.Stderr, "cherisim: jalr failed:", trap)
		os.Exit(1)
	}
	h.InstallPCC(target)
	h.Cap.Write(31, link)

	storeAddr := h.Cap.PCC().Base + 0x10
	if trap := h.Mem.StoreInt(h.Cap.PCC(), 1, storeAddr, 8, 0xdeadbeefcafef00d, h.Cap.PCC()); trap != nil {
		fmt.Fprintln(os.Stderr, "cherisim: store failed:", trap)
		os.Exit(1)
	}
	v, trap := h.Mem.LoadInt(h.Cap.PCC(), 1, storeAddr, 8, h.Cap.PCC())
	if trap != nil {
		fmt.Fprintln(os.Stderr, "cherisim: load failed:", trap)
		os.Exit(1)
	}
	h.Int.SetGPR(4, v)

	if trap := h.CheckPC(h.Cap.PCC().Cursor); trap != nil {
		fmt.Fprintln(os.Stderr, "cherisim: pc check failed:", trap)
		os.Exit(1)
	}

	dump(h)
}

func dump(h *hart.Hart) {
	fmt.Printf("pc       = %#016x\n", h.Int.PC())
	fmt.Printf("pcc      = %s\n", fmtCap(h.Cap.PCC()))
	fmt.Printf("ddc      = %s\n", fmtCap(h.Cap.DDC()))
	for i := 1; i <= 2; i++ {
		fmt.Printf("c%-6d = %s\n", i, fmtCap(h.Cap.ReadOrNull(i)))
	}
	fmt.Printf("c31      = %s\n", fmtCap(h.Cap.ReadOrNull(31)))
	fmt.Printf("gpr[4]   = %#016x\n", h.Int.GPR(4))
	fmt.Printf("icount   = %d (kernel=%d user=%d)\n", h.Stats.ICount, h.Stats.ICountKernel, h.Stats.ICountUser)
}

func fmtCap(c cap.Capability) string {
	if !c.Tag {
		return "<untagged>"
	}
	return fmt.Sprintf("tag=1 base=%#x top=%#x cursor=%#x perms=%#x sealed=%v",
		c.Base, c.Top, c.Cursor, c.Perms, c.Sealed())
}

// printFlags aligns each flag's name and default value into columns,
// sized to this command's flag set rather than wrapping at a fixed
// terminal width.
func printFlags() {
	var names, defs []string
	flag.VisitAll(func(f *flag.Flag) {
		names = append(names, f.Name)
		defs = append(defs, f.DefValue)
	})
	wname, wdef := 0, 0
	for i := range names {
		if len(names[i]) > wname {
			wname = len(names[i])
		}
		if len(defs[i]) > wdef {
			wdef = len(defs[i])
		}
	}
	i := 0
	flag.VisitAll(func(f *flag.Flag) {
		def := f.DefValue
		if def == "" {
			def = "-"
		}
		fmt.Printf("  -%-*s  %-*s  %s\n", wname, names[i], wdef, "("+def+")", f.Usage)
		i++
	})
}
