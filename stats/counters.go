// Package stats implements the hart's statistics surface: named counters
// plus per-operation bounds-deviation histograms, serialized with
// github.com/lunixbochs/struc framing compressed by github.com/golang/snappy.
package stats

// Counters holds the hart's named counters. The zero value is a valid,
// all-zero counter set: hart.Hart uses one per instance, and isa functions
// increment it through the optional observer hook (*Context.Stats). No
// instruction semantic depends on a Counters being attached to run
// correctly.
type Counters struct {
	ImpreciseSetBounds  uint64
	UnrepresentableCaps uint64
	CapRead             uint64
	CapReadTagged       uint64
	CapWrite            uint64
	CapWriteTagged      uint64
	ICount              uint64
	ICountKernel        uint64
	ICountUser          uint64
}

// RecordCapRead/RecordCapWrite are terse single-purpose counter methods
// rather than one generic Inc(name) dispatcher. Nothing in mem or isa calls
// them: capability loads and stores through mem.Access leave CapRead,
// CapReadTagged, CapWrite and CapWriteTagged unchanged.
func (c *Counters) RecordCapRead(tagged bool) {
	c.CapRead++
	if tagged {
		c.CapReadTagged++
	}
}

func (c *Counters) RecordCapWrite(tagged bool) {
	c.CapWrite++
	if tagged {
		c.CapWriteTagged++
	}
}

func (c *Counters) RecordInstruction(kernelMode bool) {
	c.ICount++
	if kernelMode {
		c.ICountKernel++
	} else {
		c.ICountUser++
	}
}
