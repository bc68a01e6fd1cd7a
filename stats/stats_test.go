package stats

import (
	"bytes"
	"io"
	"testing"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestCountersRecordHelpers(t *testing.T) {
	var c Counters
	c.RecordCapRead(true)
	c.RecordCapRead(false)
	c.RecordCapWrite(true)
	c.RecordInstruction(true)
	c.RecordInstruction(false)

	if c.CapRead != 2 || c.CapReadTagged != 1 {
		t.Fatalf("got CapRead=%d CapReadTagged=%d", c.CapRead, c.CapReadTagged)
	}
	if c.CapWrite != 1 || c.CapWriteTagged != 1 {
		t.Fatalf("got CapWrite=%d CapWriteTagged=%d", c.CapWrite, c.CapWriteTagged)
	}
	if c.ICount != 2 || c.ICountKernel != 1 || c.ICountUser != 1 {
		t.Fatalf("got ICount=%d ICountKernel=%d ICountUser=%d", c.ICount, c.ICountKernel, c.ICountUser)
	}
}

func TestBoundsHistogramBucketing(t *testing.T) {
	var h BoundsHistogram
	h.RecordIncOffset(5, 0x1000)  // in bounds, bucket 0
	h.RecordIncOffset(0x1000, 0x1000) // 1 past top, bucket 0
	h.RecordIncOffset(0x2000, 0x1000) // far past top, higher bucket

	if h.IncOffset[0] != 2 {
		t.Fatalf("expected 2 in-bounds/near-bounds hits in bucket 0, got %d (%v)", h.IncOffset[0], h.IncOffset)
	}
	total := uint64(0)
	for _, v := range h.IncOffset {
		total += v
	}
	if total != 3 {
		t.Fatalf("expected 3 total recordings, got %d", total)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	var s Snapshot
	s.Counters.CapRead = 42
	s.Counters.UnrepresentableCaps = 7
	s.Histogram.RecordFromPtr(0x50000, 0x1000)

	buf := &bytes.Buffer{}
	if err := s.Write(nopCloser{buf}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := ReadSnapshot(io.Reader(buf))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Counters.CapRead != 42 || got.Counters.UnrepresentableCaps != 7 {
		t.Fatalf("counters mismatch: %+v", got.Counters)
	}
	var total uint64
	for _, v := range got.Histogram.FromPtr {
		total += v
	}
	if total != 1 {
		t.Fatalf("expected one FromPtr histogram entry, got %d", total)
	}
}
