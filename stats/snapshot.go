package stats

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// SNAPSHOT_MAGIC identifies a stats snapshot file: a fixed four-byte tag
// checked before the rest of the frame is trusted.
var SNAPSHOT_MAGIC = "CHST"

// snapshotHeader is packed with struc: a fixed magic, a version for
// forward compatibility, and the frame's counter and histogram layout
// packed immediately after as a snappy-compressed stream.
type snapshotHeader struct {
	Magic   string `struc:"[4]byte"`
	Version uint32
}

// Snapshot is a point-in-time copy of a hart's statistics, bundling the
// scalar counters with the four bounds histograms so one call captures
// the full statistics surface in one frame.
type Snapshot struct {
	Counters  Counters
	Histogram BoundsHistogram
}

// Write packs the snapshot as a struc-framed header followed by a
// snappy-compressed struc-packed body.
func (s *Snapshot) Write(w io.WriteCloser) error {
	header := &snapshotHeader{Magic: SNAPSHOT_MAGIC, Version: 1}
	if err := struc.Pack(w, header); err != nil {
		return errors.Wrap(err, "failed to pack snapshot header")
	}
	zw := snappy.NewBufferedWriter(w)
	opts := &struc.Options{Order: binary.LittleEndian}
	if err := struc.PackWithOptions(zw, &s.Counters, opts); err != nil {
		return errors.Wrap(err, "failed to pack counters")
	}
	if err := struc.PackWithOptions(zw, &s.Histogram, opts); err != nil {
		return errors.Wrap(err, "failed to pack histogram")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "failed to close snappy writer")
	}
	return nil
}

// ReadSnapshot reverses Write, validating the magic before trusting the
// compressed body.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var header snapshotHeader
	if err := struc.Unpack(r, &header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack snapshot header")
	}
	if header.Magic != SNAPSHOT_MAGIC {
		return nil, errors.New("invalid stats snapshot magic")
	}
	zr := snappy.NewReader(r)
	opts := &struc.Options{Order: binary.LittleEndian}
	var s Snapshot
	if err := struc.UnpackWithOptions(zr, &s.Counters, opts); err != nil {
		return nil, errors.Wrap(err, "failed to unpack counters")
	}
	if err := struc.UnpackWithOptions(zr, &s.Histogram, opts); err != nil {
		return nil, errors.Wrap(err, "failed to unpack histogram")
	}
	return &s, nil
}
