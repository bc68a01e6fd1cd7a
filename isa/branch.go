package isa

import "github.com/cherigo/cp2/cap"

// Bez implements CBEZ: branch if cb is the null-capability sentinel.
func Bez(cb cap.Capability) bool { return cb.IsNullSentinel() }

// Bnz implements CBNZ: branch if cb is NOT the null-capability sentinel,
// the logical negation of Bez.
func Bnz(cb cap.Capability) bool { return !cb.IsNullSentinel() }

// Bts implements CBTS: branch if cb's tag is set.
func Bts(cb cap.Capability) bool { return cb.Tag }

// Btu implements CBTU: branch if cb's tag is unset.
func Btu(cb cap.Capability) bool { return !cb.Tag }
