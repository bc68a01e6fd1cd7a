package isa

import "github.com/cherigo/cp2/cap"

// order returns -1, 0, 1 comparing a and b by cursor, treating an untagged
// operand as less than a tagged one when tags differ. Cursors are compared
// unsigned; Eq/Ne and the unsigned orderings Ltu/Leu use it.
func order(a, b cap.Capability) int {
	if a.Tag != b.Tag {
		if !a.Tag {
			return -1
		}
		return 1
	}
	switch {
	case a.Cursor < b.Cursor:
		return -1
	case a.Cursor > b.Cursor:
		return 1
	default:
		return 0
	}
}

// orderSigned is order's signed-cursor counterpart, for CLT/CLE: the
// cross-tag rule still decides when tags differ, but a tag-equal
// comparison casts the cursor to int64 first, so a cursor with its sign
// bit set (e.g. 0x8000000000000000) sorts below a cursor like
// 0x7fffffffffffffff despite being the larger unsigned value.
func orderSigned(a, b cap.Capability) int {
	if a.Tag != b.Tag {
		if !a.Tag {
			return -1
		}
		return 1
	}
	ac, bc := int64(a.Cursor), int64(b.Cursor)
	switch {
	case ac < bc:
		return -1
	case ac > bc:
		return 1
	default:
		return 0
	}
}

// Eq implements CEQ: equal tags and equal cursors; no other field is
// compared (CExEq compares every field).
func Eq(a, b cap.Capability) bool { return order(a, b) == 0 }

// Ne implements CNE.
func Ne(a, b cap.Capability) bool { return !Eq(a, b) }

// Lt implements CLT (signed ordering by cursor with the cross-tag rule).
func Lt(a, b cap.Capability) bool { return orderSigned(a, b) < 0 }

// Le implements CLE.
func Le(a, b cap.Capability) bool { return orderSigned(a, b) <= 0 }

// Ltu implements CLTU: unsigned ordering by cursor with the cross-tag
// rule, diverging from Lt for any cursor pair straddling the int64 sign
// boundary.
func Ltu(a, b cap.Capability) bool { return order(a, b) < 0 }

// Leu implements CLEU.
func Leu(a, b cap.Capability) bool { return order(a, b) <= 0 }

// fieldsEqual reports whether a and b agree on every architecturally
// meaningful field, the predicate CExEq uses.
func fieldsEqual(a, b cap.Capability) bool {
	return a.Tag == b.Tag &&
		a.Base == b.Base &&
		a.Top == b.Top &&
		a.TopMax == b.TopMax &&
		a.Cursor == b.Cursor &&
		a.Perms == b.Perms &&
		a.UPerms == b.UPerms &&
		a.Otype == b.Otype
}

// Exeq implements CEXEQ: exact field-by-field equality.
func Exeq(a, b cap.Capability) bool { return fieldsEqual(a, b) }

// Nexeq implements CNEXEQ.
func Nexeq(a, b cap.Capability) bool { return !fieldsEqual(a, b) }

// TestSubset implements CTestSubset by delegating to cap.Capability's own
// TestSubset predicate (same tag, bounds containment, perms containment).
func TestSubset(a, b cap.Capability) bool { return a.TestSubset(b) }
