package interlock

import "testing"

// TestPredicateLaw asserts the boolean expression and the literal truth
// table agree on all 16 inputs, per spec.md §8 "Predicate law".
func TestPredicateLaw(t *testing.T) {
	for b3 := 0; b3 < 2; b3++ {
		for b2 := 0; b2 < 2; b2++ {
			for b1 := 0; b1 < 2; b1++ {
				for b0 := 0; b0 < 2; b0++ {
					locked := b0 == 1
					needsFW := b2 == 1
					ownsOrFree := b1 == 1
					allowedWhenLocked := b3 == 1

					expr := Permit(locked, needsFW, ownsOrFree, allowedWhenLocked)
					table := PermitTable(locked, needsFW, ownsOrFree, allowedWhenLocked)
					if expr != table {
						t.Errorf("b3=%d b2=%d b1=%d b0=%d: expr=%v table=%v", b3, b2, b1, b0, expr, table)
					}
				}
			}
		}
	}
}

// TestPredicateExactRows pins down the 16 rows from spec.md §4.2 verbatim
// so a future edit to either representation trips a test immediately.
func TestPredicateExactRows(t *testing.T) {
	type row struct {
		b3, b2, b1, b0 bool
		want           bool
	}
	rows := []row{
		{false, false, false, false, true},
		{false, false, false, true, false},
		{false, false, true, false, true},
		{false, false, true, true, false},
		{false, true, false, false, false},
		{false, true, false, true, false},
		{false, true, true, false, true},
		{false, true, true, true, false},
		{true, false, false, false, true},
		{true, false, false, true, true},
		{true, false, true, false, true},
		{true, false, true, true, true},
		{true, true, false, false, false},
		{true, true, false, true, false},
		{true, true, true, false, true},
		{true, true, true, true, true},
	}
	for _, r := range rows {
		got := Permit(r.b0, r.b2, r.b1, r.b3)
		if got != r.want {
			t.Errorf("Permit(locked=%v,needsFW=%v,ownsOrFree=%v,allowed=%v) = %v, want %v",
				r.b0, r.b2, r.b1, r.b3, got, r.want)
		}
	}
}
