// Package interlock implements the Interlock Predicate (spec.md §4.2) and
// the Interlock State (spec.md §3) that the tick loop consults and
// mutates every tick.
package interlock

// Permit is the pure admission predicate. Inputs, per spec.md §4.2:
//
//	allowedWhenLocked = kind ∈ ALLOWED_WHEN_LOCKED   (b3)
//	needsFW           = kind ∈ NEEDS_FW              (b2)
//	ownsOrFree        = this process owns fw OR no one does (b1)
//	locked            = system is emergency-locked   (b0)
//
// The 16-row truth table in spec.md §4.2 is authoritative; this is the
// equivalent boolean expression the spec offers as an optional
// replacement: permit = (¬locked ∨ allowedWhenLocked) ∧ (¬needsFW ∨ ownsOrFree).
func Permit(locked, needsFW, ownsOrFree, allowedWhenLocked bool) bool {
	return (!locked || allowedWhenLocked) && (!needsFW || ownsOrFree)
}

// Table is the 16-row truth table from spec.md §4.2, indexed
// [b3][b2][b1][b0], kept verbatim alongside the boolean expression so the
// two can be tested against each other (spec.md §9's design note: "expose
// both the table and the equivalent boolean expression").
var Table = [2][2][2][2]bool{
	// b3=0 (not allowed-when-locked)
	0: {
		// b2=0 (doesn't need firmware)
		0: {{true, false}, {true, false}}, // b1=0: {b0=0,b0=1}; b1=1: {b0=0,b0=1}
		// b2=1 (needs firmware)
		1: {{false, false}, {true, false}},
	},
	// b3=1 (allowed-when-locked)
	1: {
		0: {{true, true}, {true, true}},
		1: {{false, false}, {true, true}},
	},
}

// PermitTable looks up the same decision via the literal truth table
// instead of the boolean expression, for cross-checking in tests.
func PermitTable(locked, needsFW, ownsOrFree, allowedWhenLocked bool) bool {
	return Table[b2i(allowedWhenLocked)][b2i(needsFW)][b2i(ownsOrFree)][b2i(locked)]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
