package market

// ═══════════════════════════════════════════════════════════════════════════════
// SYNC GATE
// ═══════════════════════════════════════════════════════════════════════════════
//
// The two venues mint a fresh contract every 15 minutes independently, and
// one can lag the other around the boundary. Trading against a desynced
// pair would hedge one window with a different window, so every trading
// decision is gated on this check.
//
// ═══════════════════════════════════════════════════════════════════════════════

// AreInSync reports whether the two venue titles refer to the same
// quarter-hour window. Exact match on start, end and meridiem; symmetric;
// false when either title carries no recognizable label.
func AreInSync(titleA, titleB string) bool {
	a, okA := ParseWindowLabel(titleA)
	b, okB := ParseWindowLabel(titleB)
	if !okA || !okB {
		return false
	}
	return a == b
}
