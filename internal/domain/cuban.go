package domain

// cubanRules plays like Block but in fixed partnerships: seats 0 and 2
// against seats 1 and 3. Round awards are pooled per team, so the target
// check sums partner scores.
type cubanRules struct {
	baseRules
}

func (cubanRules) Variant() Variant { return VariantCuban }

func (cubanRules) TeamOf(seat int) int { return seat % 2 }

func (r cubanRules) RoundAward(m *Match, winnerSeat int) int {
	return cappedOpponentPips(m, winnerSeat, r.TeamOf)
}
