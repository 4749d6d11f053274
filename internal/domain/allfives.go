package domain

// allFivesRules scores during play: after each placement, if the open end
// values sum to a positive multiple of five, the mover is awarded that
// sum. A double at an end is counted on both faces it shows, including
// when the double is the very first tile of the round.
type allFivesRules struct {
	baseRules
}

func (allFivesRules) Variant() Variant { return VariantAllFives }

func (allFivesRules) Drawing() DrawPolicy { return DrawUntilPlayable }

func (allFivesRules) ScoreForMove(m *Match, mv Move) int {
	sum := m.Board.EndSum()
	if sum > 0 && sum%5 == 0 {
		return sum
	}
	return 0
}

// RoundAward keeps the pip-sum award but rounds it to the variant's
// five-point scoring grain, nearest multiple wins.
func (allFivesRules) RoundAward(m *Match, winnerSeat int) int {
	award := cappedOpponentPips(m, winnerSeat, func(seat int) int { return seat })
	return ((award + 2) / 5) * 5
}
