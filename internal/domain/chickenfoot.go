package domain

// chickenFootRules: the round opens on the highest double dealt to any
// hand, and every double played sprouts a chicken foot that must collect
// three tiles before any other end is playable. The opening double offers
// a fourth slot that stays playable after the foot completes. A stuck
// player draws once, then passes.
type chickenFootRules struct {
	baseRules
}

func (chickenFootRules) Variant() Variant { return VariantChickenFoot }

func (chickenFootRules) Drawing() DrawPolicy { return DrawOne }

func (chickenFootRules) BoardRules() BoardRules {
	return BoardRules{
		DoubleSpawns:  3,
		DoubleFeet:    3,
		OpeningSpawns: 4,
		OpeningFeet:   3,
	}
}

// IsLegalFirst demands the highest double in play as the opener. When no
// hand was dealt a double the opening is unrestricted.
func (chickenFootRules) IsLegalFirst(m *Match, seat int, t Tile) bool {
	required, ok := m.highestDealtDouble()
	if !ok {
		return true
	}
	return t.ID == required.ID
}
