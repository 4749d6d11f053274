package domain

// mexicanTrainRules: every seat owns a personal train rooted on the
// opening tile, alongside one communal train anyone may extend. A
// personal train accepts its owner always, and other players only while
// marked open; the match opens a train when its owner is forced to pass
// and closes it again when the owner next plays on it. A double must be
// covered before any other branch is playable. Round end and scoring
// mirror Block.
type mexicanTrainRules struct {
	baseRules
}

func (mexicanTrainRules) Variant() Variant { return VariantMexicanTrain }

func (mexicanTrainRules) Drawing() DrawPolicy { return DrawOne }

func (mexicanTrainRules) BoardRules() BoardRules {
	return BoardRules{PersonalTrains: true, CoverDouble: true}
}

func (r mexicanTrainRules) IsLegalMove(m *Match, seat int, t Tile, branch BranchID, end int) bool {
	if !r.baseRules.IsLegalMove(m, seat, t, branch, end) {
		return false
	}
	b := m.Board.Branch(branch)
	return b.OpenToAll || b.OwnerSeat == seat || b.Opened
}
