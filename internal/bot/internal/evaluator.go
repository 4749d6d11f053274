package internal

import "github.com/Paulmait/dominauts-sub001/internal/domain"

// Weights tune the heuristic move evaluation for one variant.
type Weights struct {
	// ScoreYield multiplies the immediate points the placement earns.
	ScoreYield float64
	// Retention penalizes discarding tiles that connect to many of the
	// player's remaining tiles.
	Retention float64
	// DoubleBias is added when the placed tile is a double. Sign is
	// variant-dependent: positive sheds doubles early, negative holds
	// them back.
	DoubleBias float64
	// BlockPotential penalizes leaving an end many unseen tiles can
	// connect to. Fewer continuations for the table is better defense.
	BlockPotential float64
}

// ScoredMove pairs a candidate with its heuristic score.
type ScoredMove struct {
	Move  domain.Move
	Score float64
}

// ScoreMoves evaluates each candidate against the current match state.
// The input order (the generator's deterministic order) is preserved.
func ScoreMoves(m *domain.Match, seat int, moves []domain.Move, w Weights) []ScoredMove {
	p := m.PlayerAtSeat(seat)
	if p == nil {
		return nil
	}
	unseen := UnseenTiles(m, seat)

	scored := make([]ScoredMove, 0, len(moves))
	for _, mv := range moves {
		scored = append(scored, ScoredMove{Move: mv, Score: scoreMove(m, p, mv, unseen, w)})
	}
	return scored
}

func scoreMove(m *domain.Match, p *domain.Player, mv domain.Move, unseen []domain.Tile, w Weights) float64 {
	t := *mv.Tile
	score := 0.0

	if yield, err := m.PreviewPlace(mv); err == nil {
		score += w.ScoreYield * float64(yield)
	}

	remaining := domain.RemoveTile(p.Hand, t.ID)
	score -= w.Retention * float64(Connections(remaining, t))

	if t.IsDouble() {
		score += w.DoubleBias
	}

	score -= w.BlockPotential * float64(CountMatching(unseen, exposedPip(t, mv)))

	return score
}

// exposedPip is the pip value the placement leaves open.
func exposedPip(t domain.Tile, mv domain.Move) int {
	if mv.End == domain.AnyEnd {
		// Opening placement: both halves open; judge by the higher pip,
		// the harder one for the table to answer.
		if t.Left > t.Right {
			return t.Left
		}
		return t.Right
	}
	return t.OtherPip(mv.End)
}
