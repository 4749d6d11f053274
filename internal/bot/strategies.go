package bot

import (
	"math/rand"

	botinternal "github.com/Paulmait/dominauts-sub001/internal/bot/internal"
	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

// HeuristicBot scores candidates with the variant's weights and plays the
// best one. Difficulty is a single noise draw per decision: with
// probability Noise the bot plays a uniformly random legal move instead.
// Everything flows from the supplied RNG, so a fixed seed reproduces the
// same choices.
type HeuristicBot struct {
	Noise float64
}

func (b *HeuristicBot) SelectMove(m *domain.Match, seat int, valid []domain.Move, rng *rand.Rand) (domain.Move, bool) {
	if len(valid) == 0 {
		return domain.Move{}, false
	}

	if rng.Float64() < b.Noise {
		return valid[rng.Intn(len(valid))], true
	}

	weights := TuningFor(m.Variant)
	scored := botinternal.ScoreMoves(m, seat, valid, weights)
	if len(scored) == 0 {
		return domain.Move{}, false
	}

	best := scored[0]
	for _, cand := range scored[1:] {
		if betterMove(cand, best) {
			best = cand
		}
	}
	return best.Move, true
}

// betterMove orders candidates by score, breaking ties deterministically
// on lowest tile id, then lowest end value.
func betterMove(a, b botinternal.ScoredMove) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Move.Tile.ID != b.Move.Tile.ID {
		return a.Move.Tile.ID < b.Move.Tile.ID
	}
	return a.Move.End < b.Move.End
}
