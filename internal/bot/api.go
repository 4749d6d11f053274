package bot

import (
	"math/rand"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

// Brain is the interface all AI strategies implement. SelectMove picks
// from the pre-generated legal moves; ok=false signals the caller must
// draw or pass instead. Given the same match state, candidate list and
// RNG state, SelectMove returns the same move every call.
type Brain interface {
	SelectMove(m *domain.Match, seat int, valid []domain.Move, rng *rand.Rand) (domain.Move, bool)
}
