package bot

import (
	"fmt"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

// Noise probabilities per difficulty: the chance a decision ignores the
// heuristic and plays a random legal move.
const (
	easyNoise   = 0.50
	mediumNoise = 0.20
	hardNoise   = 0.05
)

// NewBrain creates the strategy for the given player kind.
func NewBrain(kind domain.PlayerKind) (Brain, error) {
	switch kind {
	case domain.PlayerBotEasy:
		return &HeuristicBot{Noise: easyNoise}, nil
	case domain.PlayerBotMedium:
		return &HeuristicBot{Noise: mediumNoise}, nil
	case domain.PlayerBotHard:
		return &HeuristicBot{Noise: hardNoise}, nil
	default:
		return nil, fmt.Errorf("no brain for player kind %q", kind)
	}
}
