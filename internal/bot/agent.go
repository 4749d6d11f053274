package bot

import (
	"math/rand"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

// Agent is an autonomous AI player bound to a seat's identity. The RNG is
// the match's AI stream, shared by all agents of a match so decisions
// replay in order.
type Agent struct {
	UserID   string
	Kind     domain.PlayerKind
	Strategy Brain

	rng *rand.Rand
}

// NewAgent builds an agent for the given identity and difficulty.
func NewAgent(userID string, kind domain.PlayerKind, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(kind)
	if err != nil {
		return nil, err
	}
	return &Agent{UserID: userID, Kind: kind, Strategy: brain, rng: rng}, nil
}

// Play picks the agent's move on the given match state. ok=false means
// the agent has no placement and must draw or pass.
func (a *Agent) Play(m *domain.Match) (domain.Move, bool) {
	p := m.PlayerByID(a.UserID)
	if p == nil {
		return domain.Move{}, false
	}
	valid := m.ValidMoves(p.Seat)
	return a.Strategy.SelectMove(m, p.Seat, valid, a.rng)
}
