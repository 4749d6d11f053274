package domain

// ValidMoves enumerates every legal placement for the seat under the
// active rule set. Ordering is deterministic (ascending tile id, then
// branch id, then end value), which replay and seeded AI selection both
// rely on. An empty result means the player must draw or pass.
func (m *Match) ValidMoves(seat int) []Move {
	p := m.PlayerAtSeat(seat)
	if p == nil || m.Phase != PhasePlaying {
		return nil
	}

	hand := append([]Tile(nil), p.Hand...)
	SortTiles(hand)

	var moves []Move
	if m.Board.Empty() {
		for _, t := range hand {
			if m.rules.IsLegalFirst(m, seat, t) {
				moves = append(moves, PlaceMove(p.UserID, t, BranchAny, AnyEnd))
			}
		}
		return moves
	}

	for _, t := range hand {
		for _, b := range m.Board.Branches {
			for _, end := range b.OpenPips() {
				if m.rules.IsLegalMove(m, seat, t, b.ID, end) {
					moves = append(moves, PlaceMove(p.UserID, t, b.ID, end))
				}
			}
		}
	}
	return moves
}

// HasLegalPlacement is the early-exit form of ValidMoves.
func (m *Match) HasLegalPlacement(seat int) bool {
	p := m.PlayerAtSeat(seat)
	if p == nil || m.Phase != PhasePlaying {
		return false
	}
	if m.Board.Empty() {
		for _, t := range p.Hand {
			if m.rules.IsLegalFirst(m, seat, t) {
				return true
			}
		}
		return false
	}
	for _, t := range p.Hand {
		for _, b := range m.Board.Branches {
			for _, end := range b.OpenPips() {
				if m.rules.IsLegalMove(m, seat, t, b.ID, end) {
					return true
				}
			}
		}
	}
	return false
}
