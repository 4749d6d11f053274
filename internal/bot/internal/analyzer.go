package internal

import "github.com/Paulmait/dominauts-sub001/internal/domain"

// UnseenTiles returns the tiles the seat cannot account for: the full set
// minus the board and the seat's own hand. From this player's view the
// boneyard and the opponents' hands are indistinguishable.
func UnseenTiles(m *domain.Match, seat int) []domain.Tile {
	seen := make(map[int]bool, domain.TileSetSize)
	for _, t := range m.Board.UsedTiles() {
		seen[t.ID] = true
	}
	if p := m.PlayerAtSeat(seat); p != nil {
		for _, t := range p.Hand {
			seen[t.ID] = true
		}
	}

	var unseen []domain.Tile
	for _, t := range domain.NewTileSet() {
		if !seen[t.ID] {
			unseen = append(unseen, t)
		}
	}
	return unseen
}

// CountMatching returns how many of the given tiles can connect to the
// pip value.
func CountMatching(tiles []domain.Tile, pip int) int {
	n := 0
	for _, t := range tiles {
		if t.HasPip(pip) {
			n++
		}
	}
	return n
}

// Connections returns how many tiles in the hand share a pip with t,
// excluding t itself. A tile with many connections is worth keeping; one
// with few is a safe discard.
func Connections(hand []domain.Tile, t domain.Tile) int {
	n := 0
	for _, h := range hand {
		if h.ID == t.ID {
			continue
		}
		if h.HasPip(t.Left) || h.HasPip(t.Right) {
			n++
		}
	}
	return n
}
