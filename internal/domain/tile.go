package domain

import (
	"fmt"
	"sort"
)

const (
	// MaxPip is the highest pip value in a double-six set.
	MaxPip = 6
	// TileSetSize is the number of tiles in a full double-six set.
	TileSetSize = 28
)

// Tile is a single domino bone. Left <= Right always holds for the canonical
// set; orientation on the board is tracked by PlacedTile, not here.
// ID is stable: tiles are numbered 0..27 in ascending (Left, Right) order,
// so the same id refers to the same bone in every match.
type Tile struct {
	ID    int `json:"id"`
	Left  int `json:"left"`
	Right int `json:"right"`
}

// NewTileSet returns the full double-six set in canonical order.
// The index of each tile equals its ID.
func NewTileSet() []Tile {
	tiles := make([]Tile, 0, TileSetSize)
	id := 0
	for l := 0; l <= MaxPip; l++ {
		for r := l; r <= MaxPip; r++ {
			tiles = append(tiles, Tile{ID: id, Left: l, Right: r})
			id++
		}
	}
	return tiles
}

// IsDouble reports whether both halves carry the same pip value.
func (t Tile) IsDouble() bool {
	return t.Left == t.Right
}

// PipSum returns the combined pip count of both halves.
func (t Tile) PipSum() int {
	return t.Left + t.Right
}

// HasPip reports whether either half shows the given pip value.
func (t Tile) HasPip(pip int) bool {
	return t.Left == pip || t.Right == pip
}

// OtherPip returns the pip on the half opposite to the given one.
// For a double it is the same value.
func (t Tile) OtherPip(pip int) int {
	if t.Left == pip {
		return t.Right
	}
	return t.Left
}

func (t Tile) String() string {
	return fmt.Sprintf("%d-%d", t.Left, t.Right)
}

// SortTiles orders tiles by ascending id, the canonical hand order used by
// move generation.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].ID < tiles[j].ID })
}

// RemoveTile removes one occurrence of the tile with the given id and
// returns the updated slice. The input is not mutated.
func RemoveTile(tiles []Tile, id int) []Tile {
	out := make([]Tile, 0, len(tiles))
	removed := false
	for _, t := range tiles {
		if !removed && t.ID == id {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}

// ContainsTile reports whether a tile with the given id is present.
func ContainsTile(tiles []Tile, id int) bool {
	for _, t := range tiles {
		if t.ID == id {
			return true
		}
	}
	return false
}

// PipCount sums the pips across all tiles, used for round-end scoring.
func PipCount(tiles []Tile) int {
	total := 0
	for _, t := range tiles {
		total += t.PipSum()
	}
	return total
}

// HighestDouble returns the highest double in the given tiles and whether
// one exists at all.
func HighestDouble(tiles []Tile) (Tile, bool) {
	best := Tile{ID: -1}
	found := false
	for _, t := range tiles {
		if t.IsDouble() && (!found || t.Left > best.Left) {
			best = t
			found = true
		}
	}
	return best, found
}
