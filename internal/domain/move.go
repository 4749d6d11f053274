package domain

// MoveKind discriminates the three actions a turn may contain.
type MoveKind string

const (
	MovePlace MoveKind = "place"
	MoveDraw  MoveKind = "draw"
	MovePass  MoveKind = "pass"
)

// Move is one entry of the append-only match history. Tile is nil for a
// pass; for a draw it is filled in during application with the tile that
// came off the boneyard. Branch/End only apply to placements; the opening
// placement of a round uses BranchAny/AnyEnd.
type Move struct {
	Kind       MoveKind `json:"kind"`
	PlayerID   string   `json:"player_id"`
	Tile       *Tile    `json:"tile,omitempty"`
	Branch     BranchID `json:"branch"`
	End        int      `json:"end"`
	ScoreDelta int      `json:"score_delta"`
	UnixMs     int64    `json:"unix_ms"`
}

// PlaceMove builds a placement move.
func PlaceMove(playerID string, t Tile, branch BranchID, end int) Move {
	tile := t
	return Move{Kind: MovePlace, PlayerID: playerID, Tile: &tile, Branch: branch, End: end}
}

// DrawMove builds a draw move. The drawn tile is recorded on application.
func DrawMove(playerID string) Move {
	return Move{Kind: MoveDraw, PlayerID: playerID}
}

// PassMove builds a pass move.
func PassMove(playerID string) Move {
	return Move{Kind: MovePass, PlayerID: playerID}
}
