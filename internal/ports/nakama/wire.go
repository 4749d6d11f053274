package nakama

import "github.com/Paulmait/dominauts-sub001/internal/domain"

// Client request payloads. All match messages are JSON.

type StartMatchRequest struct {
	Variant     string `json:"variant"`
	TargetScore int    `json:"target_score"`
}

type PlaceTileRequest struct {
	TileID int `json:"tile_id"`
	Branch int `json:"branch"`
	End    int `json:"end"`
}

// Server payloads not covered by app events.

type PlayerJoinedEvent struct {
	UserID  string `json:"user_id"`
	Seat    int    `json:"seat"`
	IsOwner bool   `json:"is_owner"`
}

type ValidMovesResponse struct {
	Moves []domain.Move `json:"moves"`
}

type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
