package app

import "github.com/Paulmait/dominauts-sub001/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventMatchStarted EventKind = "match_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventMoveApplied  EventKind = "move_applied"
	EventTileDrawn    EventKind = "tile_drawn"
	EventRoundEnded   EventKind = "round_ended"
	EventMatchEnded   EventKind = "match_ended"
	EventPlayerLeft   EventKind = "player_left"
	EventAIThinking   EventKind = "ai_thinking"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// SeatInfo is the public view of one seat.
type SeatInfo struct {
	UserID string            `json:"user_id"`
	Seat   int               `json:"seat"`
	Kind   domain.PlayerKind `json:"kind"`
}

type MatchStartedPayload struct {
	MatchID         string         `json:"match_id"`
	Variant         domain.Variant `json:"variant"`
	TargetScore     int            `json:"target_score"`
	Players         []SeatInfo     `json:"players"`
	FirstTurnUserID string         `json:"first_turn_user_id"`
}

type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Round  int           `json:"round"`
	Hand   []domain.Tile `json:"hand"`
}

// MoveAppliedPayload is broadcast after every accepted move. For draws
// the tile stays nil here; the drawer learns it via a targeted
// EventTileDrawn.
type MoveAppliedPayload struct {
	UserID         string          `json:"user_id"`
	Kind           domain.MoveKind `json:"kind"`
	Tile           *domain.Tile    `json:"tile,omitempty"`
	Branch         domain.BranchID `json:"branch"`
	End            int             `json:"end"`
	ScoreDelta     int             `json:"score_delta"`
	HandCount      int             `json:"hand_count"`
	BoneyardCount  int             `json:"boneyard_count"`
	NextTurnUserID string          `json:"next_turn_user_id"`
}

type TileDrawnPayload struct {
	UserID string      `json:"user_id"`
	Tile   domain.Tile `json:"tile"`
}

type RoundEndedPayload struct {
	Summary domain.RoundSummary `json:"summary"`
}

type MatchEndedPayload struct {
	WinnerUserID string         `json:"winner_user_id"`
	WinnerSeat   int            `json:"winner_seat"`
	Scores       map[string]int `json:"scores"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
}

type AIThinkingPayload struct {
	UserID string `json:"user_id"`
}
