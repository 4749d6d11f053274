package ports

import (
	"context"

	"github.com/Paulmait/dominauts-sub001/internal/replay"
)

// MatchRecord is the persisted summary of a finished match, replay
// included.
type MatchRecord struct {
	MatchID      string         `json:"matchId"`
	Variant      string         `json:"variant"`
	Players      []string       `json:"players"`
	WinnerUserID string         `json:"winnerUserId"`
	Scores       map[string]int `json:"scores"`
	Replay       *replay.Record `json:"replay"`
	CreatedAt    int64          `json:"createdAt"`
	UpdatedAt    int64          `json:"updatedAt"`
}

// StoragePort defines the interface for persisting finished matches.
type StoragePort interface {
	// SaveMatchRecord stores the record under its match id.
	SaveMatchRecord(ctx context.Context, rec MatchRecord) error

	// LoadMatchRecord retrieves a stored record by match id.
	LoadMatchRecord(ctx context.Context, matchID string) (*MatchRecord, error)
}
