package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/Paulmait/dominauts-sub001/internal/ports"
)

const replayCollection = "replays"

// NakamaStorageAdapter implements ports.StoragePort on Nakama's storage
// engine. Records are system-owned so any participant can fetch them by
// match id through the replay RPCs.
type NakamaStorageAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStorageAdapter creates a new storage adapter.
func NewNakamaStorageAdapter(nk runtime.NakamaModule) *NakamaStorageAdapter {
	return &NakamaStorageAdapter{
		nk: nk,
	}
}

// SaveMatchRecord stores the record under its match id.
func (a *NakamaStorageAdapter) SaveMatchRecord(ctx context.Context, rec ports.MatchRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      replayCollection,
		Key:             rec.MatchID,
		Value:           string(value),
		PermissionRead:  2, // public read
		PermissionWrite: 0, // server only
	}})
	if err != nil {
		return fmt.Errorf("failed to write match record %s: %w", rec.MatchID, err)
	}
	return nil
}

// LoadMatchRecord retrieves a stored record by match id.
func (a *NakamaStorageAdapter) LoadMatchRecord(ctx context.Context, matchID string) (*ports.MatchRecord, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: replayCollection,
		Key:        matchID,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to read match record %s: %w", matchID, err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no record for match %s", matchID)
	}

	var rec ports.MatchRecord
	if err := json.Unmarshal([]byte(objects[0].Value), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match record %s: %w", matchID, err)
	}
	return &rec, nil
}
