package replay

import (
	"encoding/json"
	"fmt"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

// Reconstruct rebuilds the match state after the first n recorded moves
// have been applied. n=0 returns the starting state; n=len(rec.Moves)
// returns the final state. The rebuilt starting state is verified against
// the record's initial checkpoint before any move replays.
func Reconstruct(rec *Record, n int) (*domain.Match, error) {
	if n < 0 || n > len(rec.Moves) {
		return nil, fmt.Errorf("%w: move index %d out of range [0,%d]", ErrCorruptReplay, n, len(rec.Moves))
	}

	m, err := domain.RestoreMatch(rec.Initial)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptReplay, err)
	}
	if err := compareSnapshots(rec.Initial, m.Snapshot()); err != nil {
		return nil, err
	}

	// Departures interleave with the move stream at their recorded
	// indices: a player logged out after k moves leaves rotation before
	// move k replays.
	next := 0
	leave := func(applied int) error {
		for next < len(rec.Deactivations) && rec.Deactivations[next].MoveIndex <= applied {
			d := rec.Deactivations[next]
			if err := m.Deactivate(d.UserID); err != nil {
				return fmt.Errorf("%w: departure of %s after move %d: %v", ErrCorruptReplay, d.UserID, d.MoveIndex, err)
			}
			next++
		}
		return nil
	}

	for i := 0; i < n; i++ {
		if err := leave(i); err != nil {
			return nil, err
		}
		if err := m.ApplyMove(rec.Moves[i].Move); err != nil {
			return nil, fmt.Errorf("%w: move %d (%s): %v", ErrCorruptReplay, i, rec.Moves[i].Move.Kind, err)
		}
	}
	if err := leave(n); err != nil {
		return nil, err
	}
	return m, nil
}

// Verify replays the whole record and checks the result against the
// final checkpoint, when one was stored.
func Verify(rec *Record) error {
	m, err := Reconstruct(rec, len(rec.Moves))
	if err != nil {
		return err
	}
	if rec.Final == nil {
		return nil
	}
	return compareSnapshots(*rec.Final, m.Snapshot())
}

// compareSnapshots checks two states for bit-identical reconstruction by
// comparing their canonical JSON forms.
func compareSnapshots(want, got domain.Snapshot) error {
	wantJSON, err := json.Marshal(want)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptReplay, err)
	}
	gotJSON, err := json.Marshal(got)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptReplay, err)
	}
	if string(wantJSON) != string(gotJSON) {
		return fmt.Errorf("%w: round %d phase %s", ErrCorruptReplay, got.Round, got.Phase)
	}
	return nil
}
