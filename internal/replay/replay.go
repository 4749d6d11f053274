// Package replay records matches as an initial snapshot plus an ordered
// move log, and reconstructs any intermediate state by replaying that log
// through the same rule sets and move application used live.
package replay

import (
	"errors"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

// ErrCorruptReplay means a reconstructed state diverged from a stored
// checkpoint. It is fatal for the replay only; the recorded log itself is
// preserved untouched.
var ErrCorruptReplay = errors.New("corrupt replay: reconstructed state diverged from checkpoint")

// RecordedMove is one log entry with the mover's thinking time.
type RecordedMove struct {
	Move       domain.Move `json:"move"`
	ThinkingMs int64       `json:"thinking_ms"`
}

// Deactivation marks a player leaving rotation mid-match. MoveIndex is
// how many moves had been applied when they left, so reconstruction can
// replay the departure at the same point and reproduce the rotation.
type Deactivation struct {
	MoveIndex int    `json:"move_index"`
	UserID    string `json:"user_id"`
}

// Stats are the aggregates finalized when recording stops.
type Stats struct {
	Moves         int     `json:"moves"`
	Places        int     `json:"places"`
	Draws         int     `json:"draws"`
	Passes        int     `json:"passes"`
	ScoringMoves  int     `json:"scoring_moves"`
	AvgThinkingMs float64 `json:"avg_thinking_ms"`
}

// Record is the complete, JSON-serializable replay of a match.
type Record struct {
	MatchID       string           `json:"match_id"`
	Variant       domain.Variant   `json:"variant"`
	Initial       domain.Snapshot  `json:"initial"`
	Moves         []RecordedMove   `json:"moves"`
	Deactivations []Deactivation   `json:"deactivations,omitempty"`
	Final         *domain.Snapshot `json:"final,omitempty"`
	Stats         Stats            `json:"stats"`
}

// Recorder accumulates a match's move stream next to the live match.
type Recorder struct {
	rec      Record
	finished bool
}

// NewRecorder starts recording from the match's starting snapshot, taken
// right after the first deal.
func NewRecorder(initial domain.Snapshot) *Recorder {
	return &Recorder{rec: Record{
		MatchID: initial.Config.MatchID,
		Variant: initial.Config.Variant,
		Initial: initial,
	}}
}

// Record appends an applied move and how long its author thought.
func (r *Recorder) Record(mv domain.Move, thinkingMs int64) {
	if r.finished {
		return
	}
	r.rec.Moves = append(r.rec.Moves, RecordedMove{Move: mv, ThinkingMs: thinkingMs})
}

// Deactivate logs a player leaving rotation after the moves recorded so
// far. Departures change whose turn comes next, so they are part of the
// stream a reconstruction must replay.
func (r *Recorder) Deactivate(userID string) {
	if r.finished {
		return
	}
	r.rec.Deactivations = append(r.rec.Deactivations, Deactivation{
		MoveIndex: len(r.rec.Moves),
		UserID:    userID,
	})
}

// Stop finalizes the record with the closing snapshot and aggregate
// statistics, and returns the completed record.
func (r *Recorder) Stop(final domain.Snapshot) *Record {
	if r.finished {
		return &r.rec
	}
	r.finished = true
	r.rec.Final = &final

	var thinking int64
	for _, rm := range r.rec.Moves {
		thinking += rm.ThinkingMs
		switch rm.Move.Kind {
		case domain.MovePlace:
			r.rec.Stats.Places++
			if rm.Move.ScoreDelta > 0 {
				r.rec.Stats.ScoringMoves++
			}
		case domain.MoveDraw:
			r.rec.Stats.Draws++
		case domain.MovePass:
			r.rec.Stats.Passes++
		}
	}
	r.rec.Stats.Moves = len(r.rec.Moves)
	if len(r.rec.Moves) > 0 {
		r.rec.Stats.AvgThinkingMs = float64(thinking) / float64(len(r.rec.Moves))
	}
	return &r.rec
}
