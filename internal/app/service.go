package app

import (
	"time"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
	"github.com/Paulmait/dominauts-sub001/internal/replay"
	"github.com/Paulmait/dominauts-sub001/internal/rng"
)

// Service wraps one live match: it applies use-cases on the domain
// engine, records every accepted move for replay, and translates state
// changes into dispatchable events.
type Service struct {
	Match    *domain.Match
	recorder *replay.Recorder
}

// StartMatch creates the match and returns the events announcing it.
// A zero seed is replaced with a fresh random one, so the config stored
// in the replay always reproduces the deal.
func StartMatch(cfg domain.MatchConfig) (*Service, []Event, error) {
	if cfg.Seed == 0 {
		seed, err := rng.NewSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		cfg.Seed = seed
	}

	m, err := domain.NewMatch(cfg)
	if err != nil {
		return nil, nil, err
	}
	s := &Service{
		Match:    m,
		recorder: replay.NewRecorder(m.Snapshot()),
	}

	events := make([]Event, 0, len(m.Players)+1)
	seats := make([]SeatInfo, 0, len(m.Players))
	for _, p := range m.Players {
		seats = append(seats, SeatInfo{UserID: p.UserID, Seat: p.Seat, Kind: p.Kind})
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: p.UserID, Round: m.Round, Hand: p.Hand},
			Recipients: []string{p.UserID},
		})
	}
	events = append(events, Event{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			MatchID:         m.ID,
			Variant:         m.Variant,
			TargetScore:     m.Target,
			Players:         seats,
			FirstTurnUserID: m.PlayerAtSeat(m.Turn).UserID,
		},
	})
	return s, events, nil
}

// ApplyMove validates and applies a move, records it with the author's
// thinking time, and emits the resulting events.
func (s *Service) ApplyMove(mv domain.Move, thinkingMs int64) ([]Event, error) {
	if mv.UnixMs == 0 {
		mv.UnixMs = time.Now().UnixMilli()
	}

	m := s.Match
	prevRound := m.Round
	prevSummary := m.LastRound

	if err := m.ApplyMove(mv); err != nil {
		return nil, err
	}

	// The history holds the move as applied: score delta filled in, and
	// the drawn tile resolved.
	applied := m.History[len(m.History)-1]
	s.recorder.Record(applied, thinkingMs)

	p := m.PlayerByID(applied.PlayerID)
	payload := MoveAppliedPayload{
		UserID:        applied.PlayerID,
		Kind:          applied.Kind,
		Branch:        applied.Branch,
		End:           applied.End,
		ScoreDelta:    applied.ScoreDelta,
		HandCount:     len(p.Hand),
		BoneyardCount: len(m.Boneyard),
	}
	if applied.Kind == domain.MovePlace {
		payload.Tile = applied.Tile
	}
	if m.Phase == domain.PhasePlaying {
		payload.NextTurnUserID = m.PlayerAtSeat(m.Turn).UserID
	}

	events := []Event{{Kind: EventMoveApplied, Payload: payload}}
	if applied.Kind == domain.MoveDraw && applied.Tile != nil {
		events = append(events, Event{
			Kind:       EventTileDrawn,
			Payload:    TileDrawnPayload{UserID: applied.PlayerID, Tile: *applied.Tile},
			Recipients: []string{applied.PlayerID},
		})
	}

	if m.LastRound != prevSummary && m.LastRound != nil {
		events = append(events, Event{
			Kind:    EventRoundEnded,
			Payload: RoundEndedPayload{Summary: *m.LastRound},
		})
	}

	switch {
	case m.Phase == domain.PhaseEnded:
		scores := make(map[string]int, len(m.Players))
		for _, pl := range m.Players {
			scores[pl.UserID] = pl.Score
		}
		events = append(events, Event{
			Kind: EventMatchEnded,
			Payload: MatchEndedPayload{
				WinnerUserID: m.PlayerAtSeat(m.WinnerSeat).UserID,
				WinnerSeat:   m.WinnerSeat,
				Scores:       scores,
			},
		})
	case m.Round != prevRound:
		for _, pl := range m.Players {
			if !pl.Active {
				continue
			}
			events = append(events, Event{
				Kind:       EventHandDealt,
				Payload:    HandDealtPayload{UserID: pl.UserID, Round: m.Round, Hand: pl.Hand},
				Recipients: []string{pl.UserID},
			})
		}
	}
	return events, nil
}

// ValidMoves lists the legal moves for the given player.
func (s *Service) ValidMoves(userID string) ([]domain.Move, error) {
	p := s.Match.PlayerByID(userID)
	if p == nil {
		return nil, domain.ErrUnknownPlayer
	}
	return s.Match.ValidMoves(p.Seat), nil
}

// Deactivate removes a player from rotation, keeping their hand for
// scoring, and announces the departure. The departure joins the replay
// log: it shifts the rotation, so reconstruction has to replay it too.
func (s *Service) Deactivate(userID string) ([]Event, error) {
	if err := s.Match.Deactivate(userID); err != nil {
		return nil, err
	}
	s.recorder.Deactivate(userID)
	return []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{UserID: userID},
	}}, nil
}

// Record finalizes and returns the match replay.
func (s *Service) Record() *replay.Record {
	return s.recorder.Stop(s.Match.Snapshot())
}
