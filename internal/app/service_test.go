package app

import (
	"errors"
	"testing"

	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

func tile(left, right int) domain.Tile {
	for _, t := range domain.NewTileSet() {
		if t.Left == left && t.Right == right {
			return t
		}
	}
	panic("no such tile")
}

func startTestMatch(t *testing.T, variant domain.Variant, target int) (*Service, []Event) {
	t.Helper()
	svc, events, err := StartMatch(domain.MatchConfig{
		MatchID:     "m-app-test",
		Variant:     variant,
		TargetScore: target,
		Seed:        42,
		Players: []domain.PlayerConfig{
			{UserID: "u1", Kind: domain.PlayerHuman},
			{UserID: "u2", Kind: domain.PlayerHuman},
		},
	})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	return svc, events
}

func TestStartMatchDealsHands(t *testing.T) {
	svc, events := startTestMatch(t, domain.VariantBlock, 100)

	handEvents := 0
	started := false
	for _, ev := range events {
		switch ev.Kind {
		case EventHandDealt:
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if len(payload.Hand) != 7 {
				t.Fatalf("hand size = %d, want 7", len(payload.Hand))
			}
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
				t.Fatalf("hand event must target its owner, got %v", ev.Recipients)
			}
		case EventMatchStarted:
			started = true
			payload := ev.Payload.(MatchStartedPayload)
			if len(ev.Recipients) != 0 {
				t.Fatalf("match start must broadcast")
			}
			want := svc.Match.PlayerAtSeat(svc.Match.Turn).UserID
			if payload.FirstTurnUserID != want {
				t.Fatalf("first turn = %s, want %s", payload.FirstTurnUserID, want)
			}
		}
	}
	if handEvents != 2 || !started {
		t.Fatalf("hand events = %d started = %t", handEvents, started)
	}
}

func TestStartMatchFillsMissingSeed(t *testing.T) {
	svc, _, err := StartMatch(domain.MatchConfig{
		MatchID:     "m-seedless",
		Variant:     domain.VariantBlock,
		TargetScore: 100,
		Players: []domain.PlayerConfig{
			{UserID: "u1", Kind: domain.PlayerHuman},
			{UserID: "u2", Kind: domain.PlayerHuman},
		},
	})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	if svc.Match.Config.Seed == 0 {
		t.Fatalf("seed was not generated")
	}
}

func TestApplyMoveEmitsMoveApplied(t *testing.T) {
	svc, _ := startTestMatch(t, domain.VariantBlock, 100)
	m := svc.Match
	m.Board = domain.NewBoard(domain.BoardRules{}, 2)
	m.Board.Place(tile(2, 3), domain.BranchAny, domain.AnyEnd, "u2")
	m.Players[0].Hand = []domain.Tile{tile(2, 4), tile(0, 0)}
	m.Turn = 0

	events, err := svc.ApplyMove(domain.PlaceMove("u1", tile(2, 4), 0, 2), 900)
	if err != nil {
		t.Fatalf("apply move: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventMoveApplied {
		t.Fatalf("events = %+v, want one move_applied", events)
	}
	payload := events[0].Payload.(MoveAppliedPayload)
	if payload.Tile == nil || payload.Tile.ID != tile(2, 4).ID {
		t.Fatalf("placement payload must carry the tile, got %+v", payload)
	}
	if payload.NextTurnUserID != "u2" {
		t.Fatalf("next turn = %s, want u2", payload.NextTurnUserID)
	}
	if payload.HandCount != 1 {
		t.Fatalf("hand count = %d, want 1", payload.HandCount)
	}
}

func TestDrawEventHidesTileFromTable(t *testing.T) {
	svc, _ := startTestMatch(t, domain.VariantAllFives, 100)
	m := svc.Match
	m.Board = domain.NewBoard(domain.BoardRules{}, 2)
	m.Board.Place(tile(1, 1), domain.BranchAny, domain.AnyEnd, "u2")
	m.Players[0].Hand = []domain.Tile{tile(6, 6)}
	m.Boneyard = []domain.Tile{tile(2, 2)}
	m.Turn = 0

	events, err := svc.ApplyMove(domain.DrawMove("u1"), 500)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want move_applied + tile_drawn", len(events))
	}

	broadcast := events[0].Payload.(MoveAppliedPayload)
	if broadcast.Tile != nil {
		t.Fatalf("drawn tile leaked in the broadcast payload")
	}
	if broadcast.BoneyardCount != 0 {
		t.Fatalf("boneyard count = %d, want 0", broadcast.BoneyardCount)
	}

	private := events[1]
	if private.Kind != EventTileDrawn {
		t.Fatalf("second event = %s, want tile_drawn", private.Kind)
	}
	if len(private.Recipients) != 1 || private.Recipients[0] != "u1" {
		t.Fatalf("tile_drawn must target the drawer, got %v", private.Recipients)
	}
	if got := private.Payload.(TileDrawnPayload).Tile.ID; got != tile(2, 2).ID {
		t.Fatalf("drawn tile = %d, want %d", got, tile(2, 2).ID)
	}
}

func TestMatchEndEmitsRoundAndMatchEvents(t *testing.T) {
	svc, _ := startTestMatch(t, domain.VariantBlock, 10)
	m := svc.Match
	m.Board = domain.NewBoard(domain.BoardRules{}, 2)
	m.Board.Place(tile(2, 3), domain.BranchAny, domain.AnyEnd, "u2")
	m.Players[0].Hand = []domain.Tile{tile(2, 4)}
	m.Players[1].Hand = []domain.Tile{tile(6, 6)}
	m.Turn = 0

	events, err := svc.ApplyMove(domain.PlaceMove("u1", tile(2, 4), 0, 2), 700)
	if err != nil {
		t.Fatalf("final move: %v", err)
	}

	var sawRoundEnd, sawMatchEnd bool
	for _, ev := range events {
		switch ev.Kind {
		case EventRoundEnded:
			sawRoundEnd = true
			summary := ev.Payload.(RoundEndedPayload).Summary
			if summary.WinnerSeat != 0 || summary.Blocked {
				t.Fatalf("round summary = %+v", summary)
			}
		case EventMatchEnded:
			sawMatchEnd = true
			payload := ev.Payload.(MatchEndedPayload)
			if payload.WinnerUserID != "u1" {
				t.Fatalf("winner = %s, want u1", payload.WinnerUserID)
			}
			if payload.Scores["u1"] != 10 {
				t.Fatalf("winner score = %d, want 10", payload.Scores["u1"])
			}
		}
	}
	if !sawRoundEnd || !sawMatchEnd {
		t.Fatalf("round end = %t match end = %t", sawRoundEnd, sawMatchEnd)
	}
}

func TestNewRoundRedealsHands(t *testing.T) {
	svc, _ := startTestMatch(t, domain.VariantBlock, 500)
	m := svc.Match
	m.Board = domain.NewBoard(domain.BoardRules{}, 2)
	m.Board.Place(tile(2, 3), domain.BranchAny, domain.AnyEnd, "u2")
	m.Players[0].Hand = []domain.Tile{tile(2, 4)}
	m.Players[1].Hand = []domain.Tile{tile(6, 6)}
	m.Turn = 0

	events, err := svc.ApplyMove(domain.PlaceMove("u1", tile(2, 4), 0, 2), 700)
	if err != nil {
		t.Fatalf("round-ending move: %v", err)
	}

	handEvents := 0
	for _, ev := range events {
		if ev.Kind == EventHandDealt {
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if payload.Round != 2 || len(payload.Hand) != 7 {
				t.Fatalf("redealt hand = %+v", payload)
			}
		}
	}
	if handEvents != 2 {
		t.Fatalf("hand events = %d, want 2 for the new round", handEvents)
	}
}

func TestValidMovesUnknownPlayer(t *testing.T) {
	svc, _ := startTestMatch(t, domain.VariantBlock, 100)
	if _, err := svc.ValidMoves("ghost"); !errors.Is(err, domain.ErrUnknownPlayer) {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
}

func TestDeactivateEmitsPlayerLeft(t *testing.T) {
	svc, _ := startTestMatch(t, domain.VariantBlock, 100)
	events, err := svc.Deactivate("u2")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventPlayerLeft {
		t.Fatalf("events = %+v, want one player_left", events)
	}
	if svc.Match.PlayerByID("u2").Active {
		t.Fatalf("player still active")
	}

	// The departure travels with the replay log.
	record := svc.Record()
	if len(record.Deactivations) != 1 || record.Deactivations[0].UserID != "u2" {
		t.Fatalf("recorded deactivations = %+v, want u2", record.Deactivations)
	}
}
