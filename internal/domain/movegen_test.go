package domain

import (
	"reflect"
	"testing"
)

func TestValidMovesOnEmptyBoardOffersWholeHand(t *testing.T) {
	m := testMatch(t, VariantBlock, 2, 100)
	m.Board = NewBoard(BoardRules{}, 2)
	m.Players[0].Hand = []Tile{tile(2, 3), tile(0, 0)}
	m.Turn = 0

	moves := m.ValidMoves(0)
	if len(moves) != 2 {
		t.Fatalf("moves = %d, want 2", len(moves))
	}
	for _, mv := range moves {
		if mv.Branch != BranchAny || mv.End != AnyEnd {
			t.Fatalf("opening move should target the open board, got %+v", mv)
		}
	}
}

func TestValidMovesDeterministicOrder(t *testing.T) {
	m := testMatch(t, VariantBlock, 2, 100)
	m.Board = NewBoard(BoardRules{}, 2)
	m.Board.Place(tile(2, 3), BranchAny, AnyEnd, "u2")
	// Deliberately unsorted hand.
	m.Players[0].Hand = []Tile{tile(3, 5), tile(2, 4), tile(2, 3)}
	m.Turn = 0

	moves := m.ValidMoves(0)

	type step struct {
		ID     int
		Branch BranchID
	}
	var got []step
	for _, mv := range moves {
		got = append(got, step{mv.Tile.ID, mv.Branch})
	}
	// Ascending tile id, then branch id: 2-3 fits both ends, 2-4 the left,
	// 3-5 the right.
	want := []step{
		{tile(2, 3).ID, 0},
		{tile(2, 3).ID, 1},
		{tile(2, 4).ID, 0},
		{tile(3, 5).ID, 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("move order = %v, want %v", got, want)
	}

	// The same position always yields the same list.
	again := m.ValidMoves(0)
	if !reflect.DeepEqual(moves, again) {
		t.Fatalf("repeated enumeration differs")
	}
}

func TestValidMovesEmptyWhenStuck(t *testing.T) {
	m := testMatch(t, VariantBlock, 2, 100)
	m.Board = NewBoard(BoardRules{}, 2)
	m.Board.Place(tile(1, 1), BranchAny, AnyEnd, "u1")
	m.Players[0].Hand = []Tile{tile(6, 6), tile(0, 2)}
	m.Turn = 0

	if moves := m.ValidMoves(0); len(moves) != 0 {
		t.Fatalf("stuck player has %d moves, want 0", len(moves))
	}
	if m.HasLegalPlacement(0) {
		t.Fatalf("HasLegalPlacement disagrees with ValidMoves")
	}
}

func TestValidMovesRespectsFootLock(t *testing.T) {
	m := testMatch(t, VariantChickenFoot, 2, 100)
	m.Board = NewBoard(m.rules.BoardRules(), 2)
	m.Board.Place(tile(6, 6), BranchAny, AnyEnd, "u1")
	m.Players[0].Hand = []Tile{tile(1, 6), tile(0, 1)}
	m.Turn = 0

	moves := m.ValidMoves(0)
	if len(moves) != 4 {
		t.Fatalf("moves = %d, want 1-6 against each of the 4 slots", len(moves))
	}
	for _, mv := range moves {
		if mv.Tile.ID != tile(1, 6).ID || mv.End != 6 {
			t.Fatalf("unexpected move %+v", mv)
		}
	}
}
