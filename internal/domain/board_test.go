package domain

import (
	"errors"
	"testing"
)

func tile(left, right int) Tile {
	for _, t := range NewTileSet() {
		if t.Left == left && t.Right == right {
			return t
		}
	}
	panic("no such tile")
}

func TestOpeningPlacementCreatesTwoEnds(t *testing.T) {
	bd := NewBoard(BoardRules{}, 2)
	exposed, err := bd.Place(tile(2, 5), BranchAny, AnyEnd, "u1")
	if err != nil {
		t.Fatalf("opening placement: %v", err)
	}
	if exposed != 5 {
		t.Fatalf("exposed = %d, want 5", exposed)
	}
	if bd.Empty() {
		t.Fatalf("board still empty after opening")
	}
	if len(bd.Branches) != 2 {
		t.Fatalf("branches = %d, want 2", len(bd.Branches))
	}
	if got := bd.Branches[0].OpenPips(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("branch 0 open pips = %v, want [2]", got)
	}
	if got := bd.Branches[1].OpenPips(); len(got) != 1 || got[0] != 5 {
		t.Fatalf("branch 1 open pips = %v, want [5]", got)
	}
}

func TestPlaceRejectsBadConnection(t *testing.T) {
	bd := NewBoard(BoardRules{}, 2)
	if _, err := bd.Place(tile(2, 5), BranchAny, AnyEnd, "u1"); err != nil {
		t.Fatalf("opening placement: %v", err)
	}

	if _, err := bd.Place(tile(3, 4), 0, 2, "u2"); !errors.Is(err, ErrInvalidConnection) {
		t.Fatalf("err = %v, want ErrInvalidConnection", err)
	}
	if _, err := bd.Place(tile(2, 4), 0, 5, "u2"); !errors.Is(err, ErrInvalidConnection) {
		t.Fatalf("end not open on branch: err = %v, want ErrInvalidConnection", err)
	}
	if _, err := bd.Place(tile(2, 4), 9, 2, "u2"); !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("err = %v, want ErrUnknownBranch", err)
	}

	// A matching tile still connects.
	if _, err := bd.Place(tile(2, 4), 0, 2, "u2"); err != nil {
		t.Fatalf("valid placement rejected: %v", err)
	}
	if bd.Branches[0].Open != 4 {
		t.Fatalf("branch 0 open = %d, want 4", bd.Branches[0].Open)
	}
}

func TestChainGrowsAndEndSum(t *testing.T) {
	bd := NewBoard(BoardRules{}, 2)
	bd.Place(tile(2, 3), BranchAny, AnyEnd, "u1")
	if got := bd.EndSum(); got != 5 {
		t.Fatalf("end sum after opening = %d, want 5", got)
	}

	// Ends 2,3 -> place 3-5 -> ends 2,5.
	if _, err := bd.Place(tile(3, 5), 1, 3, "u2"); err != nil {
		t.Fatalf("placement: %v", err)
	}
	if got := bd.EndSum(); got != 7 {
		t.Fatalf("end sum = %d, want 7", got)
	}

	// A double on an end counts both faces: ends 2, 5-5 -> 12.
	if _, err := bd.Place(tile(5, 5), 1, 5, "u1"); err != nil {
		t.Fatalf("double placement: %v", err)
	}
	if got := bd.EndSum(); got != 12 {
		t.Fatalf("end sum with end double = %d, want 12", got)
	}
}

func TestEndSumAnchorDouble(t *testing.T) {
	bd := NewBoard(BoardRules{}, 2)
	bd.Place(tile(5, 5), BranchAny, AnyEnd, "u1")
	if got := bd.EndSum(); got != 10 {
		t.Fatalf("end sum of open anchor double = %d, want 10", got)
	}

	// Building on one side leaves the double across the line's end: it
	// still shows both faces. Ends 0, 5-5 -> 10.
	if _, err := bd.Place(tile(0, 5), 0, 5, "u2"); err != nil {
		t.Fatalf("placement: %v", err)
	}
	if got := bd.EndSum(); got != 10 {
		t.Fatalf("end sum with half-built anchor double = %d, want 10", got)
	}

	// Covering the second face retires the double. Ends 0, 6 -> 6.
	if _, err := bd.Place(tile(5, 6), 1, 5, "u1"); err != nil {
		t.Fatalf("covering placement: %v", err)
	}
	if got := bd.EndSum(); got != 6 {
		t.Fatalf("end sum with covered anchor = %d, want 6", got)
	}
}

func TestChickenFootOpeningLock(t *testing.T) {
	rules := BoardRules{DoubleSpawns: 3, DoubleFeet: 3, OpeningSpawns: 4, OpeningFeet: 3}
	bd := NewBoard(rules, 4)
	if _, err := bd.Place(tile(6, 6), BranchAny, AnyEnd, "u1"); err != nil {
		t.Fatalf("opening double: %v", err)
	}
	if len(bd.Branches) != 4 {
		t.Fatalf("opening double spawned %d branches, want 4", len(bd.Branches))
	}

	node := bd.LockedNode()
	if node == nil || node.Remaining != 3 {
		t.Fatalf("locked node = %+v, want remaining 3", node)
	}

	for i, id := range []BranchID{0, 1, 2} {
		if !bd.BranchUnlocked(id) {
			t.Fatalf("foot branch %d should accept tiles", id)
		}
		if _, err := bd.Place(tile(i, 6), id, 6, "u1"); err != nil {
			t.Fatalf("foot placement %d: %v", i, err)
		}
	}

	if bd.LockedNode() != nil {
		t.Fatalf("node should be satisfied after three feet")
	}
	// The fourth slot survives the unlock and still plays.
	if !bd.BranchUnlocked(3) {
		t.Fatalf("fourth opening slot should be playable")
	}
	if _, err := bd.Place(tile(4, 6), 3, 6, "u2"); err != nil {
		t.Fatalf("fourth slot placement: %v", err)
	}
}

func TestChickenFootMidRoundDoubleLocksOtherEnds(t *testing.T) {
	rules := BoardRules{DoubleSpawns: 3, DoubleFeet: 3, OpeningSpawns: 4, OpeningFeet: 3}
	bd := NewBoard(rules, 2)
	bd.Place(tile(6, 6), BranchAny, AnyEnd, "u1")
	bd.Place(tile(0, 6), 0, 6, "u2")
	bd.Place(tile(1, 6), 1, 6, "u1")
	bd.Place(tile(2, 6), 2, 6, "u2")

	// A double mid-round sprouts a new foot and locks everything else.
	if _, err := bd.Place(tile(0, 0), 0, 0, "u1"); err != nil {
		t.Fatalf("mid-round double: %v", err)
	}
	node := bd.LockedNode()
	if node == nil || node.Pip != 0 || node.Remaining != 3 {
		t.Fatalf("locked node = %+v, want pip 0 remaining 3", node)
	}
	if bd.BranchUnlocked(3) {
		t.Fatalf("unrelated end should be locked while the foot is open")
	}
	for _, id := range node.Targets {
		if !bd.BranchUnlocked(id) {
			t.Fatalf("foot target %d should be playable", id)
		}
	}
}

func TestMexicanTrainTopology(t *testing.T) {
	rules := BoardRules{PersonalTrains: true, CoverDouble: true}
	bd := NewBoard(rules, 4)
	bd.Place(tile(2, 3), BranchAny, AnyEnd, "u1")

	if len(bd.Branches) != 5 {
		t.Fatalf("branches = %d, want 4 personal + 1 communal", len(bd.Branches))
	}
	for seat := 0; seat < 4; seat++ {
		b := bd.Branches[seat]
		if b.OwnerSeat != seat || b.OpenToAll {
			t.Fatalf("branch %d owner = %d openToAll = %t", seat, b.OwnerSeat, b.OpenToAll)
		}
	}
	communal := bd.Branches[4]
	if !communal.OpenToAll || communal.OwnerSeat != -1 {
		t.Fatalf("communal branch = %+v", communal)
	}
	// Every empty train roots on both anchor pips.
	if got := bd.Branches[0].OpenPips(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("train root pips = %v, want [2 3]", got)
	}
}

func TestCoverDoubleLock(t *testing.T) {
	rules := BoardRules{PersonalTrains: true, CoverDouble: true}
	bd := NewBoard(rules, 2)
	bd.Place(tile(2, 3), BranchAny, AnyEnd, "u1")

	if _, err := bd.Place(tile(2, 2), 0, 2, "u1"); err != nil {
		t.Fatalf("double placement: %v", err)
	}
	if bd.BranchUnlocked(1) || bd.BranchUnlocked(2) {
		t.Fatalf("other trains should be locked until the double is covered")
	}
	if !bd.BranchUnlocked(0) {
		t.Fatalf("the double's own branch must stay playable")
	}

	if _, err := bd.Place(tile(2, 4), 0, 2, "u2"); err != nil {
		t.Fatalf("covering placement: %v", err)
	}
	if bd.LockedNode() != nil {
		t.Fatalf("board should unlock once the double is covered")
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	bd := NewBoard(BoardRules{}, 2)
	bd.Place(tile(2, 3), BranchAny, AnyEnd, "u1")

	clone := bd.Clone()
	if _, err := clone.Place(tile(3, 5), 1, 3, "u2"); err != nil {
		t.Fatalf("clone placement: %v", err)
	}
	if len(bd.Branches[1].Tiles) != 0 {
		t.Fatalf("placement on clone leaked into original")
	}
	if len(clone.UsedTiles()) != 2 || len(bd.UsedTiles()) != 1 {
		t.Fatalf("used tiles: clone %d original %d", len(clone.UsedTiles()), len(bd.UsedTiles()))
	}
}
