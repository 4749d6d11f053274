package domain

import "fmt"

// BranchID identifies a line of play on the board. Ids are allocated
// sequentially as branches are created, so a given sequence of placements
// always produces the same ids.
type BranchID int

const (
	// BranchAny is the synthetic target for the opening placement of a
	// round, before any branch exists.
	BranchAny BranchID = -1
	// AnyEnd is the synthetic open end the opening placement matches.
	AnyEnd = -1
)

// PlacedTile is a tile on the board together with its orientation.
// Exposed is the pip value facing outward after this placement; the other
// half is glued to the previous tile on the branch.
type PlacedTile struct {
	Tile     Tile     `json:"tile"`
	PlayerID string   `json:"player_id"`
	Branch   BranchID `json:"branch"`
	Exposed  int      `json:"exposed"`
}

// Branch is one line of play extending from the anchor tile. A branch with
// no tiles is an attachment point whose candidate pips are RootPips.
type Branch struct {
	ID        BranchID     `json:"id"`
	Tiles     []PlacedTile `json:"tiles"`
	Open      int          `json:"open"`
	RootPips  []int        `json:"root_pips"`
	OwnerSeat int          `json:"owner_seat"`
	OpenToAll bool         `json:"open_to_all"`
	// Opened marks a personal train as playable by non-owners.
	Opened bool `json:"opened"`
}

// OpenPips returns the pip values a new tile may match on this branch,
// ascending.
func (b *Branch) OpenPips() []int {
	if len(b.Tiles) == 0 {
		return b.RootPips
	}
	return []int{b.Open}
}

// EndTile returns the outermost tile of the branch, if any.
func (b *Branch) EndTile() (PlacedTile, bool) {
	if len(b.Tiles) == 0 {
		return PlacedTile{}, false
	}
	return b.Tiles[len(b.Tiles)-1], true
}

// FootNode tracks a double that still blocks play elsewhere. Targets are
// the branch ids placements must land on; each placement on a target
// decrements Remaining and retires that target.
type FootNode struct {
	Pip       int        `json:"pip"`
	Remaining int        `json:"remaining"`
	Targets   []BranchID `json:"targets"`
}

// BoardRules captures the branch topology of a variant. The zero value is
// the plain two-ended chain used by Block, All Fives and Cuban.
type BoardRules struct {
	// PersonalTrains creates one branch per seat plus a communal branch
	// rooted on the opening tile (Mexican Train).
	PersonalTrains bool `json:"personal_trains"`
	// DoubleSpawns is the number of branches a mid-round double opens
	// (Chicken Foot: 3).
	DoubleSpawns int `json:"double_spawns"`
	// DoubleFeet is how many of those branches must receive a tile before
	// other ends unlock.
	DoubleFeet int `json:"double_feet"`
	// OpeningSpawns/OpeningFeet apply to a double played as the opening
	// tile (Chicken Foot: 4 slots, 3 required).
	OpeningSpawns int `json:"opening_spawns"`
	OpeningFeet   int `json:"opening_feet"`
	// CoverDouble locks a branch on which a double was played until one
	// more tile covers it (Mexican Train).
	CoverDouble bool `json:"cover_double"`
}

// Board holds the placed-tile layout for one round.
type Board struct {
	Rules      BoardRules  `json:"rules"`
	Seats      int         `json:"seats"`
	Anchor     *PlacedTile `json:"anchor,omitempty"`
	Branches   []*Branch   `json:"branches"`
	Feet       []*FootNode `json:"feet"`
	NextBranch BranchID    `json:"next_branch"`
}

// NewBoard returns an empty board for a round with the given topology and
// seat count.
func NewBoard(rules BoardRules, seats int) *Board {
	return &Board{Rules: rules, Seats: seats}
}

// Empty reports whether no tile has been placed this round.
func (bd *Board) Empty() bool {
	return bd.Anchor == nil
}

// Branch returns the branch with the given id, or nil.
func (bd *Board) Branch(id BranchID) *Branch {
	for _, b := range bd.Branches {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// LockedNode returns the oldest double whose feet are not yet satisfied,
// or nil when every end is playable.
func (bd *Board) LockedNode() *FootNode {
	for _, n := range bd.Feet {
		if n.Remaining > 0 {
			return n
		}
	}
	return nil
}

// BranchUnlocked reports whether the branch may receive a tile given any
// pending foot requirement.
func (bd *Board) BranchUnlocked(id BranchID) bool {
	node := bd.LockedNode()
	if node == nil {
		return true
	}
	for _, t := range node.Targets {
		if t == id {
			return true
		}
	}
	return false
}

// Place puts a tile on the board and returns the newly exposed pip value.
// The opening placement targets BranchAny/AnyEnd and establishes both tile
// halves as open ends. Legality beyond connection and foot locking (turn
// order, hand ownership, train access) is the rule set's concern.
func (bd *Board) Place(t Tile, branch BranchID, end int, playerID string) (int, error) {
	if bd.Empty() {
		if branch != BranchAny {
			return 0, fmt.Errorf("%w: board is empty, expected opening placement", ErrUnknownBranch)
		}
		bd.Anchor = &PlacedTile{Tile: t, PlayerID: playerID, Branch: BranchAny, Exposed: t.Right}
		bd.initBranches(t)
		return t.Right, nil
	}

	b := bd.Branch(branch)
	if b == nil {
		return 0, fmt.Errorf("%w: branch %d", ErrUnknownBranch, branch)
	}
	if !bd.BranchUnlocked(branch) {
		return 0, fmt.Errorf("%w: a double's feet must be filled first", ErrInvalidMove)
	}
	if !pipIn(b.OpenPips(), end) || !t.HasPip(end) {
		return 0, fmt.Errorf("%w: tile %s against end %d", ErrInvalidConnection, t, end)
	}

	exposed := t.OtherPip(end)
	b.Tiles = append(b.Tiles, PlacedTile{Tile: t, PlayerID: playerID, Branch: branch, Exposed: exposed})
	b.Open = exposed

	bd.noteFootPlacement(branch)

	if t.IsDouble() {
		bd.spawnFeet(t, branch)
	}
	return exposed, nil
}

// initBranches sets up the round's attachment points from the opening tile.
func (bd *Board) initBranches(anchor Tile) {
	switch {
	case bd.Rules.PersonalTrains:
		roots := anchorPips(anchor)
		for seat := 0; seat < bd.Seats; seat++ {
			bd.addBranch(&Branch{Tiles: nil, RootPips: roots, OwnerSeat: seat})
		}
		bd.addBranch(&Branch{RootPips: roots, OwnerSeat: -1, OpenToAll: true})
	case anchor.IsDouble() && bd.Rules.OpeningSpawns > 0:
		node := &FootNode{Pip: anchor.Left, Remaining: bd.Rules.OpeningFeet}
		for i := 0; i < bd.Rules.OpeningSpawns; i++ {
			b := bd.addBranch(&Branch{RootPips: []int{anchor.Left}, OwnerSeat: -1})
			node.Targets = append(node.Targets, b.ID)
		}
		bd.Feet = append(bd.Feet, node)
	default:
		bd.addBranch(&Branch{RootPips: []int{anchor.Left}, OwnerSeat: -1})
		bd.addBranch(&Branch{RootPips: []int{anchor.Right}, OwnerSeat: -1})
	}
}

func (bd *Board) addBranch(b *Branch) *Branch {
	b.ID = bd.NextBranch
	bd.NextBranch++
	bd.Branches = append(bd.Branches, b)
	return b
}

// noteFootPlacement credits a placement against the oldest pending foot
// node, if the branch is one of its targets.
func (bd *Board) noteFootPlacement(branch BranchID) {
	node := bd.LockedNode()
	if node == nil {
		return
	}
	for i, t := range node.Targets {
		if t == branch {
			node.Remaining--
			node.Targets = append(node.Targets[:i], node.Targets[i+1:]...)
			return
		}
	}
}

// spawnFeet opens the foot requirement for a double placed mid-round.
func (bd *Board) spawnFeet(t Tile, branch BranchID) {
	switch {
	case bd.Rules.CoverDouble:
		bd.Feet = append(bd.Feet, &FootNode{Pip: t.Left, Remaining: 1, Targets: []BranchID{branch}})
	case bd.Rules.DoubleSpawns > 0:
		node := &FootNode{Pip: t.Left, Remaining: bd.Rules.DoubleFeet}
		for i := 0; i < bd.Rules.DoubleSpawns; i++ {
			nb := bd.addBranch(&Branch{RootPips: []int{t.Left}, OwnerSeat: -1})
			node.Targets = append(node.Targets, nb.ID)
		}
		bd.Feet = append(bd.Feet, node)
	}
}

// EndSum returns the sum of the open-end values on a chain layout, with a
// double at an end counted on both faces. Used by All Fives scoring.
func (bd *Board) EndSum() int {
	sum := 0
	// An anchor double sits across the line: while any side of it is
	// still open it contributes both faces exactly once, no matter how
	// many empty branches root on it.
	anchorDouble := bd.Anchor != nil && bd.Anchor.Tile.IsDouble()
	anchorCounted := false
	for _, b := range bd.Branches {
		if last, ok := b.EndTile(); ok {
			if last.Tile.IsDouble() {
				sum += 2 * b.Open
			} else {
				sum += b.Open
			}
			continue
		}
		if len(b.RootPips) == 0 {
			continue
		}
		if anchorDouble {
			if !anchorCounted {
				sum += 2 * b.RootPips[0]
				anchorCounted = true
			}
			continue
		}
		sum += b.RootPips[0]
	}
	return sum
}

// UsedTiles returns every tile currently on the board.
func (bd *Board) UsedTiles() []Tile {
	var tiles []Tile
	if bd.Anchor != nil {
		tiles = append(tiles, bd.Anchor.Tile)
	}
	for _, b := range bd.Branches {
		for _, pt := range b.Tiles {
			tiles = append(tiles, pt.Tile)
		}
	}
	return tiles
}

// Clone returns a deep copy of the board.
func (bd *Board) Clone() *Board {
	out := &Board{Rules: bd.Rules, Seats: bd.Seats, NextBranch: bd.NextBranch}
	if bd.Anchor != nil {
		anchor := *bd.Anchor
		out.Anchor = &anchor
	}
	for _, b := range bd.Branches {
		nb := &Branch{ID: b.ID, Open: b.Open, OwnerSeat: b.OwnerSeat, OpenToAll: b.OpenToAll, Opened: b.Opened}
		nb.Tiles = append([]PlacedTile(nil), b.Tiles...)
		nb.RootPips = append([]int(nil), b.RootPips...)
		out.Branches = append(out.Branches, nb)
	}
	for _, n := range bd.Feet {
		nn := &FootNode{Pip: n.Pip, Remaining: n.Remaining}
		nn.Targets = append([]BranchID(nil), n.Targets...)
		out.Feet = append(out.Feet, nn)
	}
	return out
}

// anchorPips returns the distinct pip values of the opening tile,
// ascending.
func anchorPips(t Tile) []int {
	if t.IsDouble() {
		return []int{t.Left}
	}
	if t.Left < t.Right {
		return []int{t.Left, t.Right}
	}
	return []int{t.Right, t.Left}
}

func pipIn(pips []int, pip int) bool {
	for _, p := range pips {
		if p == pip {
			return true
		}
	}
	return false
}
