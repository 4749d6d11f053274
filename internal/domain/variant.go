package domain

import "fmt"

// Variant identifies one of the supported regional rule sets.
type Variant string

const (
	VariantBlock        Variant = "block"
	VariantAllFives     Variant = "all_fives"
	VariantCuban        Variant = "cuban"
	VariantChickenFoot  Variant = "chicken_foot"
	VariantMexicanTrain Variant = "mexican_train"
)

// DrawPolicy states what a stuck player may do with the boneyard.
type DrawPolicy int

const (
	// DrawNone forbids drawing; a stuck player passes immediately.
	DrawNone DrawPolicy = iota
	// DrawOne allows a single draw per turn before a forced pass.
	DrawOne
	// DrawUntilPlayable forces drawing until a tile plays or the
	// boneyard is exhausted.
	DrawUntilPlayable
)

// RoundStatus is the outcome of a round-end check.
type RoundStatus int

const (
	RoundOngoing RoundStatus = iota
	RoundWon
	RoundBlocked
)

// RoundResult reports how (and whether) the current round ended.
// WinnerSeat is -1 for a blocked round where the lowest pip counts tie.
type RoundResult struct {
	Status     RoundStatus
	WinnerSeat int
}

// Ruleset is the per-variant rule dispatch selected once at match
// creation. Implementations are stateless; all state lives on the Match.
type Ruleset interface {
	Variant() Variant
	Drawing() DrawPolicy
	BoardRules() BoardRules

	// IsLegalFirst reports whether the tile may open the round.
	IsLegalFirst(m *Match, seat int, t Tile) bool
	// IsLegalMove reports whether the seat may place the tile against the
	// given branch end. Hand ownership and turn order are the match's
	// concern, not the rule set's.
	IsLegalMove(m *Match, seat int, t Tile, branch BranchID, end int) bool
	// ScoreForMove returns points awarded by a placement. The board has
	// already been updated when this is called.
	ScoreForMove(m *Match, mv Move) int
	// CheckRoundEnd inspects the match after an applied move.
	CheckRoundEnd(m *Match) RoundResult
	// RoundAward returns the points the round winner collects.
	RoundAward(m *Match, winnerSeat int) int
	// TeamOf maps a seat to its scoring pool. Seats scoring alone map to
	// themselves.
	TeamOf(seat int) int
}

// ForVariant returns the rule set for the given variant.
func ForVariant(v Variant) (Ruleset, error) {
	switch v {
	case VariantBlock:
		return blockRules{}, nil
	case VariantAllFives:
		return allFivesRules{}, nil
	case VariantCuban:
		return cubanRules{}, nil
	case VariantChickenFoot:
		return chickenFootRules{}, nil
	case VariantMexicanTrain:
		return mexicanTrainRules{}, nil
	default:
		return nil, fmt.Errorf("unknown variant: %q", v)
	}
}

// baseRules supplies the behavior shared by the chain variants; the other
// rule sets embed it and override what differs.
type baseRules struct{}

func (baseRules) Drawing() DrawPolicy    { return DrawNone }
func (baseRules) BoardRules() BoardRules { return BoardRules{} }
func (baseRules) TeamOf(seat int) int    { return seat }

func (baseRules) IsLegalFirst(m *Match, seat int, t Tile) bool {
	return true
}

func (baseRules) IsLegalMove(m *Match, seat int, t Tile, branch BranchID, end int) bool {
	b := m.Board.Branch(branch)
	if b == nil || !m.Board.BranchUnlocked(branch) {
		return false
	}
	return pipIn(b.OpenPips(), end) && t.HasPip(end)
}

func (baseRules) ScoreForMove(m *Match, mv Move) int { return 0 }

func (baseRules) CheckRoundEnd(m *Match) RoundResult {
	for _, p := range m.Players {
		if p.Active && len(p.Hand) == 0 {
			return RoundResult{Status: RoundWon, WinnerSeat: p.Seat}
		}
	}
	if m.Passes >= m.ActiveCount() && m.ActiveCount() > 0 {
		return RoundResult{Status: RoundBlocked, WinnerSeat: lowestPipSeat(m)}
	}
	return RoundResult{Status: RoundOngoing, WinnerSeat: -1}
}

// RoundAward is the winner's take: the remaining pips of every seat
// outside the winner's team, capped at the match target.
func (baseRules) RoundAward(m *Match, winnerSeat int) int {
	return cappedOpponentPips(m, winnerSeat, baseRules{}.TeamOf)
}

// lowestPipSeat resolves a blocked round. Disconnected players keep their
// hands and still count. An exact tie for the lowest pip count scores
// nobody and returns -1.
func lowestPipSeat(m *Match) int {
	best, bestSeat, tied := -1, -1, false
	for _, p := range m.Players {
		pips := PipCount(p.Hand)
		switch {
		case best < 0 || pips < best:
			best, bestSeat, tied = pips, p.Seat, false
		case pips == best:
			tied = true
		}
	}
	if tied {
		return -1
	}
	return bestSeat
}

func cappedOpponentPips(m *Match, winnerSeat int, teamOf func(int) int) int {
	winnerTeam := teamOf(winnerSeat)
	award := 0
	for _, p := range m.Players {
		if teamOf(p.Seat) != winnerTeam {
			award += PipCount(p.Hand)
		}
	}
	if award > m.Target {
		award = m.Target
	}
	return award
}
