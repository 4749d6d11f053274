package domain

import (
	"fmt"
	"math/rand"

	"github.com/Paulmait/dominauts-sub001/internal/rng"
)

// Phase is the lifecycle stage of a match.
type Phase string

const (
	// PhaseDealing covers tile generation, shuffling and the deal.
	PhaseDealing Phase = "dealing"
	// PhasePlaying is an active round.
	PhasePlaying Phase = "playing"
	// PhaseRoundEnd is the transient boundary where round scores settle.
	PhaseRoundEnd Phase = "round_end"
	// PhaseEnded means a player (or team) reached the match target.
	PhaseEnded Phase = "ended"
)

// PlayerKind distinguishes humans from the three AI strengths.
type PlayerKind string

const (
	PlayerHuman     PlayerKind = "human"
	PlayerBotEasy   PlayerKind = "bot_easy"
	PlayerBotMedium PlayerKind = "bot_medium"
	PlayerBotHard   PlayerKind = "bot_hard"
)

// IsBot reports whether the kind is one of the AI strengths.
func (k PlayerKind) IsBot() bool { return k != PlayerHuman }

// Player is a participant. A disconnected player keeps Active=false: they
// are skipped in rotation but their hand still counts for scoring.
type Player struct {
	UserID string     `json:"user_id"`
	Seat   int        `json:"seat"`
	Kind   PlayerKind `json:"kind"`
	Hand   []Tile     `json:"hand"`
	Score  int        `json:"score"`
	Active bool       `json:"active"`
}

// PlayerConfig declares one seat of a new match, in seat order.
type PlayerConfig struct {
	UserID string     `json:"user_id"`
	Kind   PlayerKind `json:"kind"`
}

// MatchConfig carries everything needed to create a match, and to
// recreate it exactly: the seed drives every shuffle.
type MatchConfig struct {
	MatchID        string         `json:"match_id"`
	Variant        Variant        `json:"variant"`
	TargetScore    int            `json:"target_score"`
	TilesPerPlayer int            `json:"tiles_per_player"`
	Seed           int64          `json:"seed"`
	Players        []PlayerConfig `json:"players"`
}

// RoundSummary describes a settled round for event emission.
type RoundSummary struct {
	Round      int            `json:"round"`
	WinnerSeat int            `json:"winner_seat"`
	Blocked    bool           `json:"blocked"`
	Award      int            `json:"award"`
	Pips       map[string]int `json:"pips"`
	Scores     map[string]int `json:"scores"`
}

const (
	defaultTilesPerPlayer = 7
	minPlayers            = 2
	maxPlayers            = 4
)

// Match is the root aggregate. There is exactly one logical writer: every
// mutation passes through ApplyMove (or Deactivate) serially. Version
// increments on each mutation so speculative work can detect staleness.
type Match struct {
	ID       string    `json:"id"`
	Config   MatchConfig `json:"config"`
	Variant  Variant   `json:"variant"`
	Target   int       `json:"target"`
	Players  []*Player `json:"players"`
	Round    int       `json:"round"`
	Turn     int       `json:"turn"`
	Board    *Board    `json:"board"`
	Boneyard []Tile    `json:"boneyard"`
	History  []Move    `json:"history"`
	Phase    Phase     `json:"phase"`
	// WinnerSeat is -1 until the match ends.
	WinnerSeat int `json:"winner_seat"`
	// Passes counts consecutive passes; a full cycle of active players
	// blocks the round.
	Passes int `json:"passes"`
	// TurnDraws counts draws taken by the current seat this turn.
	TurnDraws int `json:"turn_draws"`
	// LastWinnerSeat leads the next round's deal. -1 before any round
	// settles.
	LastWinnerSeat int `json:"last_winner_seat"`
	// LastRound holds the most recent round settlement.
	LastRound *RoundSummary `json:"last_round,omitempty"`
	Version   int64         `json:"version"`

	rules Ruleset
	rng   *rand.Rand
}

// NewMatch validates the config, selects the rule set and deals the first
// round. Identical configs (seed included) produce identical matches.
func NewMatch(cfg MatchConfig) (*Match, error) {
	if len(cfg.Players) < minPlayers || len(cfg.Players) > maxPlayers {
		return nil, fmt.Errorf("match needs %d to %d players, got %d", minPlayers, maxPlayers, len(cfg.Players))
	}
	if cfg.TilesPerPlayer == 0 {
		cfg.TilesPerPlayer = defaultTilesPerPlayer
	}
	if cfg.TilesPerPlayer*len(cfg.Players) > TileSetSize {
		return nil, fmt.Errorf("cannot deal %d tiles to %d players from a %d tile set",
			cfg.TilesPerPlayer, len(cfg.Players), TileSetSize)
	}
	if cfg.TargetScore <= 0 {
		return nil, fmt.Errorf("target score must be positive, got %d", cfg.TargetScore)
	}
	rules, err := ForVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}
	if cfg.Variant == VariantCuban && len(cfg.Players) != 4 {
		return nil, fmt.Errorf("cuban dominoes needs exactly 4 players, got %d", len(cfg.Players))
	}

	m := &Match{
		ID:             cfg.MatchID,
		Config:         cfg,
		Variant:        cfg.Variant,
		Target:         cfg.TargetScore,
		Phase:          PhaseDealing,
		WinnerSeat:     -1,
		LastWinnerSeat: -1,
		rules:          rules,
		rng:            rng.ForMatch(cfg.Seed),
	}
	for i, pc := range cfg.Players {
		if pc.UserID == "" {
			return nil, fmt.Errorf("player at seat %d has no user id", i)
		}
		m.Players = append(m.Players, &Player{
			UserID: pc.UserID,
			Seat:   i,
			Kind:   pc.Kind,
			Active: true,
		})
	}
	m.dealRound()
	return m, nil
}

// Rules exposes the active rule set.
func (m *Match) Rules() Ruleset { return m.rules }

// dealRound shuffles a fresh tile set into the boneyard, deals hands and
// resets the board for the next round.
func (m *Match) dealRound() {
	m.Round++
	m.Phase = PhaseDealing

	tiles := NewTileSet()
	m.rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })

	for _, p := range m.Players {
		p.Hand = append([]Tile(nil), tiles[:m.Config.TilesPerPlayer]...)
		SortTiles(p.Hand)
		tiles = tiles[m.Config.TilesPerPlayer:]
	}
	m.Boneyard = tiles
	m.Board = NewBoard(m.rules.BoardRules(), len(m.Players))
	m.Passes = 0
	m.TurnDraws = 0
	m.Turn = m.starterSeat()
	m.Phase = PhasePlaying
	m.Version++
}

// starterSeat picks who leads the round: the holder of the required
// opening double (Chicken Foot), otherwise last round's winner, otherwise
// rotation by round number. Inactive seats are skipped.
func (m *Match) starterSeat() int {
	if required, ok := m.highestDealtDouble(); ok && m.Variant == VariantChickenFoot {
		for _, p := range m.Players {
			if p.Active && ContainsTile(p.Hand, required.ID) {
				return p.Seat
			}
		}
	}
	if m.LastWinnerSeat >= 0 && m.Players[m.LastWinnerSeat].Active {
		return m.LastWinnerSeat
	}
	seat := (m.Round - 1) % len(m.Players)
	if m.Players[seat].Active {
		return seat
	}
	return m.nextActiveSeat(seat)
}

// highestDealtDouble scans every hand for the highest double of the deal.
func (m *Match) highestDealtDouble() (Tile, bool) {
	best := Tile{ID: -1}
	found := false
	for _, p := range m.Players {
		if d, ok := HighestDouble(p.Hand); ok && (!found || d.Left > best.Left) {
			best = d
			found = true
		}
	}
	return best, found
}

// PlayerByID returns the player with the given user id, or nil.
func (m *Match) PlayerByID(userID string) *Player {
	for _, p := range m.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// PlayerAtSeat returns the player at the seat, or nil.
func (m *Match) PlayerAtSeat(seat int) *Player {
	if seat < 0 || seat >= len(m.Players) {
		return nil
	}
	return m.Players[seat]
}

// ActiveCount returns how many players remain in rotation.
func (m *Match) ActiveCount() int {
	n := 0
	for _, p := range m.Players {
		if p.Active {
			n++
		}
	}
	return n
}

func (m *Match) nextActiveSeat(from int) int {
	n := len(m.Players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if m.Players[seat].Active {
			return seat
		}
	}
	return from
}

// ApplyMove is the single mutation entry point during play. It validates
// phase, turn and legality, applies the move, scores it, appends it to
// the history and advances the round/match lifecycle.
func (m *Match) ApplyMove(mv Move) error {
	if m.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	p := m.PlayerByID(mv.PlayerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.Active || p.Seat != m.Turn {
		return ErrNotPlayersTurn
	}

	switch mv.Kind {
	case MovePlace:
		return m.applyPlace(p, mv)
	case MoveDraw:
		return m.applyDraw(p, mv)
	case MovePass:
		return m.applyPass(p, mv)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMove, mv.Kind)
	}
}

func (m *Match) applyPlace(p *Player, mv Move) error {
	if mv.Tile == nil {
		return fmt.Errorf("%w: placement without a tile", ErrInvalidMove)
	}
	t := *mv.Tile
	if !ContainsTile(p.Hand, t.ID) {
		return fmt.Errorf("%w: tile %s is not in hand", ErrInvalidMove, t)
	}

	if m.Board.Empty() {
		if mv.Branch != BranchAny || mv.End != AnyEnd {
			return fmt.Errorf("%w: opening placement must target the open board", ErrInvalidMove)
		}
		if !m.rules.IsLegalFirst(m, p.Seat, t) {
			return fmt.Errorf("%w: tile %s cannot open this round", ErrInvalidMove, t)
		}
	} else if !m.rules.IsLegalMove(m, p.Seat, t, mv.Branch, mv.End) {
		return fmt.Errorf("%w: tile %s on branch %d end %d", ErrInvalidMove, t, mv.Branch, mv.End)
	}

	if _, err := m.Board.Place(t, mv.Branch, mv.End, p.UserID); err != nil {
		return err
	}
	p.Hand = RemoveTile(p.Hand, t.ID)

	// Playing on one's own train closes it to other players again.
	if b := m.Board.Branch(mv.Branch); b != nil && b.OwnerSeat == p.Seat {
		b.Opened = false
	}

	mv.ScoreDelta = m.rules.ScoreForMove(m, mv)
	p.Score += mv.ScoreDelta

	m.History = append(m.History, mv)
	m.Passes = 0
	m.TurnDraws = 0
	m.Version++

	if res := m.rules.CheckRoundEnd(m); res.Status != RoundOngoing {
		m.finishRound(res)
		return nil
	}
	m.Turn = m.nextActiveSeat(m.Turn)
	return nil
}

func (m *Match) applyDraw(p *Player, mv Move) error {
	policy := m.rules.Drawing()
	if policy == DrawNone {
		return fmt.Errorf("%w: variant %s does not allow drawing", ErrInvalidMove, m.Variant)
	}
	if m.HasLegalPlacement(p.Seat) {
		return fmt.Errorf("%w: a legal placement exists", ErrInvalidMove)
	}
	if policy == DrawOne && m.TurnDraws >= 1 {
		return fmt.Errorf("%w: only one draw per turn", ErrInvalidMove)
	}
	if len(m.Boneyard) == 0 {
		return ErrBoneyardEmpty
	}

	t := m.Boneyard[len(m.Boneyard)-1]
	m.Boneyard = m.Boneyard[:len(m.Boneyard)-1]
	p.Hand = append(p.Hand, t)
	SortTiles(p.Hand)

	mv.Tile = &t
	m.History = append(m.History, mv)
	m.TurnDraws++
	m.Version++
	return nil
}

func (m *Match) applyPass(p *Player, mv Move) error {
	if m.HasLegalPlacement(p.Seat) {
		return fmt.Errorf("%w: a legal placement exists", ErrInvalidMove)
	}
	if m.mustDraw() {
		return fmt.Errorf("%w: must draw before passing", ErrInvalidMove)
	}

	// A forced pass opens the player's personal train to the table.
	if m.rules.BoardRules().PersonalTrains {
		for _, b := range m.Board.Branches {
			if b.OwnerSeat == p.Seat {
				b.Opened = true
			}
		}
	}

	m.History = append(m.History, mv)
	m.Passes++
	m.TurnDraws = 0
	m.Version++

	if res := m.rules.CheckRoundEnd(m); res.Status != RoundOngoing {
		m.finishRound(res)
		return nil
	}
	m.Turn = m.nextActiveSeat(m.Turn)
	return nil
}

// mustDraw reports whether the current player still owes a draw before a
// pass is accepted.
func (m *Match) mustDraw() bool {
	if len(m.Boneyard) == 0 {
		return false
	}
	switch m.rules.Drawing() {
	case DrawOne:
		return m.TurnDraws < 1
	case DrawUntilPlayable:
		return true
	default:
		return false
	}
}

// finishRound settles scores at the round boundary and either ends the
// match or deals the next round. The deal consumes the match RNG, so a
// replayed move stream reproduces it exactly.
func (m *Match) finishRound(res RoundResult) {
	m.Phase = PhaseRoundEnd

	summary := &RoundSummary{
		Round:      m.Round,
		WinnerSeat: res.WinnerSeat,
		Blocked:    res.Status == RoundBlocked,
		Pips:       make(map[string]int, len(m.Players)),
		Scores:     make(map[string]int, len(m.Players)),
	}
	for _, p := range m.Players {
		summary.Pips[p.UserID] = PipCount(p.Hand)
	}

	if res.WinnerSeat >= 0 {
		summary.Award = m.rules.RoundAward(m, res.WinnerSeat)
		m.Players[res.WinnerSeat].Score += summary.Award
		m.LastWinnerSeat = res.WinnerSeat
	}
	for _, p := range m.Players {
		summary.Scores[p.UserID] = p.Score
	}
	m.LastRound = summary
	m.Version++

	if winner, ok := m.targetReached(); ok {
		m.Phase = PhaseEnded
		m.WinnerSeat = winner
		return
	}
	m.dealRound()
}

// targetReached checks team pools against the match target. The winning
// seat is the highest scorer of the winning pool, lowest seat on ties.
func (m *Match) targetReached() (int, bool) {
	pools := make(map[int]int)
	for _, p := range m.Players {
		pools[m.rules.TeamOf(p.Seat)] += p.Score
	}

	bestTeam, bestPool := -1, 0
	for _, p := range m.Players {
		team := m.rules.TeamOf(p.Seat)
		if pools[team] >= m.Target && (bestTeam == -1 || pools[team] > bestPool) {
			bestTeam, bestPool = team, pools[team]
		}
	}
	if bestTeam == -1 {
		return -1, false
	}

	winner := -1
	for _, p := range m.Players {
		if m.rules.TeamOf(p.Seat) != bestTeam {
			continue
		}
		if winner == -1 || p.Score > m.Players[winner].Score {
			winner = p.Seat
		}
	}
	return winner, true
}

// Deactivate removes a player from rotation, keeping their hand for
// scoring. If it was their turn the rotation moves on immediately.
func (m *Match) Deactivate(userID string) error {
	p := m.PlayerByID(userID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.Active {
		return nil
	}
	p.Active = false
	m.Version++
	if m.Phase == PhasePlaying && m.Turn == p.Seat {
		m.TurnDraws = 0
		m.Turn = m.nextActiveSeat(m.Turn)
	}
	return nil
}

// PreviewPlace applies a placement to a throwaway copy and returns the
// score delta it would earn. The live match, including its RNG stream, is
// untouched.
func (m *Match) PreviewPlace(mv Move) (int, error) {
	c := m.Clone()
	p := c.PlayerByID(mv.PlayerID)
	if p == nil {
		return 0, ErrUnknownPlayer
	}
	c.Turn = p.Seat
	if err := c.ApplyMove(mv); err != nil {
		return 0, err
	}
	if n := len(c.History); n > 0 {
		return c.History[n-1].ScoreDelta, nil
	}
	return 0, nil
}

// Clone deep-copies the visible match state. The copy carries an
// independent RNG, so it is suitable for speculative application but not
// for reproducing future deals.
func (m *Match) Clone() *Match {
	rules, _ := ForVariant(m.Variant)
	out := &Match{
		ID:             m.ID,
		Config:         m.Config,
		Variant:        m.Variant,
		Target:         m.Target,
		Round:          m.Round,
		Turn:           m.Turn,
		Board:          m.Board.Clone(),
		Boneyard:       append([]Tile(nil), m.Boneyard...),
		History:        append([]Move(nil), m.History...),
		Phase:          m.Phase,
		WinnerSeat:     m.WinnerSeat,
		Passes:         m.Passes,
		TurnDraws:      m.TurnDraws,
		LastWinnerSeat: m.LastWinnerSeat,
		Version:        m.Version,
		rules:          rules,
		rng:            rand.New(rand.NewSource(0)),
	}
	out.Config.Players = append([]PlayerConfig(nil), m.Config.Players...)
	for _, p := range m.Players {
		np := *p
		np.Hand = append([]Tile(nil), p.Hand...)
		out.Players = append(out.Players, &np)
	}
	if m.LastRound != nil {
		lr := *m.LastRound
		lr.Pips = make(map[string]int, len(m.LastRound.Pips))
		for k, v := range m.LastRound.Pips {
			lr.Pips[k] = v
		}
		lr.Scores = make(map[string]int, len(m.LastRound.Scores))
		for k, v := range m.LastRound.Scores {
			lr.Scores[k] = v
		}
		out.LastRound = &lr
	}
	return out
}
