package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/Paulmait/dominauts-sub001/internal/app"
	"github.com/Paulmait/dominauts-sub001/internal/bot"
	"github.com/Paulmait/dominauts-sub001/internal/config"
	"github.com/Paulmait/dominauts-sub001/internal/domain"
	"github.com/Paulmait/dominauts-sub001/internal/ports"
	"github.com/Paulmait/dominauts-sub001/internal/rng"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
	matchLabelGame          = "dominoes"
)

// MatchLabel is the JSON label used for match listing queries.
type MatchLabel struct {
	Open    int    `json:"open"`
	Game    string `json:"game"`
	Phase   string `json:"phase"`
	Variant string `json:"variant"`
}

// botDecision is the result of an off-loop AI computation. Version pins
// the match state it was computed against; a stale decision is discarded
// and recomputed.
type botDecision struct {
	UserID     string
	Version    int64
	Move       domain.Move
	HasMove    bool
	ThinkingMs int64
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats          [4]string                   `json:"seats"`            // Array of user IDs, empty string means seat is empty
	OwnerSeat      int                         `json:"owner_seat"`       // Seat index of the match owner
	LastWinnerSeat int                         `json:"last_winner_seat"` // Seat index of the winner of the last match
	Tick           int64                       `json:"tick"`             // Current tick of the match for turn-based logic
	Variant        string                      `json:"variant"`          // Variant requested for the next match
	Presences      map[string]runtime.Presence `json:"-"`                // Map UserId -> Presence for targeted messaging
	Svc            *app.Service                `json:"-"`                // Live match service (nil if in lobby)
	Storage        ports.StoragePort           `json:"-"`                // Interface to Nakama storage for replays

	BotsEnabled          bool                  `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int                   `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                   `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                 `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent `json:"-"`                       // Active bot agents

	TurnStartTick int64             `json:"turn_start_tick"` // Tick when the current turn began
	CreatedAtUnix int64             `json:"created_at_unix"`
	botResults    chan botDecision  // Delivers off-loop AI decisions back to the loop
	botPending    bool              // An AI computation is in flight
	botThinkStart int64             // Tick the in-flight computation started
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

// tileByID resolves a tile id from the client into the canonical tile.
func tileByID(id int) (domain.Tile, bool) {
	if id < 0 || id >= domain.TileSetSize {
		return domain.Tile{}, false
	}
	return domain.NewTileSet()[id], true
}

type matchHandler struct{}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load bot identities from data folder
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	// Load game configuration
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Tick:           time.Now().Unix(),
		Presences:      make(map[string]runtime.Presence),
		OwnerSeat:      -1,
		LastWinnerSeat: -1,
		Variant:        config.DefaultVariant(),
		Bots:           make(map[string]*bot.Agent),
		Storage:        NewNakamaStorageAdapter(nk),
		CreatedAtUnix:  time.Now().Unix(),
		botResults:     make(chan botDecision, 4),
	}

	if v, ok := params["variant"].(string); ok && v != "" {
		state.Variant = v
	}

	// Read environment variables for bot configuration
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["dominoes_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	} else {
		state.BotsEnabled = true
	}
	if val, ok := env["dominoes_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["dominoes_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["dominoes_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}

	// Fall back to the config file where the env did not override. The
	// loop ticks once a second, so the delay range rounds up to seconds.
	minMs, maxMs := config.BotDelayRangeMs()
	if state.BotMinDelay == 0 {
		state.BotMinDelay = (minMs + 999) / 1000
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = (maxMs + 999) / 1000
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = config.BotAutoFillDelay()
	}

	label := &MatchLabel{
		Open:    state.GetOpenSeatsCount(),
		Game:    matchLabelGame,
		Phase:   "lobby",
		Variant: state.Variant,
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace (if match hasn't started)
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Svc == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// Assign seat: try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Svc == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}

		mh.sendJoined(matchState, dispatcher, logger, p.GetUserId())
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		// A leaver in a live match is deactivated, not unseated: their
		// hand still counts for scoring.
		if matchState.Svc != nil {
			events, err := matchState.Svc.Deactivate(p.GetUserId())
			if err == nil {
				for _, ev := range events {
					mh.dispatchEvent(ctx, matchState, dispatcher, logger, ev)
				}
				matchState.TurnStartTick = matchState.Tick
			}
		}

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Commit any AI decision computed off-loop since the last tick.
	mh.drainBotDecisions(ctx, matchState, dispatcher, logger)

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartMatch:
			mh.handleStartMatch(ctx, matchState, dispatcher, logger, msg)
		case OpPlaceTile:
			mh.handlePlaceTile(ctx, matchState, dispatcher, logger, msg)
		case OpDrawTile:
			mh.handleDrawTile(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		case OpRequestValidMoves:
			mh.handleRequestValidMoves(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.enforceTurnClock(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// enforceTurnClock forces a move for a human who ran out the turn timer:
// the first legal placement if any, otherwise draw, otherwise pass.
func (mh *matchHandler) enforceTurnClock(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Svc == nil || state.Svc.Match.Phase != domain.PhasePlaying {
		return
	}
	current := state.Svc.Match.PlayerAtSeat(state.Svc.Match.Turn)
	if current == nil || isBotUserId(current.UserID) {
		return
	}
	if state.Tick-state.TurnStartTick < int64(config.TurnDuration()) {
		return
	}

	logger.Info("enforceTurnClock: Forcing a move for %s (seat %d)", current.UserID, current.Seat)
	thinking := (state.Tick - state.TurnStartTick) * 1000
	valid := state.Svc.Match.ValidMoves(current.Seat)
	var mv domain.Move
	if len(valid) > 0 {
		mv = valid[0]
	} else {
		// No placement: draw when the variant allows it, else pass.
		mv = domain.DrawMove(current.UserID)
	}
	if err := mh.applyMove(ctx, state, dispatcher, logger, mv, thinking); err != nil {
		if err := mh.applyMove(ctx, state, dispatcher, logger, domain.PassMove(current.UserID), thinking); err != nil {
			logger.Error("enforceTurnClock: Could not force a move for %s: %v", current.UserID, err)
		}
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if state.Svc == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						identity := bot.GetBotIdentity(i)
						state.Seats[i] = identity.UserID
						logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Handle bot turns in-game
	if state.Svc.Match.Phase != domain.PhasePlaying {
		return
	}
	current := state.Svc.Match.PlayerAtSeat(state.Svc.Match.Turn)
	if current == nil || !isBotUserId(current.UserID) {
		state.BotWaitUntil = 0
		return
	}
	if state.botPending {
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		mh.dispatchEvent(ctx, state, dispatcher, logger, app.Event{
			Kind:    app.EventAIThinking,
			Payload: app.AIThinkingPayload{UserID: current.UserID},
		})
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[current.UserID]
	if !exists {
		logger.Error("processBots: No agent for bot %s", current.UserID)
		return
	}

	// Compute off-loop against a snapshot clone; commit next tick after
	// revalidating the match version.
	version := state.Svc.Match.Version
	clone := state.Svc.Match.Clone()
	state.botPending = true
	state.botThinkStart = state.Tick
	results := state.botResults
	go func() {
		mv, ok := agent.Play(clone)
		results <- botDecision{
			UserID:  agent.UserID,
			Version: version,
			Move:    mv,
			HasMove: ok,
		}
	}()
}

// drainBotDecisions applies finished AI computations. A decision made
// against a stale match version is dropped; the bot recomputes on the
// next tick.
func (mh *matchHandler) drainBotDecisions(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for {
		select {
		case decision := <-state.botResults:
			state.botPending = false
			if state.Svc == nil {
				continue
			}
			if decision.Version != state.Svc.Match.Version {
				logger.Debug("drainBotDecisions: Dropping stale decision for %s (v%d != v%d)",
					decision.UserID, decision.Version, state.Svc.Match.Version)
				continue
			}
			thinking := (state.Tick - state.botThinkStart) * 1000

			if decision.HasMove {
				if err := mh.applyMove(ctx, state, dispatcher, logger, decision.Move, thinking); err != nil {
					logger.Error("drainBotDecisions: Bot %s move rejected: %v", decision.UserID, err)
				}
				continue
			}

			// No placement: draw when the variant allows it, else pass.
			if err := mh.applyMove(ctx, state, dispatcher, logger, domain.DrawMove(decision.UserID), thinking); err != nil {
				if err := mh.applyMove(ctx, state, dispatcher, logger, domain.PassMove(decision.UserID), thinking); err != nil {
					logger.Error("drainBotDecisions: Bot %s could not draw or pass: %v", decision.UserID, err)
				}
			}
		default:
			return
		}
	}
}

func (mh *matchHandler) handleStartMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := -1
	for i, seatUserId := range state.Seats {
		if seatUserId == senderID {
			senderSeat = i
			break
		}
	}

	logger.Info("StartMatch: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Svc != nil {
		logger.Warn("StartMatch: Match already running.")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartMatch: User %s tried to start but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	var request StartMatchRequest
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &request); err != nil {
			logger.Warn("StartMatch: Invalid request from %s: %v", senderID, err)
			return
		}
	}
	if request.Variant != "" {
		state.Variant = request.Variant
	}
	targetScore := request.TargetScore
	if targetScore <= 0 {
		targetScore = config.DefaultTargetScore()
	}

	occupied := state.GetOccupiedSeatCount()
	if occupied < app.MinPlayersToStartMatch {
		logger.Warn("StartMatch: Cannot start with %d players. Need at least %d.", occupied, app.MinPlayersToStartMatch)
		return
	}

	players := make([]domain.PlayerConfig, 0, occupied)
	for _, seatUserId := range state.Seats {
		if seatUserId == "" {
			continue
		}
		kind := domain.PlayerHuman
		if isBotUserId(seatUserId) {
			kind = domain.PlayerBotMedium
			if identity, ok := bot.GetBotConfig(seatUserId); ok {
				kind = identity.Kind()
			}
		}
		players = append(players, domain.PlayerConfig{UserID: seatUserId, Kind: kind})
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	svc, events, err := app.StartMatch(domain.MatchConfig{
		MatchID:     matchID,
		Variant:     domain.Variant(state.Variant),
		TargetScore: targetScore,
		Players:     players,
	})
	if err != nil {
		logger.Error("StartMatch: Failed to start match: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Svc = svc
	state.TurnStartTick = state.Tick
	state.BotWaitUntil = 0

	// All agents of a match share one AI stream derived from the match
	// seed, so their decisions are reproducible in order.
	aiRNG := rng.ForAI(svc.Match.Config.Seed)
	state.Bots = make(map[string]*bot.Agent)
	for _, p := range svc.Match.Players {
		if !p.Kind.IsBot() {
			continue
		}
		agent, err := bot.NewAgent(p.UserID, p.Kind, aiRNG)
		if err != nil {
			logger.Error("StartMatch: Failed to create bot agent for %s: %v", p.UserID, err)
			continue
		}
		state.Bots[p.UserID] = agent
	}

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}

	logger.Info("StartMatch: Started %s match with %d players.", state.Variant, occupied)
}

func (mh *matchHandler) handlePlaceTile(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Svc == nil {
		logger.Warn("handlePlaceTile: Match not started.")
		return
	}

	var request PlaceTileRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Error("handlePlaceTile: Failed to unmarshal request: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed request")
		return
	}
	tile, ok := tileByID(request.TileID)
	if !ok {
		mh.sendError(state, dispatcher, logger, senderID, 400, "unknown tile")
		return
	}

	mv := domain.PlaceMove(senderID, tile, domain.BranchID(request.Branch), request.End)
	thinking := (state.Tick - state.TurnStartTick) * 1000
	if err := mh.applyMove(ctx, state, dispatcher, logger, mv, thinking); err != nil {
		logger.Warn("handlePlaceTile: User %s failed to place %s: %v", senderID, tile, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
	}
}

func (mh *matchHandler) handleDrawTile(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Svc == nil {
		logger.Warn("handleDrawTile: Match not started.")
		return
	}

	thinking := (state.Tick - state.TurnStartTick) * 1000
	if err := mh.applyMove(ctx, state, dispatcher, logger, domain.DrawMove(senderID), thinking); err != nil {
		logger.Warn("handleDrawTile: User %s failed to draw: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
	}
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Svc == nil {
		logger.Warn("handlePassTurn: Match not started.")
		return
	}

	thinking := (state.Tick - state.TurnStartTick) * 1000
	if err := mh.applyMove(ctx, state, dispatcher, logger, domain.PassMove(senderID), thinking); err != nil {
		logger.Warn("handlePassTurn: User %s failed to pass: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
	}
}

func (mh *matchHandler) handleRequestValidMoves(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Svc == nil {
		return
	}

	moves, err := state.Svc.ValidMoves(senderID)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	payload, err := json.Marshal(ValidMovesResponse{Moves: moves})
	if err != nil {
		logger.Error("handleRequestValidMoves: Failed to marshal: %v", err)
		return
	}
	if presence, ok := state.Presences[senderID]; ok {
		dispatcher.BroadcastMessage(OpValidMoves, payload, []runtime.Presence{presence}, nil, true)
	}
}

// applyMove runs a move through the app service and dispatches the
// resulting events. A finished match is persisted and the table returns
// to the lobby.
func (mh *matchHandler) applyMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, mv domain.Move, thinkingMs int64) error {
	events, err := state.Svc.ApplyMove(mv, thinkingMs)
	if err != nil {
		return err
	}
	state.TurnStartTick = state.Tick
	state.BotWaitUntil = 0

	roundEnded := false
	for _, ev := range events {
		if ev.Kind == app.EventRoundEnded {
			roundEnded = true
		}
		mh.dispatchEvent(ctx, state, dispatcher, logger, ev)
	}

	if state.Svc.Match.Phase == domain.PhaseEnded {
		mh.finishMatch(ctx, state, dispatcher, logger)
	} else if roundEnded {
		mh.persistProgress(ctx, state, logger)
	}
	return nil
}

// persistProgress writes the running scores at a round boundary. The
// replay itself is attached once at match end.
func (mh *matchHandler) persistProgress(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Storage == nil {
		return
	}
	m := state.Svc.Match

	scores := make(map[string]int, len(m.Players))
	players := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, p.UserID)
		scores[p.UserID] = p.Score
	}

	err := state.Storage.SaveMatchRecord(ctx, ports.MatchRecord{
		MatchID:   m.ID,
		Variant:   string(m.Variant),
		Players:   players,
		Scores:    scores,
		CreatedAt: state.CreatedAtUnix,
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		logger.Error("persistProgress: Failed to persist round scores for %s: %v", m.ID, err)
	}
}

// finishMatch persists the replay, remembers the winner for the next
// deal and returns the table to the lobby.
func (mh *matchHandler) finishMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	m := state.Svc.Match
	record := state.Svc.Record()

	scores := make(map[string]int, len(m.Players))
	players := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, p.UserID)
		scores[p.UserID] = p.Score
	}

	winnerID := ""
	if w := m.PlayerAtSeat(m.WinnerSeat); w != nil {
		winnerID = w.UserID
		for i, seatUserId := range state.Seats {
			if seatUserId == winnerID {
				state.LastWinnerSeat = i
			}
		}
	}

	if state.Storage != nil {
		err := state.Storage.SaveMatchRecord(ctx, ports.MatchRecord{
			MatchID:      m.ID,
			Variant:      string(m.Variant),
			Players:      players,
			WinnerUserID: winnerID,
			Scores:       scores,
			Replay:       record,
			CreatedAt:    state.CreatedAtUnix,
			UpdatedAt:    time.Now().Unix(),
		})
		if err != nil {
			logger.Error("finishMatch: Failed to persist replay for %s: %v", m.ID, err)
		}
	}

	state.Svc = nil
	state.botPending = false
	state.BotWaitUntil = 0
	mh.updateLabel(state, dispatcher, logger)
}

// dispatchEvent converts an app event to its opcode and sends it to the
// right presences.
func (mh *matchHandler) dispatchEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	switch ev.Kind {
	case app.EventMatchStarted:
		opCode = OpMatchStarted
	case app.EventHandDealt:
		opCode = OpHandDealt
	case app.EventMoveApplied:
		opCode = OpMoveApplied
	case app.EventTileDrawn:
		opCode = OpTileDrawn
	case app.EventRoundEnded:
		opCode = OpRoundEnded
	case app.EventMatchEnded:
		opCode = OpMatchEnded
	case app.EventPlayerLeft:
		opCode = OpPlayerLeft
	case app.EventAIThinking:
		opCode = OpAIThinking
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they
		// are bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, payload, recipients, nil, true)
}

// sendJoined announces a seated player to the table.
func (mh *matchHandler) sendJoined(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	seat := -1
	for i, seatUserId := range state.Seats {
		if seatUserId == userID {
			seat = i
			break
		}
	}
	payload, err := json.Marshal(PlayerJoinedEvent{
		UserID:  userID,
		Seat:    seat,
		IsOwner: seat == state.OwnerSeat,
	})
	if err != nil {
		logger.Error("sendJoined: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpPlayerJoined, payload, nil, nil, true)
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, payload, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := "lobby"
	if state.Svc != nil {
		phase = "playing"
	}

	label := &MatchLabel{
		Open:    state.GetOpenSeatsCount(),
		Game:    matchLabelGame,
		Phase:   phase,
		Variant: state.Variant,
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
