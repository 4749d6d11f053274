package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcReplayToken issues a share token for a finished match's replay.
	RpcReplayToken = "replay_token"

	// RpcReplayGet returns a stored replay for a valid share token.
	RpcReplayGet = "replay_get"

	// MatchNameDominoes is the authoritative match handler name registered with Nakama.
	MatchNameDominoes = "dominoes_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartMatch        int64 = 1
	OpPlaceTile         int64 = 2
	OpDrawTile          int64 = 3
	OpPassTurn          int64 = 4
	OpRequestValidMoves int64 = 5

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpMatchStarted int64 = 103
	OpHandDealt    int64 = 104 // send privately
	OpMoveApplied  int64 = 105
	OpTileDrawn    int64 = 106 // send privately
	OpRoundEnded   int64 = 107
	OpMatchEnded   int64 = 108
	OpValidMoves   int64 = 109
	OpAIThinking   int64 = 110
	OpGameError    int64 = 111
)
