package domain

import "errors"

var (
	// ErrInvalidMove rejects a move whose tile is not in the acting
	// player's hand or does not satisfy the active rule set.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInvalidConnection rejects a placement whose tile does not match
	// the open end it targets.
	ErrInvalidConnection = errors.New("tile does not match open end")
	// ErrNotPlayersTurn rejects a move submitted out of turn.
	ErrNotPlayersTurn = errors.New("not player's turn")
	// ErrNoLegalMove reports that no candidate placement exists. It is
	// informational: the caller must explicitly draw or pass.
	ErrNoLegalMove = errors.New("no legal move available")
	// ErrBoneyardEmpty rejects a draw from an exhausted boneyard; the
	// caller falls back to a pass.
	ErrBoneyardEmpty = errors.New("boneyard is empty")
	// ErrNotPlaying rejects actions outside the playing phase.
	ErrNotPlaying = errors.New("match not in playing phase")
	// ErrUnknownPlayer rejects actions from a player not in the match.
	ErrUnknownPlayer = errors.New("player not found")
	// ErrUnknownBranch rejects a placement against a branch id that does
	// not exist on the board.
	ErrUnknownBranch = errors.New("branch not found")
)
