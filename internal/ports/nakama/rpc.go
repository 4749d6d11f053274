package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/Paulmait/dominauts-sub001/internal/app"
	"github.com/Paulmait/dominauts-sub001/internal/config"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// ReplayTokenRequest asks for a share token for a finished match.
type ReplayTokenRequest struct {
	MatchID string `json:"match_id"`
}

// ReplayTokenResponse carries the signed share token.
type ReplayTokenResponse struct {
	Token string `json:"token"`
}

// ReplayGetRequest fetches a stored replay, either as a participant by
// match id or as anyone holding a share token.
type ReplayGetRequest struct {
	MatchID string `json:"match_id"`
	Token   string `json:"token"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcReplayToken, rpcReplayToken); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcReplayGet, rpcReplayGet)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// Find any open lobby of our game.
	query := fmt.Sprintf("+label.%s:>=1 +label.game:%s +label.phase:lobby", MatchLabelKey_OpenSeats, matchLabelGame)

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := 3 // ensure < 4 players

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameDominoes, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

func rpcReplayToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", fmt.Errorf("no user in context")
	}

	var request ReplayTokenRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", fmt.Errorf("malformed payload: %w", err)
	}
	if request.MatchID == "" {
		return "", fmt.Errorf("match_id is required")
	}

	// Only participants may share a replay.
	storage := NewNakamaStorageAdapter(nk)
	record, err := storage.LoadMatchRecord(ctx, request.MatchID)
	if err != nil {
		return "", err
	}
	if !contains(record.Players, userID) {
		return "", fmt.Errorf("user did not play in match %s", request.MatchID)
	}

	token, err := shareTokens(ctx).GenerateToken(userID, request.MatchID)
	if err != nil {
		logger.Error("rpcReplayToken: %v", err)
		return "", err
	}

	b, _ := json.Marshal(ReplayTokenResponse{Token: token})
	return string(b), nil
}

func rpcReplayGet(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var request ReplayGetRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", fmt.Errorf("malformed payload: %w", err)
	}

	matchID := request.MatchID
	if request.Token != "" {
		verified, err := shareTokens(ctx).VerifyToken(request.Token)
		if err != nil {
			return "", err
		}
		matchID = verified
	}
	if matchID == "" {
		return "", fmt.Errorf("match_id or token is required")
	}

	storage := NewNakamaStorageAdapter(nk)
	record, err := storage.LoadMatchRecord(ctx, matchID)
	if err != nil {
		return "", err
	}

	if request.Token == "" {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !contains(record.Players, userID) {
			return "", fmt.Errorf("user did not play in match %s", matchID)
		}
	}

	b, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// shareTokens builds the token service from the runtime environment,
// with the config file supplying the issuer when the env does not.
func shareTokens(ctx context.Context) *app.ShareTokenService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["dominoes_share_token_secret"]
	issuer := env["dominoes_share_token_issuer"]
	if issuer == "" {
		if c := config.GetGameConfig(); c != nil {
			issuer = c.ShareTokenIssuer
		}
	}
	if issuer == "" {
		issuer = "dominoes"
	}
	return app.NewShareTokenService(secret, issuer, 0)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
