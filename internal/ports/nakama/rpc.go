package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"viralspiral/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateGameRequest is the payload for the create_game RPC.
type CreateGameRequest struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	Players  int    `json:"players,omitempty"`
	Catalog  string `json:"catalog,omitempty"`
}

// GameResponse is returned by both create_game and find_game. Grant is a
// signed join token for the caller, empty when grants are not configured.
type GameResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	Grant   string `json:"grant,omitempty"`
}

// FindGameRequest is the payload for the find_game RPC. An empty name finds
// any game with open slots.
type FindGameRequest struct {
	Name string `json:"name,omitempty"`
}

// JoinGrantRequest is the payload for the join_grant RPC.
type JoinGrantRequest struct {
	MatchID  string `json:"match_id"`
	Password string `json:"password,omitempty"`
}

// JoinGrantResponse carries the signed grant issued for the caller.
type JoinGrantResponse struct {
	Grant string `json:"grant"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateGame, rpcCreateGame); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcFindGame, rpcFindGame); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcJoinGrant, rpcJoinGrant)
}

func rpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req CreateGameRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("malformed create_game payload", 3)
		}
	}
	if req.Name == "" {
		return "", runtime.NewError("game name is required", 3)
	}

	params := map[string]interface{}{
		"name":     req.Name,
		"password": req.Password,
		"players":  req.Players,
		"catalog":  req.Catalog,
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameViralSpiral, params)
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := GameResponse{MatchID: matchID, IsNew: true, Grant: mintGrant(ctx, matchID)}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

func rpcFindGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req FindGameRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("malformed find_game payload", 3)
		}
	}

	query := fmt.Sprintf("+label.game:%s +label.phase:%s +label.%s:>=1",
		MatchNameViralSpiral, domain.PhaseLobby, MatchLabelKeyOpenSlots)
	if req.Name != "" {
		query += fmt.Sprintf(" +label.name:%s", req.Name)
	}

	limit := 10
	authoritative := true
	minSize := 0
	maxSize := 100

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}
	if len(matches) == 0 {
		return "", runtime.NewError("no open game found", 5)
	}

	matchID := matches[0].MatchId
	resp := GameResponse{MatchID: matchID, Grant: mintGrant(ctx, matchID)}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcJoinGrant exchanges the game password for a signed join grant. The match
// itself validates the password over a signal, so the RPC never needs access
// to match state.
func rpcJoinGrant(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req JoinGrantRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("malformed join_grant payload", 3)
		}
	}
	if req.MatchID == "" {
		return "", runtime.NewError("match_id is required", 3)
	}

	signal, _ := json.Marshal(signalRequest{Cmd: "password_check", Password: req.Password})
	reply, err := nk.MatchSignal(ctx, req.MatchID, string(signal))
	if err != nil {
		logger.Error("MatchSignal error: %v", err)
		return "", runtime.NewError("game not found", 5)
	}
	var check struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(reply), &check); err != nil || !check.OK {
		return "", runtime.NewError("wrong password", 7)
	}

	grant := mintGrant(ctx, req.MatchID)
	if grant == "" {
		return "", runtime.NewError("join grants are not configured", 12)
	}
	b, _ := json.Marshal(JoinGrantResponse{Grant: grant})
	return string(b), nil
}

// mintGrant signs a join grant for the calling user, or returns empty when
// grants are not configured. The grant binds the account username, which is
// also the name the match claims a slot under.
func mintGrant(ctx context.Context, matchID string) string {
	grants := grantServiceFromEnv(ctx)
	if grants == nil {
		return ""
	}
	username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
	if username == "" {
		return ""
	}
	token, err := grants.GenerateGrant(matchID, domain.NormalizeName(username))
	if err != nil {
		return ""
	}
	return token
}
