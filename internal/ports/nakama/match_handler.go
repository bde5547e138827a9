package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"viralspiral/internal/app"
	"viralspiral/internal/config"
	"viralspiral/internal/content"
	"viralspiral/internal/domain"
	"viralspiral/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchLabel is the queryable JSON label kept current on the match.
type MatchLabel struct {
	Game  string `json:"game"`
	Name  string `json:"name"`
	Open  int    `json:"open"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for one hosted game.
type MatchState struct {
	Game      *domain.Game                `json:"-"`
	Svc       *app.Service                `json:"-"`
	Sched     *app.Scheduler              `json:"-"`
	Presences map[string]runtime.Presence `json:"-"` // user id -> presence
	Players   map[string]string           `json:"-"` // user id -> player id
	Grants    *app.GrantService           `json:"-"`
	Archive   ports.ArchivePort           `json:"-"`
	Archived  bool                        `json:"archived"`
}

func (ms *MatchState) openSlots() int {
	count := 0
	for _, p := range ms.Game.Players {
		if !p.Claimed() {
			count++
		}
	}
	return count
}

// playerPresence resolves the connected presence for a player id, or nil.
func (ms *MatchState) playerPresence(playerID string) runtime.Presence {
	for userID, pid := range ms.Players {
		if pid == playerID {
			if p, ok := ms.Presences[userID]; ok {
				return p
			}
		}
	}
	return nil
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created. Params come from the
// create_game RPC: game name, password, player count and an optional catalog
// path.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	name := stringParam(params, "name", "viral-spiral")
	password := stringParam(params, "password", "")
	players := intParam(params, "players", config.DefaultPlayers())

	catalog, err := loadCatalog(stringParam(params, "catalog", ""))
	if err != nil {
		logger.Error("MatchInit: Failed to load card catalog: %v", err)
		return nil, 0, ""
	}

	game, enc, err := app.NewGame(name, password, players, catalog, config.Rules())
	if err != nil {
		logger.Error("MatchInit: Failed to create game: %v", err)
		return nil, 0, ""
	}

	svc := app.NewService(nil, enc)
	sched := app.NewScheduler(svc, game, nil)
	sched.HeartbeatTicks = config.HeartbeatTicks()

	state := &MatchState{
		Game:      game,
		Svc:       svc,
		Sched:     sched,
		Presences: make(map[string]runtime.Presence),
		Players:   make(map[string]string),
		Grants:    grantServiceFromEnv(ctx),
		Archive:   NewNakamaArchiveAdapter(nk),
	}

	labelBytes, err := json.Marshal(MatchLabel{
		Game:  MatchNameViralSpiral,
		Name:  name,
		Open:  state.openSlots(),
		Phase: string(domain.PhaseLobby),
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, config.TickRateHz(), string(labelBytes)
}

// grantServiceFromEnv builds the join-grant verifier from the runtime
// environment, or nil when no secret is configured.
func grantServiceFromEnv(ctx context.Context) *app.GrantService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["viralspiral_grant_secret"]
	if secret == "" {
		return nil
	}
	issuer := env["viralspiral_grant_issuer"]
	if issuer == "" {
		issuer = MatchNameViralSpiral
	}
	return app.NewGrantService(secret, issuer, time.Hour)
}

func loadCatalog(path string) (*content.Catalog, error) {
	if path == "" {
		if cfg := config.GetGameConfig(); cfg != nil && cfg.CatalogPath != "" {
			path = cfg.CatalogPath
		}
	}
	if path == "" {
		return content.SampleCatalog(), nil
	}
	return content.LoadCatalog(path)
}

// MatchJoinAttempt gates entry: a valid join grant or the game password, and
// either an open slot or a rejoinable claimed name.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	playerName := presence.GetUsername()

	if grant := metadata["grant"]; grant != "" && matchState.Grants != nil {
		grantMatch, grantName, err := matchState.Grants.VerifyGrant(grant)
		if err != nil {
			return state, false, "invalid join grant"
		}
		matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
		if grantMatch != matchID {
			return state, false, "join grant is for another game"
		}
		if grantName != domain.NormalizeName(playerName) {
			return state, false, "join grant is for another player"
		}
	} else if matchState.Game.Password != "" && metadata["password"] != matchState.Game.Password {
		return state, false, "wrong password"
	}

	matchState.Game.Lock()
	defer matchState.Game.Unlock()
	if matchState.Game.PlayerByName(playerName) != nil {
		return state, true, "" // rejoin
	}
	if matchState.Game.UnclaimedPlayer() == nil {
		return state, false, "game is full"
	}
	return state, true, ""
}

// MatchJoin claims a slot per joining presence and broadcasts the result.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		player, events, err := matchState.Svc.Join(matchState.Game, p.GetUsername(), p.GetSessionId())
		if err != nil {
			logger.Warn("MatchJoin: User %s could not claim a slot: %v", p.GetUserId(), err)
			continue
		}
		matchState.Players[p.GetUserId()] = player.ID

		for _, ev := range events {
			mh.dispatchEvent(matchState, dispatcher, logger, ev)
		}
		mh.sendAbout(matchState, dispatcher, logger, p)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave drops the presence but keeps the player's slot claimed so they
// can rejoin; a stalled ticket simply waits for them.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		logger.Debug("MatchLeave: User %s disconnected, slot kept.", p.GetUserId())
	}

	if len(matchState.Presences) == 0 && matchState.Sched.Phase() == domain.PhaseEnded {
		return nil
	}
	return matchState
}

// MatchLoop applies client actions, then advances the scheduler one tick.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		mh.handleMessage(matchState, dispatcher, logger, msg)
	}

	phaseBefore := matchState.Sched.Phase()
	for _, ev := range matchState.Sched.Tick() {
		mh.dispatchEvent(matchState, dispatcher, logger, ev)
	}
	if matchState.Sched.Phase() != phaseBefore {
		mh.updateLabel(matchState, dispatcher, logger)
	}

	if matchState.Sched.Phase() == domain.PhaseEnded && !matchState.Archived {
		matchState.Archived = true
		mh.archiveGame(ctx, matchState, logger)
	}

	return matchState
}

func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	playerID, seated := state.Players[senderID]
	if !seated {
		logger.Warn("MatchLoop: Message from unseated user %s", senderID)
		return
	}

	switch msg.GetOpCode() {
	case OpAboutGame:
		if p, ok := state.Presences[senderID]; ok {
			mh.sendAbout(state, dispatcher, logger, p)
		}
		return
	case OpGetQueuedCard:
		events, err := state.Svc.QueuedCardPrompt(state.Game, playerID)
		if err != nil {
			mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
			return
		}
		for _, ev := range events {
			mh.dispatchEvent(state, dispatcher, logger, ev)
		}
		return
	}

	action, err := actionFromOpCode(msg.GetOpCode(), msg.GetData())
	if err != nil {
		logger.Warn("MatchLoop: Bad payload for opcode %d from %s: %v", msg.GetOpCode(), senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed action payload")
		return
	}
	if action == nil {
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	events, err := state.Svc.Perform(state.Game, playerID, action)
	if err != nil {
		logger.Warn("MatchLoop: User %s action %s rejected: %v", senderID, action.ActionName(), err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}
	for _, ev := range events {
		mh.dispatchEvent(state, dispatcher, logger, ev)
	}
}

// errorCode maps the engine's error taxonomy to a wire code.
func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return 404
	case errors.Is(err, domain.ErrNotAllowed):
		return 403
	case errors.Is(err, domain.ErrDuplicateAction):
		return 409
	default:
		return 400
	}
}

// dispatchEvent converts an engine event to its op code and payload and
// broadcasts it, honoring targeted recipients.
func (mh *matchHandler) dispatchEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode := eventOpCode(ev.Kind)
	if opCode == 0 {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	bytes, err := marshalEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, playerID := range ev.Recipients {
			if p := state.playerPresence(playerID); p != nil {
				recipients = append(recipients, p)
			}
		}
		// Targeted events with no connected recipient must not leak to
		// everyone else; the holder will catch up from the snapshot on
		// rejoin.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendAbout sends the full game snapshot to one presence.
func (mh *matchHandler) sendAbout(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, presence runtime.Presence) {
	bytes, err := json.Marshal(state.Svc.About(state.Game))
	if err != nil {
		logger.Error("Failed to marshal about snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpAboutSnapshot, bytes, []runtime.Presence{presence}, nil, true)
}

// sendError sends an action rejection to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload := struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: code, Message: message}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal rejection: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send rejection to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpActionRejected, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) archiveGame(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Archive == nil {
		return
	}
	record := buildGameRecord(state.Game, state.Sched.Err())
	if err := state.Archive.SaveGame(ctx, record); err != nil {
		logger.Error("Failed to archive game %s: %v", state.Game.ID, err)
	}
}

func buildGameRecord(g *domain.Game, schedErr error) ports.GameRecord {
	g.Lock()
	defer g.Unlock()

	record := ports.GameRecord{
		GameID:     g.ID,
		Name:       g.Name,
		TGB:        g.TotalGlobalBias(),
		FullRounds: len(g.FullRounds),
		Scores:     make(map[string]int),
	}
	for _, p := range g.Players {
		if p.Claimed() {
			record.Scores[p.Name] = g.Ledger.Clout(p)
		}
	}
	if w := g.Winner(); w != nil {
		record.Winner = w.Name
	}
	if schedErr != nil {
		record.Error = schedErr.Error()
	}
	return record
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(MatchLabel{
		Game:  MatchNameViralSpiral,
		Name:  state.Game.Name,
		Open:  state.openSlots(),
		Phase: string(state.Sched.Phase()),
	})
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

// signalRequest is the envelope for out-of-band match queries. An empty
// command returns the game snapshot.
type signalRequest struct {
	Cmd      string `json:"cmd,omitempty"`
	Password string `json:"password,omitempty"`
}

// MatchSignal answers out-of-band queries: the game snapshot by default, or a
// password check used by the join_grant RPC.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}

	var req signalRequest
	if data != "" {
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			logger.Warn("MatchSignal: Malformed signal payload: %v", err)
			return matchState, ""
		}
	}

	if req.Cmd == "password_check" {
		ok := matchState.Game.Password == "" || req.Password == matchState.Game.Password
		bytes, _ := json.Marshal(map[string]bool{"ok": ok})
		return matchState, string(bytes)
	}

	bytes, err := json.Marshal(matchState.Svc.About(matchState.Game))
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return matchState, ""
	}
	return matchState, string(bytes)
}

func stringParam(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
