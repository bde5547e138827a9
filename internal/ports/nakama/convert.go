package nakama

import (
	"encoding/json"

	"viralspiral/internal/app"
)

// eventOpCode maps an engine event kind to its wire op code. Unknown kinds
// map to zero and must not be dispatched.
func eventOpCode(kind app.EventKind) int64 {
	switch kind {
	case app.EventPlayerJoined:
		return OpPlayerJoined
	case app.EventHeartbeat:
		return OpHeartbeat
	case app.EventRoundStart:
		return OpRoundStart
	case app.EventRoundEnd:
		return OpRoundEnd
	case app.EventPlayCard:
		return OpPlayCardPrompt
	case app.EventVoteCancel:
		return OpVoteCancelPrompt
	case app.EventActionPerformed:
		return OpActionPerformed
	case app.EventEndgame:
		return OpEndgame
	default:
		return 0
	}
}

func marshalEvent(ev app.Event) ([]byte, error) {
	return json.Marshal(ev.Payload)
}

// actionFromOpCode decodes a client message into the engine's action union.
func actionFromOpCode(opCode int64, data []byte) (app.Action, error) {
	switch opCode {
	case OpKeepCard:
		var act app.KeepCard
		return act, json.Unmarshal(data, &act)
	case OpDiscardCard:
		var act app.DiscardCard
		return act, json.Unmarshal(data, &act)
	case OpPassCard:
		var act app.PassCard
		return act, json.Unmarshal(data, &act)
	case OpViralSpiral:
		var act app.ViralSpiral
		return act, json.Unmarshal(data, &act)
	case OpInitiateCancel:
		var act app.InitiateCancel
		return act, json.Unmarshal(data, &act)
	case OpVoteCancel:
		var act app.VoteCancel
		return act, json.Unmarshal(data, &act)
	case OpFakeNews:
		var act app.FakeNews
		return act, json.Unmarshal(data, &act)
	case OpMarkAsFake:
		var act app.MarkAsFake
		return act, json.Unmarshal(data, &act)
	case OpEncyclopediaSearch:
		var act app.EncyclopediaSearch
		return act, json.Unmarshal(data, &act)
	default:
		return nil, nil
	}
}
