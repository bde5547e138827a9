package app

import (
	"viralspiral/internal/domain"
)

// EventKind identifies emitted engine events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined    EventKind = "player_joined"
	EventHeartbeat       EventKind = "heartbeat"
	EventRoundStart      EventKind = "round_start"
	EventRoundEnd        EventKind = "round_end"
	EventPlayCard        EventKind = "play_card"
	EventVoteCancel      EventKind = "vote_cancel"
	EventActionPerformed EventKind = "action_performed"
	EventEndgame         EventKind = "endgame"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast to the game
}

// EventSink receives engine events for delivery to clients. The transport
// adapter implements it; Send must not block on engine state.
type EventSink interface {
	Send(ev Event)
}

// PlayerSummary is the wire-facing view of a player.
type PlayerSummary struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Color    string         `json:"color"`
	Sequence int            `json:"sequence"`
	Current  bool           `json:"current"`
	Clout    int            `json:"clout"`
	Bias     map[string]int `json:"bias"`
	Affinity map[string]int `json:"affinity"`
	Powers   []string       `json:"powers"`
}

// CardSummary is the wire-facing view of a card.
type CardSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	AffinityTopic  string `json:"affinity_topic,omitempty"`
	AffinityCount  int    `json:"affinity_count,omitempty"`
	BiasAgainst    string `json:"bias_against,omitempty"`
	Storyline      string `json:"storyline,omitempty"`
	StorylineIndex int    `json:"storyline_index,omitempty"`
}

// InstanceSummary is the wire-facing view of a card instance.
type InstanceSummary struct {
	ID     string      `json:"id"`
	Card   CardSummary `json:"card"`
	Holder string      `json:"holder"`
	FromID string      `json:"from_id,omitempty"`
}

// About is the full game snapshot returned by the about call and carried by
// heartbeats.
type About struct {
	GameID        string          `json:"game_id"`
	Name          string          `json:"name"`
	Phase         string          `json:"phase"`
	Colors        []string        `json:"colors"`
	Topics        []string        `json:"topics"`
	Players       []PlayerSummary `json:"players"`
	CurrentDrawer string          `json:"current_drawer,omitempty"`
	TGB           int             `json:"tgb"`
	FullRounds    int             `json:"full_rounds"`
	Ended         bool            `json:"ended"`
}

type PlayerJoinedPayload struct {
	Player PlayerSummary `json:"player"`
}

type RoundPayload struct {
	Player  PlayerSummary `json:"player"`
	Skipped bool          `json:"skipped,omitempty"`
}

// PlayCardPayload prompts one holder for their queued required action.
type PlayCardPayload struct {
	Player         string          `json:"player"`
	Instance       InstanceSummary `json:"instance"`
	Recipients     []string        `json:"recipients"`
	AllowedActions []string        `json:"allowed_actions"`
	CancelTopics   []string        `json:"cancel_topics,omitempty"`
}

// VoteCancelPayload prompts one voter for a pending cancel ballot.
type VoteCancelPayload struct {
	Voter     string `json:"voter"`
	StatusID  string `json:"status_id"`
	Initiator string `json:"initiator"`
	Against   string `json:"against"`
	Topic     string `json:"topic"`
}

type ActionPerformedPayload struct {
	Player string `json:"player"`
	Action string `json:"action"`
	Result any    `json:"result,omitempty"`
}

type EndgamePayload struct {
	Winner string `json:"winner,omitempty"`
	About  About  `json:"about"`
	Error  string `json:"error,omitempty"`
}

func summarizePlayer(g *domain.Game, p *domain.Player) PlayerSummary {
	scores := g.Ledger.Snapshot(p, g.Colors, g.Topics)
	powers := make([]string, 0, len(domain.AllPowers))
	for _, pw := range g.ActivePowers(p) {
		powers = append(powers, string(pw))
	}
	return PlayerSummary{
		ID:       p.ID,
		Name:     p.Name,
		Color:    p.Color.Name,
		Sequence: p.Sequence,
		Current:  p.Current,
		Clout:    scores.Clout,
		Bias:     scores.Bias,
		Affinity: scores.Affinity,
		Powers:   powers,
	}
}

func summarizeCard(c *domain.Card) CardSummary {
	out := CardSummary{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		AffinityCount:  c.AffinityCount,
		Storyline:      c.Storyline,
		StorylineIndex: c.StorylineIndex,
	}
	if c.AffinityTowards != nil {
		out.AffinityTopic = c.AffinityTowards.Name
	}
	if c.BiasAgainst != nil {
		out.BiasAgainst = c.BiasAgainst.Name
	}
	return out
}

func summarizeInstance(ci *domain.CardInstance) InstanceSummary {
	out := InstanceSummary{
		ID:     ci.ID,
		Card:   summarizeCard(ci.Card),
		Holder: ci.Player.ID,
	}
	if ci.From != nil {
		out.FromID = ci.From.ID
	}
	return out
}
