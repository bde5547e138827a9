package autoplay

import (
	"math/rand"
	"time"

	"viralspiral/internal/app"
	"viralspiral/internal/domain"
)

// Brain decides what an automated player does with a prompt.
type Brain interface {
	// ChooseAction picks the move for a held card from the allowed set.
	ChooseAction(g *domain.Game, p *domain.Player, ci *domain.CardInstance, allowed []string) app.Action
	// ChooseVote decides a pending cancellation ballot.
	ChooseVote(g *domain.Game, p *domain.Player, cs *domain.CancelStatus) bool
}

// Agent is an autonomous player driving one seat through the engine's own
// action surface. It reacts to the targeted prompt events a real client
// would receive.
type Agent struct {
	PlayerID string
	Name     string
	Strategy Brain
}

// React inspects an event addressed to the agent's player and performs the
// chosen action. Events for other players, or broadcast events, produce no
// action.
func (a *Agent) React(svc *app.Service, g *domain.Game, ev app.Event) ([]app.Event, error) {
	if !a.addressedToMe(ev) {
		return nil, nil
	}
	switch ev.Kind {
	case app.EventPlayCard:
		payload, ok := ev.Payload.(app.PlayCardPayload)
		if !ok || payload.Player != a.PlayerID {
			return nil, nil
		}
		return a.playCard(svc, g, payload)
	case app.EventVoteCancel:
		payload, ok := ev.Payload.(app.VoteCancelPayload)
		if !ok || payload.Voter != a.PlayerID {
			return nil, nil
		}
		return a.castVote(svc, g, payload)
	default:
		return nil, nil
	}
}

func (a *Agent) addressedToMe(ev app.Event) bool {
	for _, id := range ev.Recipients {
		if id == a.PlayerID {
			return true
		}
	}
	return false
}

func (a *Agent) playCard(svc *app.Service, g *domain.Game, payload app.PlayCardPayload) ([]app.Event, error) {
	g.Lock()
	p := g.PlayerByID(a.PlayerID)
	ci := g.InstanceByID(payload.Instance.ID)
	g.Unlock()
	if p == nil || ci == nil {
		return nil, nil
	}
	action := a.Strategy.ChooseAction(g, p, ci, payload.AllowedActions)
	if action == nil {
		action = app.KeepCard{InstanceID: ci.ID}
	}
	return svc.Perform(g, a.PlayerID, action)
}

func (a *Agent) castVote(svc *app.Service, g *domain.Game, payload app.VoteCancelPayload) ([]app.Event, error) {
	g.Lock()
	p := g.PlayerByID(a.PlayerID)
	var cs *domain.CancelStatus
	for _, c := range g.Cancels {
		if c.ID == payload.StatusID {
			cs = c
		}
	}
	g.Unlock()
	if p == nil || cs == nil {
		return nil, nil
	}
	yes := a.Strategy.ChooseVote(g, p, cs)
	return svc.Perform(g, a.PlayerID, app.VoteCancel{StatusID: cs.ID, Yes: yes})
}

// RandomBrain plays a weighted random policy: mostly passing to keep cards
// circulating, occasionally keeping or discarding, flagging suspected fakes
// now and then. Votes follow a fixed yes probability.
type RandomBrain struct {
	rng *rand.Rand

	// PassWeight, KeepWeight, DiscardWeight and FlagWeight shape the
	// draw among the allowed moves. Zero-valued brains use the defaults.
	PassWeight    int
	KeepWeight    int
	DiscardWeight int
	FlagWeight    int
	YesChance     float64
}

// NewRandomBrain builds a brain with the default weights and the provided
// rng, or a time-seeded one when nil.
func NewRandomBrain(rng *rand.Rand) *RandomBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomBrain{
		rng:           rng,
		PassWeight:    6,
		KeepWeight:    2,
		DiscardWeight: 1,
		FlagWeight:    1,
		YesChance:     0.6,
	}
}

func (b *RandomBrain) ChooseAction(g *domain.Game, p *domain.Player, ci *domain.CardInstance, allowed []string) app.Action {
	weights := map[string]int{
		"pass_card":    b.PassWeight,
		"keep_card":    b.KeepWeight,
		"discard_card": b.DiscardWeight,
		"mark_as_fake": b.FlagWeight,
	}
	total := 0
	for _, name := range allowed {
		total += weights[name]
	}
	if total == 0 {
		return app.KeepCard{InstanceID: ci.ID}
	}
	roll := b.rng.Intn(total)
	for _, name := range allowed {
		roll -= weights[name]
		if roll >= 0 {
			continue
		}
		switch name {
		case "pass_card":
			g.Lock()
			recipients := g.AllowedRecipients(ci)
			g.Unlock()
			if len(recipients) == 0 {
				return app.KeepCard{InstanceID: ci.ID}
			}
			to := recipients[b.rng.Intn(len(recipients))]
			return app.PassCard{InstanceID: ci.ID, To: to.ID}
		case "discard_card":
			return app.DiscardCard{InstanceID: ci.ID}
		case "mark_as_fake":
			return app.MarkAsFake{InstanceID: ci.ID}
		default:
			return app.KeepCard{InstanceID: ci.ID}
		}
	}
	return app.KeepCard{InstanceID: ci.ID}
}

func (b *RandomBrain) ChooseVote(g *domain.Game, p *domain.Player, cs *domain.CancelStatus) bool {
	return b.rng.Float64() < b.YesChance
}
