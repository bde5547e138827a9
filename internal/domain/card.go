package domain

import "github.com/google/uuid"

// Card is an immutable news-card template. True cards may carry precomputed
// fake variants; each fake points back at its original. A card enters play at
// most once: OriginalPlayer records who drew it.
type Card struct {
	ID          string
	Title       string
	Description string

	AffinityTowards *Topic
	AffinityCount   int // +1 or -1

	BiasAgainst *Color

	Fake     bool
	Original *Card
	Fakes    []*Card
	FakedBy  *Player

	OriginalPlayer *Player

	// TGB is the total-global-bias threshold this card becomes eligible at.
	TGB int

	Storyline      string
	StorylineIndex int

	Discarded bool
}

// UnusedFakes returns the fake variants no player has claimed yet.
func (c *Card) UnusedFakes() []*Card {
	var out []*Card
	for _, f := range c.Fakes {
		if f.FakedBy == nil && !f.Discarded {
			out = append(out, f)
		}
	}
	return out
}

// InstanceStatus is the derived state of a card instance.
type InstanceStatus string

const (
	// StatusHolding means no successor instance exists yet.
	StatusHolding InstanceStatus = "holding"
	// StatusPassed means the instance has at least one successor.
	StatusPassed InstanceStatus = "passed"
)

// CardInstance is one link in a pass chain: a card in a particular player's
// hands. From is nil for a freshly drawn root. Clone marks instances fanned
// out by a viral-spiral broadcast.
type CardInstance struct {
	ID        string
	Card      *Card
	From      *CardInstance
	To        []*CardInstance
	Player    *Player
	Clone     bool
	Discarded bool
}

// Status derives the instance state from its successors.
func (ci *CardInstance) Status() InstanceStatus {
	if len(ci.To) > 0 {
		return StatusPassed
	}
	return StatusHolding
}

// DrawCard creates a root instance of c for p, marks the card as in play and
// enqueues the required action on p's queue.
func (g *Game) DrawCard(c *Card, p *Player) *CardInstance {
	ci := &CardInstance{
		ID:     uuid.NewString(),
		Card:   c,
		Player: p,
	}
	c.OriginalPlayer = p
	g.Instances = append(g.Instances, ci)
	g.Enqueue(ci)
	return ci
}

// PassInstance creates the successor instance of ci held by to, and enqueues
// the required action for the recipient. Validation is the caller's job.
func (g *Game) PassInstance(ci *CardInstance, to *Player, clone bool) *CardInstance {
	next := &CardInstance{
		ID:     uuid.NewString(),
		Card:   ci.Card,
		From:   ci,
		Player: to,
		Clone:  clone,
	}
	ci.To = append(ci.To, next)
	g.Instances = append(g.Instances, next)
	g.Enqueue(next)
	return next
}

// InstanceByID returns the instance with the given id, or nil.
func (g *Game) InstanceByID(id string) *CardInstance {
	for _, ci := range g.Instances {
		if ci.ID == id {
			return ci
		}
	}
	return nil
}

// AllowedRecipients lists the claimed players the instance can be passed to:
// everyone who has not already held an instance of the same card within the
// same pass-chain generation. The set only ever shrinks as the chain grows.
func (g *Game) AllowedRecipients(ci *CardInstance) []*Player {
	held := make(map[string]bool)
	for _, other := range g.Instances {
		if other.Card == ci.Card {
			held[other.Player.ID] = true
		}
	}
	var out []*Player
	for _, p := range g.Players {
		if p.Claimed() && !held[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// CardByID returns the card with the given id, or nil.
func (g *Game) CardByID(id string) *Card {
	for _, c := range g.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// TopicByID returns the topic with the given id, or nil.
func (g *Game) TopicByID(id string) *Topic {
	for _, t := range g.Topics {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ColorByID returns the color with the given id, or nil.
func (g *Game) ColorByID(id string) *Color {
	for _, c := range g.Colors {
		if c.ID == id {
			return c
		}
	}
	return nil
}
