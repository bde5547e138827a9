package domain

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhaseLobby indicates the game is waiting for player slots to be claimed.
	PhaseLobby Phase = "lobby"
	// PhaseRunning indicates the turn loop is active.
	PhaseRunning Phase = "running"
	// PhaseEnded indicates the game has finished.
	PhaseEnded Phase = "ended"
)

// Color is a community identity. The first color of a game is the neutral
// community and is exempt from being a bias target.
type Color struct {
	ID   string
	Name string
}

// Topic is something players can be for or against.
type Topic struct {
	ID   string
	Name string
}

// Player is one seat in a game. Slots are created unclaimed (empty name) at
// game setup and claimed when a client joins; they are never deleted.
type Player struct {
	ID       string
	Name     string
	Color    *Color
	Sequence int
	Current  bool
	ClientID string
}

// Claimed reports whether a client has taken this slot.
func (p *Player) Claimed() bool {
	return p.Name != ""
}

// Round records one player drawing one card.
type Round struct {
	Player *Player
	Card   *Card
}

// FullRound groups the rounds played between two complete passes of the turn
// order. Cancellation penalties last exactly one full round.
type FullRound struct {
	Index  int
	Rounds []*Round
}

// Game holds the authoritative state for a single game instance. It is plain
// state; use Lock/Unlock to serialize access when the host is not already
// single-threaded (the Nakama match loop is, the library runner is not).
type Game struct {
	ID       string
	Name     string
	Password string
	Rules    Rules

	Colors  []*Color
	Topics  []*Topic
	Players []*Player

	Cards     []*Card
	Instances []*CardInstance

	Ledger *Ledger

	queue      []*QueueEntry
	powerLog   []*PowerEntry
	Cancels    []*CancelStatus
	FullRounds []*FullRound

	Ended bool

	mu sync.Mutex
}

// NewGame creates a game with unclaimed player slots. colors[0] becomes the
// neutral community; the remaining colors are dealt to slots round-robin.
func NewGame(name, password string, playerCount int, colors, topics []string, rules Rules) *Game {
	g := &Game{
		ID:       uuid.NewString(),
		Name:     name,
		Password: password,
		Rules:    rules,
		Ledger:   NewLedger(),
	}
	for _, c := range colors {
		g.Colors = append(g.Colors, &Color{ID: uuid.NewString(), Name: c})
	}
	for _, t := range topics {
		g.Topics = append(g.Topics, &Topic{ID: uuid.NewString(), Name: t})
	}
	playable := g.Colors[1:]
	for i := 0; i < playerCount; i++ {
		g.Players = append(g.Players, &Player{
			ID:       uuid.NewString(),
			Color:    playable[i%len(playable)],
			Sequence: i,
		})
	}
	return g
}

// Lock serializes access to game state for callers outside the owning loop.
func (g *Game) Lock() { g.mu.Lock() }

// Unlock releases the game lock.
func (g *Game) Unlock() { g.mu.Unlock() }

// NeutralColor returns the community exempt from bias targeting.
func (g *Game) NeutralColor() *Color {
	return g.Colors[0]
}

// TotalGlobalBias counts biased cards that have entered play. It drives the
// escalating fake-card probability in the deck selector.
func (g *Game) TotalGlobalBias() int {
	count := 0
	for _, c := range g.Cards {
		if c.BiasAgainst != nil && c.OriginalPlayer != nil {
			count++
		}
	}
	return count
}

// PlayerByID returns the player with the given id, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the claimed player with the given name, or nil.
// Names are normalized the same way Join normalizes them.
func (g *Game) PlayerByName(name string) *Player {
	name = NormalizeName(name)
	for _, p := range g.Players {
		if p.Claimed() && p.Name == name {
			return p
		}
	}
	return nil
}

// UnclaimedPlayer returns an open slot, or nil when the game is full.
func (g *Game) UnclaimedPlayer() *Player {
	for _, p := range g.Players {
		if !p.Claimed() {
			return p
		}
	}
	return nil
}

// AllClaimed reports whether every slot has been taken.
func (g *Game) AllClaimed() bool {
	return g.UnclaimedPlayer() == nil
}

// NormalizeName canonicalizes a player name for claim and lookup.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TurnOrder returns players sorted by ascending sequence. Ties break on slot
// creation order, which is stable.
func (g *Game) TurnOrder() []*Player {
	order := make([]*Player, len(g.Players))
	copy(order, g.Players)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Sequence < order[j].Sequence
	})
	return order
}

// CurrentPlayer returns the player currently drawing, or nil.
func (g *Game) CurrentPlayer() *Player {
	for _, p := range g.Players {
		if p.Current {
			return p
		}
	}
	return nil
}

// SetCurrent marks p as the drawing player. At most one player is current.
func (g *Game) SetCurrent(p *Player) {
	for _, other := range g.Players {
		other.Current = other == p
	}
}

// BeginFullRound opens a new full round and returns it.
func (g *Game) BeginFullRound() *FullRound {
	fr := &FullRound{Index: len(g.FullRounds)}
	g.FullRounds = append(g.FullRounds, fr)
	return fr
}

// CurrentFullRound returns the open full round, or nil before the first one.
func (g *Game) CurrentFullRound() *FullRound {
	if len(g.FullRounds) == 0 {
		return nil
	}
	return g.FullRounds[len(g.FullRounds)-1]
}

// Winner returns the first player whose clout has reached the win score.
func (g *Game) Winner() *Player {
	for _, p := range g.TurnOrder() {
		if g.Ledger.Clout(p) >= g.Rules.WinScore {
			return p
		}
	}
	return nil
}
