package domain

import "time"

// Power is a special ability unlocked by accumulated counters.
type Power string

const (
	// PowerViralSpiral lets the current drawer broadcast an instance to
	// several recipients at once.
	PowerViralSpiral Power = "viral_spiral"
	// PowerCancel lets the current drawer start a cancel vote.
	PowerCancel Power = "cancel"
	// PowerFakeNews lets the current drawer convert a held card into one
	// of its fake variants.
	PowerFakeNews Power = "fake_news"
)

// AllPowers lists every power for iteration and snapshots.
var AllPowers = []Power{PowerViralSpiral, PowerCancel, PowerFakeNews}

// PowerEntry is one row of the append-only activation log. The current state
// of a (power, player) pair is its most recent row; history is never mutated,
// which keeps concurrent writers safe with insert-only semantics.
type PowerEntry struct {
	Power  Power
	Player *Player
	Active bool
	At     time.Time
}

// ComputePowers derives the power set a player holds right now from the score
// ledger. Pure with respect to the log.
func (g *Game) ComputePowers(p *Player) map[Power]bool {
	bias := g.Ledger.MaxAbsBias(p, g.Colors)
	affinity := g.Ledger.MaxAbsAffinity(p, g.Topics)
	return map[Power]bool{
		PowerViralSpiral: affinity >= g.Rules.ViralSpiralAffinityCount && bias >= g.Rules.ViralSpiralBiasCount,
		PowerCancel:      affinity >= g.Rules.CancellingAffinityCount,
		PowerFakeNews:    bias >= g.Rules.FakeNewsBiasCount,
	}
}

// RecordPowers recomputes p's powers and appends a log row for every power
// whose activation state changed. Called after any action that moves scores.
func (g *Game) RecordPowers(p *Player) {
	now := time.Now()
	computed := g.ComputePowers(p)
	for _, pw := range AllPowers {
		if g.HasPower(p, pw) != computed[pw] {
			g.powerLog = append(g.powerLog, &PowerEntry{
				Power:  pw,
				Player: p,
				Active: computed[pw],
				At:     now,
			})
		}
	}
}

// HasPower reports the latest logged activation state for (p, pw).
func (g *Game) HasPower(p *Player, pw Power) bool {
	for i := len(g.powerLog) - 1; i >= 0; i-- {
		entry := g.powerLog[i]
		if entry.Player == p && entry.Power == pw {
			return entry.Active
		}
	}
	return false
}

// ActivePowers lists the powers p currently holds, per the log.
func (g *Game) ActivePowers(p *Player) []Power {
	var out []Power
	for _, pw := range AllPowers {
		if g.HasPower(p, pw) {
			out = append(out, pw)
		}
	}
	return out
}
