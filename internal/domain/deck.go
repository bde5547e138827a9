package domain

import (
	"math/rand"
	"time"
)

// DeckSelector picks the next card to draw. Deterministic given its random
// source; every selection branch tie-breaks uniformly among eligible cards.
type DeckSelector struct {
	rng *rand.Rand
}

// NewDeckSelector constructs a selector with the provided rng or a
// time-seeded default.
func NewDeckSelector(rng *rand.Rand) *DeckSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DeckSelector{rng: rng}
}

// Select picks the next card for the drawing player.
//
// With probability Rules.BiasCardProbability it draws a bias card targeting
// neither the drawer's own community nor the neutral one. Otherwise it picks
// the affinity-vs-topical axis with a fair coin and decides fake-vs-true by
// comparing a draw against tgb/TGBEndScore, so fakes cannot appear while the
// total global bias is zero and grow more likely as it climbs. When the
// chosen branch has no candidate it falls back to the bias filter before
// giving up with ErrOutOfCards.
func (s *DeckSelector) Select(g *Game, drawer *Player) (*Card, error) {
	tgb := g.TotalGlobalBias()

	if s.rng.Float64() < g.Rules.BiasCardProbability {
		if c := s.pick(biasCandidates(g, drawer, tgb)); c != nil {
			return c, nil
		}
	}

	wantAffinity := s.rng.Float64() < 0.5
	wantFake := s.rng.Float64() < float64(tgb)/float64(g.Rules.TGBEndScore)

	if c := s.pick(axisCandidates(g, tgb, wantAffinity, wantFake)); c != nil {
		return c, nil
	}
	if c := s.pick(biasCandidates(g, drawer, tgb)); c != nil {
		return c, nil
	}
	return nil, ErrOutOfCards
}

// pick tie-breaks uniformly at random.
func (s *DeckSelector) pick(cands []*Card) *Card {
	if len(cands) == 0 {
		return nil
	}
	return cands[s.rng.Intn(len(cands))]
}

// drawable filters out cards already in play, discarded, or gated behind a
// higher total global bias than allowed.
func drawable(c *Card, tgbLimit int) bool {
	return !c.Discarded && c.OriginalPlayer == nil && c.TGB <= tgbLimit
}

// biasCandidates lists bias cards eligible for the drawer: biased against
// somebody, never the drawer's own community, the neutral community, or a
// configured exclusion. Bias cards unlock slightly ahead of the current tgb.
func biasCandidates(g *Game, drawer *Player, tgb int) []*Card {
	var out []*Card
	for _, c := range g.Cards {
		if !drawable(c, tgb+2) || c.BiasAgainst == nil {
			continue
		}
		if c.BiasAgainst == drawer.Color || c.BiasAgainst == g.NeutralColor() {
			continue
		}
		if g.Rules.BiasTargetExcluded(c.BiasAgainst.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// axisCandidates lists affinity or topical cards on the fake/true axis. A
// fake card must not have been claimed for a fake-news conversion already.
func axisCandidates(g *Game, tgb int, wantAffinity, wantFake bool) []*Card {
	var out []*Card
	for _, c := range g.Cards {
		if !drawable(c, tgb) || c.Fake != wantFake {
			continue
		}
		if wantFake && c.FakedBy != nil {
			continue
		}
		if wantAffinity {
			if c.AffinityTowards == nil {
				continue
			}
		} else {
			if c.AffinityTowards != nil || c.BiasAgainst != nil {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
