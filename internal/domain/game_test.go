package domain

import "testing"

func testGame(t *testing.T, playerCount int) *Game {
	t.Helper()
	g := NewGame("test", "pw", playerCount,
		[]string{"grey", "red", "blue", "yellow"},
		[]string{"cats", "skub"},
		DefaultRules())
	for i, p := range g.Players {
		p.Name = []string{"ana", "bo", "cy", "dee", "ed"}[i%5]
		g.Ledger.Initialize(p, g.Colors, g.Topics)
	}
	return g
}

func TestNewGameSlots(t *testing.T) {
	g := NewGame("t", "pw", 3, []string{"grey", "red", "blue"}, []string{"cats"}, DefaultRules())

	if len(g.Players) != 3 {
		t.Fatalf("players = %d, want 3", len(g.Players))
	}
	for i, p := range g.Players {
		if p.Claimed() {
			t.Fatalf("slot %d should start unclaimed", i)
		}
		if p.Color == g.NeutralColor() {
			t.Fatalf("slot %d assigned the neutral color", i)
		}
	}
	if g.NeutralColor().Name != "grey" {
		t.Fatalf("neutral = %s, want grey", g.NeutralColor().Name)
	}
	if g.AllClaimed() {
		t.Fatal("AllClaimed should be false with open slots")
	}
}

func TestTurnOrderFollowsSequence(t *testing.T) {
	g := testGame(t, 3)
	g.Players[0].Sequence = 1000
	order := g.TurnOrder()
	if order[0] != g.Players[1] || order[1] != g.Players[2] || order[2] != g.Players[0] {
		t.Fatalf("unexpected order: %s %s %s", order[0].Name, order[1].Name, order[2].Name)
	}
}

func TestSetCurrentIsExclusive(t *testing.T) {
	g := testGame(t, 3)
	g.SetCurrent(g.Players[1])
	g.SetCurrent(g.Players[2])

	current := 0
	for _, p := range g.Players {
		if p.Current {
			current++
			if p != g.Players[2] {
				t.Fatalf("wrong current player %s", p.Name)
			}
		}
	}
	if current != 1 {
		t.Fatalf("current players = %d, want exactly 1", current)
	}
}

func TestTotalGlobalBias(t *testing.T) {
	g := testGame(t, 2)
	red := g.Colors[1]
	g.Cards = []*Card{
		{ID: "a", BiasAgainst: red},
		{ID: "b", BiasAgainst: red},
		{ID: "c"},
	}
	if got := g.TotalGlobalBias(); got != 0 {
		t.Fatalf("tgb = %d before any draw, want 0", got)
	}
	g.Cards[0].OriginalPlayer = g.Players[0]
	g.Cards[2].OriginalPlayer = g.Players[0]
	if got := g.TotalGlobalBias(); got != 1 {
		t.Fatalf("tgb = %d, want 1", got)
	}
}

func TestWinner(t *testing.T) {
	g := testGame(t, 2)
	if g.Winner() != nil {
		t.Fatal("no winner expected at start")
	}
	g.Ledger.IncClout(g.Players[1], g.Rules.WinScore)
	if w := g.Winner(); w != g.Players[1] {
		t.Fatalf("winner = %v, want %s", w, g.Players[1].Name)
	}
}

func TestFullRounds(t *testing.T) {
	g := testGame(t, 2)
	if g.CurrentFullRound() != nil {
		t.Fatal("no full round before the first begins")
	}
	fr := g.BeginFullRound()
	if fr.Index != 0 || g.CurrentFullRound() != fr {
		t.Fatalf("unexpected first full round %+v", fr)
	}
	if next := g.BeginFullRound(); next.Index != 1 {
		t.Fatalf("second full round index = %d, want 1", next.Index)
	}
}
