package integration

import (
	"math/rand"
	"testing"

	"viralspiral/internal/app"
	"viralspiral/internal/autoplay"
	"viralspiral/internal/content"
	"viralspiral/internal/domain"
)

// testTable is a full in-process game: engine, scheduler and one autoplay
// agent per seat, all seeded so runs are reproducible.
type testTable struct {
	Game   *domain.Game
	Svc    *app.Service
	Sched  *app.Scheduler
	Agents []*autoplay.Agent
}

var seatNames = []string{"ada", "grace", "linus", "margaret", "dennis", "barbara"}

func newTestTable(t *testing.T, players int, seed int64, rules domain.Rules) *testTable {
	t.Helper()
	if players > len(seatNames) {
		t.Fatalf("at most %d seats supported, asked for %d", len(seatNames), players)
	}

	catalog := content.SampleCatalog()
	game, enc, err := app.NewGame("integration", "", players, catalog, rules)
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	svc := app.NewService(rand.New(rand.NewSource(seed)), enc)
	sched := app.NewScheduler(svc, game, domain.NewDeckSelector(rand.New(rand.NewSource(seed+1))))

	tbl := &testTable{Game: game, Svc: svc, Sched: sched}
	for i := 0; i < players; i++ {
		p, _, err := svc.Join(game, seatNames[i], "itest")
		if err != nil {
			t.Fatalf("seating %s: %v", seatNames[i], err)
		}
		tbl.Agents = append(tbl.Agents, &autoplay.Agent{
			PlayerID: p.ID,
			Name:     seatNames[i],
			Strategy: autoplay.NewRandomBrain(rand.New(rand.NewSource(seed + int64(i) + 2))),
		})
	}
	return tbl
}

// playToEnd ticks the scheduler and feeds every event through the agents
// until the game ends. Returns the number of ticks taken.
func (tb *testTable) playToEnd(t *testing.T, maxTicks int) int {
	t.Helper()
	tick := 0
	for ; tick < maxTicks && tb.Sched.Phase() != domain.PhaseEnded; tick++ {
		events := tb.Sched.Tick()
		tb.react(t, events)
	}
	if tb.Sched.Phase() != domain.PhaseEnded {
		t.Fatalf("game did not end within %d ticks", maxTicks)
	}
	return tick
}

func (tb *testTable) react(t *testing.T, events []app.Event) {
	t.Helper()
	for len(events) > 0 {
		var next []app.Event
		for _, ev := range events {
			for _, a := range tb.Agents {
				out, err := a.React(tb.Svc, tb.Game, ev)
				if err != nil {
					// Rejections happen when a prompt went stale
					// mid-batch; the agent simply moves on.
					continue
				}
				next = append(next, out...)
			}
		}
		events = next
	}
}
