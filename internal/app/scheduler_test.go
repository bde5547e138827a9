package app

import (
	"errors"
	"math/rand"
	"testing"

	"viralspiral/internal/content"
	"viralspiral/internal/domain"
)

func schedGame(t *testing.T, catalog *content.Catalog, names []string, rules domain.Rules) (*Service, *domain.Game, *Scheduler) {
	t.Helper()
	g, enc, err := NewGame("sched", "pw", len(names), catalog, rules)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	svc := NewService(rand.New(rand.NewSource(11)), enc)
	for _, name := range names {
		if _, _, err := svc.Join(g, name, "client"); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	sched := NewScheduler(svc, g, domain.NewDeckSelector(rand.New(rand.NewSource(11))))
	return svc, g, sched
}

// keepAll resolves every play_card prompt in events by keeping the card.
func keepAll(t *testing.T, svc *Service, g *domain.Game, events []Event) {
	t.Helper()
	for _, ev := range events {
		if ev.Kind != EventPlayCard {
			continue
		}
		p := ev.Payload.(PlayCardPayload)
		if _, err := svc.KeepCard(g, p.Player, p.Instance.ID); err != nil {
			t.Fatalf("keep for %s: %v", p.Player, err)
		}
	}
}

func TestSchedulerLobbyHeartbeat(t *testing.T) {
	g, enc, err := NewGame("sched", "pw", 2, testCatalog(), domain.DefaultRules())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	svc := NewService(rand.New(rand.NewSource(1)), enc)
	if _, _, err := svc.Join(g, "ana", "c"); err != nil {
		t.Fatalf("join: %v", err)
	}
	sched := NewScheduler(svc, g, nil)
	sched.HeartbeatTicks = 2

	if events := sched.Tick(); len(events) != 0 {
		t.Fatalf("tick 1 should be silent, got %v", events)
	}
	events := sched.Tick()
	if len(events) != 1 || events[0].Kind != EventHeartbeat {
		t.Fatalf("tick 2 should heartbeat, got %v", events)
	}
	if sched.Phase() != domain.PhaseLobby {
		t.Fatalf("phase = %s, want lobby with an open slot", sched.Phase())
	}
}

func TestSchedulerStartsWhenAllClaimed(t *testing.T) {
	_, g, sched := schedGame(t, testCatalog(), []string{"ana", "bo"}, domain.DefaultRules())

	events := sched.Tick()
	if sched.Phase() != domain.PhaseRunning {
		t.Fatalf("phase = %s, want running", sched.Phase())
	}

	var started, prompted bool
	for _, ev := range events {
		switch ev.Kind {
		case EventRoundStart:
			started = true
		case EventPlayCard:
			prompted = true
		}
	}
	if !started || !prompted {
		t.Fatalf("first tick should start a round and prompt the drawer, got %v", events)
	}
	if g.CurrentPlayer() == nil {
		t.Fatal("someone should be the current drawer")
	}
	fr := g.CurrentFullRound()
	if fr == nil || len(fr.Rounds) != 1 {
		t.Fatal("the draw should be recorded under the first full round")
	}
}

func TestSchedulerWaitsForOutstandingTickets(t *testing.T) {
	svc, g, sched := schedGame(t, testCatalog(), []string{"ana", "bo"}, domain.DefaultRules())

	first := sched.Tick()
	drawer := g.CurrentPlayer()

	if events := sched.Tick(); len(events) != 0 {
		t.Fatalf("scheduler should wait on the open ticket, got %v", events)
	}

	keepAll(t, svc, g, first)
	events := sched.Tick()

	var ended, started bool
	for _, ev := range events {
		switch ev.Kind {
		case EventRoundEnd:
			ended = true
		case EventRoundStart:
			started = true
		}
	}
	if !ended || !started {
		t.Fatalf("draining should end the round and start the next, got %v", events)
	}
	if next := g.CurrentPlayer(); next == nil || next == drawer {
		t.Fatal("the turn should rotate to the other player")
	}
}

func TestSchedulerRotatesThroughFullRound(t *testing.T) {
	svc, g, sched := schedGame(t, testCatalog(), []string{"ana", "bo", "cy"}, domain.DefaultRules())

	for i := 0; i < 3; i++ {
		keepAll(t, svc, g, sched.Tick())
	}

	fr := g.FullRounds[0]
	if len(fr.Rounds) != 3 {
		t.Fatalf("rounds in first full round = %d, want 3", len(fr.Rounds))
	}
	seen := map[string]bool{}
	for _, r := range fr.Rounds {
		if seen[r.Player.Name] {
			t.Fatalf("%s drew twice in one full round", r.Player.Name)
		}
		seen[r.Player.Name] = true
	}

	keepAll(t, svc, g, sched.Tick())
	if len(g.FullRounds) != 2 {
		t.Fatalf("full rounds = %d, want a second one opened", len(g.FullRounds))
	}
}

func TestSchedulerDeclaresWinner(t *testing.T) {
	svc, g, sched := schedGame(t, testCatalog(), []string{"ana", "bo"}, domain.DefaultRules())
	keepAll(t, svc, g, sched.Tick())

	ana := g.PlayerByName("ana")
	g.Ledger.IncClout(ana, g.Rules.WinScore)

	events := sched.Tick()
	if len(events) != 1 || events[0].Kind != EventEndgame {
		t.Fatalf("expected a single endgame event, got %v", events)
	}
	payload := events[0].Payload.(EndgamePayload)
	if payload.Winner != "ana" || payload.Error != "" {
		t.Fatalf("endgame payload = %+v, want ana winning cleanly", payload)
	}
	if sched.Phase() != domain.PhaseEnded || !g.Ended {
		t.Fatal("the game should be over")
	}
	if events := sched.Tick(); len(events) != 0 {
		t.Fatalf("ended scheduler should be inert, got %v", events)
	}
}

func TestSchedulerSkipsCancelledPlayer(t *testing.T) {
	svc, g, sched := schedGame(t, testCatalog(), []string{"ana", "bo"}, domain.DefaultRules())
	bo := g.PlayerByName("bo")

	// Full round 0: both players draw and keep.
	keepAll(t, svc, g, sched.Tick())
	keepAll(t, svc, g, sched.Tick())

	// A cancellation resolved during full round 0 silences bo for full
	// round 1 only.
	g.Cancels = append(g.Cancels, &domain.CancelStatus{
		Against:           bo,
		Final:             domain.CancelYes,
		ResolvedFullRound: 0,
	})

	keepAll(t, svc, g, sched.Tick()) // full round 1 opens, ana draws
	boSeq := bo.Sequence

	events := sched.Tick()
	var skipped bool
	for _, ev := range events {
		if ev.Kind == EventRoundStart {
			p := ev.Payload.(RoundPayload)
			if p.Player.Name == "bo" && p.Skipped {
				skipped = true
			}
		}
	}
	if !skipped {
		t.Fatalf("bo's turn should be announced as skipped, got %v", events)
	}
	if bo.Sequence != boSeq+g.Rules.SequenceBump {
		t.Fatal("a skipped player still rotates to the back")
	}
	if g.QueuedInstance(bo) != nil {
		t.Fatal("a skipped player draws nothing")
	}

	// Full round 2: the penalty has lapsed.
	keepAll(t, svc, g, sched.Tick())
	keepAll(t, svc, g, sched.Tick())
	fr := g.FullRounds[2]
	names := map[string]bool{}
	for _, r := range fr.Rounds {
		names[r.Player.Name] = true
	}
	if !names["bo"] {
		t.Fatal("bo should draw again once the penalty round is over")
	}
}

func TestSchedulerPendingCancelBlocksAdvance(t *testing.T) {
	svc, g, sched := schedGame(t, testCatalog(), []string{"ana", "bo"}, domain.DefaultRules())
	keepAll(t, svc, g, sched.Tick())

	ana, bo := g.PlayerByName("ana"), g.PlayerByName("bo")
	g.Ledger.IncAffinity(ana, g.Topics[0], 3)
	g.Ledger.IncAffinity(bo, g.Topics[0], 1)
	g.InitiateCancel(ana, bo, g.Topics[0])

	if events := sched.Tick(); len(events) != 0 {
		t.Fatalf("a pending ballot should block the next draw, got %v", events)
	}
	// The drain pass keeps the power log current.
	if !g.HasPower(ana, domain.PowerCancel) {
		t.Fatal("powers should be re-evaluated while draining")
	}

	cs := g.PendingCancels()[0]
	if err := cs.CastVote(g, bo, true); err != nil {
		t.Fatalf("vote: %v", err)
	}
	events := sched.Tick()
	if len(events) == 0 {
		t.Fatal("the resolved vote should unblock the scheduler")
	}
	keepAll(t, svc, g, events)
}

func TestSchedulerEndsOnExhaustedDeck(t *testing.T) {
	catalog := &content.Catalog{
		Colors: []string{"grey", "red", "blue"},
		Topics: []string{"cats"},
		Cards: []content.CardSpec{
			{Title: "Cat lovers", Description: "m1", AffinityTowards: "cats", AffinityCount: 1},
			{Title: "Plain story", Description: "m2"},
		},
	}
	svc, g, sched := schedGame(t, catalog, []string{"ana", "bo"}, domain.DefaultRules())

	for i := 0; i < 20 && sched.Phase() != domain.PhaseEnded; i++ {
		keepAll(t, svc, g, sched.Tick())
	}

	if sched.Phase() != domain.PhaseEnded {
		t.Fatal("a two-card deck should run out")
	}
	if !errors.Is(sched.Err(), domain.ErrOutOfCards) {
		t.Fatalf("err = %v, want ErrOutOfCards", sched.Err())
	}
	if g.Winner() != nil {
		t.Fatal("nobody should win an exhausted game")
	}
}

func TestSchedulerEndsAtBiasCap(t *testing.T) {
	rules := domain.DefaultRules()
	rules.TGBEndScore = 1
	svc, g, sched := schedGame(t, testCatalog(), []string{"ana", "bo"}, rules)
	keepAll(t, svc, g, sched.Tick())

	// Mark a biased card drawn so the total global bias hits the cap.
	ana := g.PlayerByName("ana")
	for _, c := range g.Cards {
		if c.BiasAgainst != nil && c.OriginalPlayer == nil {
			c.OriginalPlayer = ana
			break
		}
	}

	events := sched.Tick()
	if len(events) != 1 || events[0].Kind != EventEndgame {
		t.Fatalf("expected endgame at the bias cap, got %v", events)
	}
	payload := events[0].Payload.(EndgamePayload)
	if payload.Winner != "" {
		t.Fatalf("the world losing has no winner, got %q", payload.Winner)
	}
}
