package domain

import "testing"

func TestDrawCardCreatesRootInstanceAndTicket(t *testing.T) {
	g := testGame(t, 3)
	card := &Card{ID: "c1", Title: "headline"}
	g.Cards = append(g.Cards, card)

	ci := g.DrawCard(card, g.Players[0])

	if ci.From != nil {
		t.Fatal("root instance must have no predecessor")
	}
	if card.OriginalPlayer != g.Players[0] {
		t.Fatal("draw must mark the card's original player")
	}
	if ci.Status() != StatusHolding {
		t.Fatalf("status = %s, want holding", ci.Status())
	}
	if g.QueuedInstance(g.Players[0]) != ci {
		t.Fatal("draw must enqueue a ticket for the drawer")
	}
}

func TestAllowedRecipientsShrinksAlongChain(t *testing.T) {
	g := testGame(t, 4)
	card := &Card{ID: "c1"}
	g.Cards = append(g.Cards, card)

	ci := g.DrawCard(card, g.Players[0])
	if got := len(g.AllowedRecipients(ci)); got != 3 {
		t.Fatalf("recipients after draw = %d, want 3", got)
	}

	next := g.PassInstance(ci, g.Players[1], false)
	if got := len(g.AllowedRecipients(next)); got != 2 {
		t.Fatalf("recipients after one pass = %d, want 2", got)
	}
	for _, p := range g.AllowedRecipients(next) {
		if p == g.Players[0] || p == g.Players[1] {
			t.Fatalf("%s already held the card and must not reappear", p.Name)
		}
	}

	last := g.PassInstance(next, g.Players[2], false)
	if got := len(g.AllowedRecipients(last)); got != 1 {
		t.Fatalf("recipients after two passes = %d, want 1", got)
	}
}

func TestAllowedRecipientsSkipsUnclaimedSlots(t *testing.T) {
	g := testGame(t, 3)
	g.Players[2].Name = "" // vacate a slot
	card := &Card{ID: "c1"}
	g.Cards = append(g.Cards, card)

	ci := g.DrawCard(card, g.Players[0])
	recipients := g.AllowedRecipients(ci)
	if len(recipients) != 1 || recipients[0] != g.Players[1] {
		t.Fatalf("unexpected recipients %v", recipients)
	}
}

func TestPassInstanceLinksChain(t *testing.T) {
	g := testGame(t, 3)
	card := &Card{ID: "c1"}
	g.Cards = append(g.Cards, card)

	ci := g.DrawCard(card, g.Players[0])
	next := g.PassInstance(ci, g.Players[1], false)

	if next.From != ci || next.Player != g.Players[1] {
		t.Fatal("successor instance badly linked")
	}
	if ci.Status() != StatusPassed {
		t.Fatalf("origin status = %s, want passed", ci.Status())
	}
	if g.QueuedInstance(g.Players[1]) != next {
		t.Fatal("pass must enqueue the recipient")
	}
}

func TestUnusedFakes(t *testing.T) {
	real := &Card{ID: "r"}
	f1 := &Card{ID: "f1", Fake: true, Original: real}
	f2 := &Card{ID: "f2", Fake: true, Original: real}
	real.Fakes = []*Card{f1, f2}

	if got := len(real.UnusedFakes()); got != 2 {
		t.Fatalf("unused fakes = %d, want 2", got)
	}
	f1.FakedBy = &Player{ID: "p"}
	got := real.UnusedFakes()
	if len(got) != 1 || got[0] != f2 {
		t.Fatalf("unexpected unused fakes %v", got)
	}
}

func TestQueueFIFOAndDeactivate(t *testing.T) {
	g := testGame(t, 2)
	c1 := &Card{ID: "c1"}
	c2 := &Card{ID: "c2"}
	g.Cards = append(g.Cards, c1, c2)

	first := g.DrawCard(c1, g.Players[0])
	second := g.DrawCard(c2, g.Players[0])

	if g.QueuedInstance(g.Players[0]) != first {
		t.Fatal("queue must be FIFO")
	}
	if err := g.Dequeue(first); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := g.Dequeue(first); err != ErrDuplicateAction {
		t.Fatalf("second dequeue error = %v, want ErrDuplicateAction", err)
	}
	if g.QueuedInstance(g.Players[0]) != second {
		t.Fatal("next ticket should surface after dequeue")
	}

	g.DeactivateCard(c2)
	if g.QueuedInstance(g.Players[0]) != nil {
		t.Fatal("deactivated card must not surface in the queue")
	}
	if g.HasActiveTickets() {
		t.Fatal("no active tickets expected")
	}
}
