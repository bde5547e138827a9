package domain

// QueueEntry is a FIFO ticket representing an outstanding required action on
// a card instance. Tickets are deactivated, never deleted, so the queue
// doubles as an audit trail. At most one active ticket exists per instance.
type QueueEntry struct {
	Player   *Player
	Instance *CardInstance
	Idx      int
	Active   bool
}

// Enqueue appends a ticket for the instance on its holder's queue.
func (g *Game) Enqueue(ci *CardInstance) *QueueEntry {
	idx := 0
	for _, e := range g.queue {
		if e.Player == ci.Player && e.Idx >= idx {
			idx = e.Idx + 1
		}
	}
	entry := &QueueEntry{Player: ci.Player, Instance: ci, Idx: idx, Active: true}
	g.queue = append(g.queue, entry)
	return entry
}

// ActiveTicket returns the active ticket for the instance, or nil if it has
// already been resolved.
func (g *Game) ActiveTicket(ci *CardInstance) *QueueEntry {
	for _, e := range g.queue {
		if e.Instance == ci && e.Active {
			return e
		}
	}
	return nil
}

// Dequeue resolves the instance's ticket. Returns ErrDuplicateAction when the
// ticket was already resolved, which is how a lost race surfaces.
func (g *Game) Dequeue(ci *CardInstance) error {
	entry := g.ActiveTicket(ci)
	if entry == nil {
		return ErrDuplicateAction
	}
	entry.Active = false
	return nil
}

// QueuedInstance returns the next instance requiring action from p, in FIFO
// order, skipping discarded cards. Returns nil when p has nothing queued.
func (g *Game) QueuedInstance(p *Player) *CardInstance {
	var head *QueueEntry
	for _, e := range g.queue {
		if !e.Active || e.Player != p {
			continue
		}
		if e.Instance.Card.Discarded || e.Instance.Discarded {
			continue
		}
		if head == nil || e.Idx < head.Idx {
			head = e
		}
	}
	if head == nil {
		return nil
	}
	return head.Instance
}

// DeactivateCard resolves every outstanding ticket referencing the card, for
// all players. Used when a fake card is flagged and stops circulating.
func (g *Game) DeactivateCard(c *Card) {
	for _, e := range g.queue {
		if e.Active && e.Instance.Card == c {
			e.Active = false
		}
	}
}

// HasActiveTickets reports whether any player still owes an action.
func (g *Game) HasActiveTickets() bool {
	for _, e := range g.queue {
		if e.Active && !e.Instance.Card.Discarded && !e.Instance.Discarded {
			return true
		}
	}
	return false
}

// ActiveEntries returns the live tickets, head first per player. Used by the
// scheduler to re-prompt holders while draining a round.
func (g *Game) ActiveEntries() []*QueueEntry {
	var out []*QueueEntry
	for _, e := range g.queue {
		if e.Active && !e.Instance.Card.Discarded && !e.Instance.Discarded {
			out = append(out, e)
		}
	}
	return out
}
