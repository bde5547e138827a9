package app

import (
	"context"
	"fmt"
	"time"

	"viralspiral/internal/domain"
)

// Scheduler drives one game's turn loop. It is deliberately tick-based: each
// Tick performs at most one step of bookkeeping and returns the events to
// deliver, so a transport layer polling on its own clock (such as a match
// loop) can host it directly. Run wraps Tick in a ticker for in-process use.
//
// Player actions never pass through the scheduler; they hit the Service
// concurrently and the next Tick observes their effect. The scheduler is the
// sole writer of turn order and the current flag.
type Scheduler struct {
	svc      *Service
	g        *domain.Game
	selector *domain.DeckSelector

	// HeartbeatTicks is the number of ticks between snapshot broadcasts
	// while waiting for players. Zero disables heartbeats.
	HeartbeatTicks int

	phase     domain.Phase
	tick      int
	remaining int // turns left in the current full round
	err       error
}

// NewScheduler builds a scheduler for g. The selector falls back to a
// time-seeded one when nil.
func NewScheduler(svc *Service, g *domain.Game, selector *domain.DeckSelector) *Scheduler {
	if selector == nil {
		selector = domain.NewDeckSelector(nil)
	}
	return &Scheduler{
		svc:            svc,
		g:              g,
		selector:       selector,
		HeartbeatTicks: 10,
		phase:          domain.PhaseLobby,
	}
}

// Phase returns the scheduler's current phase.
func (s *Scheduler) Phase() domain.Phase { return s.phase }

// Err returns the fatal error that ended the game, if any.
func (s *Scheduler) Err() error { return s.err }

// Tick advances the game by at most one scheduling step.
func (s *Scheduler) Tick() []Event {
	s.g.Lock()
	defer s.g.Unlock()

	s.tick++
	switch s.phase {
	case domain.PhaseLobby:
		return s.tickLobby()
	case domain.PhaseRunning:
		return s.tickRunning()
	default:
		return nil
	}
}

func (s *Scheduler) tickLobby() []Event {
	if s.g.AllClaimed() {
		s.phase = domain.PhaseRunning
		return s.tickRunning()
	}
	if s.HeartbeatTicks > 0 && s.tick%s.HeartbeatTicks == 0 {
		return []Event{{Kind: EventHeartbeat, Payload: s.svc.aboutLocked(s.g)}}
	}
	return nil
}

func (s *Scheduler) tickRunning() []Event {
	if w := s.g.Winner(); w != nil {
		return s.end(w, nil)
	}
	if s.g.TotalGlobalBias() >= s.g.Rules.TGBEndScore {
		return s.end(nil, nil)
	}

	// Drain before advancing: every outstanding ticket and pending ballot
	// across all players must resolve first. Powers are re-evaluated on
	// each pass so thresholds crossed by concurrent actions take effect
	// before the next draw.
	if s.g.HasActiveTickets() || len(s.g.PendingCancels()) > 0 {
		for _, p := range s.g.Players {
			if p.Claimed() {
				s.g.RecordPowers(p)
			}
		}
		return nil
	}

	var events []Event
	if cur := s.g.CurrentPlayer(); cur != nil {
		s.g.SetCurrent(nil)
		events = append(events, Event{
			Kind:    EventRoundEnd,
			Payload: RoundPayload{Player: summarizePlayer(s.g, cur)},
		})
	}

	if s.remaining == 0 {
		s.g.BeginFullRound()
		s.remaining = s.claimedCount()
	}

	next := s.g.TurnOrder()[0]
	s.remaining--

	if s.g.Cancelled(next) {
		// The skipped player still rotates to the back so play never
		// stalls on them.
		next.Sequence += s.g.Rules.SequenceBump
		return append(events, Event{
			Kind:    EventRoundStart,
			Payload: RoundPayload{Player: summarizePlayer(s.g, next), Skipped: true},
		})
	}

	card, err := s.selector.Select(s.g, next)
	if err != nil {
		return s.end(nil, fmt.Errorf("drawing for %s: %w", next.Name, err))
	}
	ci := s.g.DrawCard(card, next)
	fr := s.g.CurrentFullRound()
	fr.Rounds = append(fr.Rounds, &domain.Round{Player: next, Card: card})
	next.Sequence += s.g.Rules.SequenceBump
	s.g.SetCurrent(next)

	events = append(events,
		Event{Kind: EventRoundStart, Payload: RoundPayload{Player: summarizePlayer(s.g, next)}},
		s.svc.playCardPrompt(s.g, ci),
	)
	return events
}

// end stops the scheduler and broadcasts the endgame snapshot. A nil winner
// with a nil error means the world lost to bias.
func (s *Scheduler) end(winner *domain.Player, err error) []Event {
	s.phase = domain.PhaseEnded
	s.g.Ended = true
	s.err = err

	payload := EndgamePayload{About: s.svc.aboutLocked(s.g)}
	if winner != nil {
		payload.Winner = winner.Name
	}
	if err != nil {
		payload.Error = err.Error()
	}
	return []Event{{Kind: EventEndgame, Payload: payload}}
}

func (s *Scheduler) claimedCount() int {
	n := 0
	for _, p := range s.g.Players {
		if p.Claimed() {
			n++
		}
	}
	return n
}

// Run drives the scheduler with a real clock, forwarding each tick's events
// to sink, until the game ends or ctx is cancelled. Returns the fatal game
// error, if any.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, sink EventSink) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, ev := range s.Tick() {
				sink.Send(ev)
			}
			if s.phase == domain.PhaseEnded {
				return s.err
			}
		}
	}
}
