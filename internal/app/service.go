package app

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"viralspiral/internal/content"
	"viralspiral/internal/domain"
)

// Service contains the engine use-cases operating on one game's state. Every
// action method serializes on the game lock, applies its effect and returns
// immediately with the events to deliver; nothing here blocks on scheduler
// state.
type Service struct {
	rng *rand.Rand
	enc *content.Encyclopedia
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. The encyclopedia may be nil when the game has no articles.
func NewService(rng *rand.Rand, enc *content.Encyclopedia) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, enc: enc}
}

// NewGame builds a game from a catalog: slots, communities, topics, deck and
// encyclopedia.
func NewGame(name, password string, playerCount int, catalog *content.Catalog, rules domain.Rules) (*domain.Game, *content.Encyclopedia, error) {
	if err := catalog.Validate(); err != nil {
		return nil, nil, err
	}
	if playerCount < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 players", domain.ErrNotAllowed)
	}
	g := domain.NewGame(name, password, playerCount, catalog.Colors, catalog.Topics, rules)
	if err := content.BuildDeck(g, catalog.Cards); err != nil {
		return nil, nil, err
	}
	enc := content.BuildEncyclopedia(g.Cards, catalog.Articles)
	return g, enc, nil
}

// Join claims an open slot for playerName, or refreshes the connection handle
// on a rejoin. Score rows are seeded on first claim.
func (s *Service) Join(g *domain.Game, playerName, clientID string) (*domain.Player, []Event, error) {
	g.Lock()
	defer g.Unlock()

	if p := g.PlayerByName(playerName); p != nil {
		p.ClientID = clientID
		return p, nil, nil
	}
	p := g.UnclaimedPlayer()
	if p == nil {
		return nil, nil, fmt.Errorf("%w: no open player slots", domain.ErrNotAllowed)
	}
	p.Name = domain.NormalizeName(playerName)
	p.ClientID = clientID
	g.Ledger.Initialize(p, g.Colors, g.Topics)

	ev := Event{Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{Player: summarizePlayer(g, p)}}
	return p, []Event{ev}, nil
}

// About builds the full game snapshot.
func (s *Service) About(g *domain.Game) About {
	g.Lock()
	defer g.Unlock()
	return s.aboutLocked(g)
}

func (s *Service) aboutLocked(g *domain.Game) About {
	out := About{
		GameID:     g.ID,
		Name:       g.Name,
		TGB:        g.TotalGlobalBias(),
		FullRounds: len(g.FullRounds),
		Ended:      g.Ended,
	}
	switch {
	case g.Ended:
		out.Phase = string(domain.PhaseEnded)
	case len(g.FullRounds) > 0:
		out.Phase = string(domain.PhaseRunning)
	default:
		out.Phase = string(domain.PhaseLobby)
	}
	for _, c := range g.Colors {
		out.Colors = append(out.Colors, c.Name)
	}
	for _, t := range g.Topics {
		out.Topics = append(out.Topics, t.Name)
	}
	for _, p := range g.Players {
		if p.Claimed() {
			out.Players = append(out.Players, summarizePlayer(g, p))
		}
	}
	if cur := g.CurrentPlayer(); cur != nil {
		out.CurrentDrawer = cur.Name
	}
	return out
}

// QueuedCard returns the next instance requiring action from the player, or
// nil.
func (s *Service) QueuedCard(g *domain.Game, playerID string) (*domain.CardInstance, error) {
	g.Lock()
	defer g.Unlock()
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: player %s", domain.ErrNotFound, playerID)
	}
	return g.QueuedInstance(p), nil
}

// QueuedCardPrompt re-sends the player's pending play_card prompt, for
// clients resyncing after a reconnect. No pending ticket yields no events.
func (s *Service) QueuedCardPrompt(g *domain.Game, playerID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: player %s", domain.ErrNotFound, playerID)
	}
	ci := g.QueuedInstance(p)
	if ci == nil {
		return nil, nil
	}
	return []Event{s.playCardPrompt(g, ci)}, nil
}

// Perform dispatches an action to its use-case. Validation errors wrap the
// engine taxonomy and leave game state unchanged.
func (s *Service) Perform(g *domain.Game, playerID string, action Action) ([]Event, error) {
	switch act := action.(type) {
	case KeepCard:
		return s.KeepCard(g, playerID, act.InstanceID)
	case DiscardCard:
		return s.DiscardCard(g, playerID, act.InstanceID)
	case PassCard:
		return s.PassCard(g, playerID, act.InstanceID, act.To)
	case ViralSpiral:
		return s.ViralSpiral(g, playerID, act.InstanceID, act.Recipients)
	case InitiateCancel:
		return s.InitiateCancel(g, playerID, act.Against, act.TopicID)
	case VoteCancel:
		return s.VoteCancel(g, playerID, act.StatusID, act.Yes)
	case FakeNews:
		return s.FakeNews(g, playerID, act.InstanceID, act.FakeID)
	case MarkAsFake:
		return s.MarkAsFake(g, playerID, act.InstanceID)
	case EncyclopediaSearch:
		return s.EncyclopediaSearch(g, playerID, act.CardID)
	default:
		return nil, fmt.Errorf("%w: unknown action %T", domain.ErrNotFound, action)
	}
}

// heldInstance resolves an instance the player currently holds with an
// active ticket.
func (s *Service) heldInstance(g *domain.Game, playerID, instanceID string) (*domain.Player, *domain.CardInstance, error) {
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, nil, fmt.Errorf("%w: player %s", domain.ErrNotFound, playerID)
	}
	ci := g.InstanceByID(instanceID)
	if ci == nil || ci.Player != p {
		return nil, nil, fmt.Errorf("%w: card instance %s", domain.ErrNotFound, instanceID)
	}
	if g.ActiveTicket(ci) == nil {
		return nil, nil, fmt.Errorf("%w: instance %s already resolved", domain.ErrDuplicateAction, instanceID)
	}
	return p, ci, nil
}

// selfReinforcement reports whether keeping the card feeds a leaning the
// holder already has: a strict sign match of magnitude at least one.
func selfReinforcement(g *domain.Game, p *domain.Player, c *domain.Card) bool {
	if c.BiasAgainst != nil && g.Ledger.Bias(p, c.BiasAgainst) >= 1 {
		return true
	}
	if c.AffinityTowards != nil && c.AffinityCount != 0 {
		if g.Ledger.Affinity(p, c.AffinityTowards)*c.AffinityCount > 0 {
			return true
		}
	}
	return false
}

// KeepCard resolves a ticket by keeping the card. Keeping a card that
// reinforces the holder's own leaning costs one clout.
func (s *Service) KeepCard(g *domain.Game, playerID, instanceID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()
	return s.resolveHold(g, playerID, instanceID, false, "keep_card")
}

// DiscardCard resolves a ticket by discarding the card; scoring matches
// KeepCard, and the instance is additionally marked discarded.
func (s *Service) DiscardCard(g *domain.Game, playerID, instanceID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()
	return s.resolveHold(g, playerID, instanceID, true, "discard_card")
}

func (s *Service) resolveHold(g *domain.Game, playerID, instanceID string, discard bool, action string) ([]Event, error) {
	p, ci, err := s.heldInstance(g, playerID, instanceID)
	if err != nil {
		return nil, err
	}
	if selfReinforcement(g, p, ci.Card) {
		g.Ledger.IncClout(p, -1)
	}
	if discard {
		ci.Discarded = true
	}
	if err := g.Dequeue(ci); err != nil {
		return nil, err
	}
	g.RecordPowers(p)
	return []Event{s.actionEvent(g, p, action, nil)}, nil
}

// PassCard passes a held instance to one allowed recipient and applies the
// pass scoring: one clout to the card's original player, the first-pass
// community debit for biased cards, and the passer's bias/affinity counters.
func (s *Service) PassCard(g *domain.Game, playerID, instanceID, toID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()

	p, ci, err := s.heldInstance(g, playerID, instanceID)
	if err != nil {
		return nil, err
	}
	to := g.PlayerByID(toID)
	if to == nil {
		return nil, fmt.Errorf("%w: recipient %s", domain.ErrNotFound, toID)
	}
	if !recipientAllowed(g, ci, to) {
		return nil, fmt.Errorf("%w: %s already held this card", domain.ErrNotAllowed, to.Name)
	}

	next := g.PassInstance(ci, to, false)
	if err := g.Dequeue(ci); err != nil {
		return nil, err
	}
	s.applyPassScores(g, p, to, ci)
	g.RecordPowers(p)

	events := []Event{
		s.actionEvent(g, p, "pass_card", map[string]string{"to": to.Name}),
		s.playCardPrompt(g, next),
	}
	return events, nil
}

// ViralSpiral broadcasts a held instance to several recipients. Requires the
// viral spiral power and the current drawer. The sender's ticket is dequeued
// once, after every send completes.
func (s *Service) ViralSpiral(g *domain.Game, playerID, instanceID string, recipientIDs []string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()

	p, ci, err := s.heldInstance(g, playerID, instanceID)
	if err != nil {
		return nil, err
	}
	if !g.HasPower(p, domain.PowerViralSpiral) {
		return nil, fmt.Errorf("%w: viral spiral power required", domain.ErrNotAllowed)
	}
	if !p.Current {
		return nil, fmt.Errorf("%w: only the current drawer may viral spiral", domain.ErrNotAllowed)
	}

	allowed := g.AllowedRecipients(ci)
	var targets []*domain.Player
	if len(recipientIDs) == 0 {
		targets = allowed
	} else {
		for _, id := range recipientIDs {
			to := g.PlayerByID(id)
			if to == nil {
				return nil, fmt.Errorf("%w: recipient %s", domain.ErrNotFound, id)
			}
			if !containsPlayer(allowed, to) {
				return nil, fmt.Errorf("%w: %s already held this card", domain.ErrNotAllowed, to.Name)
			}
			targets = append(targets, to)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: nobody left to receive this card", domain.ErrNotAllowed)
	}

	events := []Event{s.actionEvent(g, p, "viral_spiral", map[string]int{"recipients": len(targets)})}
	for _, to := range targets {
		next := g.PassInstance(ci, to, true)
		g.Ledger.IncClout(ci.Card.OriginalPlayer, 1)
		events = append(events, s.playCardPrompt(g, next))
	}
	// Counters and the first-pass debit apply once for the whole
	// broadcast; it is a single logical pass, and every broadcast
	// recipient is spared the debit like any pass recipient.
	s.applyPassCounters(g, p, ci.Card)
	if ci.Card.BiasAgainst != nil && ci.From == nil {
		s.applyFirstPassDebit(g, ci.Card, targets)
	}
	if err := g.Dequeue(ci); err != nil {
		return nil, err
	}
	g.RecordPowers(p)
	return events, nil
}

func (s *Service) applyPassScores(g *domain.Game, p, to *domain.Player, ci *domain.CardInstance) {
	g.Ledger.IncClout(ci.Card.OriginalPlayer, 1)
	if ci.Card.BiasAgainst != nil && ci.From == nil {
		s.applyFirstPassDebit(g, ci.Card, []*domain.Player{to})
	}
	s.applyPassCounters(g, p, ci.Card)
}

// applyFirstPassDebit charges every standing member of the targeted
// community one clout when a biased card first circulates. The original
// drawer and the recipients of that pass are spared: a recipient only
// becomes a holder with this pass.
func (s *Service) applyFirstPassDebit(g *domain.Game, c *domain.Card, recipients []*domain.Player) {
	for _, other := range g.Players {
		if !other.Claimed() || other.Color != c.BiasAgainst {
			continue
		}
		if other == c.OriginalPlayer || containsPlayer(recipients, other) {
			continue
		}
		g.Ledger.IncClout(other, -1)
		g.RecordPowers(other)
	}
}

func (s *Service) applyPassCounters(g *domain.Game, p *domain.Player, c *domain.Card) {
	if c.BiasAgainst != nil {
		g.Ledger.IncBias(p, c.BiasAgainst, 1)
	}
	if c.AffinityTowards != nil {
		g.Ledger.IncAffinity(p, c.AffinityTowards, c.AffinityCount)
	}
}

// Placeholder tokens a fake card's description may carry; conversion rewrites
// them to a concrete community.
var communityPlaceholders = []string{
	"[other community]",
	"[oppressed community]",
	"[dominant community]",
}

// FakeNews converts a held card into one of its precomputed fakes. Requires
// the fake news power and the current drawer.
func (s *Service) FakeNews(g *domain.Game, playerID, instanceID, fakeID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()

	p, ci, err := s.heldInstance(g, playerID, instanceID)
	if err != nil {
		return nil, err
	}
	if !g.HasPower(p, domain.PowerFakeNews) {
		return nil, fmt.Errorf("%w: fake news power required", domain.ErrNotAllowed)
	}
	if !p.Current {
		return nil, fmt.Errorf("%w: only the current drawer may fake a card", domain.ErrNotAllowed)
	}

	unused := ci.Card.UnusedFakes()
	if len(unused) == 0 {
		return nil, fmt.Errorf("%w: card has no unused fake variants", domain.ErrNotFound)
	}
	var fake *domain.Card
	if fakeID == "" {
		fake = unused[s.rng.Intn(len(unused))]
	} else {
		for _, f := range unused {
			if f.ID == fakeID {
				fake = f
			}
		}
		if fake == nil {
			return nil, fmt.Errorf("%w: fake variant %s", domain.ErrNotFound, fakeID)
		}
	}

	fake.FakedBy = p
	fake.OriginalPlayer = p
	s.resolvePlaceholder(g, p, fake)
	ci.Card = fake

	return []Event{
		s.actionEvent(g, p, "fake_news", summarizeCard(fake)),
		s.playCardPrompt(g, ci),
	}, nil
}

// resolvePlaceholder rewrites a bracketed community token in the fake's
// description to a random non-neutral community other than the actor's own,
// and points the card's bias at it.
func (s *Service) resolvePlaceholder(g *domain.Game, p *domain.Player, fake *domain.Card) {
	for _, token := range communityPlaceholders {
		if !strings.Contains(fake.Description, token) {
			continue
		}
		var candidates []*domain.Color
		for _, c := range g.Colors[1:] {
			if c != p.Color {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) == 0 {
			return
		}
		target := candidates[s.rng.Intn(len(candidates))]
		fake.Description = strings.ReplaceAll(fake.Description, token, target.Name)
		fake.BiasAgainst = target
		return
	}
}

// MarkAsFake lets any holder flag a held card. A correct flag punishes the
// player who spread the card and pulls it out of circulation everywhere; a
// false accusation costs the flagger one clout instead.
func (s *Service) MarkAsFake(g *domain.Game, playerID, instanceID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()

	p, ci, err := s.heldInstance(g, playerID, instanceID)
	if err != nil {
		return nil, err
	}

	if !ci.Card.Fake {
		g.Ledger.IncClout(p, -1)
		g.RecordPowers(p)
		// The ticket stays open; the holder still owes a resolution.
		return []Event{
			s.actionEvent(g, p, "mark_as_fake", map[string]bool{"was_fake": false}),
			s.playCardPrompt(g, ci),
		}, nil
	}

	if ci.From != nil {
		g.Ledger.IncClout(ci.From.Player, -1)
		g.RecordPowers(ci.From.Player)
	}
	ci.Discarded = true
	ci.Card.Discarded = true
	g.DeactivateCard(ci.Card)

	return []Event{s.actionEvent(g, p, "mark_as_fake", map[string]bool{"was_fake": true})}, nil
}

// InitiateCancel opens a cancel vote. Requires the cancel power, the current
// drawer, and a topic the initiator's own affinity qualifies for.
func (s *Service) InitiateCancel(g *domain.Game, playerID, againstID, topicID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()

	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: player %s", domain.ErrNotFound, playerID)
	}
	if !g.HasPower(p, domain.PowerCancel) {
		return nil, fmt.Errorf("%w: cancel power required", domain.ErrNotAllowed)
	}
	if !p.Current {
		return nil, fmt.Errorf("%w: only the current drawer may initiate a cancellation", domain.ErrNotAllowed)
	}
	against := g.PlayerByID(againstID)
	if against == nil || !against.Claimed() {
		return nil, fmt.Errorf("%w: player %s", domain.ErrNotFound, againstID)
	}
	topic := g.TopicByID(topicID)
	if topic == nil {
		return nil, fmt.Errorf("%w: topic %s", domain.ErrNotFound, topicID)
	}
	if !containsTopic(g.ValidTopicsForCancel(p), topic) {
		return nil, fmt.Errorf("%w: affinity toward %s below the cancel threshold", domain.ErrNotAllowed, topic.Name)
	}

	cs := g.InitiateCancel(p, against, topic)

	events := []Event{s.actionEvent(g, p, "initiate_cancel", map[string]string{
		"against": against.Name,
		"topic":   topic.Name,
	})}
	events = append(events, s.votePrompts(g, cs)...)
	return events, nil
}

// VoteCancel casts the player's ballot on a pending cancellation.
func (s *Service) VoteCancel(g *domain.Game, playerID, statusID string, yes bool) ([]Event, error) {
	g.Lock()
	defer g.Unlock()

	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: player %s", domain.ErrNotFound, playerID)
	}
	var cs *domain.CancelStatus
	if statusID != "" {
		for _, c := range g.Cancels {
			if c.ID == statusID {
				cs = c
			}
		}
	} else {
		cs, _ = g.PendingVote(p)
	}
	if cs == nil {
		return nil, fmt.Errorf("%w: no pending cancellation vote", domain.ErrNotFound)
	}
	if err := cs.CastVote(g, p, yes); err != nil {
		return nil, fmt.Errorf("cancel vote: %w", err)
	}

	result := map[string]string{"status": string(cs.Final)}
	if cs.Final != domain.CancelPending {
		result["against"] = cs.Against.Name
	}
	return []Event{s.actionEvent(g, p, "vote_cancel", result)}, nil
}

// EncyclopediaSearch returns the article behind a card to the requesting
// player only.
func (s *Service) EncyclopediaSearch(g *domain.Game, playerID, cardID string) ([]Event, error) {
	g.Lock()
	defer g.Unlock()

	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: player %s", domain.ErrNotFound, playerID)
	}
	if g.CardByID(cardID) == nil {
		return nil, fmt.Errorf("%w: card %s", domain.ErrNotFound, cardID)
	}
	var article *content.Article
	if s.enc != nil {
		article = s.enc.Search(cardID)
	}
	if article == nil {
		return nil, fmt.Errorf("%w: no article for card %s", domain.ErrNotFound, cardID)
	}
	ev := s.actionEvent(g, p, "encyclopedia_search", article.Render())
	ev.Recipients = []string{p.ID}
	return []Event{ev}, nil
}

// AllowedActions lists the action names the player may take on a held
// instance right now. Drives the play_card prompt.
func (s *Service) AllowedActions(g *domain.Game, p *domain.Player, ci *domain.CardInstance) []string {
	actions := []string{"keep_card", "discard_card", "mark_as_fake", "encyclopedia_search"}
	if len(g.AllowedRecipients(ci)) > 0 {
		actions = append(actions, "pass_card")
		if g.HasPower(p, domain.PowerViralSpiral) && p.Current {
			actions = append(actions, "viral_spiral")
		}
	}
	if g.HasPower(p, domain.PowerFakeNews) && p.Current && len(ci.Card.UnusedFakes()) > 0 {
		actions = append(actions, "fake_news")
	}
	if g.HasPower(p, domain.PowerCancel) && p.Current && len(g.ValidTopicsForCancel(p)) > 0 {
		actions = append(actions, "initiate_cancel")
	}
	return actions
}

// playCardPrompt builds the prompt event sent to an instance's holder.
func (s *Service) playCardPrompt(g *domain.Game, ci *domain.CardInstance) Event {
	p := ci.Player
	recipients := g.AllowedRecipients(ci)
	names := make([]string, 0, len(recipients))
	for _, r := range recipients {
		names = append(names, r.ID)
	}
	topics := make([]string, 0)
	for _, t := range g.ValidTopicsForCancel(p) {
		topics = append(topics, t.ID)
	}
	return Event{
		Kind: EventPlayCard,
		Payload: PlayCardPayload{
			Player:         p.ID,
			Instance:       summarizeInstance(ci),
			Recipients:     names,
			AllowedActions: s.AllowedActions(g, p, ci),
			CancelTopics:   topics,
		},
		Recipients: []string{p.ID},
	}
}

// votePrompts builds one targeted prompt per uncast ballot.
func (s *Service) votePrompts(g *domain.Game, cs *domain.CancelStatus) []Event {
	var out []Event
	for _, v := range cs.Votes {
		if v.Vote != domain.VoteUncast {
			continue
		}
		out = append(out, Event{
			Kind: EventVoteCancel,
			Payload: VoteCancelPayload{
				Voter:     v.Voter.ID,
				StatusID:  cs.ID,
				Initiator: cs.Initiator.Name,
				Against:   cs.Against.Name,
				Topic:     cs.Topic.Name,
			},
			Recipients: []string{v.Voter.ID},
		})
	}
	return out
}

func (s *Service) actionEvent(g *domain.Game, p *domain.Player, action string, result any) Event {
	return Event{
		Kind: EventActionPerformed,
		Payload: ActionPerformedPayload{
			Player: p.Name,
			Action: action,
			Result: result,
		},
	}
}

func recipientAllowed(g *domain.Game, ci *domain.CardInstance, to *domain.Player) bool {
	return containsPlayer(g.AllowedRecipients(ci), to)
}

func containsPlayer(players []*domain.Player, p *domain.Player) bool {
	for _, other := range players {
		if other == p {
			return true
		}
	}
	return false
}

func containsTopic(topics []*domain.Topic, t *domain.Topic) bool {
	for _, other := range topics {
		if other == t {
			return true
		}
	}
	return false
}
