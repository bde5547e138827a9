package domain

import "github.com/google/uuid"

// VoteValue is the state of one ballot.
type VoteValue string

const (
	VoteUncast VoteValue = "uncast"
	VoteNo     VoteValue = "no"
	VoteYes    VoteValue = "yes"
)

// CancelOutcome is the final status of a cancellation attempt.
type CancelOutcome string

const (
	CancelPending CancelOutcome = "pending"
	CancelNo      CancelOutcome = "no"
	CancelYes     CancelOutcome = "yes"
)

// cancelMajority is the yes fraction needed to win; meeting it exactly wins.
const cancelMajority = 0.5

// CancelVote is one eligible voter's ballot on a CancelStatus.
type CancelVote struct {
	Voter *Player
	Vote  VoteValue
}

// CancelStatus records one initiated cancellation attempt. The outcome stays
// pending until every eligible ballot is cast, then freezes; it is never
// recomputed on later rounds.
type CancelStatus struct {
	ID        string
	FullRound int
	Initiator *Player
	Against   *Player
	Topic     *Topic
	Final     CancelOutcome
	Votes     []*CancelVote

	// ResolvedFullRound is the full round the vote completed in. The
	// target is cancelled for exactly the following full round.
	ResolvedFullRound int
}

// ValidTopicsForCancel lists the topics p's own affinity magnitude qualifies
// for initiating a cancellation on.
func (g *Game) ValidTopicsForCancel(p *Player) []*Topic {
	var out []*Topic
	for _, t := range g.Topics {
		v := g.Ledger.Affinity(p, t)
		if v < 0 {
			v = -v
		}
		if v >= g.Rules.CancellingAffinityCount {
			out = append(out, t)
		}
	}
	return out
}

// InitiateCancel opens a cancellation attempt by initiator against a player
// over a topic, creating one ballot per eligible voter. The initiator's own
// ballot is pre-cast as yes; a single-voter attempt therefore resolves
// immediately. Power and turn validation is the caller's responsibility.
func (g *Game) InitiateCancel(initiator, against *Player, topic *Topic) *CancelStatus {
	fullRound := 0
	if fr := g.CurrentFullRound(); fr != nil {
		fullRound = fr.Index
	}
	cs := &CancelStatus{
		ID:                uuid.NewString(),
		FullRound:         fullRound,
		Initiator:         initiator,
		Against:           against,
		Topic:             topic,
		Final:             CancelPending,
		ResolvedFullRound: -1,
	}
	initiatorAffinity := g.Ledger.Affinity(initiator, topic)
	for _, p := range g.Players {
		if !p.Claimed() {
			continue
		}
		if p != initiator && !g.Rules.CancelVoteAllPlayers {
			// Affinity must be non-zero and share the initiator's sign.
			v := g.Ledger.Affinity(p, topic)
			if v == 0 || v*initiatorAffinity < 0 {
				continue
			}
		}
		vote := VoteUncast
		if p == initiator {
			vote = VoteYes
		}
		cs.Votes = append(cs.Votes, &CancelVote{Voter: p, Vote: vote})
	}
	g.Cancels = append(g.Cancels, cs)
	cs.maybeResolve(g)
	return cs
}

// CastVote records a ballot. Voting twice, or voting on a resolved attempt,
// fails with ErrDuplicateAction; a voter with no ballot gets ErrNotFound.
func (cs *CancelStatus) CastVote(g *Game, voter *Player, yes bool) error {
	if cs.Final != CancelPending {
		return ErrDuplicateAction
	}
	for _, v := range cs.Votes {
		if v.Voter != voter {
			continue
		}
		if v.Vote != VoteUncast {
			return ErrDuplicateAction
		}
		if yes {
			v.Vote = VoteYes
		} else {
			v.Vote = VoteNo
		}
		cs.maybeResolve(g)
		return nil
	}
	return ErrNotFound
}

// maybeResolve freezes the outcome once every ballot has been cast.
func (cs *CancelStatus) maybeResolve(g *Game) {
	yes := 0
	for _, v := range cs.Votes {
		switch v.Vote {
		case VoteUncast:
			return
		case VoteYes:
			yes++
		}
	}
	if float64(yes)/float64(len(cs.Votes)) >= cancelMajority {
		cs.Final = CancelYes
	} else {
		cs.Final = CancelNo
	}
	if fr := g.CurrentFullRound(); fr != nil {
		cs.ResolvedFullRound = fr.Index
	} else {
		cs.ResolvedFullRound = 0
	}
}

// PendingCancels returns the unresolved cancellation attempts.
func (g *Game) PendingCancels() []*CancelStatus {
	var out []*CancelStatus
	for _, cs := range g.Cancels {
		if cs.Final == CancelPending {
			out = append(out, cs)
		}
	}
	return out
}

// PendingVote returns an unresolved status holding an uncast ballot for p,
// along with the ballot itself. Nil when p has nothing to vote on.
func (g *Game) PendingVote(p *Player) (*CancelStatus, *CancelVote) {
	for _, cs := range g.Cancels {
		if cs.Final != CancelPending {
			continue
		}
		for _, v := range cs.Votes {
			if v.Voter == p && v.Vote == VoteUncast {
				return cs, v
			}
		}
	}
	return nil, nil
}

// Cancelled reports whether p sits out the current full round: true during
// exactly the full round following the one a yes vote against p resolved in.
func (g *Game) Cancelled(p *Player) bool {
	fr := g.CurrentFullRound()
	if fr == nil {
		return false
	}
	for _, cs := range g.Cancels {
		if cs.Final == CancelYes && cs.Against == p && fr.Index == cs.ResolvedFullRound+1 {
			return true
		}
	}
	return false
}
