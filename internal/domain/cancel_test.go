package domain

import "testing"

func TestValidTopicsForCancel(t *testing.T) {
	g := testGame(t, 2)
	p := g.Players[0]
	cats, skub := g.Topics[0], g.Topics[1]

	g.Ledger.IncAffinity(p, cats, 2)
	if topics := g.ValidTopicsForCancel(p); len(topics) != 0 {
		t.Fatalf("topics below threshold = %v, want none", topics)
	}

	g.Ledger.IncAffinity(p, cats, 1)
	g.Ledger.IncAffinity(p, skub, -3)
	topics := g.ValidTopicsForCancel(p)
	if len(topics) != 2 {
		t.Fatalf("topics = %v, want both (magnitude counts)", topics)
	}
}

func TestInitiateCancelEligibility(t *testing.T) {
	g := testGame(t, 4)
	init, match, opposed, neutral := g.Players[0], g.Players[1], g.Players[2], g.Players[3]
	cats := g.Topics[0]
	g.BeginFullRound()

	g.Ledger.IncAffinity(init, cats, 3)
	g.Ledger.IncAffinity(match, cats, 1)
	g.Ledger.IncAffinity(opposed, cats, -2)
	_ = neutral // affinity stays zero

	cs := g.InitiateCancel(init, opposed, cats)

	if len(cs.Votes) != 2 {
		t.Fatalf("ballots = %d, want initiator + sign-matching voter", len(cs.Votes))
	}
	for _, v := range cs.Votes {
		switch v.Voter {
		case init:
			if v.Vote != VoteYes {
				t.Fatal("initiator ballot must be pre-cast yes")
			}
		case match:
			if v.Vote != VoteUncast {
				t.Fatal("matching voter ballot must start uncast")
			}
		default:
			t.Fatalf("unexpected voter %s", v.Voter.Name)
		}
	}
	if cs.Final != CancelPending {
		t.Fatalf("final = %s before all ballots cast, want pending", cs.Final)
	}
}

func TestInitiateCancelAllPlayersConfig(t *testing.T) {
	g := testGame(t, 3)
	g.Rules.CancelVoteAllPlayers = true
	g.BeginFullRound()
	g.Ledger.IncAffinity(g.Players[0], g.Topics[0], 3)

	cs := g.InitiateCancel(g.Players[0], g.Players[1], g.Topics[0])
	if len(cs.Votes) != 3 {
		t.Fatalf("ballots = %d, want every claimed player", len(cs.Votes))
	}
}

func TestCancelTallyAndOutcomes(t *testing.T) {
	tests := []struct {
		name  string
		votes []bool // ballots cast by the two non-initiator voters
		want  CancelOutcome
	}{
		{"unanimous yes", []bool{true, true}, CancelYes},
		{"exact majority wins", []bool{true, false}, CancelYes}, // 2/3 >= 0.5
		{"majority no", []bool{false, false}, CancelNo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame(t, 3)
			g.Rules.CancelVoteAllPlayers = true
			g.BeginFullRound()
			init, against := g.Players[0], g.Players[1]
			g.Ledger.IncAffinity(init, g.Topics[0], 3)

			cs := g.InitiateCancel(init, against, g.Topics[0])
			voters := []*Player{g.Players[1], g.Players[2]}
			for i, yes := range tt.votes {
				if cs.Final != CancelPending {
					t.Fatalf("resolved early at ballot %d", i)
				}
				if err := cs.CastVote(g, voters[i], yes); err != nil {
					t.Fatalf("cast: %v", err)
				}
			}
			if cs.Final != tt.want {
				t.Fatalf("final = %s, want %s", cs.Final, tt.want)
			}
		})
	}
}

func TestCastVoteRaces(t *testing.T) {
	g := testGame(t, 3)
	g.Rules.CancelVoteAllPlayers = true
	g.BeginFullRound()
	g.Ledger.IncAffinity(g.Players[0], g.Topics[0], 3)
	cs := g.InitiateCancel(g.Players[0], g.Players[1], g.Topics[0])

	if err := cs.CastVote(g, g.Players[1], true); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if err := cs.CastVote(g, g.Players[1], false); err != ErrDuplicateAction {
		t.Fatalf("double vote error = %v, want ErrDuplicateAction", err)
	}
	outsider := &Player{ID: "ghost", Name: "ghost"}
	if err := cs.CastVote(g, outsider, true); err != ErrNotFound {
		t.Fatalf("outsider vote error = %v, want ErrNotFound", err)
	}
}

func TestSingleVoterResolvesImmediately(t *testing.T) {
	g := testGame(t, 3)
	g.BeginFullRound()
	init := g.Players[0]
	g.Ledger.IncAffinity(init, g.Topics[0], 3)
	// No other player shares the affinity sign, so the initiator is the
	// only eligible voter and the pre-cast yes settles it.
	cs := g.InitiateCancel(init, g.Players[1], g.Topics[0])
	if cs.Final != CancelYes {
		t.Fatalf("final = %s, want immediate yes", cs.Final)
	}
}

func TestCancelledLastsExactlyOneFullRound(t *testing.T) {
	g := testGame(t, 3)
	g.Rules.CancelVoteAllPlayers = true
	g.BeginFullRound() // index 0
	init, target := g.Players[0], g.Players[1]
	g.Ledger.IncAffinity(init, g.Topics[0], 3)

	cs := g.InitiateCancel(init, target, g.Topics[0])
	_ = cs.CastVote(g, g.Players[1], false)
	_ = cs.CastVote(g, g.Players[2], true)
	if cs.Final != CancelYes {
		t.Fatalf("final = %s, want yes", cs.Final)
	}

	if g.Cancelled(target) {
		t.Fatal("penalty must not apply in the round the vote resolved")
	}
	g.BeginFullRound() // index 1: the penalty round
	if !g.Cancelled(target) {
		t.Fatal("target should sit out the following full round")
	}
	if g.Cancelled(init) {
		t.Fatal("only the target is cancelled")
	}
	g.BeginFullRound() // index 2: penalty over
	if g.Cancelled(target) {
		t.Fatal("penalty lasts exactly one full round")
	}
}

func TestPendingVoteLookup(t *testing.T) {
	g := testGame(t, 3)
	g.Rules.CancelVoteAllPlayers = true
	g.BeginFullRound()
	g.Ledger.IncAffinity(g.Players[0], g.Topics[0], 3)
	cs := g.InitiateCancel(g.Players[0], g.Players[1], g.Topics[0])

	status, vote := g.PendingVote(g.Players[2])
	if status != cs || vote == nil || vote.Voter != g.Players[2] {
		t.Fatal("pending vote lookup failed")
	}
	if s, _ := g.PendingVote(g.Players[0]); s != nil {
		t.Fatal("initiator has no pending ballot")
	}
}
