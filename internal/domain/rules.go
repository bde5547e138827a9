package domain

// Rules carries the tunable constants for one game. Values are fixed at game
// creation; the config package maps the host configuration file onto this.
type Rules struct {
	// WinScore ends the game when any player's clout reaches it.
	WinScore int

	// TGBEndScore scales the fake-card draw probability: the chance of a
	// fake card is tgb/TGBEndScore, so it is 0 at game start and rises as
	// biased cards circulate.
	TGBEndScore int

	// BiasCardProbability is the constant chance that a draw produces a
	// bias card. Historically tuned between 0.1 and 0.5.
	BiasCardProbability float64

	// Power activation thresholds, compared against the largest absolute
	// per-topic affinity / per-color bias counter.
	ViralSpiralAffinityCount int
	ViralSpiralBiasCount     int
	CancellingAffinityCount  int
	FakeNewsBiasCount        int

	// CancelVoteAllPlayers makes every claimed player eligible to vote on
	// a cancellation. When false only players whose affinity toward the
	// topic matches the initiator's sign may vote.
	CancelVoteAllPlayers bool

	// ExcludedBiasTargets lists color names that can never be a bias-card
	// target, beyond the neutral community. Empty by default.
	ExcludedBiasTargets []string

	// SequenceBump is added to a player's turn sequence after they draw
	// (or are skipped while cancelled) so play rotates.
	SequenceBump int
}

// DefaultRules returns the stock rule set.
func DefaultRules() Rules {
	return Rules{
		WinScore:                 10,
		TGBEndScore:              15,
		BiasCardProbability:      0.2,
		ViralSpiralAffinityCount: 2,
		ViralSpiralBiasCount:     2,
		CancellingAffinityCount:  3,
		FakeNewsBiasCount:        3,
		CancelVoteAllPlayers:     false,
		SequenceBump:             1000,
	}
}

// BiasTargetExcluded reports whether the color name is barred from being a
// bias-card target by configuration.
func (r Rules) BiasTargetExcluded(colorName string) bool {
	for _, name := range r.ExcludedBiasTargets {
		if name == colorName {
			return true
		}
	}
	return false
}
