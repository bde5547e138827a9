package domain

import "sync"

// ScoreKind discriminates ledger rows.
type ScoreKind string

const (
	// ScoreClout is the player's primary score. Never negative.
	ScoreClout ScoreKind = "clout"
	// ScoreBias counts passes of cards biased against a color.
	ScoreBias ScoreKind = "bias"
	// ScoreAffinity accumulates signed affinity toward a topic.
	ScoreAffinity ScoreKind = "affinity"
)

type scoreKey struct {
	player string
	kind   ScoreKind
	target string
}

// Ledger stores per-player counters keyed by (player, kind, target). Each
// increment is atomic relative to concurrent increments of other rows, so two
// pass chains resolving at once cannot lose updates.
type Ledger struct {
	mu   sync.Mutex
	rows map[scoreKey]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{rows: make(map[scoreKey]int)}
}

// Initialize seeds zero rows for a newly claimed player so snapshots list
// every counter from the start.
func (l *Ledger) Initialize(p *Player, colors []*Color, topics []*Topic) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[scoreKey{p.ID, ScoreClout, ""}] += 0
	for _, c := range colors {
		l.rows[scoreKey{p.ID, ScoreBias, c.ID}] += 0
	}
	for _, t := range topics {
		l.rows[scoreKey{p.ID, ScoreAffinity, t.ID}] += 0
	}
}

// IncClout adjusts a player's clout, clamping the result at zero from below.
func (l *Ledger) IncClout(p *Player, delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := scoreKey{p.ID, ScoreClout, ""}
	next := l.rows[key] + delta
	if next < 0 {
		next = 0
	}
	l.rows[key] = next
}

// Clout returns a player's current clout.
func (l *Ledger) Clout(p *Player) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows[scoreKey{p.ID, ScoreClout, ""}]
}

// IncBias adjusts a player's bias counter against a color. Unclamped.
func (l *Ledger) IncBias(p *Player, c *Color, delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[scoreKey{p.ID, ScoreBias, c.ID}] += delta
}

// Bias returns a player's bias counter against a color.
func (l *Ledger) Bias(p *Player, c *Color) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows[scoreKey{p.ID, ScoreBias, c.ID}]
}

// IncAffinity adjusts a player's affinity toward a topic. Unclamped, signed.
func (l *Ledger) IncAffinity(p *Player, t *Topic, delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[scoreKey{p.ID, ScoreAffinity, t.ID}] += delta
}

// Affinity returns a player's affinity toward a topic.
func (l *Ledger) Affinity(p *Player, t *Topic) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows[scoreKey{p.ID, ScoreAffinity, t.ID}]
}

// MaxAbsBias returns the player's largest absolute bias counter.
func (l *Ledger) MaxAbsBias(p *Player, colors []*Color) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	max := 0
	for _, c := range colors {
		v := l.rows[scoreKey{p.ID, ScoreBias, c.ID}]
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

// MaxAbsAffinity returns the player's largest absolute affinity counter.
func (l *Ledger) MaxAbsAffinity(p *Player, topics []*Topic) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	max := 0
	for _, t := range topics {
		v := l.rows[scoreKey{p.ID, ScoreAffinity, t.ID}]
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

// PlayerScores is a read-only snapshot of one player's counters.
type PlayerScores struct {
	Clout    int
	Bias     map[string]int // color name -> count
	Affinity map[string]int // topic name -> count
}

// Snapshot copies a player's counters for reporting.
func (l *Ledger) Snapshot(p *Player, colors []*Color, topics []*Topic) PlayerScores {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := PlayerScores{
		Clout:    l.rows[scoreKey{p.ID, ScoreClout, ""}],
		Bias:     make(map[string]int, len(colors)),
		Affinity: make(map[string]int, len(topics)),
	}
	for _, c := range colors {
		out.Bias[c.Name] = l.rows[scoreKey{p.ID, ScoreBias, c.ID}]
	}
	for _, t := range topics {
		out.Affinity[t.Name] = l.rows[scoreKey{p.ID, ScoreAffinity, t.ID}]
	}
	return out
}
