package app

// Action is the closed set of player requests the engine accepts. Each
// variant carries its own typed payload; Service.Perform dispatches on the
// concrete type. This replaces dispatch-by-string-name at the engine
// boundary.
type Action interface {
	ActionName() string
}

// KeepCard resolves a queued instance by keeping it.
type KeepCard struct {
	InstanceID string `json:"instance_id"`
}

// DiscardCard resolves a queued instance by discarding it.
type DiscardCard struct {
	InstanceID string `json:"instance_id"`
}

// PassCard passes a queued instance to one allowed recipient.
type PassCard struct {
	InstanceID string `json:"instance_id"`
	To         string `json:"to"`
}

// ViralSpiral broadcasts a queued instance to several recipients at once.
// Empty Recipients means everyone still allowed.
type ViralSpiral struct {
	InstanceID string   `json:"instance_id"`
	Recipients []string `json:"recipients,omitempty"`
}

// InitiateCancel opens a cancel vote against a player over a topic.
type InitiateCancel struct {
	Against string `json:"against"`
	TopicID string `json:"topic_id"`
}

// VoteCancel casts the voter's ballot on a pending cancellation. StatusID may
// be empty, in which case the voter's single pending ballot is used.
type VoteCancel struct {
	StatusID string `json:"status_id,omitempty"`
	Yes      bool   `json:"yes"`
}

// FakeNews converts a held card into one of its fake variants. FakeID may be
// empty, in which case an unused variant is chosen at random.
type FakeNews struct {
	InstanceID string `json:"instance_id"`
	FakeID     string `json:"fake_id,omitempty"`
}

// MarkAsFake flags a held card as fake news.
type MarkAsFake struct {
	InstanceID string `json:"instance_id"`
}

// EncyclopediaSearch looks up the article behind a card.
type EncyclopediaSearch struct {
	CardID string `json:"card_id"`
}

func (KeepCard) ActionName() string           { return "keep_card" }
func (DiscardCard) ActionName() string        { return "discard_card" }
func (PassCard) ActionName() string           { return "pass_card" }
func (ViralSpiral) ActionName() string        { return "viral_spiral" }
func (InitiateCancel) ActionName() string     { return "initiate_cancel" }
func (VoteCancel) ActionName() string         { return "vote_cancel" }
func (FakeNews) ActionName() string           { return "fake_news" }
func (MarkAsFake) ActionName() string         { return "mark_as_fake" }
func (EncyclopediaSearch) ActionName() string { return "encyclopedia_search" }
