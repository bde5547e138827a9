// Package content loads the static catalogs a game is created from: colors,
// affinity topics, the card deck (with nested fake variants) and the
// encyclopedia articles. Catalogs are read once at game creation.
package content

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"viralspiral/internal/domain"
)

// CardSpec describes one card template. Fakes are consumed recursively: each
// entry becomes a fake variant pointing back at its original.
type CardSpec struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	AffinityTowards string     `json:"affinity_towards,omitempty"`
	AffinityCount   int        `json:"affinity_count,omitempty"`
	BiasAgainst     string     `json:"bias_against,omitempty"`
	Fake            bool       `json:"fake,omitempty"`
	TGB             int        `json:"tgb,omitempty"`
	Storyline       string     `json:"storyline,omitempty"`
	StorylineIndex  int        `json:"storyline_index,omitempty"`
	Fakes           []CardSpec `json:"fakes,omitempty"`
}

// ArticleSpec describes one encyclopedia article, keyed to a card by title.
type ArticleSpec struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Type        string `json:"type"`
	Author      string `json:"author"`
	FakeContent string `json:"fake_content,omitempty"`
	FakeType    string `json:"fake_type,omitempty"`
	FakeAuthor  string `json:"fake_author,omitempty"`
	IsFake      bool   `json:"is_fake,omitempty"`
}

// Catalog bundles everything needed to set up a game.
type Catalog struct {
	Colors   []string      `json:"colors"`
	Topics   []string      `json:"topics"`
	Cards    []CardSpec    `json:"cards"`
	Articles []ArticleSpec `json:"articles,omitempty"`
}

// LoadCatalog reads a catalog JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog is usable for game setup.
func (c *Catalog) Validate() error {
	if len(c.Colors) < 2 {
		return fmt.Errorf("catalog needs a neutral color and at least one community, got %d", len(c.Colors))
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("catalog has no affinity topics")
	}
	if len(c.Cards) == 0 {
		return fmt.Errorf("catalog has no cards")
	}
	return nil
}

// BuildDeck materializes the card specs into the game, resolving color and
// topic names and linking fake variants to their originals.
func BuildDeck(g *domain.Game, specs []CardSpec) error {
	for _, spec := range specs {
		card, err := buildCard(g, spec)
		if err != nil {
			return err
		}
		for _, fakeSpec := range spec.Fakes {
			fakeSpec.Fake = true
			fake, err := buildCard(g, fakeSpec)
			if err != nil {
				return err
			}
			fake.Original = card
			card.Fakes = append(card.Fakes, fake)
		}
	}
	return nil
}

func buildCard(g *domain.Game, spec CardSpec) (*domain.Card, error) {
	card := &domain.Card{
		ID:             uuid.NewString(),
		Title:          spec.Title,
		Description:    spec.Description,
		AffinityCount:  spec.AffinityCount,
		Fake:           spec.Fake,
		TGB:            spec.TGB,
		Storyline:      spec.Storyline,
		StorylineIndex: spec.StorylineIndex,
	}
	if spec.AffinityTowards != "" {
		topic := topicByName(g, spec.AffinityTowards)
		if topic == nil {
			return nil, fmt.Errorf("card %q references unknown topic %q", spec.Title, spec.AffinityTowards)
		}
		card.AffinityTowards = topic
	}
	if spec.BiasAgainst != "" {
		color := colorByName(g, spec.BiasAgainst)
		if color == nil {
			return nil, fmt.Errorf("card %q references unknown color %q", spec.Title, spec.BiasAgainst)
		}
		card.BiasAgainst = color
	}
	g.Cards = append(g.Cards, card)
	return card, nil
}

func topicByName(g *domain.Game, name string) *domain.Topic {
	for _, t := range g.Topics {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func colorByName(g *domain.Game, name string) *domain.Color {
	for _, c := range g.Colors {
		if c.Name == name {
			return c
		}
	}
	return nil
}
