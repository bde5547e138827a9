package content

import (
	"strings"

	"viralspiral/internal/domain"
)

// Article is an encyclopedia entry backing one card. Fake articles carry an
// alternate rendering used when the article itself is the forgery.
type Article struct {
	CardID      string
	Title       string
	Content     string
	Type        string
	Author      string
	FakeContent string
	FakeType    string
	FakeAuthor  string
	IsFake      bool
}

// RenderedArticle is what an encyclopedia search returns to a player.
type RenderedArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Author  string `json:"author"`
}

// Render returns the true or fake face of the article.
func (a *Article) Render() RenderedArticle {
	if a.IsFake && a.FakeContent != "" && a.FakeType != "" && a.FakeAuthor != "" {
		return RenderedArticle{Title: a.Title, Content: a.FakeContent, Type: a.FakeType, Author: a.FakeAuthor}
	}
	return RenderedArticle{Title: a.Title, Content: a.Content, Type: a.Type, Author: a.Author}
}

// Encyclopedia indexes articles by card. Articles whose title matches no card
// are dropped, same as the original importer.
type Encyclopedia struct {
	byCard map[string]*Article
}

// BuildEncyclopedia matches article specs against the deck by title
// containment, case-insensitive.
func BuildEncyclopedia(cards []*domain.Card, specs []ArticleSpec) *Encyclopedia {
	enc := &Encyclopedia{byCard: make(map[string]*Article)}
	for _, spec := range specs {
		card := matchCard(cards, spec.Title)
		if card == nil {
			continue
		}
		enc.byCard[card.ID] = &Article{
			CardID:      card.ID,
			Title:       spec.Title,
			Content:     spec.Content,
			Type:        spec.Type,
			Author:      spec.Author,
			FakeContent: spec.FakeContent,
			FakeType:    spec.FakeType,
			FakeAuthor:  spec.FakeAuthor,
			IsFake:      spec.IsFake,
		}
	}
	return enc
}

func matchCard(cards []*domain.Card, title string) *domain.Card {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}
	for _, c := range cards {
		if strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) {
			return c
		}
	}
	return nil
}

// Search returns the article behind a card, or nil when the card has none.
func (e *Encyclopedia) Search(cardID string) *Article {
	if e == nil {
		return nil
	}
	return e.byCard[cardID]
}

// Len reports how many cards have articles.
func (e *Encyclopedia) Len() int {
	return len(e.byCard)
}
