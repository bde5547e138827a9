package content

import (
	"os"
	"path/filepath"
	"testing"

	"viralspiral/internal/domain"
)

func buildTestGame(t *testing.T, c *Catalog) *domain.Game {
	t.Helper()
	g := domain.NewGame("t", "pw", 2, c.Colors, c.Topics, domain.DefaultRules())
	if err := BuildDeck(g, c.Cards); err != nil {
		t.Fatalf("build deck: %v", err)
	}
	return g
}

func TestBuildDeckLinksFakes(t *testing.T) {
	c := &Catalog{
		Colors: []string{"grey", "red"},
		Topics: []string{"cats"},
		Cards: []CardSpec{
			{
				Title:           "original",
				Description:     "a story",
				AffinityTowards: "cats",
				AffinityCount:   1,
				Fakes: []CardSpec{
					{Title: "forgery one", Description: "a twisted story", AffinityTowards: "cats", AffinityCount: 1},
					{Title: "forgery two", Description: "another twist", AffinityTowards: "cats", AffinityCount: -1},
				},
			},
		},
	}

	g := buildTestGame(t, c)
	if len(g.Cards) != 3 {
		t.Fatalf("cards = %d, want original plus two fakes", len(g.Cards))
	}
	original := g.Cards[0]
	if original.Fake || len(original.Fakes) != 2 {
		t.Fatalf("original badly built: fake=%v fakes=%d", original.Fake, len(original.Fakes))
	}
	for _, f := range original.Fakes {
		if !f.Fake || f.Original != original {
			t.Fatalf("fake %q not linked to its original", f.Title)
		}
	}
	if original.AffinityTowards == nil || original.AffinityTowards.Name != "cats" {
		t.Fatal("affinity topic not resolved")
	}
}

func TestBuildDeckRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name string
		spec CardSpec
	}{
		{"unknown topic", CardSpec{Title: "x", AffinityTowards: "dogs"}},
		{"unknown color", CardSpec{Title: "x", BiasAgainst: "green"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewGame("t", "pw", 2, []string{"grey", "red"}, []string{"cats"}, domain.DefaultRules())
			if err := BuildDeck(g, []CardSpec{tt.spec}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadCatalogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	raw := `{
		"colors": ["grey", "red"],
		"topics": ["cats"],
		"cards": [
			{"title": "a", "description": "d", "bias_against": "red", "tgb": 1},
			{"title": "b", "description": "d", "fakes": [{"title": "b fake", "description": "df"}]}
		]
	}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Cards) != 2 || len(c.Cards[1].Fakes) != 1 {
		t.Fatalf("unexpected catalog %+v", c)
	}
	if c.Cards[0].TGB != 1 {
		t.Fatalf("tgb = %d, want 1", c.Cards[0].TGB)
	}
}

func TestLoadCatalogValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"colors": ["grey"], "topics": [], "cards": []}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSampleCatalogIsPlayable(t *testing.T) {
	c := SampleCatalog()
	if err := c.Validate(); err != nil {
		t.Fatalf("sample catalog invalid: %v", err)
	}
	g := buildTestGame(t, c)

	var bias, affinity, topical, fakes int
	for _, card := range g.Cards {
		switch {
		case card.BiasAgainst != nil:
			bias++
		case card.AffinityTowards != nil:
			affinity++
		default:
			topical++
		}
		if card.Fake {
			fakes++
		}
	}
	if bias == 0 || affinity == 0 || topical == 0 || fakes == 0 {
		t.Fatalf("sample deck missing a branch: bias=%d affinity=%d topical=%d fakes=%d",
			bias, affinity, topical, fakes)
	}
}

func TestEncyclopediaMatchAndRender(t *testing.T) {
	c := SampleCatalog()
	g := buildTestGame(t, c)
	enc := BuildEncyclopedia(g.Cards, c.Articles)

	if enc.Len() == 0 {
		t.Fatal("no articles matched any card")
	}

	var hoax *domain.Card
	for _, card := range g.Cards {
		if card.Title == "Hoax 1" {
			hoax = card
		}
	}
	if hoax == nil {
		t.Fatal("sample catalog lost Hoax 1")
	}
	article := enc.Search(hoax.ID)
	if article == nil {
		t.Fatal("no article for Hoax 1")
	}
	rendered := article.Render()
	if rendered.Author != "Anonymous Patriot" {
		t.Fatalf("fake article should render its fake face, got author %q", rendered.Author)
	}

	if enc.Search("missing") != nil {
		t.Fatal("unknown card should have no article")
	}
}
