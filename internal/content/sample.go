package content

import "fmt"

// SampleCatalog generates a self-contained catalog big enough to play a full
// game without external files. The tester and tests use it; real deployments
// load a curated catalog with LoadCatalog.
func SampleCatalog() *Catalog {
	c := &Catalog{
		Colors: []string{"grey", "red", "blue", "yellow"},
		Topics: []string{"cats", "skub"},
	}

	communities := []string{"red", "blue", "yellow"}
	for i := 0; i < 12; i++ {
		target := communities[i%len(communities)]
		c.Cards = append(c.Cards, CardSpec{
			Title:       fmt.Sprintf("Outrage %d", i+1),
			Description: fmt.Sprintf("Shocking claims about the %s community surface again.", target),
			BiasAgainst: target,
			TGB:         i / 4,
		})
	}

	topics := []string{"cats", "skub"}
	for i := 0; i < 12; i++ {
		topic := topics[i%len(topics)]
		count := 1
		if i%4 == 3 {
			count = -1
		}
		spec := CardSpec{
			Title:           fmt.Sprintf("Affinity %d", i+1),
			Description:     fmt.Sprintf("A heartwarming story about %s.", topic),
			AffinityTowards: topic,
			AffinityCount:   count,
			TGB:             i / 4,
		}
		if i%2 == 0 {
			spec.Fakes = []CardSpec{{
				Title:           fmt.Sprintf("Affinity %d (doctored)", i+1),
				Description:     fmt.Sprintf("The [other community] is ruining %s for everyone.", topic),
				AffinityTowards: topic,
				AffinityCount:   count,
			}}
		}
		c.Cards = append(c.Cards, spec)
	}

	for i := 0; i < 10; i++ {
		spec := CardSpec{
			Title:       fmt.Sprintf("Topical %d", i+1),
			Description: fmt.Sprintf("Local news item number %d.", i+1),
			TGB:         i / 5,
		}
		if i%2 == 1 {
			spec.Fakes = []CardSpec{{
				Title:       fmt.Sprintf("Topical %d (doctored)", i+1),
				Description: fmt.Sprintf("Outrageous spin on local news item number %d.", i+1),
			}}
		}
		c.Cards = append(c.Cards, spec)
	}

	// Standalone fake cards so the fake/true axis has candidates even
	// before anyone converts a card.
	for i := 0; i < 6; i++ {
		c.Cards = append(c.Cards, CardSpec{
			Title:       fmt.Sprintf("Hoax %d", i+1),
			Description: fmt.Sprintf("Completely fabricated story number %d.", i+1),
			Fake:        true,
			TGB:         i / 3,
		})
	}

	for i := 0; i < 5; i++ {
		c.Articles = append(c.Articles, ArticleSpec{
			Title:   fmt.Sprintf("Topical %d", i+1),
			Content: fmt.Sprintf("The verified background of local news item number %d.", i+1),
			Type:    "news",
			Author:  "The Record",
		})
	}
	c.Articles = append(c.Articles, ArticleSpec{
		Title:       "Hoax 1",
		Content:     "There is no credible source behind this story.",
		Type:        "news",
		Author:      "The Record",
		FakeContent: "Sources confirm the shocking story is all true.",
		FakeType:    "blog",
		FakeAuthor:  "Anonymous Patriot",
		IsFake:      true,
	})

	return c
}
