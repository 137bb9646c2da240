package seed

import (
	"github.com/AdlenSouci/memory-app/internal/deck"
)

// Catalog is a merged set of datasets. It implements deck.SeedSource.
type Catalog struct {
	data Dataset
}

// NewCatalog merges datasets in order.
func NewCatalog(sets ...Dataset) *Catalog {
	c := &Catalog{}
	for _, d := range sets {
		c.add(d)
	}
	return c
}

func (c *Catalog) add(d Dataset) {
	if d.Categories != nil {
		if c.data.Categories == nil {
			c.data.Categories = []Category{}
		}
		c.data.Categories = append(c.data.Categories, d.Categories...)
	}
	c.data.Themes = append(c.data.Themes, d.Themes...)
	c.data.Cards = append(c.data.Cards, d.Cards...)
}

// Dataset returns the merged raw content.
func (c *Catalog) Dataset() Dataset {
	return c.data
}

// Snapshot converts the catalog to deck entities, filling defaults for
// missing fields. Categories stays nil when no dataset defined any.
func (c *Catalog) Snapshot(today string) deck.Snapshot {
	var snap deck.Snapshot

	if c.data.Categories != nil {
		snap.Categories = make([]deck.Category, 0, len(c.data.Categories))
		for _, cat := range c.data.Categories {
			snap.Categories = append(snap.Categories, deck.Category{
				ID:   string(cat.ID),
				Name: cat.Name,
			})
		}
	}

	snap.Themes = make([]deck.Theme, 0, len(c.data.Themes))
	for _, t := range c.data.Themes {
		snap.Themes = append(snap.Themes, deck.Theme{
			ID:             string(t.ID),
			CategoryID:     or(string(t.CategoryID), deck.DefaultCategoryID),
			Title:          t.Title,
			MaxLevel:       orInt(t.MaxLevel, deck.DefaultMaxLevel),
			NewCardsPerDay: orInt(t.NewCardsPerDay, deck.DefaultNewCardsPerDay),
		})
	}

	snap.Cards = make([]deck.Card, 0, len(c.data.Cards))
	for _, card := range c.data.Cards {
		snap.Cards = append(snap.Cards, deck.Card{
			ID:             string(card.ID),
			ThemeID:        string(card.ThemeID),
			Recto:          card.Recto,
			RectoType:      deck.MediaType(card.RectoType).OrText(),
			RectoContent:   card.RectoContent,
			Verso:          card.Verso,
			VersoType:      deck.MediaType(card.VersoType).OrText(),
			VersoContent:   card.VersoContent,
			Level:          orInt(card.Level, 1),
			NextReviewDate: or(card.NextReviewDate, today),
		})
	}

	return snap
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
