package seed_test

import (
	"testing"

	"github.com/AdlenSouci/memory-app/internal/deck"
	"github.com/AdlenSouci/memory-app/internal/seed"
)

func TestParse_CoercesIDs(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"yaml", ".yaml", "themes:\n  - {id: 1, categoryId: 2.0, titre: T}\ncards:\n  - {id: 10, themeId: 1}\n"},
		{"json", ".json", `{"themes":[{"id":1,"categoryId":2.0,"titre":"T"}],"cards":[{"id":10,"themeId":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := seed.Parse([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if d.Themes[0].ID != "1" || d.Themes[0].CategoryID != "2" {
				t.Errorf("theme ids = %q/%q, want 1/2", d.Themes[0].ID, d.Themes[0].CategoryID)
			}
			if d.Cards[0].ID != "10" || d.Cards[0].ThemeID != "1" {
				t.Errorf("card ids = %q/%q, want 10/1", d.Cards[0].ID, d.Cards[0].ThemeID)
			}
		})
	}
}

func TestParse_RejectsStructuredID(t *testing.T) {
	if _, err := seed.Parse([]byte(`{"themes":[{"id":{"a":1}}]}`), ".json"); err == nil {
		t.Error("expected error for object id in json")
	}
	if _, err := seed.Parse([]byte("themes:\n  - id: [1, 2]\n"), ".yaml"); err == nil {
		t.Error("expected error for sequence id in yaml")
	}
}

func TestSnapshot_Defaults(t *testing.T) {
	c := seed.NewCatalog(seed.Dataset{
		Themes: []seed.Theme{{ID: "1", Title: "T"}},
		Cards:  []seed.Card{{ID: "10", ThemeID: "1", Recto: "Q", Verso: "A"}},
	})

	snap := c.Snapshot("2026-03-30")

	wantTheme := deck.Theme{ID: "1", CategoryID: "default", Title: "T", MaxLevel: 7, NewCardsPerDay: 10}
	if snap.Themes[0] != wantTheme {
		t.Errorf("theme = %+v, want %+v", snap.Themes[0], wantTheme)
	}
	wantCard := deck.Card{
		ID: "10", ThemeID: "1",
		Recto: "Q", RectoType: deck.MediaText,
		Verso: "A", VersoType: deck.MediaText,
		Level: 1, NextReviewDate: "2026-03-30",
	}
	if snap.Cards[0] != wantCard {
		t.Errorf("card = %+v, want %+v", snap.Cards[0], wantCard)
	}
	if snap.Categories != nil {
		t.Errorf("Categories = %+v, want nil", snap.Categories)
	}
}

func TestSnapshot_KeepsProvidedValues(t *testing.T) {
	c := seed.NewCatalog(seed.Dataset{
		Categories: []seed.Category{},
		Cards: []seed.Card{{
			ID: "10", ThemeID: "1",
			RectoType: "image", RectoContent: "data:image/png;base64,AAAA",
			Level: 4, NextReviewDate: "2026-05-01",
		}},
	})

	snap := c.Snapshot("2026-03-30")

	if snap.Categories == nil || len(snap.Categories) != 0 {
		t.Errorf("explicit empty categories = %+v, want empty non-nil", snap.Categories)
	}
	card := snap.Cards[0]
	if card.RectoType != deck.MediaImage || card.Level != 4 || card.NextReviewDate != "2026-05-01" {
		t.Errorf("card = %+v, provided values overwritten", card)
	}
}

func TestCatalog_MergesDatasets(t *testing.T) {
	c := seed.NewCatalog(
		seed.Dataset{Themes: []seed.Theme{{ID: "1"}}},
		seed.Dataset{Categories: []seed.Category{{ID: "a"}}, Themes: []seed.Theme{{ID: "2"}}},
	)

	d := c.Dataset()
	if len(d.Themes) != 2 || len(d.Categories) != 1 {
		t.Errorf("merged dataset = %+v", d)
	}
}

func TestCatalog_PopulatesStore(t *testing.T) {
	s, err := deck.Open(t.Context(), deck.Options{Seed: seed.Default()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close(t.Context())

	if s.TotalCards() != len(seed.Default().Dataset().Cards) {
		t.Errorf("TotalCards() = %d, want bundled card count", s.TotalCards())
	}
	if cats := s.Categories(); len(cats) != 1 || cats[0].ID != deck.DefaultCategoryID {
		t.Errorf("Categories() = %+v, want default", cats)
	}
}

func TestSnapshot_UnknownMediaTypeBecomesText(t *testing.T) {
	c := seed.NewCatalog(seed.Dataset{
		Cards: []seed.Card{{ID: "10", ThemeID: "1", RectoType: "pdf", VersoType: "VIDEO"}},
	})

	card := c.Snapshot("2026-03-30").Cards[0]

	if card.RectoType != deck.MediaText || card.VersoType != deck.MediaText {
		t.Errorf("media types = %q/%q, want text/text", card.RectoType, card.VersoType)
	}
}
