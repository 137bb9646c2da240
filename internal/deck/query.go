package deck

import (
	"math"
	"slices"

	"github.com/AdlenSouci/memory-app/internal/srs"
)

func (s *Store) Categories() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

func (s *Store) Themes() []Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.themes)
}

func (s *Store) Cards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cards)
}

func (s *Store) Category(id string) (Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.categoryIndex(id); i >= 0 {
		return s.categories[i], true
	}
	return Category{}, false
}

func (s *Store) Theme(id string) (Theme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.themeIndex(id); i >= 0 {
		return s.themes[i], true
	}
	return Theme{}, false
}

func (s *Store) Card(id string) (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.cardIndex(id); i >= 0 {
		return s.cards[i], true
	}
	return Card{}, false
}

// ThemesOf returns the themes filed under categoryID.
func (s *Store) ThemesOf(categoryID string) []Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Theme
	for _, t := range s.themes {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// CardsOf returns the cards of themeID.
func (s *Store) CardsOf(themeID string) []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Card
	for _, c := range s.cards {
		if c.ThemeID == themeID {
			out = append(out, c)
		}
	}
	return out
}

// DueCards returns the cards whose review date is today or earlier. An
// empty themeID covers every theme.
func (s *Store) DueCards(themeID string) []Card {
	today := s.sched.Today()

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Card
	for _, c := range s.cards {
		if themeID != "" && c.ThemeID != themeID {
			continue
		}
		if srs.IsDue(c.NextReviewDate, today) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) User() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Snapshot copies the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Categories: slices.Clone(s.categories),
		Themes:     slices.Clone(s.themes),
		Cards:      slices.Clone(s.cards),
		User:       s.user,
	}
}

// TotalCards counts every card.
func (s *Store) TotalCards() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// MemorizedCards counts cards above level 1.
func (s *Store) MemorizedCards() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.cards {
		if c.Level > 1 {
			n++
		}
	}
	return n
}

// ProgressPercent is the rounded share of memorized cards, 0 for an empty
// store.
func (s *Store) ProgressPercent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	memorized := 0
	for _, c := range s.cards {
		if c.Level > 1 {
			memorized++
		}
	}
	return percent(memorized, len(s.cards))
}

// ThemeProgress summarises the cards of themeID. An empty themeID covers
// every card.
func (s *Store) ThemeProgress(themeID string) Progress {
	today := s.sched.Today()

	s.mu.Lock()
	defer s.mu.Unlock()
	var p Progress
	for _, c := range s.cards {
		if themeID != "" && c.ThemeID != themeID {
			continue
		}
		p.Total++
		if c.Level > 1 {
			p.Memorized++
		}
		if srs.IsDue(c.NextReviewDate, today) {
			p.Due++
		}
	}
	p.Percent = percent(p.Memorized, p.Total)
	return p
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
