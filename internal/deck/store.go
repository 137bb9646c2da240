package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AdlenSouci/memory-app/internal/srs"
	"github.com/AdlenSouci/memory-app/internal/storage"
)

// Persister is the durable mirror of the store. *storage.Adapter satisfies it.
type Persister interface {
	Load(ctx context.Context, key string, schema *storage.Schema, dst any) bool
	Save(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, key string) error
}

// SeedSource provides the content used on first run and by ImportSeed.
// Returned snapshots must already be normalised for today.
type SeedSource interface {
	Snapshot(today string) Snapshot
}

type emptySeed struct{}

func (emptySeed) Snapshot(string) Snapshot { return Snapshot{} }

// Options configures Open. Zero fields take defaults.
type Options struct {
	Persister  Persister
	Seed       SeedSource
	Scheduler  *srs.Scheduler
	Events     EventLogger
	Logger     *slog.Logger
	KeyPrefix  string
	FlushDelay time.Duration
}

// Store is the in-memory source of truth for categories, themes, cards and
// the user profile. It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	categories []Category
	themes     []Theme
	cards      []Card
	user       User

	collectionsDirty bool
	userDirty        bool
	batchDepth       int
	timer            *time.Timer
	closed           bool

	// flushMu orders writes so an older snapshot never lands after a newer one.
	flushMu sync.Mutex

	persist    Persister
	seed       SeedSource
	sched      *srs.Scheduler
	events     EventLogger
	logger     *slog.Logger
	keys       Keys
	flushDelay time.Duration
}

// Open loads persisted state, falling back per key to the seed (themes and
// cards), the default category, or an empty user. Nothing is written until
// the first mutation.
func Open(ctx context.Context, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "deck")

	persist := opts.Persister
	if persist == nil {
		persist = storage.NewAdapter(storage.NewMemoryKV(), logger)
	}
	seed := opts.Seed
	if seed == nil {
		seed = emptySeed{}
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = srs.New()
	}
	events := opts.Events
	if events == nil {
		events = NopEventLogger{}
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if opts.FlushDelay < 0 {
		return nil, fmt.Errorf("flush delay must not be negative: %s", opts.FlushDelay)
	}

	s := &Store{
		persist:    persist,
		seed:       seed,
		sched:      sched,
		events:     events,
		logger:     logger,
		keys:       KeysWithPrefix(prefix),
		flushDelay: opts.FlushDelay,
	}
	s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) {
	var initial *Snapshot
	fromSeed := func() Snapshot {
		if initial == nil {
			snap := s.seed.Snapshot(s.sched.Today())
			initial = &snap
		}
		return *initial
	}

	if !s.persist.Load(ctx, s.keys.Categories, categoriesSchema, &s.categories) {
		s.categories = []Category{DefaultCategory()}
	}
	if !s.persist.Load(ctx, s.keys.Themes, themesSchema, &s.themes) {
		s.themes = slices.Clone(fromSeed().Themes)
	}
	if !s.persist.Load(ctx, s.keys.Cards, cardsSchema, &s.cards) {
		s.cards = slices.Clone(fromSeed().Cards)
	}
	if !s.persist.Load(ctx, s.keys.User, userSchema, &s.user) {
		s.user = User{}
	}
	s.normalize()

	s.logger.Debug("deck loaded",
		"categories", len(s.categories),
		"themes", len(s.themes),
		"cards", len(s.cards),
	)
}

// normalize keeps collections non-nil so they encode as [] rather than null,
// and maps media types the store does not know to text.
func (s *Store) normalize() {
	if s.categories == nil {
		s.categories = []Category{}
	}
	if s.themes == nil {
		s.themes = []Theme{}
	}
	if s.cards == nil {
		s.cards = []Card{}
	}
	for i := range s.cards {
		s.cards[i].RectoType = s.cards[i].RectoType.OrText()
		s.cards[i].VersoType = s.cards[i].VersoType.OrText()
	}
}

// --- Categories ---

func (s *Store) AddCategory(name string) Category {
	c := Category{ID: uuid.NewString(), Name: name}
	s.mutate(func() (bool, bool) {
		s.categories = append(s.categories, c)
		return true, false
	})
	return c
}

func (s *Store) UpdateCategory(id, name string) {
	s.mutate(func() (bool, bool) {
		i := s.categoryIndex(id)
		if i < 0 {
			return false, false
		}
		s.categories[i].Name = name
		return true, false
	})
}

// DeleteCategory removes the category, every theme filed under it and the
// cards of those themes.
func (s *Store) DeleteCategory(id string) {
	s.mutate(func() (bool, bool) {
		before := len(s.categories) + len(s.themes) + len(s.cards)

		s.categories = slices.DeleteFunc(s.categories, func(c Category) bool { return c.ID == id })

		doomed := map[string]bool{}
		s.themes = slices.DeleteFunc(s.themes, func(t Theme) bool {
			if t.CategoryID == id {
				doomed[t.ID] = true
				return true
			}
			return false
		})
		s.cards = slices.DeleteFunc(s.cards, func(c Card) bool { return doomed[c.ThemeID] })

		return len(s.categories)+len(s.themes)+len(s.cards) != before, false
	})
}

// --- Themes ---

// ThemeOption overrides a default of AddTheme.
type ThemeOption func(*Theme)

// WithMaxLevel sets the level ceiling of the theme's cards.
func WithMaxLevel(n int) ThemeOption {
	return func(t *Theme) { t.MaxLevel = n }
}

// WithNewCardsPerDay sets the daily new-card allowance.
func WithNewCardsPerDay(n int) ThemeOption {
	return func(t *Theme) { t.NewCardsPerDay = n }
}

// AddTheme creates a theme under categoryID. The category is not required
// to exist.
func (s *Store) AddTheme(categoryID, title string, opts ...ThemeOption) Theme {
	t := Theme{
		ID:             uuid.NewString(),
		CategoryID:     categoryID,
		Title:          title,
		MaxLevel:       DefaultMaxLevel,
		NewCardsPerDay: DefaultNewCardsPerDay,
	}
	for _, opt := range opts {
		opt(&t)
	}
	s.mutate(func() (bool, bool) {
		s.themes = append(s.themes, t)
		return true, false
	})
	return t
}

func (s *Store) UpdateTheme(id string, p ThemePatch) {
	s.mutate(func() (bool, bool) {
		i := s.themeIndex(id)
		if i < 0 {
			return false, false
		}
		t := &s.themes[i]
		if p.CategoryID != nil {
			t.CategoryID = *p.CategoryID
		}
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.MaxLevel != nil {
			t.MaxLevel = *p.MaxLevel
		}
		if p.NewCardsPerDay != nil {
			t.NewCardsPerDay = *p.NewCardsPerDay
		}
		return true, false
	})
}

// DeleteTheme removes the theme and its cards.
func (s *Store) DeleteTheme(id string) {
	s.mutate(func() (bool, bool) {
		before := len(s.themes) + len(s.cards)
		s.themes = slices.DeleteFunc(s.themes, func(t Theme) bool { return t.ID == id })
		s.cards = slices.DeleteFunc(s.cards, func(c Card) bool { return c.ThemeID == id })
		return len(s.themes)+len(s.cards) != before, false
	})
}

// --- Cards ---

// AddCard creates a card at level 1, due today. Empty or unknown media
// types are stored as text. The theme is not required to exist.
func (s *Store) AddCard(nc NewCard) Card {
	c := Card{
		ID:             uuid.NewString(),
		ThemeID:        nc.ThemeID,
		Recto:          nc.Recto,
		RectoType:      nc.RectoType.OrText(),
		RectoContent:   nc.RectoContent,
		Verso:          nc.Verso,
		VersoType:      nc.VersoType.OrText(),
		VersoContent:   nc.VersoContent,
		Level:          1,
		NextReviewDate: s.sched.Today(),
	}
	s.mutate(func() (bool, bool) {
		s.cards = append(s.cards, c)
		return true, false
	})
	return c
}

func (s *Store) UpdateCard(id string, p CardPatch) {
	s.mutate(func() (bool, bool) {
		i := s.cardIndex(id)
		if i < 0 {
			return false, false
		}
		c := &s.cards[i]
		if p.ThemeID != nil {
			c.ThemeID = *p.ThemeID
		}
		if p.Recto != nil {
			c.Recto = *p.Recto
		}
		if p.RectoType != nil {
			c.RectoType = p.RectoType.OrText()
		}
		if p.RectoContent != nil {
			c.RectoContent = *p.RectoContent
		}
		if p.Verso != nil {
			c.Verso = *p.Verso
		}
		if p.VersoType != nil {
			c.VersoType = p.VersoType.OrText()
		}
		if p.VersoContent != nil {
			c.VersoContent = *p.VersoContent
		}
		if p.Level != nil {
			c.Level = *p.Level
		}
		if p.NextReviewDate != nil {
			c.NextReviewDate = *p.NextReviewDate
		}
		return true, false
	})
}

func (s *Store) DeleteCard(id string) {
	s.mutate(func() (bool, bool) {
		before := len(s.cards)
		s.cards = slices.DeleteFunc(s.cards, func(c Card) bool { return c.ID == id })
		return len(s.cards) != before, false
	})
}

// --- Reviews ---

// IncrementLevel records a successful review: the card moves up one level,
// clamped at its theme's maxLevel, and is rescheduled from today. Orphaned
// cards use DefaultMaxLevel. It reports false when the card does not exist.
func (s *Store) IncrementLevel(cardID string) (Card, bool) {
	var (
		updated Card
		found   bool
	)
	s.mutate(func() (bool, bool) {
		i := s.cardIndex(cardID)
		if i < 0 {
			return false, false
		}
		maxLevel := DefaultMaxLevel
		if t := s.themeIndex(s.cards[i].ThemeID); t >= 0 && s.themes[t].MaxLevel > 0 {
			maxLevel = s.themes[t].MaxLevel
		}
		c := &s.cards[i]
		c.Level, c.NextReviewDate = s.sched.AdvanceOnSuccess(c.Level, maxLevel)
		updated, found = *c, true
		return true, false
	})
	if found {
		s.logReview(EventReviewSuccess, updated)
	}
	return updated, found
}

// FailReview records a failed review: the card drops back to level 1, due
// today. It reports false when the card does not exist.
func (s *Store) FailReview(cardID string) (Card, bool) {
	var (
		updated Card
		found   bool
	)
	s.mutate(func() (bool, bool) {
		i := s.cardIndex(cardID)
		if i < 0 {
			return false, false
		}
		c := &s.cards[i]
		c.Level, c.NextReviewDate = s.sched.ResetOnFailure()
		updated, found = *c, true
		return true, false
	})
	if found {
		s.logReview(EventReviewFailure, updated)
	}
	return updated, found
}

func (s *Store) logReview(eventType string, c Card) {
	err := s.events.LogEvent(Event{
		CardID:    c.ID,
		ThemeID:   c.ThemeID,
		EventType: eventType,
		Data: map[string]any{
			"niveau":         c.Level,
			"nextReviewDate": c.NextReviewDate,
		},
		CreatedAt: s.sched.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to log review event", "card_id", c.ID, "type", eventType, "error", err)
	}
}

// --- User ---

// SetPseudo sets the display name. Empty names are accepted.
func (s *Store) SetPseudo(name string) {
	s.mutate(func() (bool, bool) {
		s.user.Pseudo = name
		return false, true
	})
}

// Logout clears the display name and forfeits the score.
func (s *Store) Logout() {
	s.mutate(func() (bool, bool) {
		s.user = User{}
		return false, true
	})
}

// AddPoints adds n to the score. Negative values decrease it.
func (s *Store) AddPoints(n int) {
	s.mutate(func() (bool, bool) {
		s.user.Score += n
		return false, true
	})
}

// --- Import ---

// ImportSeed discards the persisted collections and replaces categories,
// themes and cards with the seed content, ids included. The user profile is
// kept. Categories fall back to the default category when the seed has none.
func (s *Store) ImportSeed(ctx context.Context) {
	snap := s.seed.Snapshot(s.sched.Today())

	s.flushMu.Lock()
	for _, key := range s.keys.collections() {
		if err := s.persist.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to clear persisted collection", "key", key, "error", err)
		}
	}
	s.flushMu.Unlock()

	s.mutate(func() (bool, bool) {
		if snap.Categories == nil {
			s.categories = []Category{DefaultCategory()}
		} else {
			s.categories = slices.Clone(snap.Categories)
		}
		s.themes = slices.Clone(snap.Themes)
		s.cards = slices.Clone(snap.Cards)
		s.normalize()
		return true, false
	})

	s.logger.Info("seed imported",
		"categories", len(snap.Categories),
		"themes", len(snap.Themes),
		"cards", len(snap.Cards),
	)
}

// --- Persistence ---

// mutate runs fn under the state lock. fn reports which parts it changed;
// unchanged state schedules no write.
func (s *Store) mutate(fn func() (collections, user bool)) {
	s.mu.Lock()
	collections, user := fn()
	if collections {
		s.collectionsDirty = true
	}
	if user {
		s.userDirty = true
	}
	s.mu.Unlock()

	if collections || user {
		s.schedule()
	}
}

// schedule flushes now, arms the debounce timer, or defers to the end of the
// enclosing Batch.
func (s *Store) schedule() {
	s.mu.Lock()
	if s.batchDepth > 0 || !(s.collectionsDirty || s.userDirty) {
		s.mu.Unlock()
		return
	}
	if s.flushDelay > 0 && !s.closed {
		if s.timer == nil {
			s.timer = time.AfterFunc(s.flushDelay, func() {
				_ = s.flush(context.Background())
			})
		} else {
			s.timer.Reset(s.flushDelay)
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	_ = s.flush(context.Background())
}

// Batch runs fn and writes every change it makes in a single flush. Batches
// may nest; the outermost one flushes.
func (s *Store) Batch(fn func()) {
	s.mu.Lock()
	s.batchDepth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batchDepth--
		s.mu.Unlock()
		s.schedule()
	}()

	fn()
}

// Flush writes pending changes immediately.
func (s *Store) Flush(ctx context.Context) error {
	return s.flush(ctx)
}

// Close stops the debounce timer and writes pending changes. Later
// mutations are written immediately.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	writeCollections, writeUser := s.collectionsDirty, s.userDirty
	s.collectionsDirty, s.userDirty = false, false
	var (
		categories = slices.Clone(s.categories)
		themes     = slices.Clone(s.themes)
		cards      = slices.Clone(s.cards)
		user       = s.user
	)
	s.mu.Unlock()

	var errs []error
	save := func(key string, v any) {
		if err := s.persist.Save(ctx, key, v); err != nil {
			s.logger.Error("failed to persist state", "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	if writeCollections {
		save(s.keys.Categories, categories)
		save(s.keys.Themes, themes)
		save(s.keys.Cards, cards)
	}
	if writeUser {
		save(s.keys.User, user)
	}
	return errors.Join(errs...)
}

// --- Lookups (callers hold s.mu) ---

func (s *Store) categoryIndex(id string) int {
	return slices.IndexFunc(s.categories, func(c Category) bool { return c.ID == id })
}

func (s *Store) themeIndex(id string) int {
	return slices.IndexFunc(s.themes, func(t Theme) bool { return t.ID == id })
}

func (s *Store) cardIndex(id string) int {
	return slices.IndexFunc(s.cards, func(c Card) bool { return c.ID == id })
}
