package deck_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AdlenSouci/memory-app/internal/deck"
	"github.com/AdlenSouci/memory-app/internal/srs"
	"github.com/AdlenSouci/memory-app/internal/storage"
)

var fixedNow = time.Date(2026, 3, 30, 9, 0, 0, 0, time.UTC)

const today = "2026-03-30"

func fixedScheduler() *srs.Scheduler {
	return srs.New(srs.WithClock(func() time.Time { return fixedNow }))
}

// countingKV records how many times each key was written.
type countingKV struct {
	*storage.MemoryKV
	mu   sync.Mutex
	sets map[string]int
}

func newCountingKV() *countingKV {
	return &countingKV{MemoryKV: storage.NewMemoryKV(), sets: map[string]int{}}
}

func (k *countingKV) Set(ctx context.Context, key string, value []byte) error {
	k.mu.Lock()
	k.sets[key]++
	k.mu.Unlock()
	return k.MemoryKV.Set(ctx, key, value)
}

func (k *countingKV) writes(key string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sets[key]
}

func (k *countingKV) totalWrites() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, v := range k.sets {
		n += v
	}
	return n
}

// failingKV rejects every write.
type failingKV struct {
	*storage.MemoryKV
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type stubSeed struct {
	snap deck.Snapshot
}

func (s stubSeed) Snapshot(string) deck.Snapshot {
	return s.snap
}

func testSeed() stubSeed {
	return stubSeed{snap: deck.Snapshot{
		Themes: []deck.Theme{
			{ID: "1", CategoryID: "default", Title: "Capitales", MaxLevel: 7, NewCardsPerDay: 10},
			{ID: "2", CategoryID: "default", Title: "Verbes", MaxLevel: 5, NewCardsPerDay: 10},
		},
		Cards: []deck.Card{
			{ID: "10", ThemeID: "1", Recto: "France", RectoType: deck.MediaText, Verso: "Paris", VersoType: deck.MediaText, Level: 1, NextReviewDate: today},
			{ID: "11", ThemeID: "1", Recto: "Italie", RectoType: deck.MediaText, Verso: "Rome", VersoType: deck.MediaText, Level: 1, NextReviewDate: today},
			{ID: "20", ThemeID: "2", Recto: "to be", RectoType: deck.MediaText, Verso: "être", VersoType: deck.MediaText, Level: 1, NextReviewDate: today},
		},
	}}
}

func openStore(t *testing.T, kv storage.KV, opts deck.Options) *deck.Store {
	t.Helper()
	if opts.Persister == nil {
		opts.Persister = storage.NewAdapter(kv, nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = fixedScheduler()
	}
	s, err := deck.Open(t.Context(), opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}
