// Package remind periodically reports cards that are due for review.
package remind

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/AdlenSouci/memory-app/internal/deck"
)

// DueLister is the part of deck.Store the reminder reads.
type DueLister interface {
	Themes() []deck.Theme
	DueCards(themeID string) []deck.Card
}

// Due counts the due cards of one theme.
type Due struct {
	ThemeID    string
	ThemeTitle string
	Count      int
}

// Notifier delivers a reminder.
type Notifier interface {
	NotifyDue(due []Due) error
}

// Reminder runs Check on a fixed interval.
type Reminder struct {
	source    DueLister
	notifier  Notifier
	interval  time.Duration
	scheduler *gocron.Scheduler
}

// New creates a reminder. It does nothing until Start is called.
func New(source DueLister, notifier Notifier, interval time.Duration) (*Reminder, error) {
	if source == nil {
		return nil, fmt.Errorf("due card source is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	return &Reminder{
		source:    source,
		notifier:  notifier,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
	}, nil
}

// Start schedules the periodic check, running the first one immediately.
func (r *Reminder) Start() error {
	if _, err := r.scheduler.Every(r.interval).Do(r.run); err != nil {
		return fmt.Errorf("scheduling reminder: %w", err)
	}
	r.scheduler.StartAsync()
	slog.Info("reminder started", "interval", r.interval.String())
	return nil
}

// Stop terminates the scheduled check.
func (r *Reminder) Stop() {
	r.scheduler.Stop()
}

func (r *Reminder) run() {
	if _, err := r.Check(); err != nil {
		slog.Error("reminder failed", "error", err)
	}
}

// Check counts due cards per theme and notifies when any are due.
func (r *Reminder) Check() ([]Due, error) {
	due := r.collect()
	if len(due) == 0 {
		slog.Debug("no cards due")
		return nil, nil
	}
	if err := r.notifier.NotifyDue(due); err != nil {
		return due, fmt.Errorf("notifying: %w", err)
	}
	return due, nil
}

func (r *Reminder) collect() []Due {
	counts := map[string]int{}
	for _, c := range r.source.DueCards("") {
		counts[c.ThemeID]++
	}

	var due []Due
	for _, t := range r.source.Themes() {
		if n := counts[t.ID]; n > 0 {
			due = append(due, Due{ThemeID: t.ID, ThemeTitle: t.Title, Count: n})
			delete(counts, t.ID)
		}
	}

	// Cards whose theme no longer exists.
	orphans := make([]string, 0, len(counts))
	for id := range counts {
		orphans = append(orphans, id)
	}
	slices.Sort(orphans)
	for _, id := range orphans {
		due = append(due, Due{ThemeID: id, Count: counts[id]})
	}
	return due
}

// LogNotifier writes reminders to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) NotifyDue(due []Due) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	total := 0
	for _, d := range due {
		total += d.Count
		logger.Info("cards due", "theme_id", d.ThemeID, "theme", d.ThemeTitle, "count", d.Count)
	}
	logger.Info("review reminder", "themes", len(due), "cards", total)
	return nil
}
