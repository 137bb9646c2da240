// Package srs implements the fixed exponential review schedule: a card climbs
// one level per successful review up to its theme's ceiling, and falls back to
// level 1 on failure.
package srs

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for review dates.
const DateLayout = "2006-01-02"

// MaxIntervalLevel is the last level whose interval doubles. Higher levels
// keep its interval so due dates stay within four-digit years.
const MaxIntervalLevel = 21

// IntervalDays returns the number of days until the next review for a card at
// the given level: 1, 2, 4, 8, ... up to 2^(MaxIntervalLevel-1).
func IntervalDays(level int) int {
	if level < 1 {
		return 0
	}
	return 1 << (min(level, MaxIntervalLevel) - 1)
}

// NextLevel returns level+1, clamped to maxLevel.
func NextLevel(level, maxLevel int) int {
	if level < maxLevel {
		return level + 1
	}
	return level
}

// DueDate returns the calendar date that is IntervalDays(level) after now.
func DueDate(now time.Time, level int) string {
	return now.AddDate(0, 0, IntervalDays(level)).Format(DateLayout)
}

// IsDue reports whether a card scheduled for nextReviewDate should be shown on
// today. Dates that do not parse are treated as due, except dates past year
// 9999, which are never due.
func IsDue(nextReviewDate, today string) bool {
	if _, err := time.Parse(DateLayout, nextReviewDate); err != nil {
		return !beyondYear9999(nextReviewDate)
	}
	return nextReviewDate <= today
}

// beyondYear9999 reports whether d reads as YYYYY-MM-DD with more than four
// year digits, as time.Format renders such years.
func beyondYear9999(d string) bool {
	year, rest, ok := strings.Cut(d, "-")
	if !ok || len(year) <= 4 || strings.Trim(year, "0123456789") != "" {
		return false
	}
	_, err := time.Parse("01-02", rest)
	return err == nil
}

// Scheduler applies review outcomes relative to its clock.
type Scheduler struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the location used to derive calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates a scheduler using the wall clock in UTC unless overridden.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		now: time.Now,
		loc: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the scheduler's location.
func (s *Scheduler) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current calendar date.
func (s *Scheduler) Today() string {
	return s.Now().Format(DateLayout)
}

// AdvanceOnSuccess promotes level by one (never past maxLevel) and schedules
// the next review from today, not from the previous due date.
func (s *Scheduler) AdvanceOnSuccess(level, maxLevel int) (int, string) {
	next := NextLevel(level, maxLevel)
	return next, DueDate(s.Now(), next)
}

// ResetOnFailure sends a card back to level 1, due today.
func (s *Scheduler) ResetOnFailure() (int, string) {
	return 1, s.Today()
}
