package remind_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AdlenSouci/memory-app/internal/deck"
	"github.com/AdlenSouci/memory-app/internal/remind"
)

type fakeSource struct {
	themes []deck.Theme
	due    []deck.Card
}

func (f fakeSource) Themes() []deck.Theme { return f.themes }

func (f fakeSource) DueCards(themeID string) []deck.Card {
	var out []deck.Card
	for _, c := range f.due {
		if themeID == "" || c.ThemeID == themeID {
			out = append(out, c)
		}
	}
	return out
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]remind.Due
	err   error
}

func (n *recordingNotifier) NotifyDue(due []remind.Due) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, due)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func TestNew_Validation(t *testing.T) {
	src := fakeSource{}
	n := &recordingNotifier{}

	if _, err := remind.New(nil, n, time.Minute); err == nil {
		t.Error("expected error for nil source")
	}
	if _, err := remind.New(src, nil, time.Minute); err == nil {
		t.Error("expected error for nil notifier")
	}
	if _, err := remind.New(src, n, 0); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestCheck_GroupsByTheme(t *testing.T) {
	src := fakeSource{
		themes: []deck.Theme{{ID: "1", Title: "Capitales"}, {ID: "2", Title: "Verbes"}, {ID: "3", Title: "Vide"}},
		due: []deck.Card{
			{ID: "a", ThemeID: "2"},
			{ID: "b", ThemeID: "1"},
			{ID: "c", ThemeID: "2"},
			{ID: "d", ThemeID: "ghost"},
		},
	}
	n := &recordingNotifier{}
	r, err := remind.New(src, n, time.Hour)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	due, err := r.Check()
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	want := []remind.Due{
		{ThemeID: "1", ThemeTitle: "Capitales", Count: 1},
		{ThemeID: "2", ThemeTitle: "Verbes", Count: 2},
		{ThemeID: "ghost", Count: 1},
	}
	if len(due) != len(want) {
		t.Fatalf("Check() = %+v, want %+v", due, want)
	}
	for i := range want {
		if due[i] != want[i] {
			t.Errorf("due[%d] = %+v, want %+v", i, due[i], want[i])
		}
	}
	if n.count() != 1 {
		t.Errorf("notifier called %d times, want 1", n.count())
	}
}

func TestCheck_NothingDue(t *testing.T) {
	n := &recordingNotifier{}
	r, _ := remind.New(fakeSource{themes: []deck.Theme{{ID: "1"}}}, n, time.Hour)

	due, err := r.Check()
	if err != nil || due != nil {
		t.Errorf("Check() = %+v, %v; want nil, nil", due, err)
	}
	if n.count() != 0 {
		t.Error("notifier should not be called when nothing is due")
	}
}

func TestCheck_NotifierError(t *testing.T) {
	n := &recordingNotifier{err: errors.New("offline")}
	r, _ := remind.New(fakeSource{due: []deck.Card{{ID: "a", ThemeID: "1"}}}, n, time.Hour)

	if _, err := r.Check(); err == nil {
		t.Error("expected notifier error to be returned")
	}
}

func TestStart_RunsImmediately(t *testing.T) {
	n := &recordingNotifier{}
	r, _ := remind.New(fakeSource{due: []deck.Card{{ID: "a", ThemeID: "1"}}}, n, time.Hour)

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for n.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("scheduled check never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := remind.LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	if err := n.NotifyDue([]remind.Due{{ThemeID: "1", ThemeTitle: "Capitales", Count: 3}}); err != nil {
		t.Fatalf("NotifyDue() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Capitales") || !strings.Contains(out, "cards=3") {
		t.Errorf("log output = %q", out)
	}
}
