package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/AdlenSouci/memory-app/internal/deck"
	"github.com/AdlenSouci/memory-app/internal/remind"
	"github.com/AdlenSouci/memory-app/internal/seed"
)

type cmdHandler func(ctx context.Context, a *app, args []string) error

var handlers = map[string]cmdHandler{
	"stats":           handleStats,
	"categories":      handleCategories,
	"category-add":    handleCategoryAdd,
	"category-rename": handleCategoryRename,
	"category-delete": handleCategoryDelete,
	"themes":          handleThemes,
	"theme-add":       handleThemeAdd,
	"theme-update":    handleThemeUpdate,
	"theme-delete":    handleThemeDelete,
	"cards":           handleCards,
	"card-add":        handleCardAdd,
	"card-update":     handleCardUpdate,
	"card-delete":     handleCardDelete,
	"due":             handleDue,
	"review":          handleReview,
	"history":         handleHistory,
	"login":           handleLogin,
	"logout":          handleLogout,
	"whoami":          handleWhoami,
	"points":          handlePoints,
	"import":          handleImport,
	"export":          handleExport,
	"remind":          handleRemind,
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	handler, ok := handlers[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return handler(ctx, a, args[1:])
}

// parseArgs parses flags and requires exactly n positional arguments.
func parseArgs(fs *flag.FlagSet, args []string, n int) ([]string, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	if fs.NArg() != n {
		return nil, fmt.Errorf("%w: %s takes %d argument(s), got %d", errUsage, fs.Name(), n, fs.NArg())
	}
	return fs.Args(), nil
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// --- Overview ---

func handleStats(_ context.Context, a *app, args []string) error {
	if _, err := parseArgs(flag.NewFlagSet("stats", flag.ContinueOnError), args, 0); err != nil {
		return err
	}

	s := a.store
	u := s.User()
	pseudo := u.Pseudo
	if pseudo == "" {
		pseudo = "(anonymous)"
	}
	total := s.ThemeProgress("")
	fmt.Fprintf(a.out, "user: %s  score: %d\n", clean(pseudo), u.Score)
	fmt.Fprintf(a.out, "cards: %d  memorized: %d  progress: %d%%  due: %d\n\n",
		s.TotalCards(), s.MemorizedCards(), s.ProgressPercent(), total.Due)

	tw := newTable(a.out)
	fmt.Fprintln(tw, "THEME\tTITLE\tCARDS\tMEMORIZED\tDUE\tPROGRESS")
	for _, t := range s.Themes() {
		p := s.ThemeProgress(t.ID)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d%%\n", t.ID, clean(t.Title), p.Total, p.Memorized, p.Due, p.Percent)
	}
	return tw.Flush()
}

// --- Categories ---

func handleCategories(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	sorted := fs.Bool("sort", false, "sort by name")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	cats := a.store.Categories()
	if *sorted {
		sortByName(cats, func(c deck.Category) string { return c.Name })
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tTHEMES")
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, clean(c.Name), len(a.store.ThemesOf(c.ID)))
	}
	return tw.Flush()
}

func handleCategoryAdd(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("category-add", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	c := a.store.AddCategory(pos[0])
	fmt.Fprintln(a.out, c.ID)
	return nil
}

func handleCategoryRename(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("category-rename", flag.ContinueOnError), args, 2)
	if err != nil {
		return err
	}
	if _, ok := a.store.Category(pos[0]); !ok {
		return fmt.Errorf("category %q not found", pos[0])
	}
	a.store.UpdateCategory(pos[0], pos[1])
	return nil
}

func handleCategoryDelete(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("category-delete", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	if _, ok := a.store.Category(pos[0]); !ok {
		return fmt.Errorf("category %q not found", pos[0])
	}
	a.store.DeleteCategory(pos[0])
	return nil
}

// --- Themes ---

func handleThemes(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("themes", flag.ContinueOnError)
	category := fs.String("category", "", "only themes of this category")
	sorted := fs.Bool("sort", false, "sort by title")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	themes := a.store.Themes()
	if *category != "" {
		themes = a.store.ThemesOf(*category)
	}
	if *sorted {
		sortByName(themes, func(t deck.Theme) string { return t.Title })
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE\tMAX LEVEL\tNEW/DAY\tCARDS")
	for _, t := range themes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			t.ID, t.CategoryID, clean(t.Title), t.MaxLevel, t.NewCardsPerDay, len(a.store.CardsOf(t.ID)))
	}
	return tw.Flush()
}

func handleThemeAdd(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("theme-add", flag.ContinueOnError)
	maxLevel := fs.Int("max-level", deck.DefaultMaxLevel, "level ceiling")
	perDay := fs.Int("per-day", deck.DefaultNewCardsPerDay, "new cards per day")
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}

	t := a.store.AddTheme(pos[0], pos[1], deck.WithMaxLevel(*maxLevel), deck.WithNewCardsPerDay(*perDay))
	fmt.Fprintln(a.out, t.ID)
	return nil
}

func handleThemeUpdate(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("theme-update", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	category := fs.String("category", "", "new category id")
	maxLevel := fs.Int("max-level", 0, "new level ceiling")
	perDay := fs.Int("per-day", 0, "new cards per day")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	if _, ok := a.store.Theme(pos[0]); !ok {
		return fmt.Errorf("theme %q not found", pos[0])
	}

	var p deck.ThemePatch
	set := setFlags(fs)
	if set["title"] {
		p.Title = title
	}
	if set["category"] {
		p.CategoryID = category
	}
	if set["max-level"] {
		p.MaxLevel = maxLevel
	}
	if set["per-day"] {
		p.NewCardsPerDay = perDay
	}
	a.store.UpdateTheme(pos[0], p)
	return nil
}

func handleThemeDelete(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("theme-delete", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	if _, ok := a.store.Theme(pos[0]); !ok {
		return fmt.Errorf("theme %q not found", pos[0])
	}
	a.store.DeleteTheme(pos[0])
	return nil
}

// --- Cards ---

func printCards(w io.Writer, cards []deck.Card) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTHEME\tRECTO\tVERSO\tNIVEAU\tNEXT REVIEW")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			c.ID, c.ThemeID, face(c.Recto, c.RectoType), face(c.Verso, c.VersoType), c.Level, c.NextReviewDate)
	}
	return tw.Flush()
}

func handleCards(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("cards", flag.ContinueOnError)
	theme := fs.String("theme", "", "only cards of this theme")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	cards := a.store.Cards()
	if *theme != "" {
		cards = a.store.CardsOf(*theme)
	}
	return printCards(a.out, cards)
}

func mediaFlag(fs *flag.FlagSet, name string) *string {
	return fs.String(name, string(deck.MediaText), "text, image, audio or video")
}

func parseMedia(s string) (deck.MediaType, error) {
	m := deck.MediaType(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown media type %q", s)
	}
	return m, nil
}

func handleCardAdd(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("card-add", flag.ContinueOnError)
	rectoType := mediaFlag(fs, "recto-type")
	versoType := mediaFlag(fs, "verso-type")
	rectoContent := fs.String("recto-content", "", "recto media content")
	versoContent := fs.String("verso-content", "", "verso media content")
	pos, err := parseArgs(fs, args, 3)
	if err != nil {
		return err
	}

	rt, err := parseMedia(*rectoType)
	if err != nil {
		return err
	}
	vt, err := parseMedia(*versoType)
	if err != nil {
		return err
	}

	c := a.store.AddCard(deck.NewCard{
		ThemeID:      pos[0],
		Recto:        pos[1],
		RectoType:    rt,
		RectoContent: *rectoContent,
		Verso:        pos[2],
		VersoType:    vt,
		VersoContent: *versoContent,
	})
	fmt.Fprintln(a.out, c.ID)
	return nil
}

func handleCardUpdate(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("card-update", flag.ContinueOnError)
	theme := fs.String("theme", "", "new theme id")
	recto := fs.String("recto", "", "new recto")
	verso := fs.String("verso", "", "new verso")
	level := fs.Int("level", 0, "new level")
	next := fs.String("next", "", "new review date (YYYY-MM-DD)")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	if _, ok := a.store.Card(pos[0]); !ok {
		return fmt.Errorf("card %q not found", pos[0])
	}

	var p deck.CardPatch
	set := setFlags(fs)
	if set["theme"] {
		p.ThemeID = theme
	}
	if set["recto"] {
		p.Recto = recto
	}
	if set["verso"] {
		p.Verso = verso
	}
	if set["level"] {
		p.Level = level
	}
	if set["next"] {
		p.NextReviewDate = next
	}
	a.store.UpdateCard(pos[0], p)
	return nil
}

func handleCardDelete(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("card-delete", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	if _, ok := a.store.Card(pos[0]); !ok {
		return fmt.Errorf("card %q not found", pos[0])
	}
	a.store.DeleteCard(pos[0])
	return nil
}

// --- Reviews ---

func handleDue(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("due", flag.ContinueOnError)
	theme := fs.String("theme", "", "only cards of this theme")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	return printCards(a.out, a.store.DueCards(*theme))
}

func handleReview(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("review", flag.ContinueOnError), args, 2)
	if err != nil {
		return err
	}
	id, outcome := pos[0], pos[1]

	var (
		card  deck.Card
		found bool
	)
	switch outcome {
	case "ok":
		points := a.cfg.Review.SuccessPoints
		a.store.Batch(func() {
			card, found = a.store.IncrementLevel(id)
			if found {
				a.store.AddPoints(points)
			}
		})
		if found {
			fmt.Fprintf(a.out, "%s: niveau %d, next review %s (+%d points)\n", card.ID, card.Level, card.NextReviewDate, points)
		}
	case "fail":
		card, found = a.store.FailReview(id)
		if found {
			fmt.Fprintf(a.out, "%s: back to niveau %d, review again %s\n", card.ID, card.Level, card.NextReviewDate)
		}
	default:
		return fmt.Errorf("%w: review outcome must be ok or fail, got %q", errUsage, outcome)
	}

	if !found {
		return fmt.Errorf("card %q not found", id)
	}
	return nil
}

func handleHistory(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	card := fs.String("card", "", "only reviews of this card")
	limit := fs.Int("limit", 20, "maximum number of reviews")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	if a.history == nil {
		return errors.New("review history requires MEMORY_REVIEW_LOG_EVENTS=true")
	}

	events, err := a.history.History(ctx, *card, *limit)
	if err != nil {
		return err
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "TIME\tCARD\tTHEME\tOUTCOME\tNIVEAU\tNEXT REVIEW")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%v\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.CardID, e.ThemeID, e.EventType, e.Data["niveau"], e.Data["nextReviewDate"])
	}
	return tw.Flush()
}

// --- User ---

func handleLogin(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("login", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	a.store.SetPseudo(pos[0])
	return nil
}

func handleLogout(_ context.Context, a *app, args []string) error {
	if _, err := parseArgs(flag.NewFlagSet("logout", flag.ContinueOnError), args, 0); err != nil {
		return err
	}
	a.store.Logout()
	return nil
}

func handleWhoami(_ context.Context, a *app, args []string) error {
	if _, err := parseArgs(flag.NewFlagSet("whoami", flag.ContinueOnError), args, 0); err != nil {
		return err
	}
	u := a.store.User()
	fmt.Fprintf(a.out, "%s\t%d\n", clean(u.Pseudo), u.Score)
	return nil
}

func handlePoints(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("points", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(pos[0])
	if err != nil {
		return fmt.Errorf("%w: points must be an integer, got %q", errUsage, pos[0])
	}
	a.store.AddPoints(n)
	fmt.Fprintln(a.out, a.store.User().Score)
	return nil
}

// --- Import / export ---

func handleImport(ctx context.Context, a *app, args []string) error {
	if _, err := parseArgs(flag.NewFlagSet("import", flag.ContinueOnError), args, 0); err != nil {
		return err
	}
	a.store.ImportSeed(ctx)
	fmt.Fprintf(a.out, "imported %d categories, %d themes, %d cards\n",
		len(a.store.Categories()), len(a.store.Themes()), a.store.TotalCards())
	return nil
}

func handleExport(_ context.Context, a *app, args []string) error {
	pos, err := parseArgs(flag.NewFlagSet("export", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	f, err := os.Create(pos[0])
	if err != nil {
		return fmt.Errorf("creating %s: %w", pos[0], err)
	}
	if err := seed.WriteXLSX(f, a.store.Snapshot()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", pos[0], err)
	}
	slog.Info("deck exported", "path", pos[0])
	return nil
}

// --- Reminders ---

// tableNotifier prints due counts to the command output.
type tableNotifier struct {
	w io.Writer
}

func (n tableNotifier) NotifyDue(due []remind.Due) error {
	tw := newTable(n.w)
	fmt.Fprintln(tw, "THEME\tTITLE\tDUE")
	for _, d := range due {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", d.ThemeID, clean(d.ThemeTitle), d.Count)
	}
	return tw.Flush()
}

func handleRemind(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("remind", flag.ContinueOnError)
	once := fs.Bool("once", false, "check once and exit")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	if *once {
		r, err := remind.New(a.store, tableNotifier{w: a.out}, a.cfg.Remind.Interval)
		if err != nil {
			return err
		}
		due, err := r.Check()
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Fprintln(a.out, "nothing due")
		}
		return nil
	}

	r, err := remind.New(a.store, remind.LogNotifier{Logger: slog.Default()}, a.cfg.Remind.Interval)
	if err != nil {
		return err
	}
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	slog.Info("reminder stopped")
	return nil
}
