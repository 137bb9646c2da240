package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/AdlenSouci/memory-app/internal/platform/config"
	"github.com/AdlenSouci/memory-app/internal/platform/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "reading .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(cfg.Log, os.Stderr))

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	// Interrupts cancel long-running commands such as remind.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			usage(os.Stderr)
			os.Exit(2)
		}
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// run opens the store described by cfg, executes one command and closes
// the store again.
func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	a, err := newApp(ctx, cfg, out, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			slog.Error("closing store", "error", err)
		}
	}()

	return a.dispatch(ctx, args)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: memory <command> [flags] [args]

Commands:
  stats                                   progress summary
  categories [-sort]                      list categories
  category-add <name>                     create a category
  category-rename <id> <name>             rename a category
  category-delete <id>                    delete a category with its themes and cards
  themes [-category id] [-sort]           list themes
  theme-add [-max-level n] [-per-day n] <category-id> <title>
  theme-update [-title t] [-category id] [-max-level n] [-per-day n] <id>
  theme-delete <id>                       delete a theme with its cards
  cards [-theme id]                       list cards
  card-add [-recto-type t] [-verso-type t] [-recto-content c] [-verso-content c] <theme-id> <recto> <verso>
  card-update [-theme id] [-recto s] [-verso s] [-level n] [-next date] <id>
  card-delete <id>
  due [-theme id]                         list cards due today
  review <card-id> ok|fail                record a review outcome
  history [-card id] [-limit n]           recent reviews (requires MEMORY_REVIEW_LOG_EVENTS)
  login <pseudo> | logout | whoami
  points <n>                              add points to the score
  import                                  replace all collections with the seed
  export <file.xlsx>                      write the deck to a workbook
  remind [-once]                          report due cards periodically`)
}
