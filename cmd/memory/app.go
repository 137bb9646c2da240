package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/AdlenSouci/memory-app/internal/deck"
	"github.com/AdlenSouci/memory-app/internal/platform/cache"
	"github.com/AdlenSouci/memory-app/internal/platform/config"
	"github.com/AdlenSouci/memory-app/internal/platform/database"
	"github.com/AdlenSouci/memory-app/internal/seed"
	"github.com/AdlenSouci/memory-app/internal/srs"
	"github.com/AdlenSouci/memory-app/internal/storage"
)

var errUsage = errors.New("usage")

// app owns the store and the connections behind it for one invocation.
type app struct {
	cfg     *config.Config
	store   *deck.Store
	history *deck.PostgresEventLogger
	db      *database.DB
	out     io.Writer
	closers []func() error
}

// newApp wires storage, seed, scheduler and event log from cfg. A nil
// scheduler uses the wall clock in the configured timezone.
func newApp(ctx context.Context, cfg *config.Config, out io.Writer, sched *srs.Scheduler) (*app, error) {
	a := &app{cfg: cfg, out: out}

	kv, err := a.openBackend(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	src, err := loadSeed(cfg.Seed)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	if sched == nil {
		loc, err := cfg.Location()
		if err != nil {
			a.closeAll()
			return nil, err
		}
		sched = srs.New(srs.WithLocation(loc))
	}

	var events deck.EventLogger = deck.NopEventLogger{}
	if cfg.Review.LogEvents {
		l, err := a.openEventLog(ctx)
		if err != nil {
			a.closeAll()
			return nil, err
		}
		a.history, events = l, l
	}

	store, err := deck.Open(ctx, deck.Options{
		Persister:  storage.NewAdapter(kv, slog.Default()),
		Seed:       src,
		Scheduler:  sched,
		Events:     events,
		Logger:     slog.Default(),
		KeyPrefix:  cfg.Storage.KeyPrefix,
		FlushDelay: cfg.Storage.FlushDelay,
	})
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("opening deck: %w", err)
	}
	a.store = store
	return a, nil
}

func (a *app) openBackend(ctx context.Context) (storage.KV, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryKV(), nil

	case config.BackendSQLite:
		kv, err := storage.OpenSQLite(a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kv.Close)
		return kv, nil

	case config.BackendRedis:
		c, err := cache.New(ctx, a.cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		return storage.NewRedisKV(c.Client)

	case config.BackendPostgres:
		db, err := a.connectDatabase(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresKV(ctx, db.Pool)
	}
	return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
}

func (a *app) openEventLog(ctx context.Context) (*deck.PostgresEventLogger, error) {
	db, err := a.connectDatabase(ctx)
	if err != nil {
		return nil, err
	}
	l := deck.NewPostgresEventLogger(db.Pool)
	if err := l.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// connectDatabase opens the pool once and shares it between the storage
// backend and the event log.
func (a *app) connectDatabase(ctx context.Context) (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() error {
		db.Close()
		return nil
	})
	return db, nil
}

func loadSeed(cfg config.SeedConfig) (deck.SeedSource, error) {
	if cfg.Path == "" {
		return seed.Default(), nil
	}
	c, err := seed.Load(cfg.Path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close flushes the store and releases connections.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close(ctx))
	}
	errs = append(errs, a.closeAll())
	return errors.Join(errs...)
}

func (a *app) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
