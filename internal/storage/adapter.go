package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Adapter stores JSON-encoded values in a KV and recovers from corrupted
// entries by discarding them.
type Adapter struct {
	kv     KV
	logger *slog.Logger
}

// NewAdapter creates an adapter over kv. A nil logger uses slog.Default().
func NewAdapter(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		kv:     kv,
		logger: logger.With("component", "storage_adapter"),
	}
}

// Load decodes the value stored under key into dst and reports whether dst
// now holds usable data. It returns false without logging when the key is
// absent. A value that fails to decode or violates schema is logged, deleted
// and reported as false so the caller can fall back to its initializer. A
// nil schema skips shape validation.
func (a *Adapter) Load(ctx context.Context, key string, schema *Schema, dst any) bool {
	data, err := a.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warn("reading persisted state failed, using defaults", "key", key, "error", err)
		}
		return false
	}

	if err := decode(data, schema, dst); err != nil {
		a.logger.Warn("corrupted persisted state, discarding", "key", key, "error", err)
		if delErr := a.kv.Delete(ctx, key); delErr != nil {
			a.logger.Error("failed to delete corrupted key", "key", key, "error", delErr)
		}
		return false
	}
	return true
}

// Save encodes v as JSON and writes it under key.
func (a *Adapter) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return a.kv.Set(ctx, key, data)
}

// Remove deletes key.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	return a.kv.Delete(ctx, key)
}

func decode(data []byte, schema *Schema, dst any) error {
	if schema != nil {
		if err := schema.Check(data); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	return nil
}
