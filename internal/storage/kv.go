// Package storage provides the durable key-value backends that mirror deck
// state, and the Adapter that encodes and safely decodes values on top of them.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key has never been written or
// has been deleted.
var ErrNotFound = errors.New("key not found")

// KV is a durable string-keyed byte store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
