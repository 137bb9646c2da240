package storage_test

import (
	"errors"
	"testing"

	"github.com/AdlenSouci/memory-app/internal/storage"
)

func TestMemoryKV_SetGet(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := t.Context()

	if err := kv.Set(ctx, "memory_user", []byte(`{"pseudo":"ada","score":3}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := kv.Get(ctx, "memory_user")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"pseudo":"ada","score":3}` {
		t.Errorf("Get() = %s", got)
	}
}

func TestMemoryKV_GetMissing(t *testing.T) {
	kv := storage.NewMemoryKV()

	_, err := kv.Get(t.Context(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryKV_Delete(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := t.Context()

	_ = kv.Set(ctx, "k", []byte("v"))
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := t.Context()

	buf := []byte("original")
	_ = kv.Set(ctx, "k", buf)
	buf[0] = 'X'

	got, _ := kv.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored value changed with caller buffer: %q", got)
	}
	got[0] = 'Y'
	again, _ := kv.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("stored value changed with returned buffer: %q", again)
	}
}
