package storage_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/AdlenSouci/memory-app/internal/storage"
)

const listSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "string"},
			"name": {"type": "string"}
		}
	}
}`

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestAdapter(t *testing.T) (*storage.Adapter, *storage.MemoryKV, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	kv := storage.NewMemoryKV()
	return storage.NewAdapter(kv, logger), kv, &buf
}

func TestAdapter_SaveLoad(t *testing.T) {
	a, _, logs := newTestAdapter(t)
	schema := storage.MustCompileSchema(listSchema)
	ctx := t.Context()

	in := []item{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}}
	if err := a.Save(ctx, "items", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var out []item
	if !a.Load(ctx, "items", schema, &out) {
		t.Fatal("Load() = false, want true")
	}
	if len(out) != 2 || out[1].Name != "Beta" {
		t.Errorf("Load() decoded %+v", out)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected diagnostics: %s", logs.String())
	}
}

func TestAdapter_LoadMissingIsSilent(t *testing.T) {
	a, _, logs := newTestAdapter(t)

	var out []item
	if a.Load(t.Context(), "absent", nil, &out) {
		t.Fatal("Load() = true for missing key")
	}
	if logs.Len() != 0 {
		t.Errorf("missing key should not log, got: %s", logs.String())
	}
}

func TestAdapter_LoadCorrupted(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `[{"id": "a",`},
		{"null", `null`},
		{"wrong shape", `{"id":"a","name":"Alpha"}`},
		{"missing field", `[{"id":"a"}]`},
		{"wrong type", `[{"id":1,"name":"Alpha"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, kv, logs := newTestAdapter(t)
			schema := storage.MustCompileSchema(listSchema)
			ctx := t.Context()

			_ = kv.Set(ctx, "items", []byte(tt.raw))

			var out []item
			if a.Load(ctx, "items", schema, &out) {
				t.Fatal("Load() = true for corrupted value")
			}
			if !strings.Contains(logs.String(), "corrupted persisted state") {
				t.Errorf("expected corruption diagnostic, got: %s", logs.String())
			}
			if _, err := kv.Get(ctx, "items"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("corrupted key should be deleted, Get() error = %v", err)
			}
		})
	}
}

func TestAdapter_Remove(t *testing.T) {
	a, kv, _ := newTestAdapter(t)
	ctx := t.Context()

	_ = a.Save(ctx, "k", map[string]int{"score": 1})
	if err := a.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after Remove error = %v, want ErrNotFound", err)
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	if _, err := storage.CompileSchema(`{"type": 12}`); err == nil {
		t.Fatal("CompileSchema() should reject an invalid schema")
	}
}
