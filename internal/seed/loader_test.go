package seed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AdlenSouci/memory-app/internal/deck"
	"github.com/AdlenSouci/memory-app/internal/seed"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setupTestSeed(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "geo", "capitales.yaml"), `
categories:
  - id: geo
    name: Géographie
themes:
  - id: 1
    categoryId: geo
    titre: Capitales
cards:
  - id: 10
    themeId: 1
    recto: France
    verso: Paris
`)
	writeFile(t, filepath.Join(dir, "langues", "anglais.json"), `{
  "themes": [{"id": "en", "titre": "Anglais", "maxLevel": 4}],
  "cards": [{"id": 20, "themeId": "en", "recto": "chat", "verso": "cat", "niveau": 3}]
}`)
	writeFile(t, filepath.Join(dir, "notes.md"), "not a seed")
	return dir
}

func TestDefault(t *testing.T) {
	c := seed.Default()
	snap := c.Snapshot("2026-03-30")

	if snap.Categories != nil {
		t.Errorf("bundled seed should not define categories, got %+v", snap.Categories)
	}
	if len(snap.Themes) == 0 || len(snap.Cards) == 0 {
		t.Fatalf("bundled seed is empty: %d themes, %d cards", len(snap.Themes), len(snap.Cards))
	}
	for _, th := range snap.Themes {
		if th.CategoryID != deck.DefaultCategoryID {
			t.Errorf("theme %s category = %q, want default", th.ID, th.CategoryID)
		}
	}
	themes := map[string]bool{}
	for _, th := range snap.Themes {
		themes[th.ID] = true
	}
	for _, card := range snap.Cards {
		if !themes[card.ThemeID] {
			t.Errorf("card %s references unknown theme %q", card.ID, card.ThemeID)
		}
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := setupTestSeed(t)

	c, err := seed.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap := c.Snapshot("2026-03-30")

	if len(snap.Categories) != 1 || snap.Categories[0].ID != "geo" {
		t.Errorf("Categories = %+v, want geo", snap.Categories)
	}
	if len(snap.Themes) != 2 {
		t.Errorf("len(Themes) = %d, want 2", len(snap.Themes))
	}
	if len(snap.Cards) != 2 {
		t.Errorf("len(Cards) = %d, want 2", len(snap.Cards))
	}
}

func TestLoad_SkipsInvalidFiles(t *testing.T) {
	dir := setupTestSeed(t)
	writeFile(t, filepath.Join(dir, "broken.yaml"), "themes: [unclosed")
	writeFile(t, filepath.Join(dir, "other.yaml"), "title: not a seed file\n")

	c, err := seed.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(c.Dataset().Themes); got != 2 {
		t.Errorf("len(Themes) = %d, want 2", got)
	}
}

func TestLoad_SingleFile(t *testing.T) {
	dir := setupTestSeed(t)

	c, err := seed.Load(filepath.Join(dir, "langues", "anglais.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap := c.Snapshot("2026-03-30")
	if snap.Categories != nil {
		t.Errorf("Categories = %+v, want nil", snap.Categories)
	}
	if len(snap.Cards) != 1 || snap.Cards[0].ID != "20" {
		t.Errorf("Cards = %+v, want card 20", snap.Cards)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	writeFile(t, broken, "themes: [unclosed")
	emptyDir := filepath.Join(dir, "empty")
	if err := os.Mkdir(emptyDir, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope.yaml")},
		{"invalid file", broken},
		{"no seed files", emptyDir},
		{"unsupported format", writeAndReturn(t, filepath.Join(dir, "seed.toml"), "x = 1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := seed.Load(tt.path); err == nil {
				t.Errorf("Load(%s) should return error", tt.path)
			}
		})
	}
}

func writeAndReturn(t *testing.T, path, content string) string {
	t.Helper()
	writeFile(t, path, content)
	return path
}
