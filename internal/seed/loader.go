package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultYAML []byte

// Default returns the bundled dataset.
func Default() *Catalog {
	d, err := Parse(defaultYAML, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("bundled seed is invalid: %v", err))
	}
	return NewCatalog(d)
}

// Parse decodes a dataset. ext selects the format: .yaml, .yml or .json.
func Parse(data []byte, ext string) (Dataset, error) {
	var d Dataset
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return Dataset{}, fmt.Errorf("decoding yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &d); err != nil {
			return Dataset{}, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return Dataset{}, fmt.Errorf("unsupported seed format %q", ext)
	}
	return d, nil
}

// Load reads a seed file, or every seed file under a directory. Files in a
// directory that fail to decode are skipped with a warning; a single file
// that fails to decode is an error.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed: %w", err)
	}

	if !info.IsDir() {
		d, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading seed %s: %w", path, err)
		}
		return NewCatalog(d), nil
	}

	var sets []Dataset
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !supported(p) {
			return nil
		}
		d, err := readFile(p)
		if err != nil {
			slog.Warn("skipping invalid seed file", "path", p, "error", err)
			return nil
		}
		if d.empty() {
			return nil // Not a seed file
		}
		sets = append(sets, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking seed directory: %w", err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no seed files found in %s", path)
	}

	c := NewCatalog(sets...)
	slog.Info("seed loaded",
		"path", path,
		"files", len(sets),
		"themes", len(c.data.Themes),
		"cards", len(c.data.Cards),
	)
	return c, nil
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".xlsx":
		return true
	}
	return false
}

func readFile(path string) (Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		f, err := os.Open(path)
		if err != nil {
			return Dataset{}, err
		}
		defer f.Close()
		return ReadXLSX(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, err
	}
	return Parse(data, ext)
}
