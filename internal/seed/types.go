// Package seed reads the bundled and user-supplied datasets used to populate
// an empty deck or to reset it.
package seed

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ID is an identifier that may be written as a number or a string in seed
// files. It always decodes to its string form.
type ID string

func (id *ID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", n.Line)
	}
	switch n.Tag {
	case "!!null":
		*id = ""
	case "!!float":
		*id = ID(canonicalNumber(n.Value))
	default:
		*id = ID(n.Value)
	}
	return nil
}

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %s", b)
	}
	*id = ID(canonicalNumber(n.String()))
	return nil
}

// canonicalNumber renders 1.0 as "1" and keeps other values as written.
func canonicalNumber(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Category is a seed category.
type Category struct {
	ID   ID     `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Theme is a seed theme. Zero values take the deck defaults.
type Theme struct {
	ID             ID     `yaml:"id" json:"id"`
	CategoryID     ID     `yaml:"categoryId" json:"categoryId"`
	Title          string `yaml:"titre" json:"titre"`
	MaxLevel       int    `yaml:"maxLevel" json:"maxLevel"`
	NewCardsPerDay int    `yaml:"newCardsPerDay" json:"newCardsPerDay"`
}

// Card is a seed card. Zero values take the deck defaults.
type Card struct {
	ID             ID     `yaml:"id" json:"id"`
	ThemeID        ID     `yaml:"themeId" json:"themeId"`
	Recto          string `yaml:"recto" json:"recto"`
	RectoType      string `yaml:"rectoType" json:"rectoType"`
	RectoContent   string `yaml:"rectoContent" json:"rectoContent"`
	Verso          string `yaml:"verso" json:"verso"`
	VersoType      string `yaml:"versoType" json:"versoType"`
	VersoContent   string `yaml:"versoContent" json:"versoContent"`
	Level          int    `yaml:"niveau" json:"niveau"`
	NextReviewDate string `yaml:"nextReviewDate" json:"nextReviewDate"`
}

// Dataset is the content of one seed file. Categories is nil when the file
// defines none.
type Dataset struct {
	Categories []Category `yaml:"categories" json:"categories"`
	Themes     []Theme    `yaml:"themes" json:"themes"`
	Cards      []Card     `yaml:"cards" json:"cards"`
}

func (d Dataset) empty() bool {
	return d.Categories == nil && len(d.Themes) == 0 && len(d.Cards) == 0
}
