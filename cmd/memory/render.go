package main

import (
	"html"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/AdlenSouci/memory-app/internal/deck"
)

const maxCellWidth = 40

var plain = bluemonday.StrictPolicy()

// clean strips markup from user-entered text for terminal output.
func clean(s string) string {
	s = html.UnescapeString(plain.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCellWidth {
		s = string(r[:maxCellWidth-1]) + "…"
	}
	return s
}

// face renders one side of a card. Non-text faces are prefixed with their
// media type.
func face(text string, typ deck.MediaType) string {
	if typ == "" || typ == deck.MediaText {
		return clean(text)
	}
	if text == "" {
		return "[" + string(typ) + "]"
	}
	return "[" + string(typ) + "] " + clean(text)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// sortByName orders items with French collation rules, ignoring case.
func sortByName[T any](items []T, name func(T) string) {
	col := collate.New(language.French, collate.IgnoreCase)
	slices.SortStableFunc(items, func(a, b T) int {
		return col.CompareString(name(a), name(b))
	})
}
