package seed

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AdlenSouci/memory-app/internal/deck"
)

const (
	sheetCategories = "categories"
	sheetThemes     = "themes"
	sheetCards      = "cards"
)

var (
	categoryColumns = []string{"id", "name"}
	themeColumns    = []string{"id", "categoryId", "titre", "maxLevel", "newCardsPerDay"}
	cardColumns     = []string{"id", "themeId", "recto", "rectoType", "rectoContent", "verso", "versoType", "versoContent", "niveau", "nextReviewDate"}
)

// ReadXLSX decodes a workbook with sheets named categories, themes and cards.
// The first row of each sheet names the columns; missing sheets and columns
// are treated as absent.
func ReadXLSX(r io.Reader) (Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var d Dataset
	sheets := f.GetSheetList()

	if slices.Contains(sheets, sheetCategories) {
		rows, err := readSheet(f, sheetCategories)
		if err != nil {
			return Dataset{}, err
		}
		d.Categories = make([]Category, 0, len(rows))
		for _, row := range rows {
			d.Categories = append(d.Categories, Category{
				ID:   ID(row.str("id")),
				Name: row.str("name"),
			})
		}
	}

	if slices.Contains(sheets, sheetThemes) {
		rows, err := readSheet(f, sheetThemes)
		if err != nil {
			return Dataset{}, err
		}
		for _, row := range rows {
			t := Theme{
				ID:         ID(row.str("id")),
				CategoryID: ID(row.str("categoryId")),
				Title:      row.str("titre"),
			}
			if t.MaxLevel, err = row.integer("maxLevel"); err != nil {
				return Dataset{}, err
			}
			if t.NewCardsPerDay, err = row.integer("newCardsPerDay"); err != nil {
				return Dataset{}, err
			}
			d.Themes = append(d.Themes, t)
		}
	}

	if slices.Contains(sheets, sheetCards) {
		rows, err := readSheet(f, sheetCards)
		if err != nil {
			return Dataset{}, err
		}
		for _, row := range rows {
			c := Card{
				ID:             ID(row.str("id")),
				ThemeID:        ID(row.str("themeId")),
				Recto:          row.str("recto"),
				RectoType:      row.str("rectoType"),
				RectoContent:   row.str("rectoContent"),
				Verso:          row.str("verso"),
				VersoType:      row.str("versoType"),
				VersoContent:   row.str("versoContent"),
				NextReviewDate: row.str("nextReviewDate"),
			}
			if c.Level, err = row.integer("niveau"); err != nil {
				return Dataset{}, err
			}
			d.Cards = append(d.Cards, c)
		}
	}

	if d.empty() {
		return Dataset{}, fmt.Errorf("workbook has no categories, themes or cards sheet")
	}
	return d, nil
}

type sheetRow struct {
	sheet  string
	line   int
	values map[string]string
}

func (r sheetRow) str(col string) string {
	return strings.TrimSpace(r.values[col])
}

func (r sheetRow) integer(col string) (int, error) {
	v := r.str(col)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: column %s: %q is not an integer", r.sheet, r.line, col, v)
	}
	return n, nil
}

func readSheet(f *excelize.File, sheet string) ([]sheetRow, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	out := make([]sheetRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		values := make(map[string]string, len(header))
		for col, name := range header {
			if col < len(row) {
				values[strings.TrimSpace(name)] = row[col]
			}
		}
		out = append(out, sheetRow{sheet: sheet, line: i + 2, values: values})
	}
	return out, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteXLSX writes snap as a workbook that ReadXLSX can load back.
func WriteXLSX(w io.Writer, snap deck.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetCategories); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{sheetThemes, sheetCards} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	categories := make([][]any, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		categories = append(categories, []any{c.ID, c.Name})
	}
	themes := make([][]any, 0, len(snap.Themes))
	for _, t := range snap.Themes {
		themes = append(themes, []any{t.ID, t.CategoryID, t.Title, t.MaxLevel, t.NewCardsPerDay})
	}
	cards := make([][]any, 0, len(snap.Cards))
	for _, c := range snap.Cards {
		cards = append(cards, []any{
			c.ID, c.ThemeID,
			c.Recto, string(c.RectoType), c.RectoContent,
			c.Verso, string(c.VersoType), c.VersoContent,
			c.Level, c.NextReviewDate,
		})
	}

	if err := writeSheet(f, sheetCategories, categoryColumns, categories); err != nil {
		return err
	}
	if err := writeSheet(f, sheetThemes, themeColumns, themes); err != nil {
		return err
	}
	if err := writeSheet(f, sheetCards, cardColumns, cards); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, rows [][]any) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
