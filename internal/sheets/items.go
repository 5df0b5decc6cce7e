// Package sheets reads and writes the xlsx files exchanged with the shop:
// the item catalog and the monthly report.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/diewo77/go-estimates/internal/models"
	"github.com/xuri/excelize/v2"
)

const ItemsSheet = "Items"

// ItemHeaders is the catalog template, in column order.
var ItemHeaders = []string{"Item Name", "Description", "Unit", "Rate", "Hamali Rate"}

// ErrInvalidTemplate is returned when the upload is not a workbook or lacks one of ItemHeaders.
var ErrInvalidTemplate = errors.New("invalid item template")

// ItemUpserter is satisfied by store.ItemStore.
type ItemUpserter interface {
	Upsert(ctx context.Context, it *models.Item) (created bool, err error)
}

// ItemLister is satisfied by store.ItemStore.
type ItemLister interface {
	List(ctx context.Context) ([]models.Item, error)
}

// ImportResult counts what an import did. Problems lists skipped rows with a reason.
type ImportResult struct {
	Added    int      `json:"added"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Problems []string `json:"problems,omitempty"`
}

// ImportItems reads the "Items" sheet (or the first sheet) and upserts every row by name.
// Rows with a blank name or an unreadable rate are skipped.
func ImportItems(ctx context.Context, r io.Reader, items ItemUpserter) (ImportResult, error) {
	var res ImportResult
	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	defer f.Close()

	sheet := ItemsSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return res, ErrInvalidTemplate
		}
		sheet = list[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return res, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return res, ErrInvalidTemplate
	}
	cols, err := headerIndex(rows[0])
	if err != nil {
		return res, err
	}

	for n, row := range rows[1:] {
		line := n + 2
		get := func(h string) string {
			i := cols[h]
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		name := get("Item Name")
		if name == "" {
			res.Skipped++
			continue
		}
		rate, err := parseNumber(get("Rate"))
		if err != nil {
			res.Skipped++
			res.Problems = append(res.Problems, fmt.Sprintf("row %d: rate %q", line, get("Rate")))
			continue
		}
		hamali, err := parseNumber(get("Hamali Rate"))
		if err != nil {
			res.Skipped++
			res.Problems = append(res.Problems, fmt.Sprintf("row %d: hamali rate %q", line, get("Hamali Rate")))
			continue
		}
		it := &models.Item{
			Name:        name,
			Description: get("Description"),
			Unit:        get("Unit"),
			Rate:        rate,
			HamaliRate:  hamali,
		}
		created, err := items.Upsert(ctx, it)
		if err != nil {
			return res, fmt.Errorf("row %d (%s): %w", line, name, err)
		}
		if created {
			res.Added++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	out := make(map[string]int, len(ItemHeaders))
	for _, h := range ItemHeaders {
		i, ok := cols[strings.ToLower(h)]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidTemplate, h)
		}
		out[h] = i
	}
	return out, nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// ExportItems writes the whole catalog using the import template.
func ExportItems(ctx context.Context, w io.Writer, items ItemLister) error {
	list, err := items.List(ctx)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		return err
	}
	rows := make([][]any, 0, len(list))
	for _, it := range list {
		rows = append(rows, []any{it.Name, it.Description, it.Unit, it.Rate, it.HamaliRate})
	}
	if err := writeTable(f, ItemsSheet, ItemHeaders, rows); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// writeTable writes a bold header row followed by rows, starting at A1.
func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetCellValue(sheet, col+"1", h); err != nil {
			return err
		}
		_ = f.SetColWidth(sheet, col, col, 18)
	}
	for r, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}
	return nil
}
