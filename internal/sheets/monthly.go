package sheets

import (
	"fmt"
	"io"

	"github.com/diewo77/go-estimates/internal/render"
	"github.com/diewo77/go-estimates/internal/store"
	"github.com/xuri/excelize/v2"
)

const MonthlySheet = "Monthly"

var monthlyHeaders = []string{"Date", "Estimates", "Total"}

// ExportMonthly writes the day-wise rows of r followed by a month total row.
func ExportMonthly(w io.Writer, r store.MonthlyReport) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", MonthlySheet); err != nil {
		return err
	}
	rows := make([][]any, 0, len(r.Days)+1)
	for _, d := range r.Days {
		rows = append(rows, []any{d.Date.Format(render.DateLayout), d.Count, d.Total})
	}
	rows = append(rows, []any{fmt.Sprintf("Total %04d-%02d", r.Year, r.Month), r.Count, r.Total})
	if err := writeTable(f, MonthlySheet, monthlyHeaders, rows); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
