package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Page geometry in millimetres: A5 with 20pt margins.
const (
	marginMM    = 7.05
	lineHeight  = 4.2
	cellPadding = 1.5
)

// gridSpan maps each items column onto maroto's 12-column grid (15/55/15/15 rounded).
var gridSpan = [4]int{2, 6, 2, 2}

var (
	headerFill = &props.Color{Red: 191, Green: 191, Blue: 191}
	detailFill = &props.Color{Red: 204, Green: 204, Blue: 204}
)

// Error is returned when a document cannot be generated or written.
// Anything already committed to the database stays committed.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("render %s: %v", e.Path, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// PDF writes layouts as A5 PDF documents.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

// Bytes generates the PDF for doc.
func (p *PDF) Bytes(doc Document) ([]byte, error) {
	l := Build(doc)
	m := maroto.New(config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(marginMM).
		WithTopMargin(marginMM).
		WithRightMargin(marginMM).
		Build())

	for _, h := range l.Header {
		if h.Text == "" {
			continue
		}
		m.AddRow(h.Size*0.5, text.NewCol(12, h.Text, props.Text{
			Family: fontfamily.Helvetica,
			Style:  weight(h.Bold),
			Size:   h.Size,
			Align:  align.Center,
		}))
	}
	m.AddRow(9, text.NewCol(12, l.Title, props.Text{
		Family: fontfamily.Helvetica,
		Style:  fontstyle.Bold,
		Size:   14,
		Align:  align.Center,
		Top:    2,
	}))

	m.AddRows(detailsRows(l)...)
	m.AddRow(3)
	for i, r := range l.Items {
		m.AddRows(tableRow(r, i == 0, 10, 8))
	}
	for _, r := range l.Totals {
		m.AddRows(tableRow(r, false, 10, 10))
	}
	if l.Footer != "" {
		m.AddRow(8, text.NewCol(12, l.Footer, props.Text{Size: 8, Align: align.Center, Top: 3}))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

// RenderFile writes the document to path, creating parent directories.
// The file is written in place; a failure can leave a partial file behind.
func (p *PDF) RenderFile(path string, doc Document) error {
	data, err := p.Bytes(doc)
	if err != nil {
		return &Error{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Path: path, Err: err}
	}
	return nil
}

func detailsRows(l Layout) []core.Row {
	head := row.New(6).Add(
		headingCol(6, l.BillTo.Heading),
		headingCol(6, l.Details.Heading),
	)
	n := len(l.BillTo.Lines)
	if len(l.Details.Lines) > n {
		n = len(l.Details.Lines)
	}
	body := row.New(float64(n)*lineHeight + 2*cellPadding).Add(
		linesCol(6, l.BillTo.Lines, align.Left, false, 8),
		linesCol(6, l.Details.Lines, align.Left, false, 8),
	)
	return []core.Row{head, body}
}

func headingCol(size int, s string) core.Col {
	return col.New(size).Add(text.New(s, props.Text{
		Family: fontfamily.Helvetica,
		Style:  fontstyle.Bold,
		Size:   10,
		Align:  align.Center,
		Top:    1,
	})).WithStyle(&props.Cell{BorderType: border.Full, BackgroundColor: detailFill})
}

func tableRow(r Row, header bool, headerSize, size float64) core.Row {
	lines := 1
	for _, c := range r.Cells {
		if len(c.Lines) > lines {
			lines = len(c.Lines)
		}
	}
	cols := make([]core.Col, 0, len(r.Cells))
	pos := 0
	for _, c := range r.Cells {
		span := 0
		for i := 0; i < c.Span && pos < len(gridSpan); i++ {
			span += gridSpan[pos]
			pos++
		}
		fs := size
		if header {
			fs = headerSize
		}
		cc := linesCol(span, c.Lines, toAlign(c.Align), c.Bold, fs)
		if header {
			cc = cc.WithStyle(&props.Cell{BorderType: border.Full, BackgroundColor: headerFill})
		}
		cols = append(cols, cc)
	}
	return row.New(float64(lines)*lineHeight + 2*cellPadding).Add(cols...)
}

func linesCol(size int, lines []string, a align.Type, bold bool, fs float64) core.Col {
	c := col.New(size)
	for i, s := range lines {
		c.Add(text.New(s, props.Text{
			Family: fontfamily.Helvetica,
			Style:  weight(bold),
			Size:   fs,
			Align:  a,
			Top:    cellPadding + float64(i)*lineHeight,
			Left:   cellPadding,
			Right:  cellPadding,
		}))
	}
	return c.WithStyle(&props.Cell{BorderType: border.Full})
}

func weight(bold bool) fontstyle.Type {
	if bold {
		return fontstyle.Bold
	}
	return fontstyle.Normal
}

func toAlign(a Align) align.Type {
	switch a {
	case AlignCenter:
		return align.Center
	case AlignRight:
		return align.Right
	default:
		return align.Left
	}
}
