package render

import (
	"fmt"
	"strings"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// ColumnWidths are the relative widths of the 4-column items grid, in percent.
var ColumnWidths = [4]int{15, 55, 15, 15}

// Totals row labels.
const (
	LabelHamali     = "Hamali:"
	LabelAuto       = "Auto:"
	LabelSubTotal   = "Sub Total:"
	LabelDiscount   = "Discount:"
	LabelGrandTotal = "Grand Total:"
)

// Cell spans Span columns of the items grid. Lines are printed one below the other.
type Cell struct {
	Lines []string
	Span  int
	Align Align
	Bold  bool
}

// Text joins the cell lines with newlines.
func (c Cell) Text() string { return strings.Join(c.Lines, "\n") }

type Row struct {
	Cells []Cell
}

// Label is the text of the first cell.
func (r Row) Label() string {
	if len(r.Cells) == 0 {
		return ""
	}
	return r.Cells[0].Text()
}

// Bold reports whether the row is printed in bold.
func (r Row) Bold() bool {
	return len(r.Cells) > 0 && r.Cells[0].Bold
}

// TextLine is a centered line of the letterhead.
type TextLine struct {
	Text string
	Size float64
	Bold bool
}

// Block is one half of the details table.
type Block struct {
	Heading string
	Lines   []string
}

// Layout is the page: letterhead, title, details table, items table and totals.
type Layout struct {
	Header  []TextLine
	Title   string
	BillTo  Block
	Details Block
	Items   []Row // Items[0] is the column header row
	Totals  []Row
	Footer  string
	// Total is the running total after every adjustment, i.e. the Grand Total row.
	Total float64
}

// Printable reports whether a line is printed: it needs a name, a positive
// quantity and a positive rate. The same rule decides which draft lines are stored.
func Printable(l Line) bool {
	return strings.TrimSpace(l.Name) != "" && l.Qty > 0 && l.Rate > 0
}

// contactLine joins the non-empty GSTIN and phone parts.
func contactLine(c Company) string {
	var parts []string
	if v := strings.TrimSpace(c.GSTIN); v != "" {
		parts = append(parts, "GSTIN: "+v)
	}
	if v := strings.TrimSpace(c.Phone); v != "" {
		parts = append(parts, "Ph: "+v)
	}
	return strings.Join(parts, " | ")
}

// Build lays out doc.
func Build(doc Document) Layout {
	kind := doc.Kind
	if kind.Title == "" {
		kind = KindEstimate
	}
	l := Layout{
		Header: []TextLine{
			{Text: doc.Company.Name, Size: 14, Bold: true},
			{Text: doc.Company.Address, Size: 10},
		},
		Title:   kind.Title,
		BillTo:  billTo(doc.Customer),
		Details: Block{Heading: kind.DetailsHeading, Lines: []string{
			fmt.Sprintf("%s: %s", kind.NumberLabel, doc.Number),
			fmt.Sprintf("%s: %s", kind.DateLabel, doc.Date.Format(DateLayout)),
		}},
		Footer: doc.Company.Footer,
	}
	if contact := contactLine(doc.Company); contact != "" {
		l.Header = append(l.Header, TextLine{Text: contact, Size: 10})
	}

	l.Items = append(l.Items, Row{Cells: []Cell{
		{Lines: []string{"Qty"}, Span: 1, Align: AlignCenter, Bold: true},
		{Lines: []string{"Item & Description"}, Span: 1, Align: AlignCenter, Bold: true},
		{Lines: []string{"Rate"}, Span: 1, Align: AlignCenter, Bold: true},
		{Lines: []string{"Amount"}, Span: 1, Align: AlignCenter, Bold: true},
	}})
	var running float64
	for _, line := range doc.Lines {
		if !Printable(line) {
			continue
		}
		amount := line.Qty * line.Rate
		running += amount
		name := []string{line.Name}
		if d := strings.TrimSpace(line.Description); d != "" {
			name = append(name, d)
		}
		l.Items = append(l.Items, Row{Cells: []Cell{
			{Lines: []string{QtyUnit(line.Qty, line.Unit)}, Span: 1, Align: AlignLeft},
			{Lines: name, Span: 1, Align: AlignLeft},
			{Lines: []string{Money(line.Rate)}, Span: 1, Align: AlignRight},
			{Lines: []string{Money(amount)}, Span: 1, Align: AlignRight},
		}})
	}

	c := doc.Charges
	if c.HamaliTotal > 0 {
		l.Totals = append(l.Totals, totalRow(LabelHamali, c.HamaliTotal, false))
		running += c.HamaliTotal
	}
	if c.AutoCharge > 0 {
		l.Totals = append(l.Totals, totalRow(LabelAuto, c.AutoCharge, false))
		running += c.AutoCharge
	}
	if c.Discount > 0 {
		l.Totals = append(l.Totals, totalRow(LabelSubTotal, running, true))
		l.Totals = append(l.Totals, totalRow(LabelDiscount, c.Discount, true))
		running -= c.Discount
	}
	l.Totals = append(l.Totals, totalRow(LabelGrandTotal, running, true))
	l.Total = running
	return l
}

func billTo(p Party) Block {
	b := Block{Heading: "Bill To", Lines: []string{p.Name}}
	if p.Phone != "" {
		b.Lines = append(b.Lines, p.Phone)
	}
	if p.Address != "" {
		b.Lines = append(b.Lines, p.Address)
	}
	return b
}

// totalRow merges columns 0-1 for the label and 2-3 for the value.
func totalRow(label string, value float64, bold bool) Row {
	return Row{Cells: []Cell{
		{Lines: []string{label}, Span: 2, Align: AlignLeft, Bold: bold},
		{Lines: []string{Money(value)}, Span: 2, Align: AlignRight, Bold: bold},
	}}
}
