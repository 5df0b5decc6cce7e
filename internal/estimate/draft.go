// Package estimate holds the editable estimate draft and the commit flow that
// turns it into stored rows and a rendered document.
package estimate

import (
	"strings"
	"time"

	"github.com/diewo77/go-estimates/internal/models"
	"github.com/diewo77/go-estimates/internal/pricing"
)

// CustomerMode selects how the draft refers to its customer.
type CustomerMode string

const (
	CustomerExisting CustomerMode = "existing"
	CustomerNew      CustomerMode = "new"
)

// NewCustomer is the by-value customer typed into a draft in CustomerNew mode.
type NewCustomer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Line is one editable row. Item fields are copied from the catalog when an
// item is selected; the line never keeps a reference to the catalog row.
type Line struct {
	ItemName    string  `json:"item_name"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Qty         float64 `json:"qty"`
	Rate        float64 `json:"rate"`
	HamaliRate  float64 `json:"hamali_rate"`
}

// IsLineComplete reports whether l carries a name, a positive quantity and a positive rate.
// Incomplete lines are scratch rows: they are neither totalled, stored nor rendered.
func IsLineComplete(l Line) bool {
	return strings.TrimSpace(l.ItemName) != "" && l.Qty > 0 && l.Rate > 0
}

func emptyLine() Line { return Line{Qty: 1} }

// Draft is the working copy of an estimate. It is owned by the caller and
// passed to every editing operation; Commit replaces it with a fresh one.
type Draft struct {
	ID         string    `json:"id"`
	EstimateID uint      `json:"estimate_id,omitempty"` // non-zero when editing in place
	Number     string    `json:"number"`
	Date       time.Time `json:"date"`

	Mode             CustomerMode `json:"customer_mode"`
	SelectedCustomer string       `json:"selected_customer,omitempty"`
	NewCustomer      NewCustomer  `json:"new_customer"`

	Lines            []Line  `json:"lines"`
	HamaliAdjustment float64 `json:"hamali_adjustment"`
	AutoCharge       float64 `json:"auto_charge"`
	Discount         float64 `json:"discount"`

	// SuppressAutoAppend is set by RemoveLine and consumed by the next line edit.
	SuppressAutoAppend bool `json:"suppress_auto_append"`
}

// NewDraft starts an empty draft with a single blank line.
func NewDraft(id, number string, date time.Time) *Draft {
	return &Draft{
		ID:     id,
		Number: number,
		Date:   date,
		Mode:   CustomerExisting,
		Lines:  []Line{emptyLine()},
	}
}

// Hydrate builds an edit-in-place draft from a stored estimate.
// customerName is empty when the referenced customer no longer exists.
// hamali adjustment is recovered as the stored hamali total minus the per-unit sum.
func Hydrate(id string, e *models.Estimate, customerName string) *Draft {
	d := &Draft{
		ID:               id,
		EstimateID:       e.ID,
		Number:           e.EstimateNo,
		Date:             e.Date,
		Mode:             CustomerExisting,
		SelectedCustomer: customerName,
		AutoCharge:       e.AutoCharge,
		Discount:         e.Discount,
	}
	var perUnit float64
	for _, l := range e.Lines {
		d.Lines = append(d.Lines, Line{
			ItemName:    l.ItemName,
			Description: l.Description,
			Unit:        l.Unit,
			Qty:         l.Qty,
			Rate:        l.Rate,
			HamaliRate:  l.HamaliRate,
		})
		perUnit += l.Qty * l.HamaliRate
	}
	d.HamaliAdjustment = e.HamaliTotal - perUnit
	d.Lines = append(d.Lines, emptyLine())
	return d
}

// Editing reports whether the draft updates an existing estimate.
func (d *Draft) Editing() bool { return d.EstimateID != 0 }

func (d *Draft) checkPos(pos int) error {
	if pos < 0 || pos >= len(d.Lines) {
		return invalid("lines", CodeLineOutOfRange)
	}
	return nil
}

// AddLine appends a blank line.
func (d *Draft) AddLine() {
	d.Lines = append(d.Lines, emptyLine())
}

// RemoveLine deletes the line at pos and suppresses the next auto-append,
// so removing a trailing blank row does not immediately bring it back.
func (d *Draft) RemoveLine(pos int) error {
	if err := d.checkPos(pos); err != nil {
		return err
	}
	d.Lines = append(d.Lines[:pos], d.Lines[pos+1:]...)
	d.SuppressAutoAppend = true
	return nil
}

// SelectItem copies the catalog item into the line at pos. Quantity is kept.
func (d *Draft) SelectItem(pos int, it models.Item) error {
	if err := d.checkPos(pos); err != nil {
		return err
	}
	was := d.lastComplete()
	l := &d.Lines[pos]
	l.ItemName = it.Name
	l.Description = it.Description
	l.Unit = it.Unit
	l.Rate = it.Rate
	l.HamaliRate = it.HamaliRate
	d.settle(was)
	return nil
}

// LinePatch carries the fields to change on a line. Nil fields are left untouched.
type LinePatch struct {
	ItemName    *string  `json:"item_name"`
	Description *string  `json:"description"`
	Unit        *string  `json:"unit"`
	Qty         *float64 `json:"qty"`
	Rate        *float64 `json:"rate"`
	HamaliRate  *float64 `json:"hamali_rate"`
}

// UpdateLine applies p to the line at pos.
func (d *Draft) UpdateLine(pos int, p LinePatch) error {
	if err := d.checkPos(pos); err != nil {
		return err
	}
	was := d.lastComplete()
	l := &d.Lines[pos]
	if p.ItemName != nil {
		l.ItemName = *p.ItemName
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Unit != nil {
		l.Unit = *p.Unit
	}
	if p.Qty != nil {
		l.Qty = *p.Qty
	}
	if p.Rate != nil {
		l.Rate = *p.Rate
	}
	if p.HamaliRate != nil {
		l.HamaliRate = *p.HamaliRate
	}
	d.settle(was)
	return nil
}

// HeaderPatch changes header fields, customer selection and charges.
type HeaderPatch struct {
	Date             *time.Time    `json:"date"`
	Mode             *CustomerMode `json:"customer_mode"`
	SelectedCustomer *string       `json:"selected_customer"`
	NewCustomer      *NewCustomer  `json:"new_customer"`
	HamaliAdjustment *float64      `json:"hamali_adjustment"`
	AutoCharge       *float64      `json:"auto_charge"`
	Discount         *float64      `json:"discount"`
}

// UpdateHeader applies p to the draft.
func (d *Draft) UpdateHeader(p HeaderPatch) {
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Mode != nil {
		d.Mode = *p.Mode
	}
	if p.SelectedCustomer != nil {
		d.SelectedCustomer = *p.SelectedCustomer
	}
	if p.NewCustomer != nil {
		d.NewCustomer = *p.NewCustomer
	}
	if p.HamaliAdjustment != nil {
		d.HamaliAdjustment = *p.HamaliAdjustment
	}
	if p.AutoCharge != nil {
		d.AutoCharge = *p.AutoCharge
	}
	if p.Discount != nil {
		d.Discount = *p.Discount
	}
}

// CheckCharges rejects a negative discount, auto charge or net hamali total.
// The printed totals only show positive charges, so the stored grand total
// would otherwise differ from the document.
func (d *Draft) CheckCharges() error {
	c := d.Totals()
	switch {
	case c.Discount < 0:
		return invalid("discount", CodeNegativeCharge)
	case c.AutoCharge < 0:
		return invalid("auto_charge", CodeNegativeCharge)
	case c.HamaliTotal < 0:
		return invalid("hamali_adjustment", CodeNegativeCharge)
	}
	return nil
}

func (d *Draft) lastComplete() bool {
	n := len(d.Lines)
	return n > 0 && IsLineComplete(d.Lines[n-1])
}

// settle appends a blank line when a line edit turned the last line from
// incomplete to complete, unless a removal asked to skip one cycle.
func (d *Draft) settle(wasComplete bool) {
	if d.SuppressAutoAppend {
		d.SuppressAutoAppend = false
		return
	}
	if !wasComplete && d.lastComplete() {
		d.Lines = append(d.Lines, emptyLine())
	}
}

// CompleteLines returns the lines that count toward totals, in order.
func (d *Draft) CompleteLines() []Line {
	out := make([]Line, 0, len(d.Lines))
	for _, l := range d.Lines {
		if IsLineComplete(l) {
			out = append(out, l)
		}
	}
	return out
}

// Totals computes the header charges over the complete lines.
func (d *Draft) Totals() pricing.Charges {
	lines := d.CompleteLines()
	cl := make([]pricing.ChargeLine, len(lines))
	for i, l := range lines {
		cl[i] = pricing.ChargeLine{Qty: l.Qty, Rate: l.Rate, HamaliRate: l.HamaliRate}
	}
	return pricing.EstimateCharges(cl, d.HamaliAdjustment, d.AutoCharge, d.Discount)
}
