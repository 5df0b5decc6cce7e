// Package render lays out printable documents and writes them as PDF.
//
// Build produces a Layout, a plain description of every region of the page;
// PDF turns a Layout into bytes with maroto. Keeping the two apart lets the
// row rules be checked without parsing PDF output.
package render

import (
	"time"

	"github.com/diewo77/go-estimates/internal/pricing"
)

// Kind parameterizes the labels of a document type.
type Kind struct {
	Title          string
	DetailsHeading string
	NumberLabel    string
	DateLabel      string
}

var (
	KindEstimate = Kind{Title: "ESTIMATE", DetailsHeading: "Estimate Details", NumberLabel: "Estimate No", DateLabel: "Estimate Date"}
	KindQuote    = Kind{Title: "QUOTE", DetailsHeading: "Quote Details", NumberLabel: "Quote No", DateLabel: "Quote Date"}
)

// DateLayout is how document dates are printed.
const DateLayout = "02/01/2006"

// Company is the letterhead printed at the top of every document.
type Company struct {
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"address"`
	Phone   string `yaml:"phone" json:"phone"`
	GSTIN   string `yaml:"gstin" json:"gstin"`
	State   string `yaml:"state" json:"state"`
	Footer  string `yaml:"footer" json:"footer"`
}

// DefaultCompany is used when no company file is configured.
func DefaultCompany() Company {
	return Company{
		Name:    "Sri Rama Steel & Cement",
		Address: "Warangal Road, Huzurabad",
		Phone:   "8885482288",
		GSTIN:   "36AVBPT8804D1ZJ",
		State:   "36-Telangana",
	}
}

// Party is the customer snapshot shown under "Bill To".
type Party struct {
	Name    string
	Phone   string
	Address string
}

// Line is one priced row as captured on the document.
type Line struct {
	Name        string
	Description string
	Unit        string
	Qty         float64
	Rate        float64
}

// Document is everything needed to lay out one page.
// Only HamaliTotal, AutoCharge and Discount are read from Charges; the item
// subtotal is summed from the lines that are actually printed.
type Document struct {
	Kind     Kind
	Company  Company
	Number   string
	Date     time.Time
	Customer Party
	Lines    []Line
	Charges  pricing.Charges
}
