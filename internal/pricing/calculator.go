// Package pricing holds the arithmetic shared by estimates and documents.
// No rounding happens here; amounts are rounded to 2 decimals only when displayed.
package pricing

// Line is a quantity priced at a rate with an optional tax percentage (0-100).
type Line struct {
	Qty     float64
	Rate    float64
	TaxRate float64
}

// LineAmount returns qty*rate, the tax on it and their sum.
func LineAmount(qty, rate, taxRate float64) (amount, tax, total float64) {
	amount = qty * rate
	tax = amount * taxRate / 100
	return amount, tax, amount + tax
}

// DocumentTotals sums LineAmount over lines. An empty slice yields zeros.
func DocumentTotals(lines []Line) (subtotal, totalTax, grandTotal float64) {
	for _, l := range lines {
		amount, tax, _ := LineAmount(l.Qty, l.Rate, l.TaxRate)
		subtotal += amount
		totalTax += tax
	}
	return subtotal, totalTax, subtotal + totalTax
}

// Charges are the stored money components of an estimate header.
type Charges struct {
	ItemsTotal  float64 `json:"items_total"`
	HamaliTotal float64 `json:"hamali_total"`
	AutoCharge  float64 `json:"auto_charge"`
	Discount    float64 `json:"discount"`
	GrandTotal  float64 `json:"grand_total"`
}

// ChargeLine is the subset of an estimate line that carries money.
type ChargeLine struct {
	Qty        float64
	Rate       float64
	HamaliRate float64
}

// EstimateCharges computes the header charges. hamaliAdjustment is added to the
// per-unit hamali sum. Intermediate values are never clamped, so a large
// discount or a negative adjustment can drive totals below zero.
func EstimateCharges(lines []ChargeLine, hamaliAdjustment, autoCharge, discount float64) Charges {
	var c Charges
	for _, l := range lines {
		c.ItemsTotal += l.Qty * l.Rate
		c.HamaliTotal += l.Qty * l.HamaliRate
	}
	c.HamaliTotal += hamaliAdjustment
	c.AutoCharge = autoCharge
	c.Discount = discount
	c.GrandTotal = c.ItemsTotal + c.HamaliTotal + c.AutoCharge - c.Discount
	return c
}
