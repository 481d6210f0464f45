package domain

import "github.com/shopspring/decimal"

// TaxInput describes one line item for GST computation.
type TaxInput struct {
	Quantity        decimal.Decimal `json:"quantity"`
	UnitRate        decimal.Decimal `json:"unitRate"`
	GSTRate         decimal.Decimal `json:"gstRate"` // percent, e.g. 12 for 12%
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	IsFreeItem      bool            `json:"isFreeItem"`
	IsInterstate    bool            `json:"isInterstate"`
	// PackConversion converts a pack rate to a unit rate (e.g. rate per strip
	// of 10 tablets sold by the tablet). Zero or one means no conversion.
	PackConversion decimal.Decimal `json:"packConversion"`
}

// TaxBreakup is the computed split for one line item. Amounts are exact
// (unrounded); rounding happens once at the point of storage, after any
// aggregation, to avoid per-line paisa drift.
type TaxBreakup struct {
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	TotalGST      decimal.Decimal `json:"totalGST"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
}

// Rounded returns a copy with every amount rounded to 2 decimal places, for
// storage of a single line.
func (t TaxBreakup) Rounded() TaxBreakup {
	return TaxBreakup{
		TaxableAmount: t.TaxableAmount.Round(2),
		CGST:          t.CGST.Round(2),
		SGST:          t.SGST.Round(2),
		IGST:          t.IGST.Round(2),
		TotalGST:      t.TotalGST.Round(2),
		LineTotal:     t.LineTotal.Round(2),
		UnitPrice:     t.UnitPrice.Round(2),
	}
}
