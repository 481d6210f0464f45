package services

import (
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// taxCalculator computes GST splits for invoice line items.
type taxCalculator struct{}

// NewTaxCalculator creates a new TaxCalculator.
func NewTaxCalculator() portssvc.TaxCalculatorSvc {
	return &taxCalculator{}
}

var _ portssvc.TaxCalculatorSvc = (*taxCalculator)(nil)

// Calculate computes the tax breakup for one line item. Free items always
// price at zero regardless of the supplied rate or discount; client-supplied
// free-item pricing is never trusted. Results are exact decimals; rounding
// happens once at the point of storage.
func (c *taxCalculator) Calculate(in domain.TaxInput) domain.TaxBreakup {
	rate := in.UnitRate
	discount := in.DiscountPercent

	// Pack-to-unit conversion (e.g. rate quoted per strip, billed per tablet).
	conv := in.PackConversion
	if conv.IsPositive() && !conv.Equal(decimal.NewFromInt(1)) {
		rate = rate.Div(conv)
	}

	if in.IsFreeItem {
		rate = decimal.Zero
		discount = decimal.Zero
	}

	taxable := in.Quantity.Mul(rate).
		Mul(hundred.Sub(discount)).Div(hundred)

	gst := taxable.Mul(in.GSTRate).Div(hundred)

	var cgst, sgst, igst decimal.Decimal
	if in.IsInterstate {
		igst = gst
	} else {
		cgst = gst.Div(two)
		sgst = gst.Div(two)
	}

	totalGST := cgst.Add(sgst).Add(igst)
	return domain.TaxBreakup{
		TaxableAmount: taxable,
		CGST:          cgst,
		SGST:          sgst,
		IGST:          igst,
		TotalGST:      totalGST,
		LineTotal:     taxable.Add(totalGST),
		UnitPrice:     rate,
	}
}

// Aggregate sums breakups without intermediate rounding so that invoice-level
// totals round once, avoiding 1-paisa drift over many lines.
func (c *taxCalculator) Aggregate(lines []domain.TaxBreakup) domain.TaxBreakup {
	var agg domain.TaxBreakup
	for _, l := range lines {
		agg.TaxableAmount = agg.TaxableAmount.Add(l.TaxableAmount)
		agg.CGST = agg.CGST.Add(l.CGST)
		agg.SGST = agg.SGST.Add(l.SGST)
		agg.IGST = agg.IGST.Add(l.IGST)
		agg.TotalGST = agg.TotalGST.Add(l.TotalGST)
		agg.LineTotal = agg.LineTotal.Add(l.LineTotal)
	}
	return agg
}
