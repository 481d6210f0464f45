package services

import "github.com/curasoft/hospital_billing_app/internal/core/domain"

// TaxCalculatorSvc computes GST splits and discount-adjusted taxable amounts
// for line items. Pure computation, no persistence.
type TaxCalculatorSvc interface {
	// Calculate computes the tax breakup for one line item. Results are
	// unrounded; round once at the point of storage.
	Calculate(in domain.TaxInput) domain.TaxBreakup

	// Aggregate sums breakups without intermediate rounding, so invoice-level
	// totals do not drift from per-line rounding.
	Aggregate(lines []domain.TaxBreakup) domain.TaxBreakup
}
