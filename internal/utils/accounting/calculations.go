package accounting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PostingTolerance is the maximum debit/credit difference accepted on a GL
// posting, covering 2-decimal rounding of aggregated lines.
var PostingTolerance = decimal.NewFromFloat(0.01)

// Round2 rounds a monetary amount to 2 decimal places for storage. Callers
// must aggregate before rounding; rounding per intermediate step drifts by a
// paisa over many lines.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// WithinTolerance reports whether two amounts differ by at most the posting
// tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(PostingTolerance)
}

// SplitEvenly divides total into n parts rounded to 2 decimals, with the
// rounding remainder absorbed by the last part, so the parts sum to total
// exactly.
func SplitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	parts := make([]decimal.Decimal, n)
	base := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = base
		allocated = allocated.Add(base)
	}
	parts[n-1] = total.Sub(allocated)
	return parts
}

// FinancialYear returns the Indian financial year label (April to March) for
// the given date, e.g. "2025-26" for any date from 2025-04-01 through
// 2026-03-31.
func FinancialYear(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// CreditNoteNumber formats the human-readable credit note number for a
// financial year and sequence.
func CreditNoteNumber(fy string, seq int64) string {
	return fmt.Sprintf("CN/%s/%05d", fy, seq)
}
