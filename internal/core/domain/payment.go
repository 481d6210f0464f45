package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode determines which GL account receives the debit side of a
// payment posting.
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "cash"
	PaymentModeBank PaymentMode = "bank"
)

// Payment is a validated patient payment handed in by the payment workflow.
// InvoiceIDs carries the caller-supplied allocation order for multi-invoice
// payments, typically oldest-due first.
type Payment struct {
	PaymentID   string          `json:"paymentID"`
	HospitalID  string          `json:"hospitalID"`
	BranchID    string          `json:"branchID"`
	PatientID   string          `json:"patientID"`
	Amount      decimal.Decimal `json:"amount"`
	Mode        PaymentMode     `json:"mode"`
	PaymentDate time.Time       `json:"paymentDate"`
	InvoiceIDs  []string        `json:"invoiceIDs"`
}

// Allocation records how much of a payment landed on one receivable target.
type Allocation struct {
	InvoiceID  string          `json:"invoiceID"`
	LineItemID string          `json:"lineItemID"`
	ItemType   ItemType        `json:"itemType"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentPostingResult is the audit record of one posted payment: where every
// paisa went, including the unallocated advance portion.
type PaymentPostingResult struct {
	GLTransactionID string          `json:"glTransactionID"`
	Allocations     []Allocation    `json:"allocations"`
	AdvanceAmount   decimal.Decimal `json:"advanceAmount"`
}
