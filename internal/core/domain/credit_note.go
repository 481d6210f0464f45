package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditNoteStatus is the posting state of a credit note.
type CreditNoteStatus string

const (
	CreditNoteDraft  CreditNoteStatus = "draft"
	CreditNotePosted CreditNoteStatus = "posted"
)

// CreditNoteReason codes the business cause of a credit note.
type CreditNoteReason string

const (
	ReasonPlanDiscontinued   CreditNoteReason = "plan_discontinued"
	ReasonBillingError       CreditNoteReason = "billing_error"
	ReasonServiceNotRendered CreditNoteReason = "service_not_rendered"
)

// PatientCreditNote reverses previously recognized revenue/receivable for a
// patient. Numbered sequentially per hospital per financial year.
type PatientCreditNote struct {
	CreditNoteID      string          `json:"creditNoteID"`     // Primary Key (UUID)
	CreditNoteNumber  string          `json:"creditNoteNumber"` // CN/{FY}/{seq:05d}
	HospitalID        string          `json:"hospitalID"`
	BranchID          string          `json:"branchID"`
	OriginalInvoiceID string          `json:"originalInvoiceID"`
	PlanID            *string         `json:"planID,omitempty"`
	PatientID         string          `json:"patientID"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	// RefundAmount is the cash portion owed back to the patient; it can be
	// less than TotalAmount when consumed sessions exceed what was paid.
	RefundAmount      decimal.Decimal  `json:"refundAmount"`
	ReasonCode        CreditNoteReason `json:"reasonCode"`
	ReasonDescription string           `json:"reasonDescription"`
	Status            CreditNoteStatus `json:"status"`
	NoteDate          time.Time        `json:"noteDate"`
	GLTransactionID   *string          `json:"glTransactionID,omitempty"`
	AuditFields
}

// CreateCreditNoteParams is the input to CreditNoteEngine.CreateAndPost.
type CreateCreditNoteParams struct {
	HospitalID        string
	BranchID          string
	OriginalInvoiceID string
	PlanID            *string
	PatientID         string
	Amount            decimal.Decimal
	RefundAmount      decimal.Decimal
	ReasonCode        CreditNoteReason
	ReasonDescription string
	NoteDate          time.Time
	UserID            string
}
