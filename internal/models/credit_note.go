package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PatientCreditNote is the database representation of a credit note.
type PatientCreditNote struct {
	CreditNoteID      string          `json:"creditNoteID"` // Primary Key (UUID)
	CreditNoteNumber  string          `json:"creditNoteNumber"`
	HospitalID        string          `json:"hospitalID"`
	BranchID          string          `json:"branchID"`
	OriginalInvoiceID string          `json:"originalInvoiceID"`
	PlanID            *string         `json:"planID,omitempty"`
	PatientID         string          `json:"patientID"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	RefundAmount      decimal.Decimal `json:"refundAmount"`
	ReasonCode        string          `json:"reasonCode"`
	ReasonDescription string          `json:"reasonDescription"`
	Status            string          `json:"status"`
	NoteDate          time.Time       `json:"noteDate"`
	GLTransactionID   *string         `json:"glTransactionID,omitempty"`
	AuditFields
}
