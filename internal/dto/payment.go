package dto

import (
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostPaymentRequest is a validated payment handed in by the payment workflow.
// InvoiceIDs is the caller-supplied allocation order (typically oldest-due
// first) for multi-invoice payments.
type PostPaymentRequest struct {
	PaymentID   string          `json:"paymentID" binding:"required"`
	PatientID   string          `json:"patientID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Mode        string          `json:"mode" binding:"required,oneof=cash bank"`
	PaymentDate time.Time       `json:"paymentDate" binding:"required"`
	InvoiceIDs  []string        `json:"invoiceIDs" binding:"required,min=1"`
}

// AllocationResponse records how much of the payment landed on one line item.
type AllocationResponse struct {
	InvoiceID  string          `json:"invoiceID"`
	LineItemID string          `json:"lineItemID"`
	ItemType   string          `json:"itemType"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentPostingResponse is the audit record of one posted payment.
type PaymentPostingResponse struct {
	GLTransactionID string               `json:"glTransactionID"`
	Allocations     []AllocationResponse `json:"allocations"`
	AdvanceAmount   decimal.Decimal      `json:"advanceAmount"`
	AlreadyPosted   bool                 `json:"alreadyPosted"`
}

// ToPaymentPostingResponse converts a domain posting result.
func ToPaymentPostingResponse(r *domain.PaymentPostingResult) PaymentPostingResponse {
	resp := PaymentPostingResponse{
		GLTransactionID: r.GLTransactionID,
		AdvanceAmount:   r.AdvanceAmount,
		Allocations:     make([]AllocationResponse, len(r.Allocations)),
	}
	for i, a := range r.Allocations {
		resp.Allocations[i] = AllocationResponse{
			InvoiceID:  a.InvoiceID,
			LineItemID: a.LineItemID,
			ItemType:   string(a.ItemType),
			Amount:     a.Amount,
		}
	}
	return resp
}
