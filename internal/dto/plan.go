package dto

import (
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePlanRequest creates a package payment plan funded by an invoice line
// item.
type CreatePlanRequest struct {
	PatientID            string          `json:"patientID" binding:"required"`
	InvoiceID            string          `json:"invoiceID" binding:"required"`
	LineItemID           string          `json:"lineItemID" binding:"required"`
	PackageID            string          `json:"packageID" binding:"required"`
	TotalAmount          decimal.Decimal `json:"totalAmount" binding:"required"`
	TotalSessions        int             `json:"totalSessions" binding:"required,min=1"`
	InstallmentCount     int             `json:"installmentCount" binding:"required,min=1"`
	Frequency            string          `json:"frequency" binding:"required,oneof=weekly biweekly monthly"`
	FirstInstallmentDate time.Time       `json:"firstInstallmentDate" binding:"required"`
}

// ReplanRequest changes the session and/or installment counts of an active
// plan.
type ReplanRequest struct {
	TotalSessions    int `json:"totalSessions" binding:"required,min=1"`
	InstallmentCount int `json:"installmentCount" binding:"required,min=1"`
}

// DiscontinueRequest terminates an active plan. A reason is mandatory.
type DiscontinueRequest struct {
	ReasonCode        string `json:"reasonCode" binding:"required"`
	ReasonDescription string `json:"reasonDescription" binding:"required"`
}

// InstallmentResponse is one installment of a plan.
type InstallmentResponse struct {
	InstallmentID     string          `json:"installmentID"`
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	Status            string          `json:"status"`
}

// SessionResponse is one session of a plan.
type SessionResponse struct {
	SessionID      string     `json:"sessionID"`
	SessionNumber  int        `json:"sessionNumber"`
	SessionDate    time.Time  `json:"sessionDate"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	Status         string     `json:"status"`
}

// PlanResponse is a plan with its schedule.
type PlanResponse struct {
	PlanID            string                `json:"planID"`
	PatientID         string                `json:"patientID"`
	InvoiceID         string                `json:"invoiceID"`
	PackageID         string                `json:"packageID"`
	TotalAmount       decimal.Decimal       `json:"totalAmount"`
	PaidAmount        decimal.Decimal       `json:"paidAmount"`
	TotalSessions     int                   `json:"totalSessions"`
	CompletedSessions int                   `json:"completedSessions"`
	InstallmentCount  int                   `json:"installmentCount"`
	Frequency         string                `json:"frequency"`
	Status            string                `json:"status"`
	Installments      []InstallmentResponse `json:"installments,omitempty"`
	Sessions          []SessionResponse     `json:"sessions,omitempty"`
}

// DiscontinuationResponse carries the refund/credit-note computation for a
// discontinued plan.
type DiscontinuationResponse struct {
	PlanID             string          `json:"planID"`
	CreditNoteID       string          `json:"creditNoteID"`
	CreditNoteNumber   string          `json:"creditNoteNumber"`
	SessionValue       decimal.Decimal `json:"sessionValue"`
	PatientLiability   decimal.Decimal `json:"patientLiability"`
	NetPosition        decimal.Decimal `json:"netPosition"`
	CreditNoteAmount   decimal.Decimal `json:"creditNoteAmount"`
	CashRefund         decimal.Decimal `json:"cashRefund"`
	CancelledSessions  int             `json:"cancelledSessions"`
	WaivedInstallments int             `json:"waivedInstallments"`
}

// ToPlanResponse converts a plan with its schedule.
func ToPlanResponse(plan *domain.PackagePaymentPlan, installments []domain.InstallmentPayment, sessions []domain.PackageSession) PlanResponse {
	resp := PlanResponse{
		PlanID:            plan.PlanID,
		PatientID:         plan.PatientID,
		InvoiceID:         plan.InvoiceID,
		PackageID:         plan.PackageID,
		TotalAmount:       plan.TotalAmount,
		PaidAmount:        plan.PaidAmount,
		TotalSessions:     plan.TotalSessions,
		CompletedSessions: plan.CompletedSessions,
		InstallmentCount:  plan.InstallmentCount,
		Frequency:         string(plan.Frequency),
		Status:            string(plan.Status),
	}
	for _, inst := range installments {
		resp.Installments = append(resp.Installments, InstallmentResponse{
			InstallmentID:     inst.InstallmentID,
			InstallmentNumber: inst.InstallmentNumber,
			DueDate:           inst.DueDate,
			Amount:            inst.Amount,
			PaidAmount:        inst.PaidAmount,
			Status:            string(inst.Status),
		})
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, SessionResponse{
			SessionID:      s.SessionID,
			SessionNumber:  s.SessionNumber,
			SessionDate:    s.SessionDate,
			CompletionDate: s.CompletionDate,
			Status:         string(s.Status),
		})
	}
	return resp
}

// ToDiscontinuationResponse converts a domain discontinuation result.
func ToDiscontinuationResponse(r *domain.DiscontinuationResult) DiscontinuationResponse {
	return DiscontinuationResponse{
		PlanID:             r.PlanID,
		CreditNoteID:       r.CreditNoteID,
		CreditNoteNumber:   r.CreditNoteNumber,
		SessionValue:       r.SessionValue,
		PatientLiability:   r.PatientLiability,
		NetPosition:        r.NetPosition,
		CreditNoteAmount:   r.CreditNoteAmount,
		CashRefund:         r.CashRefund,
		CancelledSessions:  r.CancelledSessions,
		WaivedInstallments: r.WaivedInstallments,
	}
}
