package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanStatus is the lifecycle state of a package payment plan. Transitions are
// one-way: active -> discontinued or active -> completed.
type PlanStatus string

const (
	PlanStatusActive       PlanStatus = "active"
	PlanStatusDiscontinued PlanStatus = "discontinued"
	PlanStatusCompleted    PlanStatus = "completed"
	PlanStatusCancelled    PlanStatus = "cancelled"
)

// InstallmentStatus is the settlement state of one installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
	InstallmentWaived  InstallmentStatus = "waived"
)

// SessionStatus is the delivery state of one package session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// InstallmentFrequency controls the spacing of installment due dates.
type InstallmentFrequency string

const (
	FrequencyWeekly   InstallmentFrequency = "weekly"
	FrequencyBiweekly InstallmentFrequency = "biweekly"
	FrequencyMonthly  InstallmentFrequency = "monthly"
)

// StepDays returns the day step for the frequency. Monthly is a 30-day
// approximation.
func (f InstallmentFrequency) StepDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	default:
		return 30
	}
}

// Valid reports whether the frequency is one of the known values.
func (f InstallmentFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// PackagePaymentPlan funds a bundle of prepaid clinical sessions through an
// installment schedule. PaidAmount is always derived from AR credit entries
// against the funding line item, never incremented directly.
type PackagePaymentPlan struct {
	PlanID            string               `json:"planID"` // Primary Key (UUID)
	HospitalID        string               `json:"hospitalID"`
	BranchID          string               `json:"branchID"`
	PatientID         string               `json:"patientID"`
	InvoiceID         string               `json:"invoiceID"`
	LineItemID        string               `json:"lineItemID"` // funding invoice line item
	PackageID         string               `json:"packageID"`
	TotalAmount       decimal.Decimal      `json:"totalAmount"`
	PaidAmount        decimal.Decimal      `json:"paidAmount"`
	TotalSessions     int                  `json:"totalSessions"`
	CompletedSessions int                  `json:"completedSessions"`
	InstallmentCount  int                  `json:"installmentCount"`
	Frequency         InstallmentFrequency `json:"frequency"`
	Status            PlanStatus           `json:"status"`
	AuditFields
}

// InstallmentPayment is one scheduled installment of a plan. The sum of all
// non-waived installment amounts equals the plan total (0.01 tolerance, the
// remainder absorbed by the last installment).
type InstallmentPayment struct {
	InstallmentID     string            `json:"installmentID"` // Primary Key (UUID)
	PlanID            string            `json:"planID"`
	InstallmentNumber int               `json:"installmentNumber"`
	DueDate           time.Time         `json:"dueDate"`
	Amount            decimal.Decimal   `json:"amount"`
	PaidAmount        decimal.Decimal   `json:"paidAmount"`
	Status            InstallmentStatus `json:"status"`
	AuditFields
}

// PackageSession is one prepaid clinical session of a plan.
type PackageSession struct {
	SessionID      string        `json:"sessionID"` // Primary Key (UUID)
	PlanID         string        `json:"planID"`
	SessionNumber  int           `json:"sessionNumber"`
	SessionDate    time.Time     `json:"sessionDate"` // scheduled date
	CompletionDate *time.Time    `json:"completionDate,omitempty"`
	Status         SessionStatus `json:"status"`
	AuditFields
}

// DiscontinuationResult carries the refund/credit-note computation for a
// discontinued plan.
type DiscontinuationResult struct {
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
