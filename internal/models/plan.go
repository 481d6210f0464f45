package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackagePaymentPlan is the database representation of a plan header.
type PackagePaymentPlan struct {
	PlanID            string          `json:"planID"` // Primary Key (UUID)
	HospitalID        string          `json:"hospitalID"`
	BranchID          string          `json:"branchID"`
	PatientID         string          `json:"patientID"`
	InvoiceID         string          `json:"invoiceID"`
	LineItemID        string          `json:"lineItemID"`
	PackageID         string          `json:"packageID"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	TotalSessions     int             `json:"totalSessions"`
	CompletedSessions int             `json:"completedSessions"`
	InstallmentCount  int             `json:"installmentCount"`
	Frequency         string          `json:"frequency"`
	Status            string          `json:"status"`
	AuditFields
}

// InstallmentPayment is the database representation of one installment row.
type InstallmentPayment struct {
	InstallmentID     string          `json:"installmentID"` // Primary Key (UUID)
	PlanID            string          `json:"planID"`
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	Status            string          `json:"status"`
	AuditFields
}

// PackageSession is the database representation of one session row.
type PackageSession struct {
	SessionID      string     `json:"sessionID"` // Primary Key (UUID)
	PlanID         string     `json:"planID"`
	SessionNumber  int        `json:"sessionNumber"`
	SessionDate    time.Time  `json:"sessionDate"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	Status         string     `json:"status"`
	AuditFields
}
