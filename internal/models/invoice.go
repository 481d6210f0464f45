package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the read-only database view of a patient invoice header.
type Invoice struct {
	InvoiceID   string    `json:"invoiceID"` // Primary Key (UUID)
	HospitalID  string    `json:"hospitalID"`
	BranchID    string    `json:"branchID"`
	PatientID   string    `json:"patientID"`
	InvoiceDate time.Time `json:"invoiceDate"`
}

// InvoiceLineItem is the read-only database view of an invoice line.
// AllocatedAmount is computed from AR credit entries at query time.
type InvoiceLineItem struct {
	LineItemID      string          `json:"lineItemID"` // Primary Key (UUID)
	InvoiceID       string          `json:"invoiceID"`
	ItemType        string          `json:"itemType"`
	Description     string          `json:"description"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
}

// PurchaseInvoice is the read-only database view of a supplier invoice header.
type PurchaseInvoice struct {
	InvoiceID   string    `json:"invoiceID"` // Primary Key (UUID)
	HospitalID  string    `json:"hospitalID"`
	BranchID    string    `json:"branchID"`
	SupplierID  string    `json:"supplierID"`
	InvoiceDate time.Time `json:"invoiceDate"`
}

// PurchaseLineItem is the read-only database view of a supplier invoice line.
type PurchaseLineItem struct {
	LineItemID    string          `json:"lineItemID"` // Primary Key (UUID)
	InvoiceID     string          `json:"invoiceID"`
	Description   string          `json:"description"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	GSTAmount     decimal.Decimal `json:"gstAmount"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}
