package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType classifies an invoice line item. Allocation priority follows the
// declaration order here: Services, then Medicines, then Packages.
type ItemType string

const (
	ItemTypeService  ItemType = "Service"
	ItemTypeMedicine ItemType = "Medicine"
	ItemTypePackage  ItemType = "Package"
)

// AllocationPriority returns the payment-allocation rank of the item type.
// Lower ranks are settled first: point-of-sale services and medicines are
// already consumed and harder to reverse, while packages can still be
// collected through future installments.
func (t ItemType) AllocationPriority() int {
	switch t {
	case ItemTypeService:
		return 0
	case ItemTypeMedicine:
		return 1
	case ItemTypePackage:
		return 2
	default:
		return 3
	}
}

// InvoiceLineItem is a read-only input to the posting core. AllocatedAmount is
// derived from AR credit entries referencing the line item, never stored as an
// independently writable field.
type InvoiceLineItem struct {
	LineItemID      string          `json:"lineItemID"` // Primary Key (UUID)
	InvoiceID       string          `json:"invoiceID"`
	ItemType        ItemType        `json:"itemType"`
	Description     string          `json:"description"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
}

// Outstanding is the unsettled portion of the line.
func (li InvoiceLineItem) Outstanding() decimal.Decimal {
	return li.LineTotal.Sub(li.AllocatedAmount)
}

// Invoice is a patient invoice as seen by the posting core: a validated header
// plus its line items. CRUD on invoices lives outside this core.
type Invoice struct {
	InvoiceID   string            `json:"invoiceID"`
	HospitalID  string            `json:"hospitalID"`
	BranchID    string            `json:"branchID"`
	PatientID   string            `json:"patientID"`
	InvoiceDate time.Time         `json:"invoiceDate"`
	LineItems   []InvoiceLineItem `json:"lineItems"`
}

// GrandTotal sums the line totals without intermediate rounding.
func (inv Invoice) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range inv.LineItems {
		total = total.Add(li.LineTotal)
	}
	return total
}

// PurchaseLineItem is one line of a supplier invoice.
type PurchaseLineItem struct {
	LineItemID    string          `json:"lineItemID"`
	InvoiceID     string          `json:"invoiceID"`
	Description   string          `json:"description"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	GSTAmount     decimal.Decimal `json:"gstAmount"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}

// PurchaseInvoice is a supplier invoice as seen by the posting core.
type PurchaseInvoice struct {
	InvoiceID   string             `json:"invoiceID"`
	HospitalID  string             `json:"hospitalID"`
	BranchID    string             `json:"branchID"`
	SupplierID  string             `json:"supplierID"`
	InvoiceDate time.Time          `json:"invoiceDate"`
	LineItems   []PurchaseLineItem `json:"lineItems"`
}

// Totals returns the taxable, GST and grand totals, aggregated before any
// rounding.
func (inv PurchaseInvoice) Totals() (taxable, gst, grand decimal.Decimal) {
	taxable, gst, grand = decimal.Zero, decimal.Zero, decimal.Zero
	for _, li := range inv.LineItems {
		taxable = taxable.Add(li.TaxableAmount)
		gst = gst.Add(li.GSTAmount)
		grand = grand.Add(li.LineTotal)
	}
	return taxable, gst, grand
}
