package mapping

import (
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/curasoft/hospital_billing_app/internal/models"
)

// ToDomainInvoice assembles a domain Invoice from its header and line models.
func ToDomainInvoice(m models.Invoice, lines []models.InvoiceLineItem) domain.Invoice {
	return domain.Invoice{
		InvoiceID:   m.InvoiceID,
		HospitalID:  m.HospitalID,
		BranchID:    m.BranchID,
		PatientID:   m.PatientID,
		InvoiceDate: m.InvoiceDate,
		LineItems:   ToDomainInvoiceLineItemSlice(lines),
	}
}

// ToDomainInvoiceLineItem converts a model InvoiceLineItem to a domain InvoiceLineItem
func ToDomainInvoiceLineItem(m models.InvoiceLineItem) domain.InvoiceLineItem {
	return domain.InvoiceLineItem{
		LineItemID:      m.LineItemID,
		InvoiceID:       m.InvoiceID,
		ItemType:        domain.ItemType(m.ItemType),
		Description:     m.Description,
		TaxableAmount:   m.TaxableAmount,
		CGST:            m.CGST,
		SGST:            m.SGST,
		IGST:            m.IGST,
		LineTotal:       m.LineTotal,
		AllocatedAmount: m.AllocatedAmount,
	}
}

// ToDomainInvoiceLineItemSlice converts a slice of model InvoiceLineItems
func ToDomainInvoiceLineItemSlice(ms []models.InvoiceLineItem) []domain.InvoiceLineItem {
	ds := make([]domain.InvoiceLineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoiceLineItem(m)
	}
	return ds
}

// ToDomainPurchaseInvoice assembles a domain PurchaseInvoice from its header
// and line models.
func ToDomainPurchaseInvoice(m models.PurchaseInvoice, lines []models.PurchaseLineItem) domain.PurchaseInvoice {
	ds := make([]domain.PurchaseLineItem, len(lines))
	for i, l := range lines {
		ds[i] = domain.PurchaseLineItem{
			LineItemID:    l.LineItemID,
			InvoiceID:     l.InvoiceID,
			Description:   l.Description,
			TaxableAmount: l.TaxableAmount,
			GSTAmount:     l.GSTAmount,
			LineTotal:     l.LineTotal,
		}
	}
	return domain.PurchaseInvoice{
		InvoiceID:   m.InvoiceID,
		HospitalID:  m.HospitalID,
		BranchID:    m.BranchID,
		SupplierID:  m.SupplierID,
		InvoiceDate: m.InvoiceDate,
		LineItems:   ds,
	}
}
