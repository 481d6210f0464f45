package repositories

import (
	"context"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InvoiceReader loads validated invoice input for the posting core. Invoice
// CRUD lives outside this core; these reads are its only view of invoices.
type InvoiceReader interface {
	// FindInvoiceByID retrieves a patient invoice with its line items.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindPurchaseInvoiceByID retrieves a supplier invoice with its line items.
	FindPurchaseInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error)

	// FindOutstandingLineItemsInTx loads the line items of the given invoices
	// with their allocated amounts derived from AR credit entries, preserving
	// the caller-supplied invoice order. Runs inside the payment's transaction
	// so allocation sees a consistent snapshot.
	FindOutstandingLineItemsInTx(ctx context.Context, tx pgx.Tx, invoiceIDs []string) ([]domain.InvoiceLineItem, error)
}

// InvoiceRepositoryFacade combines invoice read interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
}
