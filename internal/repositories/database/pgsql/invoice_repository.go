package pgsql

import (
	"context"
	"errors"
	"sort"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	"github.com/curasoft/hospital_billing_app/internal/models"
	"github.com/curasoft/hospital_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new read-only repository over invoice data.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxInvoiceRepository implements portsrepo.InvoiceRepositoryFacade
var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

// FindInvoiceByID retrieves a patient invoice with its line items.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	headerQuery := `
		SELECT invoice_id, hospital_id, branch_id, patient_id, invoice_date
		FROM invoices
		WHERE invoice_id = $1;
	`
	var modelInvoice models.Invoice
	err := r.Pool.QueryRow(ctx, headerQuery, invoiceID).Scan(
		&modelInvoice.InvoiceID,
		&modelInvoice.HospitalID,
		&modelInvoice.BranchID,
		&modelInvoice.PatientID,
		&modelInvoice.InvoiceDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice by ID "+invoiceID, err)
	}

	linesQuery := invoiceLineSelect + `
		WHERE li.invoice_id = $1
		GROUP BY li.line_item_id
		ORDER BY li.line_item_id;
	`
	rows, err := r.Pool.Query(ctx, linesQuery, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query line items for invoice "+invoiceID, err)
	}
	defer rows.Close()

	lines, err := scanInvoiceLines(rows, invoiceID)
	if err != nil {
		return nil, err
	}

	domainInvoice := mapping.ToDomainInvoice(modelInvoice, lines)
	return &domainInvoice, nil
}

// FindPurchaseInvoiceByID retrieves a supplier invoice with its line items.
func (r *PgxInvoiceRepository) FindPurchaseInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error) {
	headerQuery := `
		SELECT invoice_id, hospital_id, branch_id, supplier_id, invoice_date
		FROM purchase_invoices
		WHERE invoice_id = $1;
	`
	var modelInvoice models.PurchaseInvoice
	err := r.Pool.QueryRow(ctx, headerQuery, invoiceID).Scan(
		&modelInvoice.InvoiceID,
		&modelInvoice.HospitalID,
		&modelInvoice.BranchID,
		&modelInvoice.SupplierID,
		&modelInvoice.InvoiceDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find purchase invoice by ID "+invoiceID, err)
	}

	linesQuery := `
		SELECT line_item_id, invoice_id, description, taxable_amount, gst_amount, line_total
		FROM purchase_line_items
		WHERE invoice_id = $1
		ORDER BY line_item_id;
	`
	rows, err := r.Pool.Query(ctx, linesQuery, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query line items for purchase invoice "+invoiceID, err)
	}
	defer rows.Close()

	lines := []models.PurchaseLineItem{}
	for rows.Next() {
		var l models.PurchaseLineItem
		err := rows.Scan(
			&l.LineItemID,
			&l.InvoiceID,
			&l.Description,
			&l.TaxableAmount,
			&l.GSTAmount,
			&l.LineTotal,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line item row for purchase invoice "+invoiceID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line item rows for purchase invoice "+invoiceID, err)
	}

	domainInvoice := mapping.ToDomainPurchaseInvoice(modelInvoice, lines)
	return &domainInvoice, nil
}

// FindOutstandingLineItemsInTx loads the line items of the given invoices with
// their allocated amounts derived from AR credit entries. Runs inside the
// payment's transaction so allocation sees a snapshot consistent with the
// entries it is about to append. Results preserve the caller-supplied invoice
// order.
func (r *PgxInvoiceRepository) FindOutstandingLineItemsInTx(ctx context.Context, tx pgx.Tx, invoiceIDs []string) ([]domain.InvoiceLineItem, error) {
	if len(invoiceIDs) == 0 {
		return []domain.InvoiceLineItem{}, nil
	}

	query := invoiceLineSelect + `
		WHERE li.invoice_id = ANY($1)
		GROUP BY li.line_item_id
		ORDER BY li.invoice_id, li.line_item_id;
	`
	rows, err := tx.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query outstanding line items", err)
	}
	defer rows.Close()

	lines, err := scanInvoiceLines(rows, invoiceIDs[0])
	if err != nil {
		return nil, err
	}

	// Re-establish the caller-supplied invoice order; it carries the payment's
	// allocation intent.
	orderIndex := make(map[string]int, len(invoiceIDs))
	for i, id := range invoiceIDs {
		orderIndex[id] = i
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return orderIndex[lines[i].InvoiceID] < orderIndex[lines[j].InvoiceID]
	})

	return mapping.ToDomainInvoiceLineItemSlice(lines), nil
}

// invoiceLineSelect derives allocated_amount from AR credit entries that
// reference each line item. AllocatedAmount is never stored as a writable
// column.
const invoiceLineSelect = `
	SELECT li.line_item_id, li.invoice_id, li.item_type, li.description,
	       li.taxable_amount, li.cgst, li.sgst, li.igst, li.line_total,
	       COALESCE(SUM(se.credit_amount), 0) AS allocated_amount
	FROM invoice_line_items li
	LEFT JOIN subledger_entries se
	       ON se.reference_line_item_id = li.line_item_id
	      AND se.counterparty_type = 'patient'
`

func scanInvoiceLines(rows pgx.Rows, contextID string) ([]models.InvoiceLineItem, error) {
	lines := []models.InvoiceLineItem{}
	for rows.Next() {
		var l models.InvoiceLineItem
		err := rows.Scan(
			&l.LineItemID,
			&l.InvoiceID,
			&l.ItemType,
			&l.Description,
			&l.TaxableAmount,
			&l.CGST,
			&l.SGST,
			&l.IGST,
			&l.LineTotal,
			&l.AllocatedAmount,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice line item row ("+contextID+")", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoice line item rows ("+contextID+")", err)
	}
	return lines, nil
}
