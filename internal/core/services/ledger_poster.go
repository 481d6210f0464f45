package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/curasoft/hospital_billing_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerPosterService converts business documents into balanced GL
// transactions. It owns GLTransaction rows exclusively; nothing else in the
// core writes them.
type ledgerPosterService struct {
	glRepo           portsrepo.GLRepositoryWithTx
	postingStateRepo portsrepo.PostingStateRepositoryFacade
	invoiceRepo      portsrepo.InvoiceRepositoryFacade
	coaResolver      portssvc.ChartOfAccountsResolverSvc
	subledgerWriter  portssvc.SubledgerWriterSvc
}

// NewLedgerPoster creates a new LedgerPoster.
func NewLedgerPoster(
	glRepo portsrepo.GLRepositoryWithTx,
	postingStateRepo portsrepo.PostingStateRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	coaResolver portssvc.ChartOfAccountsResolverSvc,
	subledgerWriter portssvc.SubledgerWriterSvc,
) portssvc.LedgerPosterSvcFacade {
	return &ledgerPosterService{
		glRepo:           glRepo,
		postingStateRepo: postingStateRepo,
		invoiceRepo:      invoiceRepo,
		coaResolver:      coaResolver,
		subledgerWriter:  subledgerWriter,
	}
}

var _ portssvc.LedgerPosterSvcFacade = (*ledgerPosterService)(nil)

// validateInstruction checks the shape of a posting before any account
// resolution: at least two lines, exactly one positive side per line, and
// debit/credit totals within the rounding tolerance.
func (s *ledgerPosterService) validateInstruction(inst domain.PostingInstruction) (totalDebit, totalCredit decimal.Decimal, err error) {
	if len(inst.Entries) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: posting must have at least two entries", apperrors.ErrValidation)
	}

	totalDebit, totalCredit = decimal.Zero, decimal.Zero
	for i, e := range inst.Entries {
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: entry %d has a negative amount", apperrors.ErrValidation, i)
		}
		debitSet := e.Debit.IsPositive()
		creditSet := e.Credit.IsPositive()
		if debitSet == creditSet {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: entry %d must have exactly one of debit or credit set", apperrors.ErrValidation, i)
		}
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	if !accounting.WithinTolerance(totalDebit, totalCredit) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: debits %s, credits %s (document %s/%s)",
			apperrors.ErrUnbalancedPosting, totalDebit.String(), totalCredit.String(),
			inst.SourceDocumentType, inst.SourceDocumentID)
	}
	return totalDebit, totalCredit, nil
}

// Post writes one GL transaction plus its entries inside the caller's
// transaction and marks the source document posted. The caller owns commit and
// rollback; no GL row survives a failed unit of work.
func (s *ledgerPosterService) Post(ctx context.Context, tx pgx.Tx, inst domain.PostingInstruction, userID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	totalDebit, totalCredit, err := s.validateInstruction(inst)
	if err != nil {
		return "", err
	}

	roles := make([]domain.AccountRole, 0, len(inst.Entries))
	for _, e := range inst.Entries {
		roles = append(roles, e.Role)
	}
	accounts, err := s.coaResolver.ResolveAll(ctx, inst.HospitalID, uniqueRoles(roles))
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
	transactionID := uuid.NewString()

	glTxn := domain.GLTransaction{
		TransactionID:      transactionID,
		HospitalID:         inst.HospitalID,
		TransactionDate:    inst.TransactionDate,
		Type:               inst.Type,
		SourceDocumentType: inst.SourceDocumentType,
		SourceDocumentID:   inst.SourceDocumentID,
		TotalDebit:         accounting.Round2(totalDebit),
		TotalCredit:        accounting.Round2(totalCredit),
		ExchangeRate:       inst.ExchangeRate,
		AuditFields:        audit,
	}
	if glTxn.ExchangeRate.IsZero() {
		glTxn.ExchangeRate = decimal.NewFromInt(1)
	}

	entries := make([]domain.GLEntry, len(inst.Entries))
	for i, e := range inst.Entries {
		entries[i] = domain.GLEntry{
			EntryID:            uuid.NewString(),
			TransactionID:      transactionID,
			AccountID:          accounts[e.Role],
			DebitAmount:        accounting.Round2(e.Debit),
			CreditAmount:       accounting.Round2(e.Credit),
			EntryDate:          inst.TransactionDate,
			Description:        e.Description,
			SourceDocumentType: inst.SourceDocumentType,
			SourceDocumentID:   inst.SourceDocumentID,
			AuditFields:        audit,
		}
	}

	if err := s.glRepo.SaveTransactionInTx(ctx, tx, glTxn, entries); err != nil {
		return "", fmt.Errorf("failed to save GL transaction for %s/%s: %w", inst.SourceDocumentType, inst.SourceDocumentID, err)
	}

	if err := s.postingStateRepo.MarkPostedInTx(ctx, tx, inst.SourceDocumentType, inst.SourceDocumentID, transactionID, userID, now); err != nil {
		return "", fmt.Errorf("failed to mark document %s/%s posted: %w", inst.SourceDocumentType, inst.SourceDocumentID, err)
	}

	logger.Info("GL transaction posted",
		slog.String("gl_transaction_id", transactionID),
		slog.String("document_type", string(inst.SourceDocumentType)),
		slog.String("document_id", inst.SourceDocumentID),
		slog.String("total_debit", glTxn.TotalDebit.String()),
	)
	return transactionID, nil
}

// PostInvoice posts a patient invoice: Dr AR for the grand total, Cr revenue
// for the taxable total, Cr the GST payables, plus the patient's AR debit
// entry. One unit of work; reposting an already-posted invoice is a no-op
// returning the original GL transaction id.
func (s *ledgerPosterService) PostInvoice(ctx context.Context, invoiceID string, actor dto.Actor) (*dto.PostingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.Permissions.CanPostDocuments {
		return nil, fmt.Errorf("%w: posting documents", apperrors.ErrForbidden)
	}

	tx, err := s.glRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.glRepo.Rollback(ctx, tx)

	state, err := s.postingStateRepo.FindForUpdateInTx(ctx, tx, domain.DocTypeInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	if state.GLPosted && state.GLTransactionID != nil {
		logger.Info("Invoice already posted, skipping", slog.String("invoice_id", invoiceID), slog.String("gl_transaction_id", *state.GLTransactionID))
		return &dto.PostingResponse{GLTransactionID: *state.GLTransactionID, AlreadyPosted: true}, nil
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %s: %w", invoiceID, err)
	}
	if len(invoice.LineItems) == 0 {
		return nil, fmt.Errorf("%w: invoice %s has no line items", apperrors.ErrValidation, invoiceID)
	}

	// Aggregate across lines first, round once per GL entry.
	taxable, cgst, sgst, igst := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, li := range invoice.LineItems {
		taxable = taxable.Add(li.TaxableAmount)
		cgst = cgst.Add(li.CGST)
		sgst = sgst.Add(li.SGST)
		igst = igst.Add(li.IGST)
	}
	grandTotal := invoice.GrandTotal()
	if !grandTotal.IsPositive() {
		// all-free-item invoices have no receivable to post
		return nil, fmt.Errorf("%w: invoice %s has a zero grand total, nothing to post", apperrors.ErrValidation, invoiceID)
	}

	entries := []domain.RoleEntry{
		{Role: domain.RoleAccountsReceivable, Debit: grandTotal, Description: "Patient receivable"},
		{Role: domain.RoleRevenue, Credit: taxable, Description: "Revenue"},
	}
	if cgst.IsPositive() {
		entries = append(entries, domain.RoleEntry{Role: domain.RoleCGSTPayable, Credit: cgst, Description: "CGST payable"})
	}
	if sgst.IsPositive() {
		entries = append(entries, domain.RoleEntry{Role: domain.RoleSGSTPayable, Credit: sgst, Description: "SGST payable"})
	}
	if igst.IsPositive() {
		entries = append(entries, domain.RoleEntry{Role: domain.RoleIGSTPayable, Credit: igst, Description: "IGST payable"})
	}

	glTxnID, err := s.Post(ctx, tx, domain.PostingInstruction{
		HospitalID:         invoice.HospitalID,
		Type:               domain.GLTypeInvoice,
		SourceDocumentType: domain.DocTypeInvoice,
		SourceDocumentID:   invoiceID,
		TransactionDate:    invoice.InvoiceDate,
		Entries:            entries,
	}, actor.UserID)
	if err != nil {
		s.recordPostingFailure(ctx, tx, domain.DocTypeInvoice, invoiceID, err, actor.UserID)
		return nil, err
	}

	_, err = s.subledgerWriter.AppendEntry(ctx, tx, domain.AppendEntryParams{
		HospitalID:       invoice.HospitalID,
		BranchID:         invoice.BranchID,
		CounterpartyType: domain.CounterpartyPatient,
		CounterpartyID:   invoice.PatientID,
		EntryType:        domain.SubledgerEntryInvoice,
		ReferenceType:    string(domain.DocTypeInvoice),
		ReferenceID:      invoiceID,
		Debit:            accounting.Round2(grandTotal),
		Credit:           decimal.Zero,
		TransactionDate:  invoice.InvoiceDate,
		GLTransactionID:  glTxnID,
		UserID:           actor.UserID,
	})
	if err != nil {
		s.recordPostingFailure(ctx, tx, domain.DocTypeInvoice, invoiceID, err, actor.UserID)
		return nil, fmt.Errorf("failed to append AR entry for invoice %s: %w", invoiceID, err)
	}

	if err := s.glRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &dto.PostingResponse{GLTransactionID: glTxnID}, nil
}

// PostPurchaseInvoice posts a supplier invoice: Dr inventory for the taxable
// total, Dr GST input credit, Cr AP for the grand total, plus the supplier's
// AP credit entry.
func (s *ledgerPosterService) PostPurchaseInvoice(ctx context.Context, invoiceID string, actor dto.Actor) (*dto.PostingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.Permissions.CanPostDocuments {
		return nil, fmt.Errorf("%w: posting documents", apperrors.ErrForbidden)
	}

	tx, err := s.glRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.glRepo.Rollback(ctx, tx)

	state, err := s.postingStateRepo.FindForUpdateInTx(ctx, tx, domain.DocTypePurchaseInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	if state.GLPosted && state.GLTransactionID != nil {
		logger.Info("Purchase invoice already posted, skipping", slog.String("invoice_id", invoiceID), slog.String("gl_transaction_id", *state.GLTransactionID))
		return &dto.PostingResponse{GLTransactionID: *state.GLTransactionID, AlreadyPosted: true}, nil
	}

	invoice, err := s.invoiceRepo.FindPurchaseInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase invoice %s: %w", invoiceID, err)
	}
	if len(invoice.LineItems) == 0 {
		return nil, fmt.Errorf("%w: purchase invoice %s has no line items", apperrors.ErrValidation, invoiceID)
	}

	taxable, gst, grand := invoice.Totals()
	if !grand.IsPositive() {
		return nil, fmt.Errorf("%w: purchase invoice %s has a zero grand total, nothing to post", apperrors.ErrValidation, invoiceID)
	}

	entries := []domain.RoleEntry{
		{Role: domain.RoleInventory, Debit: taxable, Description: "Inventory received"},
	}
	if gst.IsPositive() {
		entries = append(entries, domain.RoleEntry{Role: domain.RoleGSTInput, Debit: gst, Description: "GST input credit"})
	}
	entries = append(entries, domain.RoleEntry{Role: domain.RoleAccountsPayable, Credit: grand, Description: "Supplier payable"})

	glTxnID, err := s.Post(ctx, tx, domain.PostingInstruction{
		HospitalID:         invoice.HospitalID,
		Type:               domain.GLTypeInvoice,
		SourceDocumentType: domain.DocTypePurchaseInvoice,
		SourceDocumentID:   invoiceID,
		TransactionDate:    invoice.InvoiceDate,
		Entries:            entries,
	}, actor.UserID)
	if err != nil {
		s.recordPostingFailure(ctx, tx, domain.DocTypePurchaseInvoice, invoiceID, err, actor.UserID)
		return nil, err
	}

	_, err = s.subledgerWriter.AppendEntry(ctx, tx, domain.AppendEntryParams{
		HospitalID:       invoice.HospitalID,
		BranchID:         invoice.BranchID,
		CounterpartyType: domain.CounterpartySupplier,
		CounterpartyID:   invoice.SupplierID,
		EntryType:        domain.SubledgerEntryInvoice,
		ReferenceType:    string(domain.DocTypePurchaseInvoice),
		ReferenceID:      invoiceID,
		Debit:            decimal.Zero,
		Credit:           accounting.Round2(grand),
		TransactionDate:  invoice.InvoiceDate,
		GLTransactionID:  glTxnID,
		UserID:           actor.UserID,
	})
	if err != nil {
		s.recordPostingFailure(ctx, tx, domain.DocTypePurchaseInvoice, invoiceID, err, actor.UserID)
		return nil, fmt.Errorf("failed to append AP entry for purchase invoice %s: %w", invoiceID, err)
	}

	if err := s.glRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &dto.PostingResponse{GLTransactionID: glTxnID}, nil
}

// GetTransaction retrieves a posted GL transaction with its entries.
func (s *ledgerPosterService) GetTransaction(ctx context.Context, transactionID string) (*dto.GLTransactionResponse, error) {
	txn, err := s.glRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	entries, err := s.glRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToGLTransactionResponse(txn, entries)
	return &resp, nil
}

// recordPostingFailure rolls the failed unit of work back, then writes the
// posting-error note on its own connection. The rollback must come first: the
// note's upsert targets the posting-state row this transaction still holds
// locked, and would wait on its own lock forever.
func (s *ledgerPosterService) recordPostingFailure(ctx context.Context, tx pgx.Tx, docType domain.SourceDocumentType, docID string, cause error, userID string) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.glRepo.Rollback(ctx, tx); err != nil {
		logger.Error("Failed to roll back before recording posting failure",
			slog.String("document_type", string(docType)),
			slog.String("document_id", docID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.postingStateRepo.MarkPostingFailed(ctx, docType, docID, cause.Error(), userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to record posting failure",
			slog.String("document_type", string(docType)),
			slog.String("document_id", docID),
			slog.String("error", err.Error()),
		)
	}
}

// uniqueRoles returns a slice containing only the unique roles from the input.
func uniqueRoles(input []domain.AccountRole) []domain.AccountRole {
	seen := make(map[domain.AccountRole]struct{}, len(input))
	result := make([]domain.AccountRole, 0, len(input))
	for _, r := range input {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			result = append(result, r)
		}
	}
	return result
}
