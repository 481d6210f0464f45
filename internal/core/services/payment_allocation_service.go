package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/curasoft/hospital_billing_app/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// paymentAllocationService distributes one payment across outstanding
// receivables. Invoices are consumed in the caller-supplied order; within an
// invoice, services settle first, then medicines, then packages. Whatever the
// receivables cannot absorb becomes an advance credit on the patient's
// ledger.
type paymentAllocationService struct {
	txManager        portsrepo.TransactionManager
	postingStateRepo portsrepo.PostingStateRepositoryFacade
	invoiceRepo      portsrepo.InvoiceRepositoryFacade
	subledgerRepo    portsrepo.SubledgerRepositoryFacade
	planRepo         portsrepo.PlanRepositoryFacade
	ledgerPoster     portssvc.LedgerPoster
	subledgerWriter  portssvc.SubledgerWriterSvc
}

// NewPaymentAllocationService creates a new PaymentAllocation service.
func NewPaymentAllocationService(
	txManager portsrepo.TransactionManager,
	postingStateRepo portsrepo.PostingStateRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	subledgerRepo portsrepo.SubledgerRepositoryFacade,
	planRepo portsrepo.PlanRepositoryFacade,
	ledgerPoster portssvc.LedgerPoster,
	subledgerWriter portssvc.SubledgerWriterSvc,
) portssvc.PaymentAllocationSvcFacade {
	return &paymentAllocationService{
		txManager:        txManager,
		postingStateRepo: postingStateRepo,
		invoiceRepo:      invoiceRepo,
		subledgerRepo:    subledgerRepo,
		planRepo:         planRepo,
		ledgerPoster:     ledgerPoster,
		subledgerWriter:  subledgerWriter,
	}
}

var _ portssvc.PaymentAllocationSvcFacade = (*paymentAllocationService)(nil)

// allocate walks the line items in settlement order and splits the amount
// across their outstanding balances. Pure; the remainder comes back to the
// caller as the advance portion.
func allocate(amount decimal.Decimal, lineItems []domain.InvoiceLineItem, invoiceOrder []string) ([]domain.Allocation, decimal.Decimal) {
	orderIndex := make(map[string]int, len(invoiceOrder))
	for i, id := range invoiceOrder {
		orderIndex[id] = i
	}

	sorted := make([]domain.InvoiceLineItem, len(lineItems))
	copy(sorted, lineItems)
	sort.SliceStable(sorted, func(i, j int) bool {
		if orderIndex[sorted[i].InvoiceID] != orderIndex[sorted[j].InvoiceID] {
			return orderIndex[sorted[i].InvoiceID] < orderIndex[sorted[j].InvoiceID]
		}
		if sorted[i].ItemType.AllocationPriority() != sorted[j].ItemType.AllocationPriority() {
			return sorted[i].ItemType.AllocationPriority() < sorted[j].ItemType.AllocationPriority()
		}
		return sorted[i].LineItemID < sorted[j].LineItemID
	})

	remaining := amount
	var allocations []domain.Allocation
	for _, li := range sorted {
		if !remaining.IsPositive() {
			break
		}
		outstanding := li.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		alloc := decimal.Min(remaining, outstanding)
		allocations = append(allocations, domain.Allocation{
			InvoiceID:  li.InvoiceID,
			LineItemID: li.LineItemID,
			ItemType:   li.ItemType,
			Amount:     accounting.Round2(alloc),
		})
		remaining = remaining.Sub(alloc)
	}
	return allocations, accounting.Round2(remaining)
}

func roleForMode(mode domain.PaymentMode) domain.AccountRole {
	if mode == domain.PaymentModeCash {
		return domain.RoleCash
	}
	return domain.RoleBank
}

// PostPayment allocates and posts a payment in one unit of work: one GL
// transaction debiting cash or bank and crediting AR control for the full
// amount, one AR credit entry per settled line item, and one advance entry
// for any residual. Idempotent on the payment id.
func (s *paymentAllocationService) PostPayment(ctx context.Context, req dto.PostPaymentRequest, actor dto.Actor) (*dto.PaymentPostingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.Permissions.CanPostDocuments {
		return nil, fmt.Errorf("%w: posting documents", apperrors.ErrForbidden)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	mode := domain.PaymentMode(req.Mode)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	state, err := s.postingStateRepo.FindForUpdateInTx(ctx, tx, domain.DocTypePayment, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if state.GLPosted && state.GLTransactionID != nil {
		logger.Info("Payment already posted, skipping", slog.String("payment_id", req.PaymentID), slog.String("gl_transaction_id", *state.GLTransactionID))
		return &dto.PaymentPostingResponse{GLTransactionID: *state.GLTransactionID, AlreadyPosted: true}, nil
	}

	// The patient's ledger lock serializes the whole allocation, not just the
	// balance arithmetic: outstanding amounts must not be read while another
	// payment's credit entries are uncommitted, or both settle the same lines.
	if _, err := s.subledgerRepo.LockCounterpartyInTx(ctx, tx, actor.HospitalID, domain.CounterpartyPatient, req.PatientID); err != nil {
		return nil, fmt.Errorf("failed to lock patient ledger for payment %s: %w", req.PaymentID, err)
	}

	lineItems, err := s.invoiceRepo.FindOutstandingLineItemsInTx(ctx, tx, req.InvoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items for payment %s: %w", req.PaymentID, err)
	}

	allocations, advance := allocate(req.Amount, lineItems, req.InvoiceIDs)

	// GL first: the control account moves by the full payment amount, advance
	// included, so the AR control always equals the subledger sum.
	glTxnID, err := s.ledgerPoster.Post(ctx, tx, domain.PostingInstruction{
		HospitalID:         actor.HospitalID,
		Type:               domain.GLTypePayment,
		SourceDocumentType: domain.DocTypePayment,
		SourceDocumentID:   req.PaymentID,
		TransactionDate:    req.PaymentDate,
		Entries: []domain.RoleEntry{
			{Role: roleForMode(mode), Debit: req.Amount, Description: "Payment received"},
			{Role: domain.RoleAccountsReceivable, Credit: req.Amount, Description: "Patient receivable settled"},
		},
	}, actor.UserID)
	if err != nil {
		s.recordPostingFailure(ctx, tx, req.PaymentID, err, actor.UserID)
		return nil, err
	}

	for _, alloc := range allocations {
		lineItemID := alloc.LineItemID
		_, err := s.subledgerWriter.AppendEntry(ctx, tx, domain.AppendEntryParams{
			HospitalID:          actor.HospitalID,
			BranchID:            actor.BranchID,
			CounterpartyType:    domain.CounterpartyPatient,
			CounterpartyID:      req.PatientID,
			EntryType:           domain.SubledgerEntryPayment,
			ReferenceType:       string(domain.DocTypePayment),
			ReferenceID:         req.PaymentID,
			ReferenceLineItemID: &lineItemID,
			Debit:               decimal.Zero,
			Credit:              alloc.Amount,
			TransactionDate:     req.PaymentDate,
			GLTransactionID:     glTxnID,
			UserID:              actor.UserID,
		})
		if err != nil {
			s.recordPostingFailure(ctx, tx, req.PaymentID, err, actor.UserID)
			return nil, fmt.Errorf("failed to append allocation entry for line %s: %w", alloc.LineItemID, err)
		}
	}

	if advance.IsPositive() {
		logger.Info("Payment exceeds outstanding receivables, recording advance",
			slog.String("payment_id", req.PaymentID),
			slog.String("advance_amount", advance.String()),
		)
		_, err := s.subledgerWriter.AppendEntry(ctx, tx, domain.AppendEntryParams{
			HospitalID:       actor.HospitalID,
			BranchID:         actor.BranchID,
			CounterpartyType: domain.CounterpartyPatient,
			CounterpartyID:   req.PatientID,
			EntryType:        domain.SubledgerEntryAdvance,
			ReferenceType:    string(domain.DocTypePayment),
			ReferenceID:      req.PaymentID,
			Debit:            decimal.Zero,
			Credit:           advance,
			TransactionDate:  req.PaymentDate,
			GLTransactionID:  glTxnID,
			UserID:           actor.UserID,
		})
		if err != nil {
			s.recordPostingFailure(ctx, tx, req.PaymentID, err, actor.UserID)
			return nil, fmt.Errorf("failed to append advance entry for payment %s: %w", req.PaymentID, err)
		}
	}

	if err := s.syncFundedPlans(ctx, tx, allocations, actor.UserID); err != nil {
		s.recordPostingFailure(ctx, tx, req.PaymentID, err, actor.UserID)
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	result := domain.PaymentPostingResult{
		GLTransactionID: glTxnID,
		Allocations:     allocations,
		AdvanceAmount:   advance,
	}
	resp := dto.ToPaymentPostingResponse(&result)
	return &resp, nil
}

// recordPostingFailure rolls the failed unit of work back, then writes the
// posting-error note on its own connection. Rollback first: the note's upsert
// targets the posting-state row this transaction still holds locked.
func (s *paymentAllocationService) recordPostingFailure(ctx context.Context, tx pgx.Tx, paymentID string, cause error, userID string) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.txManager.Rollback(ctx, tx); err != nil {
		logger.Error("Failed to roll back before recording posting failure",
			slog.String("payment_id", paymentID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.postingStateRepo.MarkPostingFailed(ctx, domain.DocTypePayment, paymentID, cause.Error(), userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to record posting failure",
			slog.String("payment_id", paymentID),
			slog.String("error", err.Error()),
		)
	}
}

// syncFundedPlans refreshes the derived paid amount and installment statuses
// of every package plan whose funding line item received an allocation.
func (s *paymentAllocationService) syncFundedPlans(ctx context.Context, tx pgx.Tx, allocations []domain.Allocation, userID string) error {
	now := time.Now().UTC()
	for _, alloc := range allocations {
		if alloc.ItemType != domain.ItemTypePackage {
			continue
		}
		plan, err := s.planRepo.FindPlanByLineItemInTx(ctx, tx, alloc.LineItemID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue // package sold without a payment plan
			}
			return fmt.Errorf("failed to find plan for line %s: %w", alloc.LineItemID, err)
		}

		paid, err := s.subledgerRepo.SumCreditsByLineItemInTx(ctx, tx, alloc.LineItemID)
		if err != nil {
			return fmt.Errorf("failed to derive paid amount for plan %s: %w", plan.PlanID, err)
		}
		if err := s.planRepo.SetPaidAmountInTx(ctx, tx, plan.PlanID, paid, userID, now); err != nil {
			return fmt.Errorf("failed to store paid amount for plan %s: %w", plan.PlanID, err)
		}

		if err := s.refreshInstallments(ctx, tx, plan.PlanID, paid, userID); err != nil {
			return err
		}
	}
	return nil
}

// refreshInstallments re-derives every installment's settled state from the
// plan's total paid amount, filling installments in schedule order. Waived
// installments are skipped.
func (s *paymentAllocationService) refreshInstallments(ctx context.Context, tx pgx.Tx, planID string, totalPaid decimal.Decimal, userID string) error {
	installments, err := s.planRepo.FindInstallmentsInTx(ctx, tx, planID)
	if err != nil {
		return fmt.Errorf("failed to load installments for plan %s: %w", planID, err)
	}

	now := time.Now().UTC()
	pool := totalPaid
	for _, inst := range installments {
		if inst.Status == domain.InstallmentWaived {
			continue
		}

		fill := decimal.Min(pool, inst.Amount)
		if fill.IsNegative() {
			fill = decimal.Zero
		}
		pool = pool.Sub(fill)

		status := domain.InstallmentPending
		switch {
		case fill.GreaterThanOrEqual(inst.Amount) && inst.Amount.IsPositive():
			status = domain.InstallmentPaid
		case fill.IsPositive():
			status = domain.InstallmentPartial
		case inst.Status == domain.InstallmentOverdue:
			status = domain.InstallmentOverdue
		}

		if !inst.PaidAmount.Equal(fill) || inst.Status != status {
			inst.PaidAmount = accounting.Round2(fill)
			inst.Status = status
			inst.LastUpdatedAt = now
			inst.LastUpdatedBy = userID
			if err := s.planRepo.UpdateInstallmentInTx(ctx, tx, inst); err != nil {
				return fmt.Errorf("failed to update installment %s: %w", inst.InstallmentID, err)
			}
		}
	}
	return nil
}
