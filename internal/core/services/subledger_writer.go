package services

import (
	"context"
	"fmt"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/curasoft/hospital_billing_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// subledgerWriterService appends AR/AP entries and maintains each
// counterparty's running balance. Balance convention is uniform for both
// sides: debits minus credits. Patient balances run positive while owed,
// supplier balances run negative.
type subledgerWriterService struct {
	subledgerRepo portsrepo.SubledgerRepositoryWithTx
}

// NewSubledgerWriter creates a new SubledgerWriter.
func NewSubledgerWriter(subledgerRepo portsrepo.SubledgerRepositoryWithTx) portssvc.SubledgerWriterSvc {
	return &subledgerWriterService{subledgerRepo: subledgerRepo}
}

var _ portssvc.SubledgerWriterSvc = (*subledgerWriterService)(nil)

// AppendEntry appends one subledger entry inside the caller's transaction.
// The counterparty's balance anchor is locked first, then the stored balance
// is advanced by this entry's debit minus credit and written onto both the
// entry and the anchor.
func (s *subledgerWriterService) AppendEntry(ctx context.Context, tx pgx.Tx, p domain.AppendEntryParams) (*domain.SubledgerEntry, error) {
	if p.Debit.IsNegative() || p.Credit.IsNegative() {
		return nil, fmt.Errorf("%w: subledger amounts must not be negative", apperrors.ErrValidation)
	}
	if p.Debit.IsPositive() == p.Credit.IsPositive() {
		return nil, fmt.Errorf("%w: subledger entry must have exactly one of debit or credit set", apperrors.ErrValidation)
	}

	priorBalance, err := s.subledgerRepo.LockCounterpartyInTx(ctx, tx, p.HospitalID, p.CounterpartyType, p.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock counterparty %s/%s: %w", p.CounterpartyType, p.CounterpartyID, err)
	}

	newBalance := accounting.Round2(priorBalance.Add(p.Debit).Sub(p.Credit))
	now := time.Now().UTC()

	entry := domain.SubledgerEntry{
		EntryID:             uuid.NewString(),
		HospitalID:          p.HospitalID,
		BranchID:            p.BranchID,
		TransactionDate:     p.TransactionDate,
		EntryType:           p.EntryType,
		ReferenceType:       p.ReferenceType,
		ReferenceID:         p.ReferenceID,
		ReferenceLineItemID: p.ReferenceLineItemID,
		CounterpartyType:    p.CounterpartyType,
		CounterpartyID:      p.CounterpartyID,
		DebitAmount:         accounting.Round2(p.Debit),
		CreditAmount:        accounting.Round2(p.Credit),
		CurrentBalance:      newBalance,
		GLTransactionID:     p.GLTransactionID,
		AuditFields:         domain.AuditFields{CreatedAt: now, CreatedBy: p.UserID, LastUpdatedAt: now, LastUpdatedBy: p.UserID},
	}

	if err := s.subledgerRepo.InsertEntryInTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert subledger entry for %s/%s: %w", p.CounterpartyType, p.CounterpartyID, err)
	}
	if err := s.subledgerRepo.UpdateCounterpartyBalanceInTx(ctx, tx, p.HospitalID, p.CounterpartyType, p.CounterpartyID, newBalance, p.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to update balance for %s/%s: %w", p.CounterpartyType, p.CounterpartyID, err)
	}

	return &entry, nil
}

// ReplayBalance recomputes a counterparty balance from scratch by replaying
// every entry in order. The result should always match the stored anchor; a
// mismatch means an entry was written outside AppendEntry.
func (s *subledgerWriterService) ReplayBalance(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error) {
	entries, err := s.subledgerRepo.FindEntriesByCounterparty(ctx, hospitalID, cpType, cpID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.DebitAmount).Sub(e.CreditAmount)
	}
	return accounting.Round2(balance), nil
}

// ListEntries returns a paginated ledger statement for a counterparty.
func (s *subledgerWriterService) ListEntries(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string, limit int, nextToken *string) (*dto.ListSubledgerResponse, error) {
	entries, token, err := s.subledgerRepo.ListEntriesByCounterparty(ctx, hospitalID, cpType, cpID, limit, nextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListSubledgerResponse{
		Entries:   dto.ToSubledgerEntryResponses(entries),
		NextToken: token,
	}, nil
}
