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
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/curasoft/hospital_billing_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// creditNoteService creates numbered credit notes and posts their reversing
// GL/AR entries. Numbering restarts each financial year per hospital; the
// sequence row is locked so two notes issued concurrently cannot share a
// number.
type creditNoteService struct {
	creditNoteRepo  portsrepo.CreditNoteRepositoryFacade
	ledgerPoster    portssvc.LedgerPoster
	subledgerWriter portssvc.SubledgerWriterSvc
}

// NewCreditNoteService creates a new CreditNote service.
func NewCreditNoteService(
	creditNoteRepo portsrepo.CreditNoteRepositoryFacade,
	ledgerPoster portssvc.LedgerPoster,
	subledgerWriter portssvc.SubledgerWriterSvc,
) portssvc.CreditNoteSvcFacade {
	return &creditNoteService{
		creditNoteRepo:  creditNoteRepo,
		ledgerPoster:    ledgerPoster,
		subledgerWriter: subledgerWriter,
	}
}

var _ portssvc.CreditNoteSvcFacade = (*creditNoteService)(nil)

// CreateAndPost creates a credit note and posts it inside the caller's
// transaction: Dr revenue / Cr AR for the note amount, plus the patient's AR
// credit entry. The note number is drawn from the hospital's financial-year
// sequence.
func (s *creditNoteService) CreateAndPost(ctx context.Context, tx pgx.Tx, p domain.CreateCreditNoteParams) (*domain.PatientCreditNote, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: credit note amount must be positive", apperrors.ErrValidation)
	}
	if p.RefundAmount.IsNegative() {
		return nil, fmt.Errorf("%w: refund amount must not be negative", apperrors.ErrValidation)
	}
	if p.ReasonCode == "" || p.ReasonDescription == "" {
		return nil, fmt.Errorf("%w: credit note reason is mandatory", apperrors.ErrValidation)
	}

	fy := accounting.FinancialYear(p.NoteDate)
	seq, err := s.creditNoteRepo.NextSequenceInTx(ctx, tx, p.HospitalID, fy)
	if err != nil {
		return nil, fmt.Errorf("failed to draw credit note sequence for %s/%s: %w", p.HospitalID, fy, err)
	}

	now := time.Now().UTC()
	note := domain.PatientCreditNote{
		CreditNoteID:      uuid.NewString(),
		CreditNoteNumber:  accounting.CreditNoteNumber(fy, seq),
		HospitalID:        p.HospitalID,
		BranchID:          p.BranchID,
		OriginalInvoiceID: p.OriginalInvoiceID,
		PlanID:            p.PlanID,
		PatientID:         p.PatientID,
		TotalAmount:       accounting.Round2(p.Amount),
		RefundAmount:      accounting.Round2(p.RefundAmount),
		ReasonCode:        p.ReasonCode,
		ReasonDescription: p.ReasonDescription,
		Status:            domain.CreditNoteDraft,
		NoteDate:          p.NoteDate,
		AuditFields:       domain.AuditFields{CreatedAt: now, CreatedBy: p.UserID, LastUpdatedAt: now, LastUpdatedBy: p.UserID},
	}

	if err := s.creditNoteRepo.InsertCreditNoteInTx(ctx, tx, note); err != nil {
		return nil, fmt.Errorf("failed to insert credit note %s: %w", note.CreditNoteNumber, err)
	}

	glTxnID, err := s.ledgerPoster.Post(ctx, tx, domain.PostingInstruction{
		HospitalID:         p.HospitalID,
		Type:               domain.GLTypeCreditNote,
		SourceDocumentType: domain.DocTypeCreditNote,
		SourceDocumentID:   note.CreditNoteID,
		TransactionDate:    p.NoteDate,
		Entries: []domain.RoleEntry{
			{Role: domain.RoleRevenue, Debit: note.TotalAmount, Description: "Revenue reversed: " + note.CreditNoteNumber},
			{Role: domain.RoleAccountsReceivable, Credit: note.TotalAmount, Description: "Patient receivable reduced: " + note.CreditNoteNumber},
		},
	}, p.UserID)
	if err != nil {
		return nil, err
	}

	_, err = s.subledgerWriter.AppendEntry(ctx, tx, domain.AppendEntryParams{
		HospitalID:       p.HospitalID,
		BranchID:         p.BranchID,
		CounterpartyType: domain.CounterpartyPatient,
		CounterpartyID:   p.PatientID,
		EntryType:        domain.SubledgerEntryCreditNote,
		ReferenceType:    string(domain.DocTypeCreditNote),
		ReferenceID:      note.CreditNoteID,
		Debit:            decimal.Zero,
		Credit:           note.TotalAmount,
		TransactionDate:  p.NoteDate,
		GLTransactionID:  glTxnID,
		UserID:           p.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append AR entry for credit note %s: %w", note.CreditNoteNumber, err)
	}

	if err := s.creditNoteRepo.MarkPostedInTx(ctx, tx, note.CreditNoteID, glTxnID, p.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to mark credit note %s posted: %w", note.CreditNoteNumber, err)
	}
	note.Status = domain.CreditNotePosted
	note.GLTransactionID = &glTxnID

	logger.Info("Credit note posted",
		slog.String("credit_note_number", note.CreditNoteNumber),
		slog.String("patient_id", p.PatientID),
		slog.String("total_amount", note.TotalAmount.String()),
	)
	return &note, nil
}

// GetCreditNote retrieves a credit note.
func (s *creditNoteService) GetCreditNote(ctx context.Context, creditNoteID string) (*domain.PatientCreditNote, error) {
	return s.creditNoteRepo.FindCreditNoteByID(ctx, creditNoteID)
}
