package repositories

import (
	"context"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// CreditNoteRepositoryFacade defines persistence for patient credit notes and
// their per-hospital, per-financial-year numbering sequence.
type CreditNoteRepositoryFacade interface {
	// NextSequenceInTx increments and returns the credit-note sequence for the
	// hospital and financial year under a row lock, so numbers are gapless
	// within the issuing transaction's fate.
	NextSequenceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, financialYear string) (int64, error)

	// InsertCreditNoteInTx persists a draft credit note.
	InsertCreditNoteInTx(ctx context.Context, tx pgx.Tx, note domain.PatientCreditNote) error

	// MarkPostedInTx flags the credit note posted with its GL reference.
	MarkPostedInTx(ctx context.Context, tx pgx.Tx, creditNoteID string, glTransactionID string, userID string, now time.Time) error

	// FindCreditNoteByID retrieves a credit note.
	FindCreditNoteByID(ctx context.Context, creditNoteID string) (*domain.PatientCreditNote, error)
}
