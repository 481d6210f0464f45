package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	"github.com/curasoft/hospital_billing_app/internal/models"
	"github.com/curasoft/hospital_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCreditNoteRepository struct {
	BaseRepository
}

// newPgxCreditNoteRepository creates a new repository for patient credit notes.
func newPgxCreditNoteRepository(pool *pgxpool.Pool) portsrepo.CreditNoteRepositoryFacade {
	return &PgxCreditNoteRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCreditNoteRepository implements portsrepo.CreditNoteRepositoryFacade
var _ portsrepo.CreditNoteRepositoryFacade = (*PgxCreditNoteRepository)(nil)

// NextSequenceInTx increments and returns the credit-note sequence for the
// hospital and financial year. The upsert takes the row lock, so two notes
// issued concurrently for the same hospital and year serialize here and get
// distinct numbers. A rolled-back issuing transaction releases its number,
// keeping the sequence gapless.
func (r *PgxCreditNoteRepository) NextSequenceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, financialYear string) (int64, error) {
	query := `
		INSERT INTO credit_note_sequences (hospital_id, financial_year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (hospital_id, financial_year) DO UPDATE
		SET last_value = credit_note_sequences.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, hospitalID, financialYear).Scan(&seq); err != nil {
		return 0, mapPgError("failed to advance credit note sequence for hospital "+hospitalID+" FY "+financialYear, err)
	}
	return seq, nil
}

// InsertCreditNoteInTx persists a draft credit note.
func (r *PgxCreditNoteRepository) InsertCreditNoteInTx(ctx context.Context, tx pgx.Tx, note domain.PatientCreditNote) error {
	m := mapping.ToModelCreditNote(note)
	query := `
		INSERT INTO patient_credit_notes (
			credit_note_id, credit_note_number, hospital_id, branch_id,
			original_invoice_id, plan_id, patient_id, total_amount, refund_amount,
			reason_code, reason_description, status, note_date, gl_transaction_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.CreditNoteID,
		m.CreditNoteNumber,
		m.HospitalID,
		m.BranchID,
		m.OriginalInvoiceID,
		m.PlanID,
		m.PatientID,
		m.TotalAmount,
		m.RefundAmount,
		m.ReasonCode,
		m.ReasonDescription,
		m.Status,
		m.NoteDate,
		m.GLTransactionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to insert credit note "+m.CreditNoteID, err)
	}
	return nil
}

// MarkPostedInTx flags the credit note posted with its GL reference.
func (r *PgxCreditNoteRepository) MarkPostedInTx(ctx context.Context, tx pgx.Tx, creditNoteID string, glTransactionID string, userID string, now time.Time) error {
	query := `
		UPDATE patient_credit_notes
		SET status = 'posted', gl_transaction_id = $2,
		    last_updated_at = $3, last_updated_by = $4
		WHERE credit_note_id = $1 AND status = 'draft';
	`
	tag, err := tx.Exec(ctx, query, creditNoteID, glTransactionID, now, userID)
	if err != nil {
		return mapPgError("failed to mark credit note "+creditNoteID+" as posted", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "credit note "+creditNoteID+" is missing or already posted", apperrors.ErrConflict)
	}
	return nil
}

// FindCreditNoteByID retrieves a credit note.
func (r *PgxCreditNoteRepository) FindCreditNoteByID(ctx context.Context, creditNoteID string) (*domain.PatientCreditNote, error) {
	query := `
		SELECT credit_note_id, credit_note_number, hospital_id, branch_id,
		       original_invoice_id, plan_id, patient_id, total_amount, refund_amount,
		       reason_code, reason_description, status, note_date, gl_transaction_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM patient_credit_notes
		WHERE credit_note_id = $1;
	`
	var m models.PatientCreditNote
	err := r.Pool.QueryRow(ctx, query, creditNoteID).Scan(
		&m.CreditNoteID,
		&m.CreditNoteNumber,
		&m.HospitalID,
		&m.BranchID,
		&m.OriginalInvoiceID,
		&m.PlanID,
		&m.PatientID,
		&m.TotalAmount,
		&m.RefundAmount,
		&m.ReasonCode,
		&m.ReasonDescription,
		&m.Status,
		&m.NoteDate,
		&m.GLTransactionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find credit note by ID "+creditNoteID, err)
	}

	domainNote := mapping.ToDomainCreditNote(m)
	return &domainNote, nil
}
