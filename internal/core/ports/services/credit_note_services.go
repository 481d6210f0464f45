package services

import (
	"context"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// CreditNoteSvcFacade creates credit notes and their reversing AR/GL entries.
type CreditNoteSvcFacade interface {
	// CreateAndPost creates a numbered credit note and posts it (Dr revenue /
	// Cr AR plus the patient AR credit) inside the caller's transaction.
	CreateAndPost(ctx context.Context, tx pgx.Tx, p domain.CreateCreditNoteParams) (*domain.PatientCreditNote, error)

	// GetCreditNote retrieves a credit note.
	GetCreditNote(ctx context.Context, creditNoteID string) (*domain.PatientCreditNote, error)
}
