package pgsql

import (
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	glRepo := newPgxGLRepository(dbPool)
	postingStateRepo := newPgxPostingStateRepository(dbPool)
	subledgerRepo := newPgxSubledgerRepository(dbPool)
	coaRepo := newPgxCoARepository(dbPool)
	invoiceRepo := newPgxInvoiceRepository(dbPool)
	planRepo := newPgxPlanRepository(dbPool)
	creditNoteRepo := newPgxCreditNoteRepository(dbPool)

	return portsrepo.RepositoryProvider{
		GLRepo:           glRepo,
		PostingStateRepo: postingStateRepo,
		SubledgerRepo:    subledgerRepo,
		CoARepo:          coaRepo,
		InvoiceRepo:      invoiceRepo,
		PlanRepo:         planRepo,
		CreditNoteRepo:   creditNoteRepo,
	}
}
