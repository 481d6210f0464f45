package pgsql

import (
	"context"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	"github.com/curasoft/hospital_billing_app/internal/models"
	"github.com/curasoft/hospital_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPostingStateRepository struct {
	BaseRepository
}

// newPgxPostingStateRepository creates a new repository for document posting state.
func newPgxPostingStateRepository(pool *pgxpool.Pool) portsrepo.PostingStateRepositoryFacade {
	return &PgxPostingStateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPostingStateRepository implements portsrepo.PostingStateRepositoryFacade
var _ portsrepo.PostingStateRepositoryFacade = (*PgxPostingStateRepository)(nil)

// FindForUpdateInTx loads and row-locks the posting state of a document,
// inserting the row first if it does not exist yet. The lock serializes
// concurrent posting attempts for the same document; the second attempt blocks
// here and then observes gl_posted = true.
func (r *PgxPostingStateRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, docType domain.SourceDocumentType, docID string) (*domain.DocumentPostingState, error) {
	insertQuery := `
		INSERT INTO document_posting_state (
			document_type, document_id, gl_posted,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, false, now(), 'system', now(), 'system')
		ON CONFLICT (document_type, document_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, insertQuery, string(docType), docID); err != nil {
		return nil, mapPgError("failed to ensure posting state for "+string(docType)+" "+docID, err)
	}

	selectQuery := `
		SELECT document_type, document_id, gl_posted, gl_transaction_id, posting_error,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM document_posting_state
		WHERE document_type = $1 AND document_id = $2
		FOR UPDATE;
	`
	var modelState models.DocumentPostingState
	err := tx.QueryRow(ctx, selectQuery, string(docType), docID).Scan(
		&modelState.DocumentType,
		&modelState.DocumentID,
		&modelState.GLPosted,
		&modelState.GLTransactionID,
		&modelState.PostingError,
		&modelState.CreatedAt,
		&modelState.CreatedBy,
		&modelState.LastUpdatedAt,
		&modelState.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError("failed to lock posting state for "+string(docType)+" "+docID, err)
	}

	domainState := mapping.ToDomainPostingState(modelState)
	return &domainState, nil
}

// MarkPostedInTx flags the document as posted with its GL reference. Clears
// any posting error left behind by an earlier failed attempt. Upserts because
// documents created and posted in the same unit of work (credit notes, plan
// discontinuations) have no pre-locked state row.
func (r *PgxPostingStateRepository) MarkPostedInTx(ctx context.Context, tx pgx.Tx, docType domain.SourceDocumentType, docID string, glTransactionID string, userID string, now time.Time) error {
	query := `
		INSERT INTO document_posting_state (
			document_type, document_id, gl_posted, gl_transaction_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, true, $3, $4, $5, $4, $5)
		ON CONFLICT (document_type, document_id) DO UPDATE
		SET gl_posted = true, gl_transaction_id = EXCLUDED.gl_transaction_id,
		    posting_error = NULL,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	if _, err := tx.Exec(ctx, query, string(docType), docID, glTransactionID, now, userID); err != nil {
		return mapPgError("failed to mark "+string(docType)+" "+docID+" as posted", err)
	}
	return nil
}

// MarkPostingFailed records a posting-error note on the document. Runs on the
// pool rather than a caller transaction; callers must roll the failed unit of
// work back first, or this upsert waits on the posting-state row lock that
// transaction still holds.
func (r *PgxPostingStateRepository) MarkPostingFailed(ctx context.Context, docType domain.SourceDocumentType, docID string, note string, userID string, now time.Time) error {
	query := `
		INSERT INTO document_posting_state (
			document_type, document_id, gl_posted, posting_error,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, false, $3, $4, $5, $4, $5)
		ON CONFLICT (document_type, document_id) DO UPDATE
		SET posting_error = EXCLUDED.posting_error,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		WHERE document_posting_state.gl_posted = false;
	`
	if _, err := r.Pool.Exec(ctx, query, string(docType), docID, note, now, userID); err != nil {
		return mapPgError("failed to record posting failure for "+string(docType)+" "+docID, err)
	}
	return nil
}
