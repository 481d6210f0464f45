package repositories

import (
	"context"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// GLReader defines read operations for GL data.
type GLReader interface {
	// FindTransactionByID retrieves a GL transaction header by id.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.GLTransaction, error)

	// FindEntriesByTransactionID retrieves all entries of a GL transaction in
	// insertion order.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.GLEntry, error)

	// ListTransactionsByHospital retrieves a paginated list of GL transactions
	// using token-based pagination. Returns the transactions, a token for the
	// next page, and an error.
	ListTransactionsByHospital(ctx context.Context, hospitalID string, limit int, nextToken *string) ([]domain.GLTransaction, *string, error)
}

// GLWriter defines write operations for GL data. Writes happen inside the
// caller's transaction; a GL transaction and its entries are never persisted
// outside one.
type GLWriter interface {
	// SaveTransactionInTx persists a GL transaction header plus its entries
	// within the given transaction.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.GLTransaction, entries []domain.GLEntry) error

	// LinkReversalInTx sets the reversal back-reference on a committed
	// transaction. The only mutation permitted post-commit.
	LinkReversalInTx(ctx context.Context, tx pgx.Tx, transactionID, reversalTransactionID string, userID string, now time.Time) error
}

// GLRepositoryFacade combines all GL repository interfaces.
type GLRepositoryFacade interface {
	GLReader
	GLWriter
}

// GLRepositoryWithTx extends GLRepositoryFacade with transaction capabilities.
type GLRepositoryWithTx interface {
	GLRepositoryFacade
	TransactionManager
}

// PostingStateRepositoryFacade tracks per-document GL posting state for
// idempotent reposting and posting-failed marking.
type PostingStateRepositoryFacade interface {
	// FindForUpdateInTx loads (and row-locks) the posting state of a document,
	// creating the row if it does not exist yet.
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, docType domain.SourceDocumentType, docID string) (*domain.DocumentPostingState, error)

	// MarkPostedInTx flags the document as posted with its GL reference.
	MarkPostedInTx(ctx context.Context, tx pgx.Tx, docType domain.SourceDocumentType, docID string, glTransactionID string, userID string, now time.Time) error

	// MarkPostingFailed records a posting-error note on the document. Runs on
	// its own connection because the failed unit of work has been rolled back.
	MarkPostingFailed(ctx context.Context, docType domain.SourceDocumentType, docID string, note string, userID string, now time.Time) error
}
