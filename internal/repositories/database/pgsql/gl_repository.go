package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	"github.com/curasoft/hospital_billing_app/internal/models"
	"github.com/curasoft/hospital_billing_app/internal/utils/mapping"
	"github.com/curasoft/hospital_billing_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxGLRepository struct {
	BaseRepository
}

// newPgxGLRepository creates a new repository for GL transaction data.
func newPgxGLRepository(pool *pgxpool.Pool) portsrepo.GLRepositoryWithTx {
	return &PgxGLRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGLRepository implements portsrepo.GLRepositoryWithTx
var _ portsrepo.GLRepositoryWithTx = (*PgxGLRepository)(nil)

// SaveTransactionInTx persists a GL transaction header plus its entries within
// the caller's transaction. The header insert and the entry batch share the
// transaction's fate, so a partially written posting can never be observed.
func (r *PgxGLRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.GLTransaction, entries []domain.GLEntry) error {
	modelTxn := mapping.ToModelGLTransaction(txn)
	headerQuery := `
		INSERT INTO gl_transactions (
			transaction_id, hospital_id, transaction_date, type,
			source_document_type, source_document_id, total_debit, total_credit,
			exchange_rate, reversal_transaction_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, headerQuery,
		modelTxn.TransactionID,
		modelTxn.HospitalID,
		modelTxn.TransactionDate,
		modelTxn.Type,
		modelTxn.SourceDocumentType,
		modelTxn.SourceDocumentID,
		modelTxn.TotalDebit,
		modelTxn.TotalCredit,
		modelTxn.ExchangeRate,
		modelTxn.ReversalTransactionID,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to insert GL transaction "+modelTxn.TransactionID, err)
	}

	batch := &pgx.Batch{}
	entryQuery := `
		INSERT INTO gl_entries (
			entry_id, transaction_id, account_id, debit_amount, credit_amount,
			entry_date, description, source_document_type, source_document_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, entry := range entries {
		modelEntry := mapping.ToModelGLEntry(entry)
		batch.Queue(entryQuery,
			modelEntry.EntryID,
			modelEntry.TransactionID,
			modelEntry.AccountID,
			modelEntry.DebitAmount,
			modelEntry.CreditAmount,
			modelEntry.EntryDate,
			modelEntry.Description,
			modelEntry.SourceDocumentType,
			modelEntry.SourceDocumentID,
			modelEntry.CreatedAt,
			modelEntry.CreatedBy,
			modelEntry.LastUpdatedAt,
			modelEntry.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError("failed to execute entry batch for GL transaction "+modelTxn.TransactionID, err)
	}

	return nil
}

// LinkReversalInTx sets the reversal back-reference on a committed GL
// transaction. The only mutation a committed transaction ever receives.
func (r *PgxGLRepository) LinkReversalInTx(ctx context.Context, tx pgx.Tx, transactionID, reversalTransactionID string, userID string, now time.Time) error {
	query := `
		UPDATE gl_transactions
		SET reversal_transaction_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND reversal_transaction_id IS NULL;
	`
	tag, err := tx.Exec(ctx, query, transactionID, reversalTransactionID, now, userID)
	if err != nil {
		return mapPgError("failed to link reversal on GL transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "GL transaction "+transactionID+" is missing or already reversed", apperrors.ErrConflict)
	}
	return nil
}

// FindTransactionByID retrieves a GL transaction header by its ID.
func (r *PgxGLRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.GLTransaction, error) {
	query := `
		SELECT transaction_id, hospital_id, transaction_date, type,
		       source_document_type, source_document_id, total_debit, total_credit,
		       exchange_rate, reversal_transaction_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM gl_transactions
		WHERE transaction_id = $1;
	`
	var modelTxn models.GLTransaction
	err := r.Pool.QueryRow(ctx, query, transactionID).Scan(
		&modelTxn.TransactionID,
		&modelTxn.HospitalID,
		&modelTxn.TransactionDate,
		&modelTxn.Type,
		&modelTxn.SourceDocumentType,
		&modelTxn.SourceDocumentID,
		&modelTxn.TotalDebit,
		&modelTxn.TotalCredit,
		&modelTxn.ExchangeRate,
		&modelTxn.ReversalTransactionID,
		&modelTxn.CreatedAt,
		&modelTxn.CreatedBy,
		&modelTxn.LastUpdatedAt,
		&modelTxn.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find GL transaction by ID "+transactionID, err)
	}

	domainTxn := mapping.ToDomainGLTransaction(modelTxn)
	return &domainTxn, nil
}

// FindEntriesByTransactionID retrieves all entries of a GL transaction in
// insertion order.
func (r *PgxGLRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.GLEntry, error) {
	query := `
		SELECT entry_id, transaction_id, account_id, debit_amount, credit_amount,
		       entry_date, description, source_document_type, source_document_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM gl_entries
		WHERE transaction_id = $1
		ORDER BY created_at, entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for GL transaction "+transactionID, err)
	}
	defer rows.Close()

	entries := []models.GLEntry{}
	for rows.Next() {
		var e models.GLEntry
		err := rows.Scan(
			&e.EntryID,
			&e.TransactionID,
			&e.AccountID,
			&e.DebitAmount,
			&e.CreditAmount,
			&e.EntryDate,
			&e.Description,
			&e.SourceDocumentType,
			&e.SourceDocumentID,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for GL transaction "+transactionID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for GL transaction "+transactionID, err)
	}

	return mapping.ToDomainGLEntrySlice(entries), nil
}

// ListTransactionsByHospital retrieves a paginated list of GL transactions
// using token-based pagination. It returns the transactions, a token for the
// next page, and an error.
func (r *PgxGLRepository) ListTransactionsByHospital(ctx context.Context, hospitalID string, limit int, nextToken *string) ([]domain.GLTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to learn whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT transaction_id, hospital_id, transaction_date, type,
		       source_document_type, source_document_id, total_debit, total_credit,
		       exchange_rate, reversal_transaction_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM gl_transactions
		WHERE hospital_id = $1
	`
	// Ordering must be stable: transaction_date DESC with created_at DESC as
	// the tie-breaker, matching the cursor tuple.
	orderByClause := `ORDER BY transaction_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{hospitalID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (transaction_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query GL transactions for hospital "+hospitalID, err)
	}
	defer rows.Close()

	transactions := make([]models.GLTransaction, 0, fetchLimit)
	for rows.Next() {
		var t models.GLTransaction
		err := rows.Scan(
			&t.TransactionID,
			&t.HospitalID,
			&t.TransactionDate,
			&t.Type,
			&t.SourceDocumentType,
			&t.SourceDocumentID,
			&t.TotalDebit,
			&t.TotalCredit,
			&t.ExchangeRate,
			&t.ReversalTransactionID,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan GL transaction row for hospital "+hospitalID, err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating GL transaction rows for hospital "+hospitalID, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		last := transactions[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		transactions = transactions[:limit]
	}

	results := make([]domain.GLTransaction, len(transactions))
	for i, t := range transactions {
		results[i] = mapping.ToDomainGLTransaction(t)
	}
	return results, nextTokenVal, nil
}
