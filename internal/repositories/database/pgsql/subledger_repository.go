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
	"github.com/shopspring/decimal"
)

type PgxSubledgerRepository struct {
	BaseRepository
}

// newPgxSubledgerRepository creates a new repository for AR/AP subledger data.
func newPgxSubledgerRepository(pool *pgxpool.Pool) portsrepo.SubledgerRepositoryWithTx {
	return &PgxSubledgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSubledgerRepository implements portsrepo.SubledgerRepositoryWithTx
var _ portsrepo.SubledgerRepositoryWithTx = (*PgxSubledgerRepository)(nil)

// LockCounterpartyInTx row-locks the counterparty's balance anchor, creating
// it with a zero balance if absent, and returns the stored balance. Concurrent
// appends for the same counterparty serialize on this lock so every entry's
// running balance is computed from the true prior balance.
func (r *PgxSubledgerRepository) LockCounterpartyInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error) {
	insertQuery := `
		INSERT INTO counterparty_balances (
			hospital_id, counterparty_type, counterparty_id, balance,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, 0, now(), 'system', now(), 'system')
		ON CONFLICT (hospital_id, counterparty_type, counterparty_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, insertQuery, hospitalID, string(cpType), cpID); err != nil {
		return decimal.Zero, mapPgError("failed to ensure balance anchor for "+string(cpType)+" "+cpID, err)
	}

	selectQuery := `
		SELECT balance
		FROM counterparty_balances
		WHERE hospital_id = $1 AND counterparty_type = $2 AND counterparty_id = $3
		FOR UPDATE;
	`
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, selectQuery, hospitalID, string(cpType), cpID).Scan(&balance); err != nil {
		return decimal.Zero, mapPgError("failed to lock balance anchor for "+string(cpType)+" "+cpID, err)
	}
	return balance, nil
}

// ComputeBalanceInTx recomputes the counterparty balance from its entries.
func (r *PgxSubledgerRepository) ComputeBalanceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(debit_amount - credit_amount), 0)
		FROM subledger_entries
		WHERE hospital_id = $1 AND counterparty_type = $2 AND counterparty_id = $3;
	`
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, query, hospitalID, string(cpType), cpID).Scan(&balance); err != nil {
		return decimal.Zero, mapPgError("failed to compute balance for "+string(cpType)+" "+cpID, err)
	}
	return balance, nil
}

// InsertEntryInTx appends one subledger entry.
func (r *PgxSubledgerRepository) InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.SubledgerEntry) error {
	modelEntry := mapping.ToModelSubledgerEntry(entry)
	query := `
		INSERT INTO subledger_entries (
			entry_id, hospital_id, branch_id, transaction_date, entry_type,
			reference_type, reference_id, reference_line_item_id,
			counterparty_type, counterparty_id, debit_amount, credit_amount,
			current_balance, gl_transaction_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		modelEntry.EntryID,
		modelEntry.HospitalID,
		modelEntry.BranchID,
		modelEntry.TransactionDate,
		modelEntry.EntryType,
		modelEntry.ReferenceType,
		modelEntry.ReferenceID,
		modelEntry.ReferenceLineItemID,
		modelEntry.CounterpartyType,
		modelEntry.CounterpartyID,
		modelEntry.DebitAmount,
		modelEntry.CreditAmount,
		modelEntry.CurrentBalance,
		modelEntry.GLTransactionID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to insert subledger entry "+modelEntry.EntryID, err)
	}
	return nil
}

// UpdateCounterpartyBalanceInTx stores the new running balance on the locked
// anchor row.
func (r *PgxSubledgerRepository) UpdateCounterpartyBalanceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE counterparty_balances
		SET balance = $4, last_updated_at = $5, last_updated_by = $6
		WHERE hospital_id = $1 AND counterparty_type = $2 AND counterparty_id = $3;
	`
	tag, err := tx.Exec(ctx, query, hospitalID, string(cpType), cpID, balance, now, userID)
	if err != nil {
		return mapPgError("failed to update balance anchor for "+string(cpType)+" "+cpID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("balance anchor for " + string(cpType) + " " + cpID + " not found")
	}
	return nil
}

// SumCreditsByLineItemInTx sums all credit entries referencing the given
// invoice line item. Backs the derivation of a plan's paid amount.
func (r *PgxSubledgerRepository) SumCreditsByLineItemInTx(ctx context.Context, tx pgx.Tx, lineItemID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(credit_amount), 0)
		FROM subledger_entries
		WHERE reference_line_item_id = $1;
	`
	var total decimal.Decimal
	if err := tx.QueryRow(ctx, query, lineItemID).Scan(&total); err != nil {
		return decimal.Zero, mapPgError("failed to sum credits for line item "+lineItemID, err)
	}
	return total, nil
}

// FindEntriesByCounterparty retrieves every entry for a counterparty in
// transaction_date then created_at order.
func (r *PgxSubledgerRepository) FindEntriesByCounterparty(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string) ([]domain.SubledgerEntry, error) {
	query := subledgerSelectColumns + `
		FROM subledger_entries
		WHERE hospital_id = $1 AND counterparty_type = $2 AND counterparty_id = $3
		ORDER BY transaction_date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, hospitalID, string(cpType), cpID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query subledger entries for "+string(cpType)+" "+cpID, err)
	}
	defer rows.Close()

	return scanSubledgerEntries(rows, cpID)
}

// ListEntriesByCounterparty retrieves a paginated ledger statement using
// token-based pagination. It returns the entries, a token for the next page,
// and an error.
func (r *PgxSubledgerRepository) ListEntriesByCounterparty(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string, limit int, nextToken *string) ([]domain.SubledgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := subledgerSelectColumns + `
		FROM subledger_entries
		WHERE hospital_id = $1 AND counterparty_type = $2 AND counterparty_id = $3
	`
	orderByClause := `ORDER BY transaction_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{hospitalID, string(cpType), cpID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (transaction_date, created_at) < ($4, $5)`
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
		return nil, nil, apperrors.NewAppError(500, "failed to query subledger entries for "+string(cpType)+" "+cpID, err)
	}
	defer rows.Close()

	entries, scanErr := scanSubledgerEntries(rows, cpID)
	if scanErr != nil {
		return nil, nil, scanErr
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}

	return entries, nextTokenVal, nil
}

const subledgerSelectColumns = `
	SELECT entry_id, hospital_id, branch_id, transaction_date, entry_type,
	       reference_type, reference_id, reference_line_item_id,
	       counterparty_type, counterparty_id, debit_amount, credit_amount,
	       current_balance, gl_transaction_id,
	       created_at, created_by, last_updated_at, last_updated_by
`

func scanSubledgerEntries(rows pgx.Rows, cpID string) ([]domain.SubledgerEntry, error) {
	entries := []models.SubledgerEntry{}
	for rows.Next() {
		var e models.SubledgerEntry
		err := rows.Scan(
			&e.EntryID,
			&e.HospitalID,
			&e.BranchID,
			&e.TransactionDate,
			&e.EntryType,
			&e.ReferenceType,
			&e.ReferenceID,
			&e.ReferenceLineItemID,
			&e.CounterpartyType,
			&e.CounterpartyID,
			&e.DebitAmount,
			&e.CreditAmount,
			&e.CurrentBalance,
			&e.GLTransactionID,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.ErrNotFound
			}
			return nil, apperrors.NewAppError(500, "failed to scan subledger entry row for counterparty "+cpID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating subledger entry rows for counterparty "+cpID, err)
	}

	return mapping.ToDomainSubledgerEntrySlice(entries), nil
}
