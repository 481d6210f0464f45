package repositories

import (
	"context"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SubledgerTransactionSupport defines the in-transaction operations backing
// the subledger writer. Two concurrent payments against the same counterparty
// must not compute the prior balance from a stale snapshot, so every append
// first takes the row lock.
type SubledgerTransactionSupport interface {
	// LockCounterpartyInTx row-locks the counterparty's balance anchor
	// (creating it if absent) and returns the stored balance.
	LockCounterpartyInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error)

	// ComputeBalanceInTx recomputes the counterparty balance as
	// sum(debit) - sum(credit) over all existing entries, in transaction_date
	// then created_at order.
	ComputeBalanceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error)

	// InsertEntryInTx appends one subledger entry.
	InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.SubledgerEntry) error

	// UpdateCounterpartyBalanceInTx stores the new running balance on the
	// locked anchor row.
	UpdateCounterpartyBalanceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string, balance decimal.Decimal, userID string, now time.Time) error

	// SumCreditsByLineItemInTx sums all credit entries referencing the given
	// invoice line item. Backs plan paid_amount derivation.
	SumCreditsByLineItemInTx(ctx context.Context, tx pgx.Tx, lineItemID string) (decimal.Decimal, error)
}

// SubledgerReader defines read operations on subledger entries.
type SubledgerReader interface {
	// FindEntriesByCounterparty retrieves every entry for a counterparty in
	// transaction_date then created_at order, for balance replay.
	FindEntriesByCounterparty(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string) ([]domain.SubledgerEntry, error)

	// ListEntriesByCounterparty retrieves a paginated ledger statement using
	// token-based pagination.
	ListEntriesByCounterparty(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string, limit int, nextToken *string) ([]domain.SubledgerEntry, *string, error)
}

// SubledgerRepositoryFacade combines all subledger repository interfaces.
type SubledgerRepositoryFacade interface {
	SubledgerReader
	SubledgerTransactionSupport
}

// SubledgerRepositoryWithTx extends SubledgerRepositoryFacade with transaction
// capabilities.
type SubledgerRepositoryWithTx interface {
	SubledgerRepositoryFacade
	TransactionManager
}
