package services

import (
	"context"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerPoster converts business documents into balanced GL transactions.
type LedgerPoster interface {
	// Post writes one GL transaction plus its entries inside the caller's
	// transaction, after resolving account roles and enforcing
	// total-debit == total-credit within the rounding tolerance. Marks the
	// source document posted.
	Post(ctx context.Context, tx pgx.Tx, inst domain.PostingInstruction, userID string) (string, error)
}

// DocumentPoster exposes the inbound posting operations for whole documents.
// Each runs in exactly one unit of work and is idempotent: reposting an
// already-posted document returns the original GL transaction id without
// creating rows.
type DocumentPoster interface {
	// PostInvoice posts a patient invoice (Dr AR / Cr revenue + GST payables)
	// and appends the patient's AR debit entry.
	PostInvoice(ctx context.Context, invoiceID string, actor dto.Actor) (*dto.PostingResponse, error)

	// PostPurchaseInvoice posts a supplier invoice (Dr inventory + GST input /
	// Cr AP) and appends the supplier's AP credit entry.
	PostPurchaseInvoice(ctx context.Context, invoiceID string, actor dto.Actor) (*dto.PostingResponse, error)

	// GetTransaction retrieves a posted GL transaction with its entries.
	GetTransaction(ctx context.Context, transactionID string) (*dto.GLTransactionResponse, error)
}

// LedgerPosterSvcFacade combines the in-transaction poster with the inbound
// document operations.
type LedgerPosterSvcFacade interface {
	LedgerPoster
	DocumentPoster
}

// SubledgerWriterSvc appends AR/AP entries and maintains running balances.
type SubledgerWriterSvc interface {
	// AppendEntry appends one subledger entry inside the caller's
	// transaction. The counterparty's running balance is recomputed under a
	// row lock and stored on the new entry.
	AppendEntry(ctx context.Context, tx pgx.Tx, p domain.AppendEntryParams) (*domain.SubledgerEntry, error)

	// ReplayBalance recomputes a counterparty balance from scratch by
	// replaying all entries in order. Used for reconciliation.
	ReplayBalance(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error)

	// ListEntries returns a paginated ledger statement for a counterparty.
	ListEntries(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string, limit int, nextToken *string) (*dto.ListSubledgerResponse, error)
}
