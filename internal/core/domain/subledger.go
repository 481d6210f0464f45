package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CounterpartyType distinguishes patient (AR) from supplier (AP) subledgers.
type CounterpartyType string

const (
	CounterpartyPatient  CounterpartyType = "patient"
	CounterpartySupplier CounterpartyType = "supplier"
)

// SubledgerEntryType classifies what caused a subledger entry.
type SubledgerEntryType string

const (
	SubledgerEntryInvoice     SubledgerEntryType = "invoice"
	SubledgerEntryPayment     SubledgerEntryType = "payment"
	SubledgerEntryCreditNote  SubledgerEntryType = "credit_note"
	SubledgerEntryAdjustment  SubledgerEntryType = "adjustment"
	SubledgerEntryInstallment SubledgerEntryType = "installment"
	// SubledgerEntryAdvance records payment amount that exceeded the
	// counterparty's outstanding receivables. It is never silently dropped.
	SubledgerEntryAdvance SubledgerEntryType = "advance"
)

// SubledgerEntry is one append-only AR/AP row. CurrentBalance is the
// counterparty's running balance (all prior debits minus all prior credits,
// this entry included) at the time of insertion. Entries are never edited
// post-commit; corrections are new reversing entries.
type SubledgerEntry struct {
	EntryID         string             `json:"entryID"` // Primary Key (UUID)
	HospitalID      string             `json:"hospitalID"`
	BranchID        string             `json:"branchID"`
	TransactionDate time.Time          `json:"transactionDate"`
	EntryType       SubledgerEntryType `json:"entryType"`
	ReferenceType   string             `json:"referenceType"`
	ReferenceID     string             `json:"referenceID"`
	// ReferenceLineItemID records which invoice line item or installment the
	// entry settles. Required for tracing multi-invoice allocations.
	ReferenceLineItemID *string          `json:"referenceLineItemID,omitempty"`
	CounterpartyType    CounterpartyType `json:"counterpartyType"`
	CounterpartyID      string           `json:"counterpartyID"`
	DebitAmount         decimal.Decimal  `json:"debitAmount"`
	CreditAmount        decimal.Decimal  `json:"creditAmount"`
	CurrentBalance      decimal.Decimal  `json:"currentBalance"`
	GLTransactionID     string           `json:"glTransactionID"`
	AuditFields
}

// AppendEntryParams carries everything needed to append one subledger entry.
type AppendEntryParams struct {
	HospitalID          string
	BranchID            string
	CounterpartyType    CounterpartyType
	CounterpartyID      string
	EntryType           SubledgerEntryType
	ReferenceType       string
	ReferenceID         string
	ReferenceLineItemID *string
	Debit               decimal.Decimal
	Credit              decimal.Decimal
	TransactionDate     time.Time
	GLTransactionID     string
	UserID              string
}
