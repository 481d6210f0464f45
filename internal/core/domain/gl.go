package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GLTransactionType classifies the business event behind a GL transaction.
type GLTransactionType string

const (
	GLTypeInvoice    GLTransactionType = "INVOICE"
	GLTypePayment    GLTransactionType = "PAYMENT"
	GLTypeCreditNote GLTransactionType = "CREDIT_NOTE"
	GLTypeReversal   GLTransactionType = "REVERSAL"
)

// SourceDocumentType identifies the kind of business document that produced a
// ledger row.
type SourceDocumentType string

const (
	DocTypeInvoice         SourceDocumentType = "invoice"
	DocTypePurchaseInvoice SourceDocumentType = "purchase_invoice"
	DocTypePayment         SourceDocumentType = "payment"
	DocTypeCreditNote      SourceDocumentType = "credit_note"
	// DocTypePlan tracks the posting state of a plan discontinuation, whose
	// GL document (the credit note) only exists once the posting succeeds.
	DocTypePlan SourceDocumentType = "plan"
)

// GLTransaction is the header of one balanced double-entry posting. Immutable
// once committed, except for the reversal back-reference.
type GLTransaction struct {
	TransactionID      string             `json:"transactionID"` // Primary Key (UUID)
	HospitalID         string             `json:"hospitalID"`
	TransactionDate    time.Time          `json:"transactionDate"`
	Type               GLTransactionType  `json:"type"`
	SourceDocumentType SourceDocumentType `json:"sourceDocumentType"`
	SourceDocumentID   string             `json:"sourceDocumentID"`
	TotalDebit         decimal.Decimal    `json:"totalDebit"`
	TotalCredit        decimal.Decimal    `json:"totalCredit"`
	// ExchangeRate is stored for foreign-currency documents; no revaluation is
	// performed on it.
	ExchangeRate          decimal.Decimal `json:"exchangeRate"`
	ReversalTransactionID *string         `json:"reversalTransactionID,omitempty"`
	AuditFields
}

// GLEntry is one line of a GL transaction, hitting exactly one account with
// either a debit or a credit (never both).
type GLEntry struct {
	EntryID            string             `json:"entryID"` // Primary Key (UUID)
	TransactionID      string             `json:"transactionID"`
	AccountID          string             `json:"accountID"`
	DebitAmount        decimal.Decimal    `json:"debitAmount"`
	CreditAmount       decimal.Decimal    `json:"creditAmount"`
	EntryDate          time.Time          `json:"entryDate"`
	Description        string             `json:"description"`
	SourceDocumentType SourceDocumentType `json:"sourceDocumentType"`
	SourceDocumentID   string             `json:"sourceDocumentID"`
	AuditFields
}

// RoleEntry is one posting line expressed against a semantic account role
// rather than a concrete account id. The poster resolves the role through the
// chart of accounts before writing.
type RoleEntry struct {
	Role        AccountRole     `json:"role"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostingInstruction describes one complete GL posting for a business document.
type PostingInstruction struct {
	HospitalID         string
	Type               GLTransactionType
	SourceDocumentType SourceDocumentType
	SourceDocumentID   string
	TransactionDate    time.Time
	ExchangeRate       decimal.Decimal
	Entries            []RoleEntry
}

// DocumentPostingState tracks whether a business document has been posted to
// the GL. It backs idempotent reposting and the posting-failed marker.
type DocumentPostingState struct {
	DocumentType    SourceDocumentType `json:"documentType"`
	DocumentID      string             `json:"documentID"`
	GLPosted        bool               `json:"glPosted"`
	GLTransactionID *string            `json:"glTransactionID,omitempty"`
	PostingError    *string            `json:"postingError,omitempty"`
	AuditFields
}
