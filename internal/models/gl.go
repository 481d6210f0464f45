package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GLTransaction is the database representation of a GL transaction header.
type GLTransaction struct {
	TransactionID         string          `json:"transactionID"` // Primary Key (UUID)
	HospitalID            string          `json:"hospitalID"`
	TransactionDate       time.Time       `json:"transactionDate"`
	Type                  string          `json:"type"`
	SourceDocumentType    string          `json:"sourceDocumentType"`
	SourceDocumentID      string          `json:"sourceDocumentID"`
	TotalDebit            decimal.Decimal `json:"totalDebit"`
	TotalCredit           decimal.Decimal `json:"totalCredit"`
	ExchangeRate          decimal.Decimal `json:"exchangeRate"`
	ReversalTransactionID *string         `json:"reversalTransactionID,omitempty"`
	AuditFields
}

// GLEntry is the database representation of one GL transaction line.
type GLEntry struct {
	EntryID            string          `json:"entryID"` // Primary Key (UUID)
	TransactionID      string          `json:"transactionID"`
	AccountID          string          `json:"accountID"`
	DebitAmount        decimal.Decimal `json:"debitAmount"`
	CreditAmount       decimal.Decimal `json:"creditAmount"`
	EntryDate          time.Time       `json:"entryDate"`
	Description        string          `json:"description"`
	SourceDocumentType string          `json:"sourceDocumentType"`
	SourceDocumentID   string          `json:"sourceDocumentID"`
	AuditFields
}

// DocumentPostingState is the database representation of a document's posting
// marker row.
type DocumentPostingState struct {
	DocumentType    string  `json:"documentType"`
	DocumentID      string  `json:"documentID"`
	GLPosted        bool    `json:"glPosted"`
	GLTransactionID *string `json:"glTransactionID,omitempty"`
	PostingError    *string `json:"postingError,omitempty"`
	AuditFields
}
