package dto

import (
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingResponse returns the GL reference for a posted document.
type PostingResponse struct {
	GLTransactionID string `json:"glTransactionID"`
	AlreadyPosted   bool   `json:"alreadyPosted"`
}

// GLEntryResponse is one line of a GL transaction.
type GLEntryResponse struct {
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
}

// GLTransactionResponse is a GL transaction header with entries.
type GLTransactionResponse struct {
	TransactionID   string            `json:"transactionID"`
	Type            string            `json:"type"`
	TransactionDate time.Time         `json:"transactionDate"`
	TotalDebit      decimal.Decimal   `json:"totalDebit"`
	TotalCredit     decimal.Decimal   `json:"totalCredit"`
	Entries         []GLEntryResponse `json:"entries,omitempty"`
}

// ToGLTransactionResponse converts a domain GL transaction and its entries.
func ToGLTransactionResponse(txn *domain.GLTransaction, entries []domain.GLEntry) GLTransactionResponse {
	resp := GLTransactionResponse{
		TransactionID:   txn.TransactionID,
		Type:            string(txn.Type),
		TransactionDate: txn.TransactionDate,
		TotalDebit:      txn.TotalDebit,
		TotalCredit:     txn.TotalCredit,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, GLEntryResponse{
			EntryID:      e.EntryID,
			AccountID:    e.AccountID,
			DebitAmount:  e.DebitAmount,
			CreditAmount: e.CreditAmount,
			Description:  e.Description,
		})
	}
	return resp
}

// SubledgerEntryResponse is one row of a patient/supplier ledger statement.
type SubledgerEntryResponse struct {
	EntryID         string          `json:"entryID"`
	TransactionDate time.Time       `json:"transactionDate"`
	EntryType       string          `json:"entryType"`
	ReferenceType   string          `json:"referenceType"`
	ReferenceID     string          `json:"referenceID"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
}

// ListSubledgerResponse is a paginated ledger statement.
type ListSubledgerResponse struct {
	Entries   []SubledgerEntryResponse `json:"entries"`
	NextToken *string                  `json:"nextToken,omitempty"`
}

// ToSubledgerEntryResponses converts domain subledger entries.
func ToSubledgerEntryResponses(entries []domain.SubledgerEntry) []SubledgerEntryResponse {
	responses := make([]SubledgerEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = SubledgerEntryResponse{
			EntryID:         e.EntryID,
			TransactionDate: e.TransactionDate,
			EntryType:       string(e.EntryType),
			ReferenceType:   e.ReferenceType,
			ReferenceID:     e.ReferenceID,
			DebitAmount:     e.DebitAmount,
			CreditAmount:    e.CreditAmount,
			CurrentBalance:  e.CurrentBalance,
		}
	}
	return responses
}
