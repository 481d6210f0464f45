package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubledgerEntry is the database representation of one AR/AP row.
type SubledgerEntry struct {
	EntryID             string          `json:"entryID"` // Primary Key (UUID)
	HospitalID          string          `json:"hospitalID"`
	BranchID            string          `json:"branchID"`
	TransactionDate     time.Time       `json:"transactionDate"`
	EntryType           string          `json:"entryType"`
	ReferenceType       string          `json:"referenceType"`
	ReferenceID         string          `json:"referenceID"`
	ReferenceLineItemID *string         `json:"referenceLineItemID,omitempty"`
	CounterpartyType    string          `json:"counterpartyType"`
	CounterpartyID      string          `json:"counterpartyID"`
	DebitAmount         decimal.Decimal `json:"debitAmount"`
	CreditAmount        decimal.Decimal `json:"creditAmount"`
	CurrentBalance      decimal.Decimal `json:"currentBalance"`
	GLTransactionID     string          `json:"glTransactionID"`
	AuditFields
}
