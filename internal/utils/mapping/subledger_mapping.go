package mapping

import (
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/curasoft/hospital_billing_app/internal/models"
)

// ToModelSubledgerEntry converts a domain SubledgerEntry to a model SubledgerEntry
func ToModelSubledgerEntry(d domain.SubledgerEntry) models.SubledgerEntry {
	return models.SubledgerEntry{
		EntryID:             d.EntryID,
		HospitalID:          d.HospitalID,
		BranchID:            d.BranchID,
		TransactionDate:     d.TransactionDate,
		EntryType:           string(d.EntryType),
		ReferenceType:       d.ReferenceType,
		ReferenceID:         d.ReferenceID,
		ReferenceLineItemID: d.ReferenceLineItemID,
		CounterpartyType:    string(d.CounterpartyType),
		CounterpartyID:      d.CounterpartyID,
		DebitAmount:         d.DebitAmount,
		CreditAmount:        d.CreditAmount,
		CurrentBalance:      d.CurrentBalance,
		GLTransactionID:     d.GLTransactionID,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSubledgerEntry converts a model SubledgerEntry to a domain SubledgerEntry
func ToDomainSubledgerEntry(m models.SubledgerEntry) domain.SubledgerEntry {
	return domain.SubledgerEntry{
		EntryID:             m.EntryID,
		HospitalID:          m.HospitalID,
		BranchID:            m.BranchID,
		TransactionDate:     m.TransactionDate,
		EntryType:           domain.SubledgerEntryType(m.EntryType),
		ReferenceType:       m.ReferenceType,
		ReferenceID:         m.ReferenceID,
		ReferenceLineItemID: m.ReferenceLineItemID,
		CounterpartyType:    domain.CounterpartyType(m.CounterpartyType),
		CounterpartyID:      m.CounterpartyID,
		DebitAmount:         m.DebitAmount,
		CreditAmount:        m.CreditAmount,
		CurrentBalance:      m.CurrentBalance,
		GLTransactionID:     m.GLTransactionID,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSubledgerEntrySlice converts a slice of model SubledgerEntries
func ToDomainSubledgerEntrySlice(ms []models.SubledgerEntry) []domain.SubledgerEntry {
	ds := make([]domain.SubledgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSubledgerEntry(m)
	}
	return ds
}
