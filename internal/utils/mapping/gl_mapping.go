package mapping

import (
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/curasoft/hospital_billing_app/internal/models"
)

// ToModelGLTransaction converts a domain GLTransaction to a model GLTransaction
func ToModelGLTransaction(d domain.GLTransaction) models.GLTransaction {
	return models.GLTransaction{
		TransactionID:         d.TransactionID,
		HospitalID:            d.HospitalID,
		TransactionDate:       d.TransactionDate,
		Type:                  string(d.Type),
		SourceDocumentType:    string(d.SourceDocumentType),
		SourceDocumentID:      d.SourceDocumentID,
		TotalDebit:            d.TotalDebit,
		TotalCredit:           d.TotalCredit,
		ExchangeRate:          d.ExchangeRate,
		ReversalTransactionID: d.ReversalTransactionID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGLTransaction converts a model GLTransaction to a domain GLTransaction
func ToDomainGLTransaction(m models.GLTransaction) domain.GLTransaction {
	return domain.GLTransaction{
		TransactionID:         m.TransactionID,
		HospitalID:            m.HospitalID,
		TransactionDate:       m.TransactionDate,
		Type:                  domain.GLTransactionType(m.Type),
		SourceDocumentType:    domain.SourceDocumentType(m.SourceDocumentType),
		SourceDocumentID:      m.SourceDocumentID,
		TotalDebit:            m.TotalDebit,
		TotalCredit:           m.TotalCredit,
		ExchangeRate:          m.ExchangeRate,
		ReversalTransactionID: m.ReversalTransactionID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelGLEntry converts a domain GLEntry to a model GLEntry
func ToModelGLEntry(d domain.GLEntry) models.GLEntry {
	return models.GLEntry{
		EntryID:            d.EntryID,
		TransactionID:      d.TransactionID,
		AccountID:          d.AccountID,
		DebitAmount:        d.DebitAmount,
		CreditAmount:       d.CreditAmount,
		EntryDate:          d.EntryDate,
		Description:        d.Description,
		SourceDocumentType: string(d.SourceDocumentType),
		SourceDocumentID:   d.SourceDocumentID,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGLEntry converts a model GLEntry to a domain GLEntry
func ToDomainGLEntry(m models.GLEntry) domain.GLEntry {
	return domain.GLEntry{
		EntryID:            m.EntryID,
		TransactionID:      m.TransactionID,
		AccountID:          m.AccountID,
		DebitAmount:        m.DebitAmount,
		CreditAmount:       m.CreditAmount,
		EntryDate:          m.EntryDate,
		Description:        m.Description,
		SourceDocumentType: domain.SourceDocumentType(m.SourceDocumentType),
		SourceDocumentID:   m.SourceDocumentID,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGLEntrySlice converts a slice of model GLEntries
func ToDomainGLEntrySlice(ms []models.GLEntry) []domain.GLEntry {
	ds := make([]domain.GLEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainGLEntry(m)
	}
	return ds
}

// ToDomainPostingState converts a model DocumentPostingState
func ToDomainPostingState(m models.DocumentPostingState) domain.DocumentPostingState {
	return domain.DocumentPostingState{
		DocumentType:    domain.SourceDocumentType(m.DocumentType),
		DocumentID:      m.DocumentID,
		GLPosted:        m.GLPosted,
		GLTransactionID: m.GLTransactionID,
		PostingError:    m.PostingError,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
