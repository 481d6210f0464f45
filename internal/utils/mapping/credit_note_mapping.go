package mapping

import (
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/curasoft/hospital_billing_app/internal/models"
)

// ToModelCreditNote converts a domain PatientCreditNote to a model PatientCreditNote
func ToModelCreditNote(d domain.PatientCreditNote) models.PatientCreditNote {
	return models.PatientCreditNote{
		CreditNoteID:      d.CreditNoteID,
		CreditNoteNumber:  d.CreditNoteNumber,
		HospitalID:        d.HospitalID,
		BranchID:          d.BranchID,
		OriginalInvoiceID: d.OriginalInvoiceID,
		PlanID:            d.PlanID,
		PatientID:         d.PatientID,
		TotalAmount:       d.TotalAmount,
		RefundAmount:      d.RefundAmount,
		ReasonCode:        string(d.ReasonCode),
		ReasonDescription: d.ReasonDescription,
		Status:            string(d.Status),
		NoteDate:          d.NoteDate,
		GLTransactionID:   d.GLTransactionID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCreditNote converts a model PatientCreditNote to a domain PatientCreditNote
func ToDomainCreditNote(m models.PatientCreditNote) domain.PatientCreditNote {
	return domain.PatientCreditNote{
		CreditNoteID:      m.CreditNoteID,
		CreditNoteNumber:  m.CreditNoteNumber,
		HospitalID:        m.HospitalID,
		BranchID:          m.BranchID,
		OriginalInvoiceID: m.OriginalInvoiceID,
		PlanID:            m.PlanID,
		PatientID:         m.PatientID,
		TotalAmount:       m.TotalAmount,
		RefundAmount:      m.RefundAmount,
		ReasonCode:        domain.CreditNoteReason(m.ReasonCode),
		ReasonDescription: m.ReasonDescription,
		Status:            domain.CreditNoteStatus(m.Status),
		NoteDate:          m.NoteDate,
		GLTransactionID:   m.GLTransactionID,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
