package mapping

import (
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/curasoft/hospital_billing_app/internal/models"
)

// ToModelPlan converts a domain PackagePaymentPlan to a model PackagePaymentPlan
func ToModelPlan(d domain.PackagePaymentPlan) models.PackagePaymentPlan {
	return models.PackagePaymentPlan{
		PlanID:            d.PlanID,
		HospitalID:        d.HospitalID,
		BranchID:          d.BranchID,
		PatientID:         d.PatientID,
		InvoiceID:         d.InvoiceID,
		LineItemID:        d.LineItemID,
		PackageID:         d.PackageID,
		TotalAmount:       d.TotalAmount,
		PaidAmount:        d.PaidAmount,
		TotalSessions:     d.TotalSessions,
		CompletedSessions: d.CompletedSessions,
		InstallmentCount:  d.InstallmentCount,
		Frequency:         string(d.Frequency),
		Status:            string(d.Status),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPlan converts a model PackagePaymentPlan to a domain PackagePaymentPlan
func ToDomainPlan(m models.PackagePaymentPlan) domain.PackagePaymentPlan {
	return domain.PackagePaymentPlan{
		PlanID:            m.PlanID,
		HospitalID:        m.HospitalID,
		BranchID:          m.BranchID,
		PatientID:         m.PatientID,
		InvoiceID:         m.InvoiceID,
		LineItemID:        m.LineItemID,
		PackageID:         m.PackageID,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		TotalSessions:     m.TotalSessions,
		CompletedSessions: m.CompletedSessions,
		InstallmentCount:  m.InstallmentCount,
		Frequency:         domain.InstallmentFrequency(m.Frequency),
		Status:            domain.PlanStatus(m.Status),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInstallment converts a domain InstallmentPayment to a model InstallmentPayment
func ToModelInstallment(d domain.InstallmentPayment) models.InstallmentPayment {
	return models.InstallmentPayment{
		InstallmentID:     d.InstallmentID,
		PlanID:            d.PlanID,
		InstallmentNumber: d.InstallmentNumber,
		DueDate:           d.DueDate,
		Amount:            d.Amount,
		PaidAmount:        d.PaidAmount,
		Status:            string(d.Status),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInstallment converts a model InstallmentPayment to a domain InstallmentPayment
func ToDomainInstallment(m models.InstallmentPayment) domain.InstallmentPayment {
	return domain.InstallmentPayment{
		InstallmentID:     m.InstallmentID,
		PlanID:            m.PlanID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		Amount:            m.Amount,
		PaidAmount:        m.PaidAmount,
		Status:            domain.InstallmentStatus(m.Status),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInstallmentSlice converts a slice of model InstallmentPayments
func ToDomainInstallmentSlice(ms []models.InstallmentPayment) []domain.InstallmentPayment {
	ds := make([]domain.InstallmentPayment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInstallment(m)
	}
	return ds
}

// ToModelSession converts a domain PackageSession to a model PackageSession
func ToModelSession(d domain.PackageSession) models.PackageSession {
	return models.PackageSession{
		SessionID:      d.SessionID,
		PlanID:         d.PlanID,
		SessionNumber:  d.SessionNumber,
		SessionDate:    d.SessionDate,
		CompletionDate: d.CompletionDate,
		Status:         string(d.Status),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSession converts a model PackageSession to a domain PackageSession
func ToDomainSession(m models.PackageSession) domain.PackageSession {
	return domain.PackageSession{
		SessionID:      m.SessionID,
		PlanID:         m.PlanID,
		SessionNumber:  m.SessionNumber,
		SessionDate:    m.SessionDate,
		CompletionDate: m.CompletionDate,
		Status:         domain.SessionStatus(m.Status),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSessionSlice converts a slice of model PackageSessions
func ToDomainSessionSlice(ms []models.PackageSession) []domain.PackageSession {
	ds := make([]domain.PackageSession, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSession(m)
	}
	return ds
}
