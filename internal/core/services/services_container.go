package services

import (
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
)

// NewServiceContainer initializes all services with their dependencies wired.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Leaf services first; the posting stack builds on them.
	container.Tax = NewTaxCalculator()
	container.CoA = NewChartOfAccountsResolver(repos.CoARepo)
	container.SubledgerWriter = NewSubledgerWriter(repos.SubledgerRepo)

	container.LedgerPoster = NewLedgerPoster(
		repos.GLRepo,
		repos.PostingStateRepo,
		repos.InvoiceRepo,
		container.CoA,
		container.SubledgerWriter,
	)

	container.CreditNote = NewCreditNoteService(
		repos.CreditNoteRepo,
		container.LedgerPoster,
		container.SubledgerWriter,
	)

	container.PaymentAllocation = NewPaymentAllocationService(
		repos.GLRepo,
		repos.PostingStateRepo,
		repos.InvoiceRepo,
		repos.SubledgerRepo,
		repos.PlanRepo,
		container.LedgerPoster,
		container.SubledgerWriter,
	)

	container.PackagePlan = NewPackagePlanService(
		repos.GLRepo,
		repos.PlanRepo,
		repos.InvoiceRepo,
		repos.PostingStateRepo,
		container.CreditNote,
	)

	return container
}
