package services

// ServiceContainer holds all the services and manages their dependencies.
type ServiceContainer struct {
	Tax               TaxCalculatorSvc
	CoA               ChartOfAccountsResolverSvc
	LedgerPoster      LedgerPosterSvcFacade
	SubledgerWriter   SubledgerWriterSvc
	PaymentAllocation PaymentAllocationSvcFacade
	PackagePlan       PackagePlanSvcFacade
	CreditNote        CreditNoteSvcFacade
}
