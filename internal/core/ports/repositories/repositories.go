package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	GLRepo           GLRepositoryWithTx
	PostingStateRepo PostingStateRepositoryFacade
	SubledgerRepo    SubledgerRepositoryWithTx
	CoARepo          ChartOfAccountsRepositoryFacade
	InvoiceRepo      InvoiceRepositoryFacade
	PlanRepo         PlanRepositoryWithTx
	CreditNoteRepo   CreditNoteRepositoryFacade
}
