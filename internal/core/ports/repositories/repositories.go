package repositories

// RepositoryProvider groups the repositories the service container wires.
type RepositoryProvider struct {
	AccountRepo        AccountRepositoryFacade
	JournalRepo        JournalRepositoryFacade
	PeriodRepo         PeriodRepositoryFacade
	ReconciliationRepo ReconciliationRepositoryFacade
	ReportingRepo      ReportingRepository
}
