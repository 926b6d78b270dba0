package services

import (
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. The period service comes first: it owns the
// per-period write guard the journal engine serializes against.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Chart = NewChartOfAccountsService(repos.AccountRepo, domain.DefaultClassTypeMapping())
	container.Period = NewFiscalPeriodService(repos.PeriodRepo, repos.JournalRepo, repos.ReportingRepo, cfg.PeriodLockWait)
	container.Journal = NewJournalService(repos.JournalRepo, container.Chart, container.Period, cfg.AmountPrecision)
	container.Ledger = NewLedgerService(repos.JournalRepo, container.Chart)
	container.Reporting = NewReportingService(repos.ReportingRepo, container.Period)
	container.Reconciliation = NewReconciliationService(repos.ReconciliationRepo, repos.JournalRepo, container.Chart, container.Period, cfg.ReconDateToleranceDays)

	return container
}

// Compile-time interface checks for the service implementations.
var (
	_ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)
	_ portssvc.FiscalPeriodSvcFacade    = (*fiscalPeriodService)(nil)
	_ portssvc.JournalSvcFacade         = (*journalService)(nil)
	_ portssvc.LedgerSvcFacade          = (*ledgerService)(nil)
	_ portssvc.ReportingSvcFacade       = (*reportingService)(nil)
	_ portssvc.ReconciliationSvcFacade  = (*reconciliationService)(nil)
)
