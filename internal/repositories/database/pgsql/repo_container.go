package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository over one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        newPgxAccountRepository(dbPool),
		JournalRepo:        newPgxJournalRepository(dbPool),
		PeriodRepo:         newPgxPeriodRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		ReportingRepo:      newReportingRepository(dbPool),
	}
}
