package repositories

import (
	"context"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
)

// PeriodReader defines read operations for fiscal periods.
type PeriodReader interface {
	// FindPeriodByID retrieves a period by its unique identifier.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)

	// FindPeriodForDate retrieves the period containing the given date.
	FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)

	// FindOverlappingPeriod retrieves any period intersecting [start, end].
	FindOverlappingPeriod(ctx context.Context, start, end time.Time) (*domain.FiscalPeriod, error)

	// FindLockedPeriodAfter retrieves any locked period starting after the
	// given date, used to refuse reopening behind a locked boundary.
	FindLockedPeriodAfter(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)

	// ListPeriods retrieves all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error)

	// FindSnapshot retrieves the trial-balance snapshot captured when the
	// period was closed, or apperrors.ErrNotFound if none exists.
	FindSnapshot(ctx context.Context, periodID string) ([]domain.TrialBalanceRow, error)
}

// PeriodWriter defines write operations for fiscal periods. Status changes
// are compare-and-set: the expected current status is part of the update
// predicate, so a concurrent transition fails with apperrors.ErrConflict
// instead of silently overwriting.
type PeriodWriter interface {
	// SavePeriod persists a new period.
	SavePeriod(ctx context.Context, period domain.FiscalPeriod) error

	// ClosePeriod atomically transitions open -> closed and stores the
	// trial-balance snapshot in the same transaction.
	ClosePeriod(ctx context.Context, periodID string, closedBy string, closedAt time.Time, snapshot []domain.TrialBalanceRow) error

	// ReopenPeriod atomically transitions closed -> open and deletes the
	// snapshot in the same transaction.
	ReopenPeriod(ctx context.Context, periodID string, reopenedBy string, reopenedAt time.Time) error

	// LockPeriod atomically transitions closed -> locked. Irreversible.
	LockPeriod(ctx context.Context, periodID string, lockedBy string, lockedAt time.Time) error

	// NextPieceNumber issues the next sequential piece number for a fiscal
	// year. Issued numbers are never reused, even across restarts.
	NextPieceNumber(ctx context.Context, fiscalYear int) (int64, error)
}

// PeriodRepositoryFacade combines all period repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
