package services

import (
	"context"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

// PeriodResolverSvc is the narrow read interface other services use to map
// dates to periods.
type PeriodResolverSvc interface {
	// GetPeriodByID retrieves a period by its identifier.
	GetPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)

	// PeriodForDate retrieves the period containing the given date, or
	// apperrors.ErrNotFound if no period covers it.
	PeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)
}

// PeriodGuardSvc serializes mutations within one fiscal period. Acquire
// blocks for at most the configured bounded wait and fails with
// apperrors.ErrBusy on timeout, never deadlocking the caller. A period whose
// writes are halted fails immediately with an apperrors.ErrInternal wrap.
type PeriodGuardSvc interface {
	// AcquirePeriodWrite takes the period's write lock. The returned release
	// function must be called exactly once.
	AcquirePeriodWrite(ctx context.Context, periodID string) (release func(), err error)

	// HaltPeriodWrites blocks all further writes to a period after an
	// internal-consistency failure, pending investigation.
	HaltPeriodWrites(periodID string, reason string)

	// PeriodWritesHalted reports whether a period's writes are halted and why.
	PeriodWritesHalted(periodID string) (reason string, halted bool)
}

// PieceNumberSvc issues per-fiscal-year piece numbers. Issuance happens
// under the same serialization as period mutations so concurrent posting
// never observes a duplicate.
type PieceNumberSvc interface {
	NextPieceNumber(ctx context.Context, fiscalYear int) (string, error)
}

// FiscalPeriodSvcFacade defines the fiscal period manager operations.
type FiscalPeriodSvcFacade interface {
	PeriodResolverSvc
	PeriodGuardSvc
	PieceNumberSvc

	// OpenPeriod creates a new open period covering [startDate, endDate].
	OpenPeriod(ctx context.Context, req dto.OpenPeriodRequest, openedBy string) (*domain.FiscalPeriod, error)

	// ClosePeriod transitions open -> closed, capturing a trial-balance
	// snapshot for audit. Fails while draft entries remain in the period.
	ClosePeriod(ctx context.Context, periodID string, closedBy string) (*domain.FiscalPeriod, error)

	// LockPeriod transitions closed -> locked. Irreversible.
	LockPeriod(ctx context.Context, periodID string, lockedBy string) (*domain.FiscalPeriod, error)

	// ReopenPeriod transitions closed -> open, invalidating the snapshot.
	ReopenPeriod(ctx context.Context, periodID string, reopenedBy string) (*domain.FiscalPeriod, error)

	// ListPeriods retrieves all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error)

	// GetSnapshot retrieves the trial-balance snapshot captured at close.
	GetSnapshot(ctx context.Context, periodID string) ([]domain.TrialBalanceRow, error)
}
