package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

var (
	ErrPeriodNotOpen      = errors.New("period is not open")
	ErrPeriodNotClosed    = errors.New("period is not closed")
	ErrPeriodLocked       = errors.New("period is locked")
	ErrPeriodDatesInvalid = errors.New("period start date must not be after end date")
	ErrPeriodOverlap      = errors.New("period overlaps an existing period")
	ErrDraftsRemain       = errors.New("period has unresolved draft entries")
	ErrNoPeriodForDate    = errors.New("no fiscal period covers the date")
	ErrLockedBoundary     = errors.New("a later period is locked")
)

// fiscalPeriodService implements the fiscal period manager. It owns the
// per-period write guard: the journal engine acquires the same guard before
// validating, so closing and posting never interleave within one period.
type fiscalPeriodService struct {
	BaseService
	*periodGuard
	periodRepo    portsrepo.PeriodRepositoryFacade
	journalRepo   portsrepo.JournalReader
	reportingRepo portsrepo.ReportingRepository
}

// NewFiscalPeriodService creates a new fiscal period service. lockWait
// bounds how long a caller blocks on the per-period write lock.
func NewFiscalPeriodService(
	periodRepo portsrepo.PeriodRepositoryFacade,
	journalRepo portsrepo.JournalReader,
	reportingRepo portsrepo.ReportingRepository,
	lockWait time.Duration,
) portssvc.FiscalPeriodSvcFacade {
	return &fiscalPeriodService{
		periodGuard:   newPeriodGuard(lockWait),
		periodRepo:    periodRepo,
		journalRepo:   journalRepo,
		reportingRepo: reportingRepo,
	}
}

var _ portssvc.FiscalPeriodSvcFacade = (*fiscalPeriodService)(nil)

// OpenPeriod creates a new open period covering [startDate, endDate].
func (s *fiscalPeriodService) OpenPeriod(ctx context.Context, req dto.OpenPeriodRequest, openedBy string) (*domain.FiscalPeriod, error) {
	start := truncateToDay(req.StartDate)
	end := truncateToDay(req.EndDate)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrPeriodDatesInvalid, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	existing, err := s.periodRepo.FindOverlappingPeriod(ctx, start, end)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check period overlap: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrPeriodOverlap, existing.Name)
	}

	now := time.Now().UTC()
	period := domain.FiscalPeriod{
		PeriodID:   uuid.NewString(),
		Name:       req.Name,
		FiscalYear: start.Year(),
		StartDate:  start,
		EndDate:    end,
		Status:     domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     openedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: openedBy,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: period name %s", apperrors.ErrDuplicate, req.Name)
		}
		s.LogError(ctx, err, "Failed to save period", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	s.LogInfo(ctx, "Fiscal period opened", slog.String("period_id", period.PeriodID), slog.String("name", period.Name))
	return &period, nil
}

// ClosePeriod transitions open -> closed. It refuses while drafts remain in
// the period, then captures a trial-balance snapshot and persists both the
// transition and the snapshot atomically. A snapshot whose debit and credit
// totals disagree means the journal log itself is corrupt: the period's
// writes are halted and the close fails.
func (s *fiscalPeriodService) ClosePeriod(ctx context.Context, periodID string, closedBy string) (*domain.FiscalPeriod, error) {
	release, err := s.AcquirePeriodWrite(ctx, periodID)
	if err != nil {
		return nil, err
	}
	defer release()

	period, err := s.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if !period.Status.CanTransitionTo(domain.PeriodClosed) {
		return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotOpen, period.Name, period.Status)
	}

	drafts, err := s.journalRepo.CountDraftsInRange(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count drafts in period %s: %w", period.Name, err)
	}
	if drafts > 0 {
		return nil, fmt.Errorf("%w: %d draft(s) dated inside %s must be validated or deleted first", ErrDraftsRemain, drafts, period.Name)
	}

	snapshot, err := s.reportingRepo.GetTrialBalanceData(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute closing trial balance for period %s: %w", period.Name, err)
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range snapshot {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		reason := fmt.Sprintf("closing trial balance out of balance: debit %s, credit %s", totalDebit, totalCredit)
		s.HaltPeriodWrites(periodID, reason)
		s.LogError(ctx, apperrors.ErrInternal, "Closing trial balance out of balance, period writes halted",
			slog.String("period_id", periodID),
			slog.String("debit", totalDebit.String()),
			slog.String("credit", totalCredit.String()))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInternal, reason)
	}

	now := time.Now().UTC()
	if err := s.periodRepo.ClosePeriod(ctx, periodID, closedBy, now, snapshot); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: period %s changed concurrently", apperrors.ErrConflict, period.Name)
		}
		s.LogError(ctx, err, "Failed to close period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to close period %s: %w", period.Name, err)
	}

	period.Status = domain.PeriodClosed
	period.ClosedAt = &now
	period.ClosedBy = &closedBy
	period.LastUpdatedAt = now
	period.LastUpdatedBy = closedBy

	s.LogInfo(ctx, "Fiscal period closed",
		slog.String("period_id", periodID),
		slog.String("name", period.Name),
		slog.Int("snapshot_rows", len(snapshot)))
	return period, nil
}

// LockPeriod transitions closed -> locked. Locking is irreversible; no code
// path transitions out of the locked state.
func (s *fiscalPeriodService) LockPeriod(ctx context.Context, periodID string, lockedBy string) (*domain.FiscalPeriod, error) {
	release, err := s.AcquirePeriodWrite(ctx, periodID)
	if err != nil {
		return nil, err
	}
	defer release()

	period, err := s.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status == domain.PeriodLocked {
		return nil, fmt.Errorf("%w: period %s", ErrPeriodLocked, period.Name)
	}
	if !period.Status.CanTransitionTo(domain.PeriodLocked) {
		return nil, fmt.Errorf("%w: period %s is %s, close it first", ErrPeriodNotClosed, period.Name, period.Status)
	}

	now := time.Now().UTC()
	if err := s.periodRepo.LockPeriod(ctx, periodID, lockedBy, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: period %s changed concurrently", apperrors.ErrConflict, period.Name)
		}
		s.LogError(ctx, err, "Failed to lock period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to lock period %s: %w", period.Name, err)
	}

	period.Status = domain.PeriodLocked
	period.LockedAt = &now
	period.LockedBy = &lockedBy
	period.LastUpdatedAt = now
	period.LastUpdatedBy = lockedBy

	s.LogInfo(ctx, "Fiscal period locked", slog.String("period_id", periodID), slog.String("name", period.Name))
	return period, nil
}

// ReopenPeriod transitions closed -> open, deleting the close snapshot. A
// closed period cannot reopen while any later period is locked: the locked
// boundary fixes everything before it.
func (s *fiscalPeriodService) ReopenPeriod(ctx context.Context, periodID string, reopenedBy string) (*domain.FiscalPeriod, error) {
	release, err := s.AcquirePeriodWrite(ctx, periodID)
	if err != nil {
		return nil, err
	}
	defer release()

	period, err := s.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status == domain.PeriodLocked {
		return nil, fmt.Errorf("%w: period %s", ErrPeriodLocked, period.Name)
	}
	if !period.Status.CanTransitionTo(domain.PeriodOpen) {
		return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotClosed, period.Name, period.Status)
	}

	locked, err := s.periodRepo.FindLockedPeriodAfter(ctx, period.EndDate)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for later locked periods: %w", err)
	}
	if locked != nil {
		return nil, fmt.Errorf("%w: %s is locked, %s cannot reopen", ErrLockedBoundary, locked.Name, period.Name)
	}

	now := time.Now().UTC()
	if err := s.periodRepo.ReopenPeriod(ctx, periodID, reopenedBy, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: period %s changed concurrently", apperrors.ErrConflict, period.Name)
		}
		s.LogError(ctx, err, "Failed to reopen period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to reopen period %s: %w", period.Name, err)
	}

	period.Status = domain.PeriodOpen
	period.ClosedAt = nil
	period.ClosedBy = nil
	period.LastUpdatedAt = now
	period.LastUpdatedBy = reopenedBy

	s.LogInfo(ctx, "Fiscal period reopened", slog.String("period_id", periodID), slog.String("name", period.Name))
	return period, nil
}

// GetPeriodByID retrieves a period by its identifier.
func (s *fiscalPeriodService) GetPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: period %s", apperrors.ErrNotFound, periodID)
		}
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	return period, nil
}

// PeriodForDate retrieves the period containing the given date.
func (s *fiscalPeriodService) PeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, truncateToDay(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoPeriodForDate, date.Format(time.DateOnly))
		}
		return nil, fmt.Errorf("failed to find period for date %s: %w", date.Format(time.DateOnly), err)
	}
	return period, nil
}

// ListPeriods retrieves all periods ordered by start date.
func (s *fiscalPeriodService) ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	if periods == nil {
		return []domain.FiscalPeriod{}, nil
	}
	return periods, nil
}

// GetSnapshot retrieves the trial-balance snapshot captured at close.
func (s *fiscalPeriodService) GetSnapshot(ctx context.Context, periodID string) ([]domain.TrialBalanceRow, error) {
	snapshot, err := s.periodRepo.FindSnapshot(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no snapshot for period %s", apperrors.ErrNotFound, periodID)
		}
		return nil, fmt.Errorf("failed to find snapshot for period %s: %w", periodID, err)
	}
	return snapshot, nil
}

// NextPieceNumber issues the next sequential piece number for a fiscal year,
// formatted as <year>-<six-digit sequence>.
func (s *fiscalPeriodService) NextPieceNumber(ctx context.Context, fiscalYear int) (string, error) {
	seq, err := s.periodRepo.NextPieceNumber(ctx, fiscalYear)
	if err != nil {
		return "", fmt.Errorf("failed to issue piece number for fiscal year %d: %w", fiscalYear, err)
	}
	return fmt.Sprintf("%d-%06d", fiscalYear, seq), nil
}

// truncateToDay normalizes a timestamp to its UTC calendar date. Periods and
// entry dates are day-granular.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
