package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/utils/accounting"
)

var (
	ErrEntryUnbalanced      = errors.New("entry lines do not balance")
	ErrEntryMinAccounts     = errors.New("entry must affect at least two different accounts")
	ErrDescriptionMissing   = errors.New("entry description is required")
	ErrEntryNotDraft        = errors.New("entry is not a draft")
	ErrEntryNotValidated    = errors.New("entry is not validated")
	ErrEntryAlreadyReversed = errors.New("entry is already reversed")
)

// journalService implements the journal engine. Validation is the single
// gate between the mutable draft world and the immutable log: it re-checks
// everything the draft path checked, under the period write guard, because
// the draft may be stale by the time validation runs.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	chartSvc    portssvc.AccountResolverSvc
	periodSvc   portssvc.FiscalPeriodSvcFacade
	maxPlaces   int32
}

// NewJournalService creates a new journal engine service. maxPlaces caps the
// decimal places accepted on line amounts.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	chartSvc portssvc.AccountResolverSvc,
	periodSvc portssvc.FiscalPeriodSvcFacade,
	maxPlaces int32,
) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		chartSvc:    chartSvc,
		periodSvc:   periodSvc,
		maxPlaces:   maxPlaces,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines resolves the requested account codes, refuses inactive
// accounts, and materializes domain lines with account data snapshot in.
func (s *journalService) buildLines(ctx context.Context, entryID string, reqLines []dto.CreateEntryLineRequest, actorID string, now time.Time) ([]domain.JournalLine, error) {
	codes := make([]string, 0, len(reqLines))
	for _, l := range reqLines {
		codes = append(codes, l.AccountCode)
	}

	accounts, err := s.chartSvc.ResolveAccounts(ctx, codes)
	if err != nil {
		return nil, err
	}

	distinct := make(map[string]struct{}, len(codes))
	lines := make([]domain.JournalLine, len(reqLines))
	for i, l := range reqLines {
		account := accounts[l.AccountCode]
		if !account.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrAccountInactive, account.Code)
		}
		distinct[account.Code] = struct{}{}
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   account.AccountID,
			AccountCode: account.Code,
			AccountName: account.Name,
			Side:        l.Side,
			Amount:      l.Amount,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
	}
	if len(distinct) < 2 {
		return nil, ErrEntryMinAccounts
	}

	if err := accounting.ValidateEntryBalance(lines, s.maxPlaces); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryUnbalanced, err)
	}
	return lines, nil
}

// CreateDraft creates a balanced draft entry dated inside an open period.
// Drafts are mutable and invisible to ledger projections, but they still
// count against a close (a period with drafts refuses to close), so the
// write runs under the period guard: a close or halt that wins the lock
// first gates the draft out.
func (s *journalService) CreateDraft(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}

	entryDate := truncateToDay(req.Date)
	period, err := s.periodSvc.PeriodForDate(ctx, entryDate)
	if err != nil {
		return nil, err
	}
	if !period.Status.AcceptsPostings() {
		if period.Status == domain.PeriodLocked {
			return nil, fmt.Errorf("%w: period %s", ErrPeriodLocked, period.Name)
		}
		return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotOpen, period.Name, period.Status)
	}

	release, err := s.periodSvc.AcquirePeriodWrite(ctx, period.PeriodID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the guard: a close that committed between the first
	// read and lock acquisition must refuse the draft, or it would land
	// inside a period that already passed its no-drafts-remain check.
	period, err = s.periodSvc.GetPeriodByID(ctx, period.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.Status.AcceptsPostings() {
		return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotOpen, period.Name, period.Status)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines, err := s.buildLines(ctx, entryID, req.Lines, creatorID, now)
	if err != nil {
		return nil, err
	}

	pieceNumber := ""
	if req.PieceNumber != nil && *req.PieceNumber != "" {
		pieceNumber = *req.PieceNumber
	} else {
		pieceNumber, err = s.periodSvc.NextPieceNumber(ctx, period.FiscalYear)
		if err != nil {
			return nil, err
		}
	}

	entry := domain.JournalEntry{
		EntryID:       entryID,
		PieceNumber:   pieceNumber,
		FiscalYear:    period.FiscalYear,
		EntryDate:     entryDate,
		Description:   req.Description,
		Status:        domain.StatusDraft,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		Lines:         lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.journalRepo.SaveDraftEntry(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: piece number %s already used in fiscal year %d", apperrors.ErrDuplicate, pieceNumber, entry.FiscalYear)
		}
		s.LogError(ctx, err, "Failed to save draft entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save draft entry: %w", err)
	}

	s.LogInfo(ctx, "Draft entry created",
		slog.String("entry_id", entryID),
		slog.String("piece_number", pieceNumber),
		slog.Int("lines", len(lines)))
	return &entry, nil
}

// EditDraft updates a draft's date, description or lines. Non-nil request
// fields replace the current values; nil fields are left unchanged.
func (s *journalService) EditDraft(ctx context.Context, entryID string, req dto.UpdateEntryRequest, updatedBy string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: entry %s is %s", ErrEntryNotDraft, entry.PieceNumber, entry.Status)
	}

	now := time.Now().UTC()

	if req.Date != nil {
		newDate := truncateToDay(*req.Date)
		period, err := s.periodSvc.PeriodForDate(ctx, newDate)
		if err != nil {
			return nil, err
		}
		if !period.Status.AcceptsPostings() {
			return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotOpen, period.Name, period.Status)
		}

		// Moving the draft into another period is a write against that
		// period, so it takes the same guard as draft creation.
		release, err := s.periodSvc.AcquirePeriodWrite(ctx, period.PeriodID)
		if err != nil {
			return nil, err
		}
		defer release()

		period, err = s.periodSvc.GetPeriodByID(ctx, period.PeriodID)
		if err != nil {
			return nil, err
		}
		if !period.Status.AcceptsPostings() {
			return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotOpen, period.Name, period.Status)
		}
		entry.EntryDate = newDate
		if period.FiscalYear != entry.FiscalYear {
			// Piece numbers are scoped per fiscal year: crossing the
			// year boundary reissues the number under the new year.
			pieceNumber, err := s.periodSvc.NextPieceNumber(ctx, period.FiscalYear)
			if err != nil {
				return nil, err
			}
			entry.FiscalYear = period.FiscalYear
			entry.PieceNumber = pieceNumber
		}
	}

	if req.Description != nil {
		if *req.Description == "" {
			return nil, ErrDescriptionMissing
		}
		entry.Description = *req.Description
	}

	if req.Lines != nil {
		lines, err := s.buildLines(ctx, entry.EntryID, req.Lines, updatedBy, now)
		if err != nil {
			return nil, err
		}
		entry.Lines = lines
	}

	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = updatedBy

	if err := s.journalRepo.UpdateDraftEntry(ctx, *entry); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: entry %s is no longer a draft", ErrEntryNotDraft, entry.PieceNumber)
		}
		s.LogError(ctx, err, "Failed to update draft entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update draft entry: %w", err)
	}

	s.LogInfo(ctx, "Draft entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// DeleteDraft removes a draft entry and its lines. Validated entries are
// never deletable; correction goes through reversal.
func (s *journalService) DeleteDraft(ctx context.Context, entryID string, deletedBy string) error {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != domain.StatusDraft {
		return fmt.Errorf("%w: entry %s is %s", ErrEntryNotDraft, entry.PieceNumber, entry.Status)
	}

	if err := s.journalRepo.DeleteDraftEntry(ctx, entryID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: entry %s is no longer a draft", ErrEntryNotDraft, entry.PieceNumber)
		}
		s.LogError(ctx, err, "Failed to delete draft entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete draft entry: %w", err)
	}

	s.LogInfo(ctx, "Draft entry deleted", slog.String("entry_id", entryID), slog.String("deleted_by", deletedBy))
	return nil
}

// ValidateEntry flips a draft to its immutable validated state. The balance
// and the period gate are checked again under the period write guard, since
// either may have changed since the draft was created. The status flip
// itself is an atomic compare-and-set, so two concurrent validations of the
// same entry produce exactly one success.
func (s *journalService) ValidateEntry(ctx context.Context, entryID string, validatedBy string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: entry %s is %s", ErrEntryNotDraft, entry.PieceNumber, entry.Status)
	}

	period, err := s.periodSvc.PeriodForDate(ctx, entry.EntryDate)
	if err != nil {
		return nil, err
	}

	release, err := s.periodSvc.AcquirePeriodWrite(ctx, period.PeriodID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read the period under the guard: a close that committed before we
	// got the lock must gate earlier validations out.
	period, err = s.periodSvc.GetPeriodByID(ctx, period.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.Status.AcceptsPostings() {
		if period.Status == domain.PeriodLocked {
			return nil, fmt.Errorf("%w: period %s", ErrPeriodLocked, period.Name)
		}
		return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotOpen, period.Name, period.Status)
	}

	if err := accounting.ValidateEntryBalance(entry.Lines, s.maxPlaces); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntryUnbalanced, err)
	}

	now := time.Now().UTC()
	if err := s.journalRepo.MarkEntryValidated(ctx, entryID, validatedBy, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: entry %s was validated or deleted concurrently", apperrors.ErrConflict, entry.PieceNumber)
		}
		s.LogError(ctx, err, "Failed to validate entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to validate entry: %w", err)
	}

	entry.Status = domain.StatusValidated
	entry.ValidatedBy = &validatedBy
	entry.ValidatedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = validatedBy

	s.LogInfo(ctx, "Entry validated",
		slog.String("entry_id", entryID),
		slog.String("piece_number", entry.PieceNumber),
		slog.String("period", period.Name))
	return entry, nil
}

// ReverseEntry creates a system-generated validated entry mirroring the
// original with every line's side flipped, dated in an open period. The
// original's lines are never touched; only its status and the reversing
// entry reference change. An entry whose own period is locked cannot be
// reversed, because the status annotation would alter a locked year's
// records; correction then requires a fresh manual entry.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, req dto.ReverseEntryRequest, requestedBy string) (*domain.JournalEntry, error) {
	original, err := s.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.StatusReversed {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryAlreadyReversed, original.PieceNumber)
	}
	if original.Status != domain.StatusValidated {
		return nil, fmt.Errorf("%w: entry %s is %s", ErrEntryNotValidated, original.PieceNumber, original.Status)
	}

	originalPeriod, err := s.periodSvc.PeriodForDate(ctx, original.EntryDate)
	if err != nil {
		return nil, err
	}
	if originalPeriod.Status == domain.PeriodLocked {
		return nil, fmt.Errorf("%w: period %s holds entry %s", ErrPeriodLocked, originalPeriod.Name, original.PieceNumber)
	}

	reversalDate := truncateToDay(time.Now().UTC())
	if req.Date != nil {
		reversalDate = truncateToDay(*req.Date)
	}
	period, err := s.periodSvc.PeriodForDate(ctx, reversalDate)
	if err != nil {
		return nil, err
	}

	release, err := s.periodSvc.AcquirePeriodWrite(ctx, period.PeriodID)
	if err != nil {
		return nil, err
	}
	defer release()

	period, err = s.periodSvc.GetPeriodByID(ctx, period.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.Status.AcceptsPostings() {
		return nil, fmt.Errorf("%w: period %s is %s", ErrPeriodNotOpen, period.Name, period.Status)
	}

	pieceNumber, err := s.periodSvc.NextPieceNumber(ctx, period.FiscalYear)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	lines := make([]domain.JournalLine, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     reversalID,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Side:        l.Side.Opposite(),
			Amount:      l.Amount,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     requestedBy,
				LastUpdatedAt: now,
				LastUpdatedBy: requestedBy,
			},
		}
	}

	refType := "REVERSAL"
	reversal := domain.JournalEntry{
		EntryID:           reversalID,
		PieceNumber:       pieceNumber,
		FiscalYear:        period.FiscalYear,
		EntryDate:         reversalDate,
		Description:       fmt.Sprintf("Reversal of %s: %s", original.PieceNumber, req.Reason),
		Status:            domain.StatusValidated,
		IsSystemGenerated: true,
		ReferenceID:       &original.EntryID,
		ReferenceType:     &refType,
		OriginalEntryID:   &original.EntryID,
		ValidatedBy:       &requestedBy,
		ValidatedAt:       &now,
		Lines:             lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: requestedBy,
		},
	}

	if err := s.journalRepo.SaveReversal(ctx, reversal, original.EntryID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: entry %s was reversed concurrently", ErrEntryAlreadyReversed, original.PieceNumber)
		}
		s.LogError(ctx, err, "Failed to save reversal entry",
			slog.String("original_entry_id", original.EntryID),
			slog.String("reversal_entry_id", reversalID))
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}

	s.LogInfo(ctx, "Entry reversed",
		slog.String("original_piece", original.PieceNumber),
		slog.String("reversal_piece", pieceNumber))
	return &reversal, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	return entry, nil
}

// ListEntries retrieves a filtered, token-paginated entry listing.
func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	filter := portsrepo.ListEntriesFilter{
		From:      params.From,
		To:        params.To,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if params.Status != nil {
		status := domain.EntryStatus(*params.Status)
		switch status {
		case domain.StatusDraft, domain.StatusValidated, domain.StatusReversed:
			filter.Status = &status
		default:
			return nil, fmt.Errorf("%w: unknown entry status %q", apperrors.ErrValidation, *params.Status)
		}
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	resp := &dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entries[i])
	}
	return resp, nil
}
