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
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/utils/accounting"
)

var (
	ErrAlreadyMatched = errors.New("side is already part of a match")
	ErrAccountsDiffer = errors.New("journal line is not on the bank transaction's account")
)

// reconciliationService implements the bank reconciliation matcher for one
// bank account within a fiscal period. Matching never modifies the journal:
// a discrepancy is reported, and fixing it means posting a correcting entry
// through the journal engine.
type reconciliationService struct {
	BaseService
	reconRepo     portsrepo.ReconciliationRepositoryFacade
	journalRepo   portsrepo.JournalReader
	chartSvc      portssvc.AccountResolverSvc
	periodSvc     portssvc.PeriodResolverSvc
	toleranceDays int
}

// NewReconciliationService creates a new reconciliation service.
// toleranceDays is the auto-match window around each bank transaction date.
func NewReconciliationService(
	reconRepo portsrepo.ReconciliationRepositoryFacade,
	journalRepo portsrepo.JournalReader,
	chartSvc portssvc.AccountResolverSvc,
	periodSvc portssvc.PeriodResolverSvc,
	toleranceDays int,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconRepo:     reconRepo,
		journalRepo:   journalRepo,
		chartSvc:      chartSvc,
		periodSvc:     periodSvc,
		toleranceDays: toleranceDays,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// requirePeriodNotLocked loads the period and refuses reconciliation writes
// once it is locked. Closed periods still reconcile: matching is bookkeeping
// about the journal, not a change to it.
func (s *reconciliationService) requirePeriodNotLocked(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	period, err := s.periodSvc.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status == domain.PeriodLocked {
		return nil, fmt.Errorf("%w: period %s", ErrPeriodLocked, period.Name)
	}
	return period, nil
}

// IngestTransactions stores a batch of bank statement transactions for a
// period and bank account. Bank transactions are external facts: they are
// appended as-is and never edited afterwards.
func (s *reconciliationService) IngestTransactions(ctx context.Context, req dto.IngestBankTransactionsRequest, ingestedBy string) ([]dto.BankTransactionResponse, error) {
	period, err := s.requirePeriodNotLocked(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if _, err := s.chartSvc.ResolveAccount(ctx, req.AccountCode); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactions := make([]domain.BankTransaction, len(req.Transactions))
	for i, t := range req.Transactions {
		date := truncateToDay(t.Date)
		if !period.Contains(date) {
			return nil, fmt.Errorf("%w: transaction dated %s falls outside period %s", apperrors.ErrValidation, date.Format(time.DateOnly), period.Name)
		}
		transactions[i] = domain.BankTransaction{
			TransactionID: uuid.NewString(),
			PeriodID:      req.PeriodID,
			AccountCode:   req.AccountCode,
			Date:          date,
			Label:         t.Label,
			Amount:        t.Amount,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     ingestedBy,
				LastUpdatedAt: now,
				LastUpdatedBy: ingestedBy,
			},
		}
	}

	if err := s.reconRepo.SaveBankTransactions(ctx, transactions); err != nil {
		s.LogError(ctx, err, "Failed to save bank transactions", slog.String("period_id", req.PeriodID))
		return nil, fmt.Errorf("failed to save bank transactions: %w", err)
	}

	s.LogInfo(ctx, "Bank transactions ingested",
		slog.String("period_id", req.PeriodID),
		slog.String("account_code", req.AccountCode),
		slog.Int("count", len(transactions)))

	responses := make([]dto.BankTransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = dto.ToBankTransactionResponse(&transactions[i])
	}
	return responses, nil
}

// AutoMatch pairs unmatched bank transactions with unreconciled ledger lines
// on exact amount within the date tolerance. A bank transaction with zero
// candidates stays unmatched; one with several stays unmatched too, because
// guessing wrong is worse than asking a human. Each ledger line is consumed
// at most once per run, in bank statement order, so reruns over the same
// data produce the same pairs.
func (s *reconciliationService) AutoMatch(ctx context.Context, periodID string, accountCode string, matchedBy string) (*dto.AutoMatchResponse, error) {
	if _, err := s.requirePeriodNotLocked(ctx, periodID); err != nil {
		return nil, err
	}

	bankTxns, err := s.reconRepo.ListBankTransactionsByPeriod(ctx, periodID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched bank transactions: %w", err)
	}
	candidates, err := s.reconRepo.ListUnreconciledLines(ctx, periodID, accountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled ledger lines: %w", err)
	}

	resp := &dto.AutoMatchResponse{
		PeriodID: periodID,
		Matched:  []dto.MatchResponse{},
	}

	tolerance := time.Duration(s.toleranceDays) * 24 * time.Hour
	used := make(map[string]struct{})
	now := time.Now().UTC()

	for i := range bankTxns {
		txn := &bankTxns[i]
		if txn.AccountCode != accountCode {
			continue
		}

		var found *domain.PostedLine
		ambiguous := false
		for j := range candidates {
			line := &candidates[j]
			if _, taken := used[line.LineID]; taken {
				continue
			}
			if !accounting.SignedBankAmount(line.JournalLine).Equal(txn.Amount) {
				continue
			}
			gap := line.EntryDate.Sub(txn.Date)
			if gap < 0 {
				gap = -gap
			}
			if gap > tolerance {
				continue
			}
			if found != nil {
				ambiguous = true
				break
			}
			found = line
		}

		switch {
		case ambiguous:
			resp.AmbiguousBank++
		case found == nil:
			resp.UnmatchedBank++
		default:
			match := domain.ReconciliationMatch{
				MatchID:           uuid.NewString(),
				BankTransactionID: txn.TransactionID,
				JournalLineID:     found.LineID,
				Manual:            false,
				MatchedBy:         matchedBy,
				MatchedAt:         now,
			}
			if err := s.reconRepo.SaveMatch(ctx, match); err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					// Lost a race against a concurrent matcher; the
					// transaction is no longer ours to pair.
					resp.UnmatchedBank++
					continue
				}
				s.LogError(ctx, err, "Failed to save auto match", slog.String("bank_transaction_id", txn.TransactionID))
				return nil, fmt.Errorf("failed to save match: %w", err)
			}
			used[found.LineID] = struct{}{}
			resp.Matched = append(resp.Matched, dto.ToMatchResponse(&match))
		}
	}

	s.LogInfo(ctx, "Auto match completed",
		slog.String("period_id", periodID),
		slog.String("account_code", accountCode),
		slog.Int("matched", len(resp.Matched)),
		slog.Int("unmatched", resp.UnmatchedBank),
		slog.Int("ambiguous", resp.AmbiguousBank))
	return resp, nil
}

// ManualMatch pairs one bank transaction with one journal line regardless of
// amount or date. Both sides must be on the same account and neither may be
// part of an existing match.
func (s *reconciliationService) ManualMatch(ctx context.Context, req dto.ManualMatchRequest, matchedBy string) (*dto.MatchResponse, error) {
	txn, err := s.reconRepo.FindBankTransactionByID(ctx, req.BankTransactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: bank transaction %s", apperrors.ErrNotFound, req.BankTransactionID)
		}
		return nil, fmt.Errorf("failed to find bank transaction: %w", err)
	}
	if _, err := s.requirePeriodNotLocked(ctx, txn.PeriodID); err != nil {
		return nil, err
	}

	line, err := s.reconRepo.FindPostedLineByID(ctx, req.JournalLineID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: posted journal line %s", apperrors.ErrNotFound, req.JournalLineID)
		}
		return nil, fmt.Errorf("failed to find journal line: %w", err)
	}
	if line.AccountCode != txn.AccountCode {
		return nil, fmt.Errorf("%w: line is on %s, transaction on %s", ErrAccountsDiffer, line.AccountCode, txn.AccountCode)
	}

	if existing, err := s.reconRepo.FindMatchByBankTransaction(ctx, txn.TransactionID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check bank transaction match: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: bank transaction %s", ErrAlreadyMatched, txn.TransactionID)
	}
	if existing, err := s.reconRepo.FindMatchByJournalLine(ctx, line.LineID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check journal line match: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: journal line %s", ErrAlreadyMatched, line.LineID)
	}

	match := domain.ReconciliationMatch{
		MatchID:           uuid.NewString(),
		BankTransactionID: txn.TransactionID,
		JournalLineID:     line.LineID,
		Manual:            true,
		MatchedBy:         matchedBy,
		MatchedAt:         time.Now().UTC(),
	}
	if err := s.reconRepo.SaveMatch(ctx, match); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: one side was matched concurrently", ErrAlreadyMatched)
		}
		s.LogError(ctx, err, "Failed to save manual match", slog.String("bank_transaction_id", txn.TransactionID))
		return nil, fmt.Errorf("failed to save match: %w", err)
	}

	s.LogInfo(ctx, "Manual match created",
		slog.String("bank_transaction_id", txn.TransactionID),
		slog.String("journal_line_id", line.LineID))
	resp := dto.ToMatchResponse(&match)
	return &resp, nil
}

// Unmatch removes a match, returning both sides to the unmatched pool.
func (s *reconciliationService) Unmatch(ctx context.Context, matchID string, requestedBy string) error {
	match, err := s.reconRepo.FindMatchByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: match %s", apperrors.ErrNotFound, matchID)
		}
		return fmt.Errorf("failed to find match: %w", err)
	}

	txn, err := s.reconRepo.FindBankTransactionByID(ctx, match.BankTransactionID)
	if err != nil {
		return fmt.Errorf("failed to find bank transaction for match %s: %w", matchID, err)
	}
	if _, err := s.requirePeriodNotLocked(ctx, txn.PeriodID); err != nil {
		return err
	}

	if err := s.reconRepo.DeleteMatch(ctx, matchID); err != nil {
		s.LogError(ctx, err, "Failed to delete match", slog.String("match_id", matchID))
		return fmt.Errorf("failed to delete match: %w", err)
	}

	s.LogInfo(ctx, "Match removed", slog.String("match_id", matchID), slog.String("requested_by", requestedBy))
	return nil
}

// ListUnmatched retrieves both sides still awaiting resolution.
func (s *reconciliationService) ListUnmatched(ctx context.Context, periodID string, accountCode string) (*dto.UnmatchedResponse, error) {
	bankTxns, err := s.reconRepo.ListBankTransactionsByPeriod(ctx, periodID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched bank transactions: %w", err)
	}
	lines, err := s.reconRepo.ListUnreconciledLines(ctx, periodID, accountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled ledger lines: %w", err)
	}

	resp := &dto.UnmatchedResponse{
		PeriodID:         periodID,
		BankTransactions: []dto.BankTransactionResponse{},
		JournalLines:     []dto.EntryLineResponse{},
	}
	for i := range bankTxns {
		if bankTxns[i].AccountCode != accountCode {
			continue
		}
		resp.BankTransactions = append(resp.BankTransactions, dto.ToBankTransactionResponse(&bankTxns[i]))
	}
	for i := range lines {
		resp.JournalLines = append(resp.JournalLines, dto.ToEntryLineResponse(&lines[i].JournalLine))
	}
	return resp, nil
}

// ReconciliationStatus compares the bank statement total with the ledger
// activity on the bank account for the period. Balanced means a difference
// of exactly zero; anything else is reported as a signed discrepancy and
// never silently absorbed.
func (s *reconciliationService) ReconciliationStatus(ctx context.Context, periodID string, accountCode string) (*dto.ReconciliationStatusResponse, error) {
	period, err := s.periodSvc.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	allTxns, err := s.reconRepo.ListBankTransactionsByPeriod(ctx, periodID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	unmatchedTxns, err := s.reconRepo.ListBankTransactionsByPeriod(ctx, periodID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched bank transactions: %w", err)
	}
	unreconciled, err := s.reconRepo.ListUnreconciledLines(ctx, periodID, accountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled ledger lines: %w", err)
	}

	bankBalance := decimal.Zero
	total, unmatched := 0, 0
	for i := range allTxns {
		if allTxns[i].AccountCode != accountCode {
			continue
		}
		total++
		bankBalance = bankBalance.Add(allTxns[i].Amount)
	}
	for i := range unmatchedTxns {
		if unmatchedTxns[i].AccountCode == accountCode {
			unmatched++
		}
	}

	lines, err := s.journalRepo.FindPostedLinesByAccount(ctx, accountCode, &period.StartDate, &period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load posted lines for account %s: %w", accountCode, err)
	}
	ledgerBalance := decimal.Zero
	for i := range lines {
		ledgerBalance = ledgerBalance.Add(accounting.SignedBankAmount(lines[i].JournalLine))
	}

	difference := bankBalance.Sub(ledgerBalance)
	status := domain.ReconciliationBalanced
	if !difference.IsZero() {
		status = domain.ReconciliationDiscrepancy
	}

	recon := &domain.BankReconciliation{
		PeriodID:        periodID,
		AccountCode:     accountCode,
		BankBalance:     bankBalance,
		LedgerBalance:   ledgerBalance,
		Difference:      difference,
		Status:          status,
		MatchedCount:    total - unmatched,
		UnmatchedBank:   unmatched,
		UnmatchedLedger: len(unreconciled),
	}
	resp := dto.ToReconciliationStatusResponse(recon)
	return &resp, nil
}
