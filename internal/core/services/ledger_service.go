package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/utils/pagination"
)

// ledgerService implements the ledger projector. Balances and movements are
// derived state: every call folds over the validated journal log in
// (entry date, piece number) order and nothing is ever stored. Two calls
// over the same log always produce identical results.
type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalReader
	chartSvc    portssvc.AccountResolverSvc
}

// NewLedgerService creates a new ledger projector service.
func NewLedgerService(journalRepo portsrepo.JournalReader, chartSvc portssvc.AccountResolverSvc) portssvc.LedgerSvcFacade {
	return &ledgerService{
		journalRepo: journalRepo,
		chartSvc:    chartSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// BalanceAsOf folds the account's validated lines dated at or before asOf.
func (s *ledgerService) BalanceAsOf(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.chartSvc.ResolveAccount(ctx, accountCode)
	if err != nil {
		return decimal.Zero, err
	}

	to := truncateToDay(asOf)
	lines, err := s.journalRepo.FindPostedLinesByAccount(ctx, accountCode, nil, &to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load posted lines for account %s: %w", accountCode, err)
	}

	balance := decimal.Zero
	for _, line := range lines {
		signed, err := line.SignedAmount(account.AccountType)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(signed)
	}
	return balance, nil
}

// Movements produces a token-paginated view of the account's movements with
// running balances. The fold always starts from the beginning of the log so
// the running balance is exact regardless of the requested window; the From
// filter and the pagination token only gate which movements are emitted.
func (s *ledgerService) Movements(ctx context.Context, accountCode string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	account, err := s.chartSvc.ResolveAccount(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	var afterDate time.Time
	var afterPiece string
	resuming := false
	if params.NextToken != nil && *params.NextToken != "" {
		afterDate, afterPiece, err = pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, err
		}
		resuming = true
	}

	var to *time.Time
	if params.To != nil {
		t := truncateToDay(*params.To)
		to = &t
	}

	lines, err := s.journalRepo.FindPostedLinesByAccount(ctx, accountCode, nil, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load posted lines for account %s: %w", accountCode, err)
	}

	resp := &dto.ListMovementsResponse{
		AccountCode: accountCode,
		Movements:   []dto.MovementResponse{},
	}

	balance := decimal.Zero
	for _, line := range lines {
		signed, err := line.SignedAmount(account.AccountType)
		if err != nil {
			return nil, err
		}
		balance = balance.Add(signed)

		if params.From != nil && line.EntryDate.Before(truncateToDay(*params.From)) {
			continue
		}
		if resuming && !positionAfter(line.EntryDate, line.PieceNumber, afterDate, afterPiece) {
			continue
		}
		if len(resp.Movements) >= limit {
			// Lines sharing the restart position (same entry) stay on one
			// page so the token never splits an entry.
			last := resp.Movements[len(resp.Movements)-1]
			if !line.EntryDate.Equal(last.Date) || line.PieceNumber != last.PieceNumber {
				token := pagination.EncodeToken(last.Date, last.PieceNumber)
				resp.NextToken = &token
				return resp, nil
			}
		}

		resp.Movements = append(resp.Movements, dto.ToMovementResponse(&domain.LedgerMovement{
			EntryID:        line.EntryID,
			PieceNumber:    line.PieceNumber,
			EntryDate:      line.EntryDate,
			Description:    line.EntryDescription,
			Side:           line.Side,
			Amount:         line.Amount,
			RunningBalance: balance,
		}))
	}

	return resp, nil
}

// positionAfter reports whether (date, piece) sorts strictly after the
// (afterDate, afterPiece) restart position. Pieces compare bytewise, which
// must agree with the repository's ORDER BY; engine-issued YYYY-NNNNNN
// pieces are ASCII digits and a hyphen, where byte order and the database
// collation coincide. Caller-supplied piece numbers must stay ASCII.
func positionAfter(date time.Time, piece string, afterDate time.Time, afterPiece string) bool {
	if date.After(afterDate) {
		return true
	}
	if date.Equal(afterDate) {
		return piece > afterPiece
	}
	return false
}
