package services

import (
	"context"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade defines the ledger projector operations. Both are pure
// functions of the validated journal log: the same log always yields the
// same result, regardless of call order or storage order.
type LedgerSvcFacade interface {
	// BalanceAsOf folds the account's validated lines dated at or before
	// asOf in (entry date, piece number) order.
	BalanceAsOf(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error)

	// Movements produces a restartable, token-paginated sequence of the
	// account's movements with running balances.
	Movements(ctx context.Context, accountCode string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)
}
