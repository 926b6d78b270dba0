package repositories

import (
	"context"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
)

// ReportingRepository defines aggregate queries over the validated journal
// log. Only validated entries contribute; drafts are invisible to reports.
type ReportingRepository interface {
	// GetTrialBalanceData sums debit and credit activity per account for
	// entries dated inside [from, to].
	GetTrialBalanceData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error)

	// GetProfitAndLossData retrieves net revenue and expense amounts per
	// account for entries dated inside [from, to].
	GetProfitAndLossData(ctx context.Context, from, to time.Time) (revenue []domain.AccountAmount, expenses []domain.AccountAmount, err error)

	// GetBalanceSheetData retrieves net asset, liability and equity balances
	// from the beginning of the ledger up to asOf.
	GetBalanceSheetData(ctx context.Context, asOf time.Time) (assets []domain.AccountAmount, liabilities []domain.AccountAmount, equity []domain.AccountAmount, err error)
}
