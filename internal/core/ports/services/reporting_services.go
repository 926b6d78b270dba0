package services

import (
	"context"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

// ReportingSvcFacade defines the reporting engine operations. Reports over
// closed or locked periods are served from the snapshot captured at close
// time; reports over open periods are computed live.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, periodID string) (*dto.TrialBalanceResponse, error)
	ProfitAndLoss(ctx context.Context, periodID string) (*dto.ProfitAndLossResponse, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (*dto.BalanceSheetResponse, error)
}
