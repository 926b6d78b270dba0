package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

// currentEarningsCode is the equity line the balance sheet synthesizes for
// the running net result (plan comptable 120, resultat de l'exercice).
const currentEarningsCode = "120"

// reportingService implements the reporting engine. Reports over closed and
// locked periods come from the snapshot captured at close, so they never
// change after the fact; open periods are computed live from the log.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	periodSvc     portssvc.FiscalPeriodSvcFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, periodSvc portssvc.FiscalPeriodSvcFacade) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportingRepo: reportingRepo,
		periodSvc:     periodSvc,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// trialBalanceRows loads the period's trial balance rows from the close
// snapshot when one exists, falling back to a live computation for open
// periods.
func (s *reportingService) trialBalanceRows(ctx context.Context, period *domain.FiscalPeriod) ([]domain.TrialBalanceRow, error) {
	if period.Status != domain.PeriodOpen {
		rows, err := s.periodSvc.GetSnapshot(ctx, period.PeriodID)
		if err != nil {
			return nil, err
		}
		return rows, nil
	}
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trial balance for period %s: %w", period.Name, err)
	}
	return rows, nil
}

// TrialBalance produces the trial balance for a period. Equal debit and
// credit totals is an engine invariant here, not an input check: a violation
// means the log is corrupt, so the period's writes are halted.
func (s *reportingService) TrialBalance(ctx context.Context, periodID string) (*dto.TrialBalanceResponse, error) {
	period, err := s.periodSvc.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	rows, err := s.trialBalanceRows(ctx, period)
	if err != nil {
		return nil, err
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}

	balanced := totalDebit.Equal(totalCredit)
	if !balanced {
		reason := fmt.Sprintf("trial balance out of balance: debit %s, credit %s", totalDebit, totalCredit)
		s.periodSvc.HaltPeriodWrites(periodID, reason)
		s.LogError(ctx, apperrors.ErrInternal, "Trial balance out of balance, period writes halted",
			slog.String("period_id", periodID),
			slog.String("debit", totalDebit.String()),
			slog.String("credit", totalCredit.String()))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInternal, reason)
	}

	tb := &domain.TrialBalance{
		PeriodID:    periodID,
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		IsBalanced:  balanced,
	}
	resp := dto.ToTrialBalanceResponse(tb)
	return &resp, nil
}

// ProfitAndLoss produces the revenue/expense report for a period. For closed
// and locked periods it is derived from the close snapshot, so it is stable
// forever; for open periods it reflects the log live.
func (s *reportingService) ProfitAndLoss(ctx context.Context, periodID string) (*dto.ProfitAndLossResponse, error) {
	period, err := s.periodSvc.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	var revenue, expenses []domain.AccountAmount
	if period.Status != domain.PeriodOpen {
		rows, err := s.periodSvc.GetSnapshot(ctx, period.PeriodID)
		if err != nil {
			return nil, err
		}
		revenue, expenses = resultFromTrialBalance(rows)
	} else {
		revenue, expenses, err = s.reportingRepo.GetProfitAndLossData(ctx, period.StartDate, period.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to compute profit and loss for period %s: %w", period.Name, err)
		}
	}

	totalRevenue := decimal.Zero
	for _, r := range revenue {
		totalRevenue = totalRevenue.Add(r.Amount)
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	report := &domain.PAndLReport{
		PeriodID:      periodID,
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  totalRevenue,
		TotalExpenses: totalExpenses,
		NetResult:     totalRevenue.Sub(totalExpenses),
	}
	resp := dto.ToProfitAndLossResponse(report)
	return &resp, nil
}

// BalanceSheet produces the asset/liability/equity statement as of a date.
// The running net result since the beginning of the ledger is reported as a
// synthetic current-earnings equity line, so the statement balances exactly
// when the log does.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*dto.BalanceSheetResponse, error) {
	asOfDay := truncateToDay(asOf)

	assets, liabilities, equity, err := s.reportingRepo.GetBalanceSheetData(ctx, asOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance sheet as of %s: %w", asOfDay.Format(time.DateOnly), err)
	}

	revenue, expenses, err := s.reportingRepo.GetProfitAndLossData(ctx, time.Time{}, asOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to compute net result as of %s: %w", asOfDay.Format(time.DateOnly), err)
	}
	netResult := decimal.Zero
	for _, r := range revenue {
		netResult = netResult.Add(r.Amount)
	}
	for _, e := range expenses {
		netResult = netResult.Sub(e.Amount)
	}
	if !netResult.IsZero() {
		equity = append(equity, domain.AccountAmount{
			AccountCode: currentEarningsCode,
			AccountName: "Resultat de l'exercice",
			Amount:      netResult,
		})
	}

	totalAssets := decimal.Zero
	for _, a := range assets {
		totalAssets = totalAssets.Add(a.Amount)
	}
	totalLiabilities := decimal.Zero
	for _, l := range liabilities {
		totalLiabilities = totalLiabilities.Add(l.Amount)
	}
	totalEquity := decimal.Zero
	for _, e := range equity {
		totalEquity = totalEquity.Add(e.Amount)
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOfDay,
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiabilities,
		TotalEquity:      totalEquity,
		IsBalanced:       totalAssets.Equal(totalLiabilities.Add(totalEquity)),
	}
	resp := dto.ToBalanceSheetResponse(report)
	return &resp, nil
}

// resultFromTrialBalance derives net revenue and expense amounts from trial
// balance rows: revenue accounts carry credit-normal balances, expense
// accounts debit-normal.
func resultFromTrialBalance(rows []domain.TrialBalanceRow) (revenue, expenses []domain.AccountAmount) {
	for _, row := range rows {
		switch row.AccountType {
		case domain.Revenue:
			revenue = append(revenue, domain.AccountAmount{
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Amount:      row.Credit.Sub(row.Debit),
			})
		case domain.Expense:
			expenses = append(expenses, domain.AccountAmount{
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Amount:      row.Debit.Sub(row.Credit),
			})
		}
	}
	return revenue, expenses
}
