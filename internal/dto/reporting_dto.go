package dto

import (
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response.
type TrialBalanceRowResponse struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response.
type TrialBalanceResponse struct {
	PeriodID string                    `json:"periodID"`
	Rows     []TrialBalanceRowResponse `json:"rows"`
	Totals   struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	IsBalanced bool `json:"isBalanced"`
}

// AccountAmountResponse represents an account with its amount in a report.
type AccountAmountResponse struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProfitAndLossResponse represents the profit and loss report response.
type ProfitAndLossResponse struct {
	PeriodID string                  `json:"periodID"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetResult     decimal.Decimal `json:"netResult"`
	} `json:"summary"`
}

// BalanceSheetResponse represents the balance sheet report response.
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
	} `json:"summary"`
	IsBalanced bool `json:"isBalanced"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	response := TrialBalanceResponse{
		PeriodID:   tb.PeriodID,
		Rows:       make([]TrialBalanceRowResponse, len(tb.Rows)),
		IsBalanced: tb.IsBalanced,
	}

	for i, row := range tb.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
		}
	}

	response.Totals.Debit = tb.TotalDebit
	response.Totals.Credit = tb.TotalCredit

	return response
}

func toAccountAmountResponses(amounts []domain.AccountAmount) []AccountAmountResponse {
	responses := make([]AccountAmountResponse, len(amounts))
	for i, a := range amounts {
		responses[i] = AccountAmountResponse{
			AccountCode: a.AccountCode,
			AccountName: a.AccountName,
			Amount:      a.Amount,
		}
	}
	return responses
}

// ToProfitAndLossResponse converts a domain P&L report to a DTO response.
func ToProfitAndLossResponse(report *domain.PAndLReport) ProfitAndLossResponse {
	response := ProfitAndLossResponse{
		PeriodID: report.PeriodID,
		Revenue:  toAccountAmountResponses(report.Revenue),
		Expenses: toAccountAmountResponses(report.Expenses),
	}

	response.Summary.TotalRevenue = report.TotalRevenue
	response.Summary.TotalExpenses = report.TotalExpenses
	response.Summary.NetResult = report.NetResult

	return response
}

// ToBalanceSheetResponse converts a domain balance sheet to a DTO response.
func ToBalanceSheetResponse(report *domain.BalanceSheetReport) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:        report.AsOf.Format(time.DateOnly),
		Assets:      toAccountAmountResponses(report.Assets),
		Liabilities: toAccountAmountResponses(report.Liabilities),
		Equity:      toAccountAmountResponses(report.Equity),
		IsBalanced:  report.IsBalanced,
	}

	response.Summary.TotalAssets = report.TotalAssets
	response.Summary.TotalLiabilities = report.TotalLiabilities
	response.Summary.TotalEquity = report.TotalEquity

	return response
}
