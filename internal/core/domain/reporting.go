package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's debit/credit activity within a period.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance lists every account with nonzero activity in a period.
// TotalDebit must equal TotalCredit; a violation is an engine defect, not a
// user mistake.
type TrialBalance struct {
	PeriodID    string            `json:"periodID"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	IsBalanced  bool              `json:"isBalanced"`
}

// AccountAmount is an account with its net amount in a financial report.
type AccountAmount struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Amount      decimal.Decimal `json:"amount"`
}

// PAndLReport partitions revenue and expense balances for a period.
type PAndLReport struct {
	PeriodID      string          `json:"periodID"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetResult     decimal.Decimal `json:"netResult"`
}

// BalanceSheetReport partitions asset/liability/equity balances as of a
// point in time. IsBalanced holds iff assets equal liabilities plus equity.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	IsBalanced       bool            `json:"isBalanced"`
}
