package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is an external fact ingested from a bank statement.
// The amount is signed from the bank's perspective: positive for money in,
// negative for money out.
type BankTransaction struct {
	TransactionID string          `json:"transactionID"`
	PeriodID      string          `json:"periodID"`
	AccountCode   string          `json:"accountCode"` // Ledger bank account, e.g. "512"
	Date          time.Time       `json:"date"`
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
	AuditFields
}

// ReconciliationMatch pairs a bank transaction with exactly one journal line.
// Both sides are unique in the match table (1:1 invariant).
type ReconciliationMatch struct {
	MatchID           string    `json:"matchID"`
	BankTransactionID string    `json:"bankTransactionID"`
	JournalLineID     string    `json:"journalLineID"`
	Manual            bool      `json:"manual"` // false when produced by auto-matching
	MatchedBy         string    `json:"matchedBy"`
	MatchedAt         time.Time `json:"matchedAt"`
}

// ReconciliationStatus summarizes whether bank and ledger agree for a period.
type ReconciliationStatus string

const (
	ReconciliationBalanced    ReconciliationStatus = "BALANCED"
	ReconciliationDiscrepancy ReconciliationStatus = "DISCREPANCY"
)

// BankReconciliation is the per-period summary of a bank account against the
// ledger. Balanced iff the difference is exactly zero; the signed difference
// is always reported, never absorbed.
type BankReconciliation struct {
	PeriodID        string               `json:"periodID"`
	AccountCode     string               `json:"accountCode"`
	BankBalance     decimal.Decimal      `json:"bankBalance"`
	LedgerBalance   decimal.Decimal      `json:"ledgerBalance"`
	Difference      decimal.Decimal      `json:"difference"`
	Status          ReconciliationStatus `json:"status"`
	MatchedCount    int                  `json:"matchedCount"`
	UnmatchedBank   int                  `json:"unmatchedBank"`
	UnmatchedLedger int                  `json:"unmatchedLedger"`
}
