package dto

import (
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IngestBankTransactionRequest is one statement transaction in an ingest
// payload. Amount is signed from the bank's perspective.
type IngestBankTransactionRequest struct {
	Date   time.Time       `json:"date" binding:"required"`
	Label  string          `json:"label" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// IngestBankTransactionsRequest defines the payload for ingesting a bank
// statement extract for one period and bank account.
type IngestBankTransactionsRequest struct {
	PeriodID     string                         `json:"periodID" binding:"required"`
	AccountCode  string                         `json:"accountCode" binding:"required"`
	Transactions []IngestBankTransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// BankTransactionResponse defines the data returned for a bank transaction.
type BankTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	PeriodID      string          `json:"periodID"`
	AccountCode   string          `json:"accountCode"`
	Date          time.Time       `json:"date"`
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
}

// MatchResponse defines the data returned for a reconciliation match.
type MatchResponse struct {
	MatchID           string    `json:"matchID"`
	BankTransactionID string    `json:"bankTransactionID"`
	JournalLineID     string    `json:"journalLineID"`
	Manual            bool      `json:"manual"`
	MatchedBy         string    `json:"matchedBy"`
	MatchedAt         time.Time `json:"matchedAt"`
}

// ManualMatchRequest defines the payload for pairing a bank transaction with
// a journal line by hand.
type ManualMatchRequest struct {
	BankTransactionID string `json:"bankTransactionID" binding:"required"`
	JournalLineID     string `json:"journalLineID" binding:"required"`
}

// AutoMatchResponse summarizes one auto-matching run.
type AutoMatchResponse struct {
	PeriodID      string          `json:"periodID"`
	Matched       []MatchResponse `json:"matched"`
	UnmatchedBank int             `json:"unmatchedBank"`
	AmbiguousBank int             `json:"ambiguousBank"`
}

// UnmatchedResponse lists both sides still awaiting manual resolution.
type UnmatchedResponse struct {
	PeriodID         string                    `json:"periodID"`
	BankTransactions []BankTransactionResponse `json:"bankTransactions"`
	JournalLines     []EntryLineResponse       `json:"journalLines"`
}

// ReconciliationStatusResponse is the per-period reconciliation summary.
type ReconciliationStatusResponse struct {
	PeriodID        string          `json:"periodID"`
	AccountCode     string          `json:"accountCode"`
	BankBalance     decimal.Decimal `json:"bankBalance"`
	LedgerBalance   decimal.Decimal `json:"ledgerBalance"`
	Difference      decimal.Decimal `json:"difference"`
	Status          string          `json:"status"`
	MatchedCount    int             `json:"matchedCount"`
	UnmatchedBank   int             `json:"unmatchedBank"`
	UnmatchedLedger int             `json:"unmatchedLedger"`
}

// ToBankTransactionResponse converts a domain.BankTransaction to its DTO.
func ToBankTransactionResponse(t *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		TransactionID: t.TransactionID,
		PeriodID:      t.PeriodID,
		AccountCode:   t.AccountCode,
		Date:          t.Date,
		Label:         t.Label,
		Amount:        t.Amount,
	}
}

// ToMatchResponse converts a domain.ReconciliationMatch to its DTO.
func ToMatchResponse(m *domain.ReconciliationMatch) MatchResponse {
	return MatchResponse{
		MatchID:           m.MatchID,
		BankTransactionID: m.BankTransactionID,
		JournalLineID:     m.JournalLineID,
		Manual:            m.Manual,
		MatchedBy:         m.MatchedBy,
		MatchedAt:         m.MatchedAt,
	}
}

// ToReconciliationStatusResponse converts a domain.BankReconciliation to its DTO.
func ToReconciliationStatusResponse(r *domain.BankReconciliation) ReconciliationStatusResponse {
	return ReconciliationStatusResponse{
		PeriodID:        r.PeriodID,
		AccountCode:     r.AccountCode,
		BankBalance:     r.BankBalance,
		LedgerBalance:   r.LedgerBalance,
		Difference:      r.Difference,
		Status:          string(r.Status),
		MatchedCount:    r.MatchedCount,
		UnmatchedBank:   r.UnmatchedBank,
		UnmatchedLedger: r.UnmatchedLedger,
	}
}
