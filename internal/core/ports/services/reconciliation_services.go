package services

import (
	"context"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

// ReconciliationSvcFacade defines the bank reconciliation operations for a
// single bank account within a fiscal period.
type ReconciliationSvcFacade interface {
	// IngestTransactions stores a batch of bank statement transactions for a
	// period and bank account.
	IngestTransactions(ctx context.Context, req dto.IngestBankTransactionsRequest, ingestedBy string) ([]dto.BankTransactionResponse, error)

	// AutoMatch pairs unmatched bank transactions with unreconciled ledger
	// lines on exact amount within the configured date tolerance. A bank
	// transaction with zero or several candidates is left unmatched.
	AutoMatch(ctx context.Context, periodID string, accountCode string, matchedBy string) (*dto.AutoMatchResponse, error)

	// ManualMatch pairs one bank transaction with one ledger line regardless
	// of amount or date.
	ManualMatch(ctx context.Context, req dto.ManualMatchRequest, matchedBy string) (*dto.MatchResponse, error)

	// Unmatch removes an existing match, returning both sides to the
	// unmatched pool.
	Unmatch(ctx context.Context, matchID string, requestedBy string) error

	// ListUnmatched retrieves both sides still awaiting resolution.
	ListUnmatched(ctx context.Context, periodID string, accountCode string) (*dto.UnmatchedResponse, error)

	// ReconciliationStatus computes the per-period summary comparing the
	// bank statement total with the ledger balance of the bank account.
	ReconciliationStatus(ctx context.Context, periodID string, accountCode string) (*dto.ReconciliationStatusResponse, error)
}
