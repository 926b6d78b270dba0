package repositories

import (
	"context"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
)

// ReconciliationReader defines read operations for bank reconciliation data.
type ReconciliationReader interface {
	// FindBankTransactionByID retrieves an ingested bank transaction.
	FindBankTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error)

	// ListBankTransactionsByPeriod retrieves a period's bank transactions,
	// optionally restricted to those without a match yet.
	ListBankTransactionsByPeriod(ctx context.Context, periodID string, unmatchedOnly bool) ([]domain.BankTransaction, error)

	// ListUnreconciledLines retrieves the posted lines on the given bank
	// account, dated inside the period, that no match references yet.
	ListUnreconciledLines(ctx context.Context, periodID string, accountCode string) ([]domain.PostedLine, error)

	// FindPostedLineByID retrieves one posted line by line ID.
	FindPostedLineByID(ctx context.Context, lineID string) (*domain.PostedLine, error)

	// FindMatchByID retrieves a match by its identifier.
	FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error)

	// FindMatchByBankTransaction retrieves the match referencing a bank
	// transaction, or apperrors.ErrNotFound.
	FindMatchByBankTransaction(ctx context.Context, transactionID string) (*domain.ReconciliationMatch, error)

	// FindMatchByJournalLine retrieves the match referencing a journal line,
	// or apperrors.ErrNotFound.
	FindMatchByJournalLine(ctx context.Context, lineID string) (*domain.ReconciliationMatch, error)

	// ListMatchesByPeriod retrieves every match whose bank transaction
	// belongs to the period.
	ListMatchesByPeriod(ctx context.Context, periodID string) ([]domain.ReconciliationMatch, error)
}

// ReconciliationWriter defines write operations for bank reconciliation data.
type ReconciliationWriter interface {
	// SaveBankTransactions appends ingested statement transactions.
	// Bank transactions are external facts and are never updated.
	SaveBankTransactions(ctx context.Context, transactions []domain.BankTransaction) error

	// SaveMatch persists a 1:1 match. Returns apperrors.ErrDuplicate if
	// either side is already matched (unique constraints on both columns).
	SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error

	// DeleteMatch removes a match, releasing both sides.
	DeleteMatch(ctx context.Context, matchID string) error
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces.
type ReconciliationRepositoryFacade interface {
	ReconciliationReader
	ReconciliationWriter
}
