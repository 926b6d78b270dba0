package repositories

import (
	"context"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
)

// AccountReader defines read operations for chart of accounts data.
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its chart code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code.
	// Codes with no matching account are absent from the result map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts ordered by code.
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart of accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate if
	// the code already exists.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SetAccountActive toggles the soft-disable flag. History is never removed.
	SetAccountActive(ctx context.Context, code string, active bool, updatedBy string, updatedAt time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
