package services

import (
	"context"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

// AccountResolverSvc is the narrow read interface other services use to
// snapshot account data into journal lines.
type AccountResolverSvc interface {
	// ResolveAccount retrieves an account snapshot by chart code.
	ResolveAccount(ctx context.Context, code string) (*domain.Account, error)

	// ResolveAccounts retrieves account snapshots for multiple codes.
	// Every requested code must resolve; a missing one is an error.
	ResolveAccounts(ctx context.Context, codes []string) (map[string]domain.Account, error)
}

// ChartOfAccountsSvcFacade defines the chart of accounts registry operations.
type ChartOfAccountsSvcFacade interface {
	AccountResolverSvc

	// RegisterAccount creates a new account after validating code uniqueness
	// and the class/type mapping.
	RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest, creatorID string) (*domain.Account, error)

	// DeactivateAccount soft-disables an account. History stays queryable.
	DeactivateAccount(ctx context.Context, code string, updatedBy string) error

	// ReactivateAccount re-enables a deactivated account.
	ReactivateAccount(ctx context.Context, code string, updatedBy string) error

	// ListAccounts retrieves the chart ordered by code.
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error)
}
