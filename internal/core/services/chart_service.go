package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

var (
	ErrAccountCodeInvalid  = errors.New("account code must be numeric")
	ErrClassTypeMismatch   = errors.New("account type does not match its class mapping")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrClassNotConfigured  = errors.New("account class has no configured type")
	ErrAccountParentAbsent = errors.New("parent account does not exist")
)

// chartOfAccountsService implements the chart of accounts registry.
type chartOfAccountsService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	classMap    domain.ClassTypeMapping
}

// NewChartOfAccountsService creates a new chart of accounts service.
// The class/type mapping is fixed at construction time.
func NewChartOfAccountsService(accountRepo portsrepo.AccountRepositoryFacade, classMap domain.ClassTypeMapping) portssvc.ChartOfAccountsSvcFacade {
	if classMap == nil {
		classMap = domain.DefaultClassTypeMapping()
	}
	return &chartOfAccountsService{
		accountRepo: accountRepo,
		classMap:    classMap,
	}
}

var _ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)

// RegisterAccount creates a new account after validating code shape,
// uniqueness, the class/type mapping and parent existence.
func (s *chartOfAccountsService) RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest, creatorID string) (*domain.Account, error) {
	if _, err := strconv.Atoi(req.Code); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrAccountCodeInvalid, req.Code)
	}

	classDigit := int(req.Code[0] - '0')
	if classDigit != req.Class {
		return nil, fmt.Errorf("%w: code %s belongs to class %d, request says %d", apperrors.ErrValidation, req.Code, classDigit, req.Class)
	}

	expectedType, ok := s.classMap.TypeForClass(req.Class)
	if !ok {
		return nil, fmt.Errorf("%w: class %d", ErrClassNotConfigured, req.Class)
	}
	if expectedType != req.AccountType {
		return nil, fmt.Errorf("%w: class %d accounts must be %s, got %s", ErrClassTypeMismatch, req.Class, expectedType, req.AccountType)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		AccountType: req.AccountType,
		Class:       req.Class,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	// Multi-digit codes must attach under an existing node so the chart
	// stays a navigable hierarchy.
	if parent := account.ParentCode(); parent != "" {
		existing, err := s.accountRepo.FindAccountByCode(ctx, parent)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check parent account %s: %w", parent, err)
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: %s", ErrAccountParentAbsent, parent)
		}
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account registered", slog.String("code", account.Code), slog.String("type", string(account.AccountType)))
	return &account, nil
}

// ResolveAccount retrieves an account snapshot by chart code.
func (s *chartOfAccountsService) ResolveAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return account, nil
}

// ResolveAccounts retrieves account snapshots for multiple codes. Every
// requested code must resolve; a missing one fails the whole call.
func (s *chartOfAccountsService) ResolveAccounts(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	unique := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		unique = append(unique, code)
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	for _, code := range unique {
		if _, ok := accounts[code]; !ok {
			return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
		}
	}
	return accounts, nil
}

// DeactivateAccount soft-disables an account. History stays queryable.
func (s *chartOfAccountsService) DeactivateAccount(ctx context.Context, code string, updatedBy string) error {
	return s.setActive(ctx, code, false, updatedBy)
}

// ReactivateAccount re-enables a deactivated account.
func (s *chartOfAccountsService) ReactivateAccount(ctx context.Context, code string, updatedBy string) error {
	return s.setActive(ctx, code, true, updatedBy)
}

func (s *chartOfAccountsService) setActive(ctx context.Context, code string, active bool, updatedBy string) error {
	account, err := s.ResolveAccount(ctx, code)
	if err != nil {
		return err
	}
	if account.IsActive == active {
		// Idempotent: flipping to the current state is a no-op.
		return nil
	}
	if err := s.accountRepo.SetAccountActive(ctx, code, active, updatedBy, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to update account active flag", slog.String("code", code), slog.Bool("active", active))
		return fmt.Errorf("failed to update account %s: %w", code, err)
	}
	s.LogInfo(ctx, "Account active flag updated", slog.String("code", code), slog.Bool("active", active))
	return nil
}

// ListAccounts retrieves the chart ordered by code.
func (s *chartOfAccountsService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}
