package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
)

// PgxAccountRepository persists the chart of accounts.
type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, account_type, class, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.Code,
		&a.Name,
		&a.AccountType,
		&a.Class,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, code, name, account_type, class, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.Code,
		account.Name,
		account.AccountType,
		account.Class,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", account.Code, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	return scanAccount(r.pool.QueryRow(ctx, query, accountID))
}

// FindAccountByCode retrieves an account by its chart code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	return scanAccount(r.pool.QueryRow(ctx, query, code))
}

// FindAccountsByCodes retrieves multiple accounts keyed by code. Codes with
// no matching account are simply absent from the result.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1);`
	rows, err := r.pool.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Account, len(codes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result[account.Code] = *account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return result, nil
}

// ListAccounts retrieves all accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// SetAccountActive toggles the soft-disable flag.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, code string, active bool, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE code = $1;
	`
	tag, err := r.pool.Exec(ctx, query, code, active, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	return nil
}
