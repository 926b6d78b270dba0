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

// PgxPeriodRepository persists fiscal periods, their close snapshots and the
// per-fiscal-year piece number sequence. Status transitions carry the
// expected current status in the WHERE clause, so a lost race shows up as
// zero affected rows instead of a silent overwrite.
type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

const periodColumns = `period_id, name, fiscal_year, start_date, end_date, status, closed_at, closed_by, locked_at, locked_by, created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (*domain.FiscalPeriod, error) {
	var p domain.FiscalPeriod
	err := row.Scan(
		&p.PeriodID,
		&p.Name,
		&p.FiscalYear,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.ClosedAt,
		&p.ClosedBy,
		&p.LockedAt,
		&p.LockedBy,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan fiscal period: %w", err)
	}
	return &p, nil
}

// SavePeriod persists a new period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	query := `
		INSERT INTO fiscal_periods (period_id, name, fiscal_year, start_date, end_date, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		period.PeriodID,
		period.Name,
		period.FiscalYear,
		period.StartDate,
		period.EndDate,
		period.Status,
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // Unique violation
				return fmt.Errorf("%w: period name %s", apperrors.ErrDuplicate, period.Name)
			case "23P01": // Exclusion violation on the date range
				return fmt.Errorf("%w: period %s overlaps an existing period", apperrors.ErrDuplicate, period.Name)
			}
		}
		return fmt.Errorf("failed to save fiscal period %s: %w", period.Name, err)
	}
	return nil
}

// FindPeriodByID retrieves a period by its identifier.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE period_id = $1;`
	return scanPeriod(r.Pool.QueryRow(ctx, query, periodID))
}

// FindPeriodForDate retrieves the period containing the given date.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE $1 BETWEEN start_date AND end_date;`
	return scanPeriod(r.Pool.QueryRow(ctx, query, date))
}

// FindOverlappingPeriod retrieves any period intersecting [start, end].
func (r *PgxPeriodRepository) FindOverlappingPeriod(ctx context.Context, start, end time.Time) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE start_date <= $2 AND end_date >= $1 LIMIT 1;`
	return scanPeriod(r.Pool.QueryRow(ctx, query, start, end))
}

// FindLockedPeriodAfter retrieves the earliest locked period starting after
// the given date.
func (r *PgxPeriodRepository) FindLockedPeriodAfter(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE status = 'LOCKED' AND start_date > $1 ORDER BY start_date LIMIT 1;`
	return scanPeriod(r.Pool.QueryRow(ctx, query, date))
}

// ListPeriods retrieves all periods ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods ORDER BY start_date;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.FiscalPeriod
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fiscal periods: %w", err)
	}
	return periods, nil
}

// FindSnapshot retrieves the trial-balance snapshot captured at close.
func (r *PgxPeriodRepository) FindSnapshot(ctx context.Context, periodID string) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT account_code, account_name, account_type, debit, credit
		FROM period_snapshots
		WHERE period_id = $1
		ORDER BY account_code;
	`
	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query period snapshot: %w", err)
	}
	defer rows.Close()

	var snapshot []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &row.AccountType, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshot = append(snapshot, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}
	if snapshot == nil {
		return nil, apperrors.ErrNotFound
	}
	return snapshot, nil
}

// ClosePeriod transitions open -> closed and stores the trial-balance
// snapshot in the same transaction.
func (r *PgxPeriodRepository) ClosePeriod(ctx context.Context, periodID string, closedBy string, closedAt time.Time, snapshot []domain.TrialBalanceRow) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE fiscal_periods
		SET status = 'CLOSED', closed_at = $2, closed_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE period_id = $1 AND status = 'OPEN';
	`
	tag, err := tx.Exec(ctx, query, periodID, closedAt, closedBy)
	if err != nil {
		return fmt.Errorf("failed to close fiscal period %s: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s is not open", apperrors.ErrConflict, periodID)
	}

	insertQuery := `
		INSERT INTO period_snapshots (period_id, account_code, account_name, account_type, debit, credit, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, row := range snapshot {
		if _, err := tx.Exec(ctx, insertQuery, periodID, row.AccountCode, row.AccountName, row.AccountType, row.Debit, row.Credit, closedAt); err != nil {
			return fmt.Errorf("failed to insert snapshot row for account %s: %w", row.AccountCode, err)
		}
	}
	return r.Commit(ctx, tx)
}

// ReopenPeriod transitions closed -> open and deletes the snapshot in the
// same transaction. The stale snapshot must not survive: reports would keep
// serving numbers the reopened period can change.
func (r *PgxPeriodRepository) ReopenPeriod(ctx context.Context, periodID string, reopenedBy string, reopenedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE fiscal_periods
		SET status = 'OPEN', closed_at = NULL, closed_by = NULL, last_updated_at = $2, last_updated_by = $3
		WHERE period_id = $1 AND status = 'CLOSED';
	`
	tag, err := tx.Exec(ctx, query, periodID, reopenedAt, reopenedBy)
	if err != nil {
		return fmt.Errorf("failed to reopen fiscal period %s: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s is not closed", apperrors.ErrConflict, periodID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM period_snapshots WHERE period_id = $1;`, periodID); err != nil {
		return fmt.Errorf("failed to delete snapshot for period %s: %w", periodID, err)
	}
	return r.Commit(ctx, tx)
}

// LockPeriod transitions closed -> locked.
func (r *PgxPeriodRepository) LockPeriod(ctx context.Context, periodID string, lockedBy string, lockedAt time.Time) error {
	query := `
		UPDATE fiscal_periods
		SET status = 'LOCKED', locked_at = $2, locked_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE period_id = $1 AND status = 'CLOSED';
	`
	tag, err := r.Pool.Exec(ctx, query, periodID, lockedAt, lockedBy)
	if err != nil {
		return fmt.Errorf("failed to lock fiscal period %s: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s is not closed", apperrors.ErrConflict, periodID)
	}
	return nil
}

// NextPieceNumber issues the next sequential piece number for a fiscal
// year. The upsert holds a row lock until commit, so concurrent issuance
// serializes on the fiscal year and never produces a duplicate.
func (r *PgxPeriodRepository) NextPieceNumber(ctx context.Context, fiscalYear int) (int64, error) {
	query := `
		INSERT INTO piece_number_seq (fiscal_year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (fiscal_year) DO UPDATE SET last_value = piece_number_seq.last_value + 1
		RETURNING last_value;
	`
	var value int64
	if err := r.Pool.QueryRow(ctx, query, fiscalYear).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to issue piece number for fiscal year %d: %w", fiscalYear, err)
	}
	return value, nil
}
