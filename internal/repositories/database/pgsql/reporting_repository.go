package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
)

// reportingRepository implements aggregate queries over the validated log.
// Drafts never appear in any of these: the status filter is the projection
// boundary.
type reportingRepository struct {
	BaseRepository
}

func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetTrialBalanceData sums debit and credit activity per account for entries
// dated inside [from, to].
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.code,
			a.name,
			a.account_type,
			SUM(CASE WHEN l.side = 'DEBIT' THEN l.amount ELSE 0 END) AS total_debit,
			SUM(CASE WHEN l.side = 'CREDIT' THEN l.amount ELSE 0 END) AS total_credit
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_code = a.code
		WHERE e.entry_date BETWEEN $1 AND $2
			AND e.status IN ('VALIDATED', 'REVERSED')
		GROUP BY a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	var result []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &row.AccountType, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}
	if result == nil {
		result = []domain.TrialBalanceRow{}
	}
	return result, nil
}

// GetProfitAndLossData retrieves net revenue and expense amounts per account
// for entries dated inside [from, to]. Revenue nets credit minus debit,
// expenses debit minus credit.
func (r *reportingRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT
			a.account_type,
			a.code,
			a.name,
			SUM(CASE
				WHEN a.account_type = 'REVENUE' AND l.side = 'CREDIT' THEN l.amount
				WHEN a.account_type = 'REVENUE' AND l.side = 'DEBIT' THEN -l.amount
				WHEN a.account_type = 'EXPENSE' AND l.side = 'DEBIT' THEN l.amount
				ELSE -l.amount
			END) AS net
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_code = a.code
		WHERE e.entry_date BETWEEN $1 AND $2
			AND e.status IN ('VALIDATED', 'REVERSED')
			AND a.account_type IN ('REVENUE', 'EXPENSE')
		GROUP BY a.account_type, a.code, a.name
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying profit and loss data: %w", err)
	}
	defer rows.Close()

	var revenue, expenses []domain.AccountAmount
	for rows.Next() {
		var accountType string
		var amount domain.AccountAmount
		var net decimal.Decimal
		if err := rows.Scan(&accountType, &amount.AccountCode, &amount.AccountName, &net); err != nil {
			return nil, nil, fmt.Errorf("error scanning profit and loss row: %w", err)
		}
		amount.Amount = net
		if accountType == string(domain.Revenue) {
			revenue = append(revenue, amount)
		} else {
			expenses = append(expenses, amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating profit and loss rows: %w", err)
	}
	return revenue, expenses, nil
}

// GetBalanceSheetData retrieves net asset, liability and equity balances
// from the beginning of the ledger up to asOf, following the sign
// convention: assets net debit minus credit, liabilities and equity credit
// minus debit.
func (r *reportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT
			a.account_type,
			a.code,
			a.name,
			SUM(CASE
				WHEN a.account_type = 'ASSET' AND l.side = 'DEBIT' THEN l.amount
				WHEN a.account_type = 'ASSET' AND l.side = 'CREDIT' THEN -l.amount
				WHEN l.side = 'CREDIT' THEN l.amount
				ELSE -l.amount
			END) AS net
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_code = a.code
		WHERE e.entry_date <= $1
			AND e.status IN ('VALIDATED', 'REVERSED')
			AND a.account_type IN ('ASSET', 'LIABILITY', 'EQUITY')
		GROUP BY a.account_type, a.code, a.name
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error querying balance sheet data: %w", err)
	}
	defer rows.Close()

	var assets, liabilities, equity []domain.AccountAmount
	for rows.Next() {
		var accountType string
		var amount domain.AccountAmount
		var net decimal.Decimal
		if err := rows.Scan(&accountType, &amount.AccountCode, &amount.AccountName, &net); err != nil {
			return nil, nil, nil, fmt.Errorf("error scanning balance sheet row: %w", err)
		}
		amount.Amount = net
		switch domain.AccountType(accountType) {
		case domain.Asset:
			assets = append(assets, amount)
		case domain.Liability:
			liabilities = append(liabilities, amount)
		case domain.Equity:
			equity = append(equity, amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error iterating balance sheet rows: %w", err)
	}
	return assets, liabilities, equity, nil
}
