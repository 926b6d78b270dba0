package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portsrepo "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/repositories"
)

// PgxReconciliationRepository persists bank transactions and reconciliation
// matches. The 1:1 match invariant lives in the schema: both match columns
// carry unique constraints, so double-matching fails at the database no
// matter what the caller checked.
type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const bankTxnColumns = `transaction_id, period_id, account_code, txn_date, label, amount, created_at, created_by, last_updated_at, last_updated_by`

func scanBankTransaction(row pgx.Row) (*domain.BankTransaction, error) {
	var t domain.BankTransaction
	err := row.Scan(
		&t.TransactionID,
		&t.PeriodID,
		&t.AccountCode,
		&t.Date,
		&t.Label,
		&t.Amount,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
	}
	return &t, nil
}

const matchColumns = `match_id, bank_transaction_id, journal_line_id, manual, matched_by, matched_at`

func scanMatch(row pgx.Row) (*domain.ReconciliationMatch, error) {
	var m domain.ReconciliationMatch
	err := row.Scan(
		&m.MatchID,
		&m.BankTransactionID,
		&m.JournalLineID,
		&m.Manual,
		&m.MatchedBy,
		&m.MatchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reconciliation match: %w", err)
	}
	return &m, nil
}

// SaveBankTransactions appends ingested statement transactions atomically.
func (r *PgxReconciliationRepository) SaveBankTransactions(ctx context.Context, transactions []domain.BankTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO bank_transactions (` + bankTxnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, t := range transactions {
		if _, err := tx.Exec(ctx, query,
			t.TransactionID,
			t.PeriodID,
			t.AccountCode,
			t.Date,
			t.Label,
			t.Amount,
			t.CreatedAt,
			t.CreatedBy,
			t.LastUpdatedAt,
			t.LastUpdatedBy,
		); err != nil {
			return fmt.Errorf("failed to insert bank transaction %s: %w", t.TransactionID, err)
		}
	}
	return r.Commit(ctx, tx)
}

// FindBankTransactionByID retrieves an ingested bank transaction.
func (r *PgxReconciliationRepository) FindBankTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error) {
	query := `SELECT ` + bankTxnColumns + ` FROM bank_transactions WHERE transaction_id = $1;`
	return scanBankTransaction(r.Pool.QueryRow(ctx, query, transactionID))
}

// ListBankTransactionsByPeriod retrieves a period's bank transactions in
// (date, transaction_id) order, optionally only the unmatched ones.
func (r *PgxReconciliationRepository) ListBankTransactionsByPeriod(ctx context.Context, periodID string, unmatchedOnly bool) ([]domain.BankTransaction, error) {
	query := `SELECT ` + bankTxnColumns + ` FROM bank_transactions WHERE period_id = $1`
	if unmatchedOnly {
		query += ` AND transaction_id NOT IN (SELECT bank_transaction_id FROM reconciliation_matches)`
	}
	query += ` ORDER BY txn_date, transaction_id;`

	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.BankTransaction
	for rows.Next() {
		t, err := scanBankTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bank transactions: %w", err)
	}
	return transactions, nil
}

// ListUnreconciledLines retrieves the posted lines on the account, dated
// inside the period, that no match references yet.
func (r *PgxReconciliationRepository) ListUnreconciledLines(ctx context.Context, periodID string, accountCode string) ([]domain.PostedLine, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.account_id, l.account_code, l.account_name, l.side, l.amount,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
		       e.entry_date, e.piece_number, e.description
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN fiscal_periods p ON p.period_id = $1
		WHERE l.account_code = $2
			AND e.status IN ('VALIDATED', 'REVERSED')
			AND e.entry_date BETWEEN p.start_date AND p.end_date
			AND l.line_id NOT IN (SELECT journal_line_id FROM reconciliation_matches)
		ORDER BY e.entry_date, e.piece_number, l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, periodID, accountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query unreconciled lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.PostedLine
	for rows.Next() {
		var l domain.PostedLine
		if err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&l.AccountCode,
			&l.AccountName,
			&l.Side,
			&l.Amount,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&l.EntryDate,
			&l.PieceNumber,
			&l.EntryDescription,
		); err != nil {
			return nil, fmt.Errorf("failed to scan unreconciled line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unreconciled lines: %w", err)
	}
	return lines, nil
}

// FindPostedLineByID retrieves one posted line by line ID.
func (r *PgxReconciliationRepository) FindPostedLineByID(ctx context.Context, lineID string) (*domain.PostedLine, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.account_id, l.account_code, l.account_name, l.side, l.amount,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
		       e.entry_date, e.piece_number, e.description
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.line_id = $1 AND e.status IN ('VALIDATED', 'REVERSED');
	`
	var l domain.PostedLine
	err := r.Pool.QueryRow(ctx, query, lineID).Scan(
		&l.LineID,
		&l.EntryID,
		&l.AccountID,
		&l.AccountCode,
		&l.AccountName,
		&l.Side,
		&l.Amount,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
		&l.EntryDate,
		&l.PieceNumber,
		&l.EntryDescription,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan posted line: %w", err)
	}
	return &l, nil
}

// FindMatchByID retrieves a match by its identifier.
func (r *PgxReconciliationRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM reconciliation_matches WHERE match_id = $1;`
	return scanMatch(r.Pool.QueryRow(ctx, query, matchID))
}

// FindMatchByBankTransaction retrieves the match referencing a bank transaction.
func (r *PgxReconciliationRepository) FindMatchByBankTransaction(ctx context.Context, transactionID string) (*domain.ReconciliationMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM reconciliation_matches WHERE bank_transaction_id = $1;`
	return scanMatch(r.Pool.QueryRow(ctx, query, transactionID))
}

// FindMatchByJournalLine retrieves the match referencing a journal line.
func (r *PgxReconciliationRepository) FindMatchByJournalLine(ctx context.Context, lineID string) (*domain.ReconciliationMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM reconciliation_matches WHERE journal_line_id = $1;`
	return scanMatch(r.Pool.QueryRow(ctx, query, lineID))
}

// ListMatchesByPeriod retrieves every match whose bank transaction belongs
// to the period.
func (r *PgxReconciliationRepository) ListMatchesByPeriod(ctx context.Context, periodID string) ([]domain.ReconciliationMatch, error) {
	query := `
		SELECT m.match_id, m.bank_transaction_id, m.journal_line_id, m.manual, m.matched_by, m.matched_at
		FROM reconciliation_matches m
		JOIN bank_transactions t ON m.bank_transaction_id = t.transaction_id
		WHERE t.period_id = $1
		ORDER BY m.matched_at, m.match_id;
	`
	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.ReconciliationMatch
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}
	return matches, nil
}

// SaveMatch persists a 1:1 match.
func (r *PgxReconciliationRepository) SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	query := `
		INSERT INTO reconciliation_matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		match.MatchID,
		match.BankTransactionID,
		match.JournalLineID,
		match.Manual,
		match.MatchedBy,
		match.MatchedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: bank transaction or journal line already matched", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save match %s: %w", match.MatchID, err)
	}
	return nil
}

// DeleteMatch removes a match, releasing both sides.
func (r *PgxReconciliationRepository) DeleteMatch(ctx context.Context, matchID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM reconciliation_matches WHERE match_id = $1;`, matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: match %s", apperrors.ErrNotFound, matchID)
	}
	return nil
}
