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
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/utils/pagination"
)

// PgxJournalRepository persists the journal log. Every multi-row write runs
// in one transaction: an entry and its lines are stored or not stored as a
// unit, never partially.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, piece_number, fiscal_year, entry_date, description, status, is_system_generated, reference_id, reference_type, original_entry_id, reversed_by_entry_id, validated_by, validated_at, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID,
		&e.PieceNumber,
		&e.FiscalYear,
		&e.EntryDate,
		&e.Description,
		&e.Status,
		&e.IsSystemGenerated,
		&e.ReferenceID,
		&e.ReferenceType,
		&e.OriginalEntryID,
		&e.ReversedByEntryID,
		&e.ValidatedBy,
		&e.ValidatedAt,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	return &e, nil
}

func insertEntryTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, query,
		entry.EntryID,
		entry.PieceNumber,
		entry.FiscalYear,
		entry.EntryDate,
		entry.Description,
		entry.Status,
		entry.IsSystemGenerated,
		entry.ReferenceID,
		entry.ReferenceType,
		entry.OriginalEntryID,
		entry.ReversedByEntryID,
		entry.ValidatedBy,
		entry.ValidatedAt,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: piece number %s in fiscal year %d", apperrors.ErrDuplicate, entry.PieceNumber, entry.FiscalYear)
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func insertLinesTx(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	query := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, account_code, account_name, side, amount, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, line := range lines {
		_, err := tx.Exec(ctx, query,
			line.LineID,
			line.EntryID,
			line.AccountID,
			line.AccountCode,
			line.AccountName,
			line.Side,
			line.Amount,
			line.CreatedAt,
			line.CreatedBy,
			line.LastUpdatedAt,
			line.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert journal line %s: %w", line.LineID, err)
		}
	}
	return nil
}

// SaveDraftEntry persists a new draft entry and its lines atomically.
func (r *PgxJournalRepository) SaveDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := insertLinesTx(ctx, tx, entry.Lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateDraftEntry replaces the mutable fields and lines of a draft. The
// status predicate makes the replace a no-op when the entry left the draft
// state, which surfaces as ErrConflict.
func (r *PgxJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE journal_entries
		SET piece_number = $2, fiscal_year = $3, entry_date = $4, description = $5, last_updated_at = $6, last_updated_by = $7
		WHERE entry_id = $1 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, query,
		entry.EntryID,
		entry.PieceNumber,
		entry.FiscalYear,
		entry.EntryDate,
		entry.Description,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry %s: %w", entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrConflict, entry.EntryID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
		return fmt.Errorf("failed to delete journal lines for entry %s: %w", entry.EntryID, err)
	}
	if err := insertLinesTx(ctx, tx, entry.Lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// DeleteDraftEntry removes a draft entry and its lines.
func (r *PgxJournalRepository) DeleteDraftEntry(ctx context.Context, entryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1 AND EXISTS (SELECT 1 FROM journal_entries WHERE entry_id = $1 AND status = 'DRAFT');`, entryID); err != nil {
		return fmt.Errorf("failed to delete journal lines for entry %s: %w", entryID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1 AND status = 'DRAFT';`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrConflict, entryID)
	}
	return r.Commit(ctx, tx)
}

// MarkEntryValidated flips a draft to validated in one compare-and-set
// statement. Zero affected rows means the entry was not a draft at commit
// time: validated, deleted or reversed by a concurrent caller.
func (r *PgxJournalRepository) MarkEntryValidated(ctx context.Context, entryID string, validatedBy string, validatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'VALIDATED', validated_by = $2, validated_at = $3, last_updated_at = $3, last_updated_by = $2
		WHERE entry_id = $1 AND status = 'DRAFT';
	`
	tag, err := r.Pool.Exec(ctx, query, entryID, validatedBy, validatedAt)
	if err != nil {
		return fmt.Errorf("failed to validate journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrConflict, entryID)
	}
	return nil
}

// SaveReversal persists a validated reversal entry and annotates the
// original within one transaction. The original must still be VALIDATED;
// losing that race rolls back the reversal too.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, reversal domain.JournalEntry, originalEntryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryTx(ctx, tx, reversal); err != nil {
		return err
	}
	if err := insertLinesTx(ctx, tx, reversal.Lines); err != nil {
		return err
	}

	query := `
		UPDATE journal_entries
		SET status = 'REVERSED', reversed_by_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = 'VALIDATED';
	`
	tag, err := tx.Exec(ctx, query, originalEntryID, reversal.EntryID, reversal.CreatedAt, reversal.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to annotate reversed entry %s: %w", originalEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not validated", apperrors.ErrConflict, originalEntryID)
	}
	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, err
	}

	linesQuery := `
		SELECT line_id, entry_id, account_id, account_code, account_name, side, amount, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, linesQuery, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.JournalLine
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
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		entry.Lines = append(entry.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal lines: %w", err)
	}
	return entry, nil
}

// ListEntries retrieves a filtered, token-paginated list of entries without
// lines, ordered by (entry_date, piece_number).
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter portsrepo.ListEntriesFilter) ([]domain.JournalEntry, *string, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.From != nil {
		query += fmt.Sprintf(" AND entry_date >= $%d", argPos)
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND entry_date <= $%d", argPos)
		args = append(args, *filter.To)
		argPos++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		lastDate, lastPiece, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		query += fmt.Sprintf(" AND (entry_date, piece_number) > ($%d, $%d)", argPos, argPos+1)
		args = append(args, lastDate, lastPiece)
		argPos += 2
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(" ORDER BY entry_date, piece_number LIMIT $%d;", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate journal entries: %w", err)
	}

	var nextToken *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.EntryDate, last.PieceNumber)
		nextToken = &token
	}
	return entries, nextToken, nil
}

// CountDraftsInRange counts draft entries dated inside [start, end].
func (r *PgxJournalRepository) CountDraftsInRange(ctx context.Context, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM journal_entries WHERE status = 'DRAFT' AND entry_date BETWEEN $1 AND $2;`
	var count int
	if err := r.Pool.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count draft entries: %w", err)
	}
	return count, nil
}

// FindPostedLinesByAccount retrieves the lines of validated entries for an
// account in (entry_date, piece_number) order. Reversed entries still count:
// their lines stay in the log, offset by the reversal's lines.
func (r *PgxJournalRepository) FindPostedLinesByAccount(ctx context.Context, accountCode string, from, to *time.Time) ([]domain.PostedLine, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.account_id, l.account_code, l.account_name, l.side, l.amount,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by,
		       e.entry_date, e.piece_number, e.description
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_code = $1 AND e.status IN ('VALIDATED', 'REVERSED')`
	args := []any{accountCode}
	argPos := 2

	if from != nil {
		query += fmt.Sprintf(" AND e.entry_date >= $%d", argPos)
		args = append(args, *from)
		argPos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND e.entry_date <= $%d", argPos)
		args = append(args, *to)
		argPos++
	}
	query += ` ORDER BY e.entry_date, e.piece_number, l.created_at, l.line_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines for account %s: %w", accountCode, err)
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
			return nil, fmt.Errorf("failed to scan posted line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posted lines: %w", err)
	}
	return lines, nil
}
