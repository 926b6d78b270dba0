package repositories

import (
	"context"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
)

// ListEntriesFilter narrows an entry listing.
type ListEntriesFilter struct {
	From      *time.Time
	To        *time.Time
	Status    *domain.EntryStatus
	Limit     int
	NextToken *string
}

// JournalReader defines read operations for the journal log.
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a filtered, token-paginated list of entries
	// (without lines) ordered by (entry_date, piece_number).
	ListEntries(ctx context.Context, filter ListEntriesFilter) ([]domain.JournalEntry, *string, error)

	// CountDraftsInRange counts draft entries dated inside [start, end].
	CountDraftsInRange(ctx context.Context, start, end time.Time) (int, error)

	// FindPostedLinesByAccount retrieves the lines of validated entries for an
	// account, ordered by (entry_date, piece_number). from/to bound the entry
	// date inclusively; either may be nil.
	FindPostedLinesByAccount(ctx context.Context, accountCode string, from, to *time.Time) ([]domain.PostedLine, error)
}

// JournalWriter defines write operations for the journal log. The log is
// append-only: validated entries are never updated except for the status
// transition itself and cross-reference annotations.
type JournalWriter interface {
	// SaveDraftEntry persists a new draft entry and its lines atomically.
	SaveDraftEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateDraftEntry replaces the mutable fields and lines of a draft.
	// Returns apperrors.ErrConflict if the entry is no longer a draft.
	UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error

	// DeleteDraftEntry removes a draft entry and its lines.
	// Returns apperrors.ErrConflict if the entry is no longer a draft.
	DeleteDraftEntry(ctx context.Context, entryID string) error

	// MarkEntryValidated flips a draft to validated in a single atomic
	// compare-and-set. Returns apperrors.ErrConflict if the entry was not in
	// draft state at commit time.
	MarkEntryValidated(ctx context.Context, entryID string, validatedBy string, validatedAt time.Time) error

	// SaveReversal persists a validated reversal entry and annotates the
	// original with the reversing entry ID within one transaction.
	SaveReversal(ctx context.Context, reversal domain.JournalEntry, originalEntryID string) error
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
