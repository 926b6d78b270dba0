package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a journal line is a debit or a credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Opposite returns the flipped side, used when building reversal entries.
func (s EntrySide) Opposite() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// EntryStatus is the lifecycle state of a journal entry.
//
// DRAFT entries are mutable and invisible to ledger projections.
// VALIDATED entries are immutable; only cross-reference metadata may be
// appended. REVERSED is a validated entry annotated with the entry that
// reverses it; its lines still participate in projections.
type EntryStatus string

const (
	StatusDraft     EntryStatus = "DRAFT"
	StatusValidated EntryStatus = "VALIDATED"
	StatusReversed  EntryStatus = "REVERSED"
)

// CanTransitionTo is the exhaustive transition function for the entry
// lifecycle. Anything not listed here is an illegal transition.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusValidated
	case StatusValidated:
		return next == StatusReversed
	case StatusReversed:
		return false
	}
	return false
}

// IsPosted reports whether the entry's lines are reflected in ledger
// projections.
func (s EntryStatus) IsPosted() bool {
	return s == StatusValidated || s == StatusReversed
}

// JournalLine is one movement within an entry. Account code and name are
// snapshot at creation time so later account renames never affect history.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"` // Denormalized snapshot
	AccountName string          `json:"accountName"` // Denormalized snapshot
	Side        EntrySide       `json:"side"`
	Amount      decimal.Decimal `json:"amount"` // Always non-negative
	AuditFields
}

// SignedAmount applies the ledger sign convention for the given account type:
// debits increase asset/expense balances, credits increase
// liability/equity/revenue balances.
func (l JournalLine) SignedAmount(accountType AccountType) (decimal.Decimal, error) {
	isDebit := l.Side == Debit
	switch accountType {
	case Asset, Expense:
		if !isDebit {
			return l.Amount.Neg(), nil
		}
	case Liability, Equity, Revenue:
		if isDebit {
			return l.Amount.Neg(), nil
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' for account %s", accountType, l.AccountCode)
	}
	return l.Amount, nil
}

// JournalEntry is an atomic, dated financial event composed of at least two
// balanced lines.
type JournalEntry struct {
	EntryID           string        `json:"entryID"`
	PieceNumber       string        `json:"pieceNumber"` // Unique, sequential per fiscal year
	FiscalYear        int           `json:"fiscalYear"`
	EntryDate         time.Time     `json:"entryDate"`
	Description       string        `json:"description"`
	Status            EntryStatus   `json:"status"`
	IsSystemGenerated bool          `json:"isSystemGenerated"`
	ReferenceID       *string       `json:"referenceID,omitempty"`       // Source event link (order, payroll, ...)
	ReferenceType     *string       `json:"referenceType,omitempty"`     // e.g. "ORDER", "PAYROLL", "MANUAL"
	OriginalEntryID   *string       `json:"originalEntryID,omitempty"`   // Set on reversal entries
	ReversedByEntryID *string       `json:"reversedByEntryID,omitempty"` // Annotation on the reversed original
	ValidatedBy       *string       `json:"validatedBy,omitempty"`
	ValidatedAt       *time.Time    `json:"validatedAt,omitempty"`
	Lines             []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// DebitTotal sums the debit-side lines.
func (e JournalEntry) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Debit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// CreditTotal sums the credit-side lines.
func (e JournalEntry) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Credit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// IsBalanced reports whether the fundamental identity holds for the entry:
// total debits equal total credits, exactly.
func (e JournalEntry) IsBalanced() bool {
	return e.DebitTotal().Equal(e.CreditTotal())
}

// PostedLine is a journal line of a validated entry joined with the entry
// fields that order it in the ledger. Repositories return posted lines in
// (entry date, piece number) order; projections fold over that sequence.
type PostedLine struct {
	JournalLine
	EntryDate        time.Time `json:"entryDate"`
	PieceNumber      string    `json:"pieceNumber"`
	EntryDescription string    `json:"entryDescription"`
}

// LedgerMovement is a derived view of one validated journal line against an
// account, carrying the running balance after the movement has been applied.
type LedgerMovement struct {
	EntryID        string          `json:"entryID"`
	PieceNumber    string          `json:"pieceNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	Side           EntrySide       `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}
