package dto

import (
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLineRequest is one movement inside an entry creation payload.
// Amounts are decimal strings on the wire, never binary floating point.
type CreateEntryLineRequest struct {
	AccountCode string           `json:"accountCode" binding:"required"`
	Side        domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
}

// CreateEntryRequest defines the payload for creating a draft journal entry.
// PieceNumber may be omitted; the engine then assigns the next sequential
// number for the entry's fiscal year.
type CreateEntryRequest struct {
	Date          time.Time                `json:"date" binding:"required"`
	PieceNumber   *string                  `json:"pieceNumber,omitempty"`
	Description   string                   `json:"description" binding:"required"`
	Lines         []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
	ReferenceID   *string                  `json:"referenceID,omitempty"`
	ReferenceType *string                  `json:"referenceType,omitempty"`
}

// UpdateEntryRequest defines the payload for editing a draft entry.
// Nil fields are left unchanged; non-nil Lines replace the draft's lines.
type UpdateEntryRequest struct {
	Date        *time.Time               `json:"date,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Lines       []CreateEntryLineRequest `json:"lines,omitempty" binding:"omitempty,min=2,dive"`
}

// ReverseEntryRequest defines the payload for reversing a validated entry.
// Date defaults to today and must fall inside an open period.
type ReverseEntryRequest struct {
	Reason string     `json:"reason" binding:"required"`
	Date   *time.Time `json:"date,omitempty"`
}

// EntryLineResponse defines the data returned for a journal line.
type EntryLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID           string              `json:"entryID"`
	PieceNumber       string              `json:"pieceNumber"`
	FiscalYear        int                 `json:"fiscalYear"`
	Date              time.Time           `json:"date"`
	Description       string              `json:"description"`
	Status            string              `json:"status"`
	IsSystemGenerated bool                `json:"isSystemGenerated"`
	ReferenceID       *string             `json:"referenceID,omitempty"`
	ReferenceType     *string             `json:"referenceType,omitempty"`
	OriginalEntryID   *string             `json:"originalEntryID,omitempty"`
	ReversedByEntryID *string             `json:"reversedByEntryID,omitempty"`
	ValidatedBy       *string             `json:"validatedBy,omitempty"`
	ValidatedAt       *time.Time          `json:"validatedAt,omitempty"`
	Lines             []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	CreatedBy         string              `json:"createdBy"`
}

// ListEntriesParams holds filters for listing journal entries.
type ListEntriesParams struct {
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Status    *string    `form:"status"`
	Limit     int        `form:"limit"`
	NextToken *string    `form:"nextToken"`
}

// ListEntriesResponse wraps a paginated entry listing.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryLineResponse converts a domain.JournalLine to its response DTO.
func ToEntryLineResponse(l *domain.JournalLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:      l.LineID,
		AccountCode: l.AccountCode,
		AccountName: l.AccountName,
		Side:        string(l.Side),
		Amount:      l.Amount,
	}
}

// ToEntryResponse converts a domain.JournalEntry to its response DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:           e.EntryID,
		PieceNumber:       e.PieceNumber,
		FiscalYear:        e.FiscalYear,
		Date:              e.EntryDate,
		Description:       e.Description,
		Status:            string(e.Status),
		IsSystemGenerated: e.IsSystemGenerated,
		ReferenceID:       e.ReferenceID,
		ReferenceType:     e.ReferenceType,
		OriginalEntryID:   e.OriginalEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		ValidatedBy:       e.ValidatedBy,
		ValidatedAt:       e.ValidatedAt,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]EntryLineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToEntryLineResponse(&e.Lines[i])
		}
	}
	return resp
}
