package dto

import (
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceResponse is the derived balance of an account at a point in time.
type BalanceResponse struct {
	AccountCode string          `json:"accountCode"`
	AsOf        string          `json:"asOf"`
	Balance     decimal.Decimal `json:"balance"`
}

// ListMovementsParams holds filters for an account movement listing.
type ListMovementsParams struct {
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int        `form:"limit"`
	NextToken *string    `form:"nextToken"`
}

// MovementResponse defines one ledger movement with its running balance.
type MovementResponse struct {
	EntryID        string          `json:"entryID"`
	PieceNumber    string          `json:"pieceNumber"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Side           string          `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// ListMovementsResponse wraps a restartable movement sequence: feeding
// NextToken back resumes exactly where the previous page stopped.
type ListMovementsResponse struct {
	AccountCode string             `json:"accountCode"`
	Movements   []MovementResponse `json:"movements"`
	NextToken   *string            `json:"nextToken,omitempty"`
}

// ToMovementResponse converts a domain.LedgerMovement to its response DTO.
func ToMovementResponse(m *domain.LedgerMovement) MovementResponse {
	return MovementResponse{
		EntryID:        m.EntryID,
		PieceNumber:    m.PieceNumber,
		Date:           m.EntryDate,
		Description:    m.Description,
		Side:           string(m.Side),
		Amount:         m.Amount,
		RunningBalance: m.RunningBalance,
	}
}
