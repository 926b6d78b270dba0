package dto

import (
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
)

// OpenPeriodRequest defines the payload for opening a fiscal period.
type OpenPeriodRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// PeriodResponse defines the data returned for a fiscal period.
type PeriodResponse struct {
	PeriodID   string     `json:"periodID"`
	Name       string     `json:"name"`
	FiscalYear int        `json:"fiscalYear"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	Status     string     `json:"status"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
	ClosedBy   *string    `json:"closedBy,omitempty"`
	LockedAt   *time.Time `json:"lockedAt,omitempty"`
	LockedBy   *string    `json:"lockedBy,omitempty"`
}

// ListPeriodsResponse wraps a period listing.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}

// ToPeriodResponse converts a domain.FiscalPeriod to its response DTO.
func ToPeriodResponse(p *domain.FiscalPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:   p.PeriodID,
		Name:       p.Name,
		FiscalYear: p.FiscalYear,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		Status:     string(p.Status),
		ClosedAt:   p.ClosedAt,
		ClosedBy:   p.ClosedBy,
		LockedAt:   p.LockedAt,
		LockedBy:   p.LockedBy,
	}
}
