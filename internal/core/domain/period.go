package domain

import "time"

// PeriodStatus is the lifecycle state of a fiscal period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED"
)

// CanTransitionTo is the exhaustive transition function for the period
// lifecycle. Locked is terminal.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	switch s {
	case PeriodOpen:
		return next == PeriodClosed
	case PeriodClosed:
		return next == PeriodLocked || next == PeriodOpen
	case PeriodLocked:
		return false
	}
	return false
}

// AcceptsPostings reports whether entries dated inside the period may be
// created or validated.
func (s PeriodStatus) AcceptsPostings() bool {
	return s == PeriodOpen
}

// FiscalPeriod is a non-overlapping, contiguous date range gating which
// entries may post. Dates are inclusive on both ends.
type FiscalPeriod struct {
	PeriodID   string       `json:"periodID"`
	Name       string       `json:"name"` // e.g. "2026-01"
	FiscalYear int          `json:"fiscalYear"`
	StartDate  time.Time    `json:"startDate"`
	EndDate    time.Time    `json:"endDate"`
	Status     PeriodStatus `json:"status"`
	ClosedAt   *time.Time   `json:"closedAt,omitempty"`
	ClosedBy   *string      `json:"closedBy,omitempty"`
	LockedAt   *time.Time   `json:"lockedAt,omitempty"`
	LockedBy   *string      `json:"lockedBy,omitempty"`
	AuditFields
}

// Contains reports whether the given date falls inside the period.
func (p FiscalPeriod) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Overlaps reports whether the period intersects the [start, end] range.
func (p FiscalPeriod) Overlaps(start, end time.Time) bool {
	return !p.StartDate.After(end) && !p.EndDate.Before(start)
}
