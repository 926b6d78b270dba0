package domain_test

import (
	"testing"
	"time"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestPeriodStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from domain.PeriodStatus
		to   domain.PeriodStatus
		want bool
	}{
		{"open to closed", domain.PeriodOpen, domain.PeriodClosed, true},
		{"open to locked", domain.PeriodOpen, domain.PeriodLocked, false},
		{"closed to locked", domain.PeriodClosed, domain.PeriodLocked, true},
		{"closed to open (reopen)", domain.PeriodClosed, domain.PeriodOpen, true},
		{"locked to open", domain.PeriodLocked, domain.PeriodOpen, false},
		{"locked to closed", domain.PeriodLocked, domain.PeriodClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFiscalPeriod_Contains(t *testing.T) {
	period := domain.FiscalPeriod{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, period.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFiscalPeriod_Overlaps(t *testing.T) {
	period := domain.FiscalPeriod{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	// Adjacent but not overlapping.
	assert.False(t, period.Overlaps(
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	))
	// Shares a single day.
	assert.True(t, period.Overlaps(
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	))
	// Fully contained.
	assert.True(t, period.Overlaps(
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
	))
}
