package domain_test

import (
	"testing"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEntryStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from domain.EntryStatus
		to   domain.EntryStatus
		want bool
	}{
		{"draft to validated", domain.StatusDraft, domain.StatusValidated, true},
		{"draft to reversed", domain.StatusDraft, domain.StatusReversed, false},
		{"validated to reversed", domain.StatusValidated, domain.StatusReversed, true},
		{"validated to draft", domain.StatusValidated, domain.StatusDraft, false},
		{"reversed to validated", domain.StatusReversed, domain.StatusValidated, false},
		{"reversed to draft", domain.StatusReversed, domain.StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJournalEntry_IsBalanced(t *testing.T) {
	balanced := domain.JournalEntry{
		Lines: []domain.JournalLine{
			{AccountCode: "601", Side: domain.Debit, Amount: decimal.RequireFromString("100.00")},
			{AccountCode: "512", Side: domain.Credit, Amount: decimal.RequireFromString("100.00")},
		},
	}
	assert.True(t, balanced.IsBalanced())
	assert.True(t, balanced.DebitTotal().Equal(decimal.RequireFromString("100.00")))
	assert.True(t, balanced.CreditTotal().Equal(decimal.RequireFromString("100.00")))

	// One centime off must never balance: exact equality, no tolerance.
	unbalanced := domain.JournalEntry{
		Lines: []domain.JournalLine{
			{AccountCode: "601", Side: domain.Debit, Amount: decimal.RequireFromString("100.00")},
			{AccountCode: "512", Side: domain.Credit, Amount: decimal.RequireFromString("99.99")},
		},
	}
	assert.False(t, unbalanced.IsBalanced())
}

func TestJournalLine_SignedAmount(t *testing.T) {
	hundred := decimal.RequireFromString("100.00")

	tests := []struct {
		name        string
		side        domain.EntrySide
		accountType domain.AccountType
		want        string
	}{
		{"debit to asset", domain.Debit, domain.Asset, "100.00"},
		{"credit to asset", domain.Credit, domain.Asset, "-100.00"},
		{"debit to expense", domain.Debit, domain.Expense, "100.00"},
		{"credit to expense", domain.Credit, domain.Expense, "-100.00"},
		{"debit to liability", domain.Debit, domain.Liability, "-100.00"},
		{"credit to liability", domain.Credit, domain.Liability, "100.00"},
		{"debit to equity", domain.Debit, domain.Equity, "-100.00"},
		{"credit to revenue", domain.Credit, domain.Revenue, "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := domain.JournalLine{Side: tt.side, Amount: hundred}
			got, err := line.SignedAmount(tt.accountType)
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}

	_, err := domain.JournalLine{Side: domain.Debit, Amount: hundred}.SignedAmount(domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestEntrySide_Opposite(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Opposite())
	assert.Equal(t, domain.Debit, domain.Credit.Opposite())
}
