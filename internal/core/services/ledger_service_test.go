package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockJournalReader *MockJournalReader
	mockChart         *MockAccountResolver
	service           portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockJournalReader = new(MockJournalReader)
	suite.mockChart = new(MockAccountResolver)
	suite.service = services.NewLedgerService(suite.mockJournalReader, suite.mockChart)
}

func postedLine(entryID, piece string, date time.Time, code string, side domain.EntrySide, amount string) domain.PostedLine {
	return domain.PostedLine{
		JournalLine: domain.JournalLine{
			LineID:      entryID + "-" + code,
			EntryID:     entryID,
			AccountCode: code,
			Side:        side,
			Amount:      decimal.RequireFromString(amount),
		},
		EntryDate:   date,
		PieceNumber: piece,
	}
}

func bankAccount() *domain.Account {
	return &domain.Account{AccountID: "acc-512", Code: "512", Name: "Banque", AccountType: domain.Asset, IsActive: true}
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestBalanceAsOf_AssetAccount() {
	ctx := context.Background()
	asOf := day(2026, time.January, 31)
	lines := []domain.PostedLine{
		postedLine("e1", "2026-000001", day(2026, time.January, 10), "512", domain.Debit, "100.00"),
		postedLine("e2", "2026-000002", day(2026, time.January, 15), "512", domain.Credit, "40.00"),
	}

	suite.mockChart.On("ResolveAccount", ctx, "512").Return(bankAccount(), nil).Once()
	suite.mockJournalReader.On("FindPostedLinesByAccount", ctx, "512", (*time.Time)(nil), &asOf).Return(lines, nil).Once()

	balance, err := suite.service.BalanceAsOf(ctx, "512", asOf)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("60.00")), "got %s", balance)
}

func (suite *LedgerServiceTestSuite) TestBalanceAsOf_RevenueAccountIsCreditNormal() {
	ctx := context.Background()
	asOf := day(2026, time.January, 31)
	revenue := &domain.Account{AccountID: "acc-706", Code: "706", AccountType: domain.Revenue, IsActive: true}
	lines := []domain.PostedLine{
		postedLine("e1", "2026-000001", day(2026, time.January, 10), "706", domain.Credit, "100.00"),
	}

	suite.mockChart.On("ResolveAccount", ctx, "706").Return(revenue, nil).Once()
	suite.mockJournalReader.On("FindPostedLinesByAccount", ctx, "706", (*time.Time)(nil), &asOf).Return(lines, nil).Once()

	balance, err := suite.service.BalanceAsOf(ctx, "706", asOf)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("100.00")), "got %s", balance)
}

func (suite *LedgerServiceTestSuite) TestMovements_RunningBalance() {
	ctx := context.Background()
	lines := []domain.PostedLine{
		postedLine("e1", "2026-000001", day(2026, time.January, 10), "512", domain.Debit, "100.00"),
		postedLine("e2", "2026-000002", day(2026, time.January, 15), "512", domain.Credit, "40.00"),
		postedLine("e3", "2026-000003", day(2026, time.January, 20), "512", domain.Debit, "10.00"),
	}

	suite.mockChart.On("ResolveAccount", ctx, "512").Return(bankAccount(), nil).Once()
	suite.mockJournalReader.On("FindPostedLinesByAccount", ctx, "512", (*time.Time)(nil), (*time.Time)(nil)).Return(lines, nil).Once()

	resp, err := suite.service.Movements(ctx, "512", dto.ListMovementsParams{})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Movements, 3)
	suite.True(resp.Movements[0].RunningBalance.Equal(decimal.RequireFromString("100.00")))
	suite.True(resp.Movements[1].RunningBalance.Equal(decimal.RequireFromString("60.00")))
	suite.True(resp.Movements[2].RunningBalance.Equal(decimal.RequireFromString("70.00")))
	suite.Nil(resp.NextToken)
}

func (suite *LedgerServiceTestSuite) TestMovements_WindowDoesNotShiftRunningBalance() {
	ctx := context.Background()
	from := day(2026, time.January, 15)
	lines := []domain.PostedLine{
		postedLine("e1", "2026-000001", day(2026, time.January, 10), "512", domain.Debit, "100.00"),
		postedLine("e2", "2026-000002", day(2026, time.January, 15), "512", domain.Credit, "40.00"),
	}

	suite.mockChart.On("ResolveAccount", ctx, "512").Return(bankAccount(), nil).Once()
	suite.mockJournalReader.On("FindPostedLinesByAccount", ctx, "512", (*time.Time)(nil), (*time.Time)(nil)).Return(lines, nil).Once()

	resp, err := suite.service.Movements(ctx, "512", dto.ListMovementsParams{From: &from})

	suite.Require().NoError(err)
	// Only the windowed movement is emitted, but its running balance still
	// reflects the full history before the window.
	suite.Require().Len(resp.Movements, 1)
	suite.Equal("e2", resp.Movements[0].EntryID)
	suite.True(resp.Movements[0].RunningBalance.Equal(decimal.RequireFromString("60.00")))
}

func (suite *LedgerServiceTestSuite) TestMovements_PaginationResumesExactly() {
	ctx := context.Background()
	lines := []domain.PostedLine{
		postedLine("e1", "2026-000001", day(2026, time.January, 10), "512", domain.Debit, "100.00"),
		postedLine("e2", "2026-000002", day(2026, time.January, 15), "512", domain.Credit, "40.00"),
		postedLine("e3", "2026-000003", day(2026, time.January, 20), "512", domain.Debit, "10.00"),
	}

	suite.mockChart.On("ResolveAccount", ctx, "512").Return(bankAccount(), nil)
	suite.mockJournalReader.On("FindPostedLinesByAccount", ctx, "512", (*time.Time)(nil), (*time.Time)(nil)).Return(lines, nil)

	first, err := suite.service.Movements(ctx, "512", dto.ListMovementsParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first.Movements, 2)
	suite.Require().NotNil(first.NextToken)

	second, err := suite.service.Movements(ctx, "512", dto.ListMovementsParams{Limit: 2, NextToken: first.NextToken})
	suite.Require().NoError(err)
	suite.Require().Len(second.Movements, 1)
	suite.Equal("e3", second.Movements[0].EntryID)
	suite.True(second.Movements[0].RunningBalance.Equal(decimal.RequireFromString("70.00")))
	suite.Nil(second.NextToken)
}

func (suite *LedgerServiceTestSuite) TestMovements_PageNeverSplitsAnEntry() {
	ctx := context.Background()
	sameDay := day(2026, time.January, 10)
	lines := []domain.PostedLine{
		postedLine("e1", "2026-000001", sameDay, "512", domain.Debit, "100.00"),
		{
			JournalLine: domain.JournalLine{
				LineID:      "e1-512-b",
				EntryID:     "e1",
				AccountCode: "512",
				Side:        domain.Debit,
				Amount:      decimal.RequireFromString("5.00"),
			},
			EntryDate:   sameDay,
			PieceNumber: "2026-000001",
		},
		postedLine("e2", "2026-000002", day(2026, time.January, 15), "512", domain.Credit, "40.00"),
	}

	suite.mockChart.On("ResolveAccount", ctx, "512").Return(bankAccount(), nil).Once()
	suite.mockJournalReader.On("FindPostedLinesByAccount", ctx, "512", (*time.Time)(nil), (*time.Time)(nil)).Return(lines, nil).Once()

	resp, err := suite.service.Movements(ctx, "512", dto.ListMovementsParams{Limit: 1})

	suite.Require().NoError(err)
	// Both lines of e1 land on the first page even though the limit is 1.
	suite.Require().Len(resp.Movements, 2)
	suite.Equal("e1", resp.Movements[0].EntryID)
	suite.Equal("e1", resp.Movements[1].EntryID)
	suite.Require().NotNil(resp.NextToken)
}

func (suite *LedgerServiceTestSuite) TestMovements_Deterministic() {
	ctx := context.Background()
	lines := []domain.PostedLine{
		postedLine("e1", "2026-000001", day(2026, time.January, 10), "512", domain.Debit, "100.00"),
		postedLine("e2", "2026-000002", day(2026, time.January, 15), "512", domain.Credit, "40.00"),
	}

	suite.mockChart.On("ResolveAccount", ctx, "512").Return(bankAccount(), nil)
	suite.mockJournalReader.On("FindPostedLinesByAccount", ctx, "512", mock.Anything, mock.Anything).Return(lines, nil)

	first, err := suite.service.Movements(ctx, "512", dto.ListMovementsParams{})
	suite.Require().NoError(err)
	second, err := suite.service.Movements(ctx, "512", dto.ListMovementsParams{})
	suite.Require().NoError(err)

	suite.Equal(first, second)
}

// --- Run Test Suite ---
func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
