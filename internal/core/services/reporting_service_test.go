package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/services"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockPeriod        *MockPeriodService
	service           portssvc.ReportingSvcFacade
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockPeriod = new(MockPeriodService)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockPeriod)
}

func tbRow(code, name string, accountType domain.AccountType, debit, credit string) domain.TrialBalanceRow {
	return domain.TrialBalanceRow{
		AccountCode: code,
		AccountName: name,
		AccountType: accountType,
		Debit:       decimal.RequireFromString(debit),
		Credit:      decimal.RequireFromString(credit),
	}
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestTrialBalance_OpenPeriodComputedLive() {
	ctx := context.Background()
	period := openPeriod("p1")
	rows := []domain.TrialBalanceRow{
		tbRow("512", "Banque", domain.Asset, "100.00", "0"),
		tbRow("706", "Prestations de services", domain.Revenue, "0", "100.00"),
	}

	suite.mockPeriod.On("GetPeriodByID", ctx, "p1").Return(period, nil).Once()
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, period.StartDate, period.EndDate).Return(rows, nil).Once()

	resp, err := suite.service.TrialBalance(ctx, "p1")

	suite.Require().NoError(err)
	suite.Len(resp.Rows, 2)
	suite.True(resp.Totals.Debit.Equal(decimal.RequireFromString("100.00")))
	suite.True(resp.Totals.Credit.Equal(decimal.RequireFromString("100.00")))
	suite.True(resp.IsBalanced)
	suite.mockPeriod.AssertNotCalled(suite.T(), "GetSnapshot")
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_ClosedPeriodReadsSnapshot() {
	ctx := context.Background()
	period := openPeriod("p1")
	period.Status = domain.PeriodClosed
	rows := []domain.TrialBalanceRow{
		tbRow("512", "Banque", domain.Asset, "250.00", "0"),
		tbRow("706", "Prestations de services", domain.Revenue, "0", "250.00"),
	}

	suite.mockPeriod.On("GetPeriodByID", ctx, "p1").Return(period, nil).Once()
	suite.mockPeriod.On("GetSnapshot", ctx, "p1").Return(rows, nil).Once()

	resp, err := suite.service.TrialBalance(ctx, "p1")

	suite.Require().NoError(err)
	suite.True(resp.IsBalanced)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetTrialBalanceData")
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_OutOfBalanceHaltsPeriodWrites() {
	ctx := context.Background()
	period := openPeriod("p1")
	rows := []domain.TrialBalanceRow{
		tbRow("512", "Banque", domain.Asset, "100.00", "0"),
		tbRow("706", "Prestations de services", domain.Revenue, "0", "99.99"),
	}

	suite.mockPeriod.On("GetPeriodByID", ctx, "p1").Return(period, nil).Once()
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, period.StartDate, period.EndDate).Return(rows, nil).Once()
	suite.mockPeriod.On("HaltPeriodWrites", "p1", mock.MatchedBy(func(reason string) bool {
		return strings.Contains(reason, "out of balance")
	})).Return().Once()

	resp, err := suite.service.TrialBalance(ctx, "p1")

	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrInternal)
	suite.mockPeriod.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_ClosedPeriodDerivedFromSnapshot() {
	ctx := context.Background()
	period := openPeriod("p1")
	period.Status = domain.PeriodClosed
	rows := []domain.TrialBalanceRow{
		tbRow("512", "Banque", domain.Asset, "300.00", "0"),
		tbRow("706", "Prestations de services", domain.Revenue, "0", "500.00"),
		tbRow("601", "Achats matieres premieres", domain.Expense, "200.00", "0"),
	}

	suite.mockPeriod.On("GetPeriodByID", ctx, "p1").Return(period, nil).Once()
	suite.mockPeriod.On("GetSnapshot", ctx, "p1").Return(rows, nil).Once()

	resp, err := suite.service.ProfitAndLoss(ctx, "p1")

	suite.Require().NoError(err)
	suite.Require().Len(resp.Revenue, 1)
	suite.Require().Len(resp.Expenses, 1)
	suite.True(resp.Revenue[0].Amount.Equal(decimal.RequireFromString("500.00")))
	suite.True(resp.Expenses[0].Amount.Equal(decimal.RequireFromString("200.00")))
	suite.True(resp.Summary.NetResult.Equal(decimal.RequireFromString("300.00")))
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetProfitAndLossData")
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_OpenPeriodComputedLive() {
	ctx := context.Background()
	period := openPeriod("p1")
	revenue := []domain.AccountAmount{
		{AccountCode: "706", AccountName: "Prestations de services", Amount: decimal.RequireFromString("150.00")},
	}
	expenses := []domain.AccountAmount{
		{AccountCode: "601", AccountName: "Achats matieres premieres", Amount: decimal.RequireFromString("180.00")},
	}

	suite.mockPeriod.On("GetPeriodByID", ctx, "p1").Return(period, nil).Once()
	suite.mockReportingRepo.On("GetProfitAndLossData", ctx, period.StartDate, period.EndDate).Return(revenue, expenses, nil).Once()

	resp, err := suite.service.ProfitAndLoss(ctx, "p1")

	suite.Require().NoError(err)
	suite.True(resp.Summary.NetResult.Equal(decimal.RequireFromString("-30.00")), "a loss stays signed, not clamped")
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_SyntheticCurrentEarningsRow() {
	ctx := context.Background()
	asOf := day(2026, time.January, 31)
	assets := []domain.AccountAmount{
		{AccountCode: "512", AccountName: "Banque", Amount: decimal.RequireFromString("300.00")},
	}
	equity := []domain.AccountAmount{
		{AccountCode: "101", AccountName: "Capital", Amount: decimal.RequireFromString("250.00")},
	}
	revenue := []domain.AccountAmount{
		{AccountCode: "706", AccountName: "Prestations de services", Amount: decimal.RequireFromString("90.00")},
	}
	expenses := []domain.AccountAmount{
		{AccountCode: "601", AccountName: "Achats matieres premieres", Amount: decimal.RequireFromString("40.00")},
	}

	suite.mockReportingRepo.On("GetBalanceSheetData", ctx, asOf).Return(assets, []domain.AccountAmount{}, equity, nil).Once()
	suite.mockReportingRepo.On("GetProfitAndLossData", ctx, time.Time{}, asOf).Return(revenue, expenses, nil).Once()

	resp, err := suite.service.BalanceSheet(ctx, asOf)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Equity, 2)
	suite.Equal("120", resp.Equity[1].AccountCode)
	suite.Equal("Resultat de l'exercice", resp.Equity[1].AccountName)
	suite.True(resp.Equity[1].Amount.Equal(decimal.RequireFromString("50.00")))
	suite.True(resp.Summary.TotalEquity.Equal(decimal.RequireFromString("300.00")))
	suite.True(resp.IsBalanced)
	suite.Equal("2026-01-31", resp.AsOf)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_ZeroNetResultAddsNoRow() {
	ctx := context.Background()
	asOf := day(2026, time.January, 31)
	assets := []domain.AccountAmount{
		{AccountCode: "512", AccountName: "Banque", Amount: decimal.RequireFromString("250.00")},
	}
	equity := []domain.AccountAmount{
		{AccountCode: "101", AccountName: "Capital", Amount: decimal.RequireFromString("250.00")},
	}

	suite.mockReportingRepo.On("GetBalanceSheetData", ctx, asOf).Return(assets, []domain.AccountAmount{}, equity, nil).Once()
	suite.mockReportingRepo.On("GetProfitAndLossData", ctx, time.Time{}, asOf).Return([]domain.AccountAmount{}, []domain.AccountAmount{}, nil).Once()

	resp, err := suite.service.BalanceSheet(ctx, asOf)

	suite.Require().NoError(err)
	suite.Len(resp.Equity, 1)
	suite.True(resp.IsBalanced)
}

// --- Run Test Suite ---
func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
