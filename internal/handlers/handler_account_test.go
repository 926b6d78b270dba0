package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/handlers"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/platform/config"
)

// --- Mock ChartOfAccountsService ---
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest, creatorID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) ResolveAccount(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartService) ResolveAccounts(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockChartService) DeactivateAccount(ctx context.Context, code string, updatedBy string) error {
	args := m.Called(ctx, code, updatedBy)
	return args.Error(0)
}

func (m *MockChartService) ReactivateAccount(ctx context.Context, code string, updatedBy string) error {
	args := m.Called(ctx, code, updatedBy)
	return args.Error(0)
}

func (m *MockChartService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ChartOfAccountsSvcFacade = (*MockChartService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockChartService *MockChartService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockChartService = new(MockChartService)

	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Chart: suite.mockChartService,
	})
}

func (suite *AccountHandlerTestSuite) doJSON(method, url string, body any, actorID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			suite.FailNow("Failed to encode request body", err.Error())
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestRegisterAccount_Success() {
	req := dto.RegisterAccountRequest{
		Code:        "512",
		Name:        "Banque",
		AccountType: domain.Asset,
		Class:       5,
	}
	created := &domain.Account{
		AccountID:   "acc-512",
		Code:        "512",
		Name:        "Banque",
		AccountType: domain.Asset,
		Class:       5,
		IsActive:    true,
	}

	suite.mockChartService.On("RegisterAccount",
		mock.AnythingOfType("*context.valueCtx"),
		req,
		"user-1",
	).Return(created, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", req, "user-1")

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("512", resp.Code)
	suite.Equal("ASSET", resp.AccountType)
	suite.True(resp.IsActive)
	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestRegisterAccount_MissingActorHeader() {
	req := dto.RegisterAccountRequest{
		Code:        "512",
		Name:        "Banque",
		AccountType: domain.Asset,
		Class:       5,
	}

	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", req, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockChartService.AssertNotCalled(suite.T(), "RegisterAccount")
}

func (suite *AccountHandlerTestSuite) TestRegisterAccount_InvalidBody() {
	// Class outside 1..9 fails binding before the service is consulted.
	payload := map[string]any{
		"code":        "512",
		"name":        "Banque",
		"accountType": "ASSET",
		"class":       12,
	}

	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", payload, "user-1")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockChartService.AssertNotCalled(suite.T(), "RegisterAccount")
}

func (suite *AccountHandlerTestSuite) TestRegisterAccount_DuplicateMapsToConflict() {
	req := dto.RegisterAccountRequest{
		Code:        "512",
		Name:        "Banque",
		AccountType: domain.Asset,
		Class:       5,
	}

	suite.mockChartService.On("RegisterAccount",
		mock.AnythingOfType("*context.valueCtx"),
		req,
		"user-1",
	).Return(nil, fmt.Errorf("%w: account code 512", apperrors.ErrDuplicate)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/accounts", req, "user-1")

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccountByCode_NotFound() {
	suite.mockChartService.On("ResolveAccount",
		mock.AnythingOfType("*context.valueCtx"),
		"999",
	).Return(nil, fmt.Errorf("%w: account 999", apperrors.ErrNotFound)).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/accounts/999", nil, "user-1")

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_IncludeInactiveQuery() {
	accounts := []domain.Account{
		{AccountID: "acc-512", Code: "512", Name: "Banque", AccountType: domain.Asset, Class: 5, IsActive: true},
		{AccountID: "acc-606", Code: "606", Name: "Fournitures", AccountType: domain.Expense, Class: 6, IsActive: false},
	}

	suite.mockChartService.On("ListAccounts",
		mock.AnythingOfType("*context.valueCtx"),
		true,
	).Return(accounts, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/accounts?includeInactive=true", nil, "user-1")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListAccountsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Accounts, 2)
	suite.False(resp.Accounts[1].IsActive)
}

func (suite *AccountHandlerTestSuite) TestDeactivateAccount_NoContent() {
	suite.mockChartService.On("DeactivateAccount",
		mock.AnythingOfType("*context.valueCtx"),
		"606",
		"user-1",
	).Return(nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/accounts/606/deactivate", nil, "user-1")

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockChartService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestHealthCheck() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
