package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/handlers"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/platform/config"
)

// --- Mock JournalService ---
type MockJournalSvc struct {
	mock.Mock
}

func (m *MockJournalSvc) CreateDraft(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) EditDraft(ctx context.Context, entryID string, req dto.UpdateEntryRequest, updatedBy string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, req, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) DeleteDraft(ctx context.Context, entryID string, deletedBy string) error {
	args := m.Called(ctx, entryID, deletedBy)
	return args.Error(0)
}

func (m *MockJournalSvc) ValidateEntry(ctx context.Context, entryID string, validatedBy string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, validatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) ReverseEntry(ctx context.Context, entryID string, req dto.ReverseEntryRequest, requestedBy string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, req, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.JournalSvcFacade = (*MockJournalSvc)(nil)

// --- Test Suite ---
type JournalHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockJournalService *MockJournalSvc
}

func (suite *JournalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockJournalService = new(MockJournalSvc)

	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Journal: suite.mockJournalService,
	})
}

func (suite *JournalHandlerTestSuite) doJSON(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			suite.FailNow("Failed to encode request body", err.Error())
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "user-1")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func draftRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		Date:        time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		Description: "Service du soir",
		Lines: []dto.CreateEntryLineRequest{
			{AccountCode: "512", Side: domain.Debit, Amount: decimal.RequireFromString("100.00")},
			{AccountCode: "706", Side: domain.Credit, Amount: decimal.RequireFromString("100.00")},
		},
	}
}

func draftEntry() *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     "e1",
		PieceNumber: "2026-000001",
		FiscalYear:  2026,
		EntryDate:   time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		Description: "Service du soir",
		Status:      domain.StatusDraft,
		Lines: []domain.JournalLine{
			{LineID: "l1", EntryID: "e1", AccountCode: "512", AccountName: "Banque", Side: domain.Debit, Amount: decimal.RequireFromString("100.00")},
			{LineID: "l2", EntryID: "e1", AccountCode: "706", AccountName: "Prestations de services", Side: domain.Credit, Amount: decimal.RequireFromString("100.00")},
		},
	}
}

// --- Test Cases ---

func (suite *JournalHandlerTestSuite) TestCreateDraft_Success() {
	req := draftRequest()

	suite.mockJournalService.On("CreateDraft",
		mock.AnythingOfType("*context.valueCtx"),
		mock.MatchedBy(func(r dto.CreateEntryRequest) bool {
			return r.Description == req.Description && len(r.Lines) == 2
		}),
		"user-1",
	).Return(draftEntry(), nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2026-000001", resp.PieceNumber)
	suite.Equal("DRAFT", resp.Status)
	suite.Len(resp.Lines, 2)
	suite.mockJournalService.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestCreateDraft_SingleLineFailsBinding() {
	req := draftRequest()
	req.Lines = req.Lines[:1]

	w := suite.doJSON(http.MethodPost, "/api/v1/entries", req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "CreateDraft")
}

func (suite *JournalHandlerTestSuite) TestCreateDraft_UnbalancedMapsToBadRequest() {
	req := draftRequest()

	suite.mockJournalService.On("CreateDraft",
		mock.AnythingOfType("*context.valueCtx"),
		mock.AnythingOfType("dto.CreateEntryRequest"),
		"user-1",
	).Return(nil, fmt.Errorf("%w: debits 100.00, credits 99.99", services.ErrEntryUnbalanced)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries", req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *JournalHandlerTestSuite) TestValidateEntry_Success() {
	validated := draftEntry()
	validated.Status = domain.StatusValidated

	suite.mockJournalService.On("ValidateEntry",
		mock.AnythingOfType("*context.valueCtx"),
		"e1",
		"user-1",
	).Return(validated, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/e1/validate", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.EntryResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("VALIDATED", resp.Status)
}

func (suite *JournalHandlerTestSuite) TestValidateEntry_AlreadyValidatedMapsToConflict() {
	suite.mockJournalService.On("ValidateEntry",
		mock.AnythingOfType("*context.valueCtx"),
		"e1",
		"user-1",
	).Return(nil, fmt.Errorf("%w: entry e1 is VALIDATED", services.ErrEntryNotDraft)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/e1/validate", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *JournalHandlerTestSuite) TestValidateEntry_PeriodBusyMapsToServiceUnavailable() {
	suite.mockJournalService.On("ValidateEntry",
		mock.AnythingOfType("*context.valueCtx"),
		"e1",
		"user-1",
	).Return(nil, fmt.Errorf("%w: period p1", apperrors.ErrBusy)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/e1/validate", nil)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *JournalHandlerTestSuite) TestReverseEntry_Created() {
	reversal := draftEntry()
	reversal.EntryID = "e2"
	reversal.PieceNumber = "2026-000002"
	reversal.Status = domain.StatusValidated
	reversal.IsSystemGenerated = true

	suite.mockJournalService.On("ReverseEntry",
		mock.AnythingOfType("*context.valueCtx"),
		"e1",
		mock.MatchedBy(func(r dto.ReverseEntryRequest) bool {
			return r.Reason == "erreur de saisie"
		}),
		"user-1",
	).Return(reversal, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/e1/reverse", dto.ReverseEntryRequest{Reason: "erreur de saisie"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2026-000002", resp.PieceNumber)
	suite.True(resp.IsSystemGenerated)
}

func (suite *JournalHandlerTestSuite) TestDeleteDraft_ValidatedMapsToConflict() {
	suite.mockJournalService.On("DeleteDraft",
		mock.AnythingOfType("*context.valueCtx"),
		"e1",
		"user-1",
	).Return(fmt.Errorf("%w: entry e1 is VALIDATED", services.ErrEntryNotDraft)).Once()

	w := suite.doJSON(http.MethodDelete, "/api/v1/entries/e1", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *JournalHandlerTestSuite) TestGetEntry_InternalErrorBodyIsOpaque() {
	suite.mockJournalService.On("GetEntryByID",
		mock.AnythingOfType("*context.valueCtx"),
		"e1",
	).Return(nil, fmt.Errorf("scan failed: connection reset")).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/entries/e1", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.JSONEq(`{"error": "internal error"}`, w.Body.String())
}

// --- Run Test Suite ---
func TestJournalHandler(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}
