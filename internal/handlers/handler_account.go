package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/middleware"
)

// accountHandler handles HTTP requests for the chart of accounts.
type accountHandler struct {
	chartService portssvc.ChartOfAccountsSvcFacade
}

func newAccountHandler(cs portssvc.ChartOfAccountsSvcFacade) *accountHandler {
	return &accountHandler{chartService: cs}
}

// registerAccountRoutes registers chart of accounts routes.
func registerAccountRoutes(rg *gin.RouterGroup, chartService portssvc.ChartOfAccountsSvcFacade) {
	h := newAccountHandler(chartService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.registerAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:code", h.getAccountByCode)
		accounts.POST("/:code/deactivate", h.deactivateAccount)
		accounts.POST("/:code/reactivate", h.reactivateAccount)
	}
}

func (h *accountHandler) registerAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorID, ok := actorID(c)
	if !ok {
		return
	}

	account, err := h.chartService.RegisterAccount(c.Request.Context(), req, creatorID)
	if err != nil {
		logger.Warn("Failed to register account", slog.String("code", req.Code), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccountByCode(c *gin.Context) {
	account, err := h.chartService.ResolveAccount(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	accounts, err := h.chartService.ListAccounts(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToAccountResponses(accounts)})
}

func (h *accountHandler) deactivateAccount(c *gin.Context) {
	updatedBy, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.chartService.DeactivateAccount(c.Request.Context(), c.Param("code"), updatedBy); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) reactivateAccount(c *gin.Context) {
	updatedBy, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.chartService.ReactivateAccount(c.Request.Context(), c.Param("code"), updatedBy); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
