package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/middleware"
)

// reconciliationHandler handles HTTP requests for bank reconciliation.
type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconService: rs}
}

// registerReconciliationRoutes registers bank reconciliation routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconService)

	recon := rg.Group("/reconciliation")
	{
		recon.POST("/transactions", h.ingestTransactions)
		recon.POST("/automatch", h.autoMatch)
		recon.POST("/matches", h.manualMatch)
		recon.DELETE("/matches/:id", h.unmatch)
		recon.GET("/unmatched", h.listUnmatched)
		recon.GET("/status", h.status)
	}
}

// periodAndAccount pulls the mandatory periodID/accountCode query pair.
func periodAndAccount(c *gin.Context) (string, string, bool) {
	periodID := c.Query("periodID")
	accountCode := c.Query("accountCode")
	if periodID == "" || accountCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodID and accountCode query parameters are required"})
		return "", "", false
	}
	return periodID, accountCode, true
}

func (h *reconciliationHandler) ingestTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.IngestBankTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for IngestTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ingestedBy, ok := actorID(c)
	if !ok {
		return
	}

	transactions, err := h.reconService.IngestTransactions(c.Request.Context(), req, ingestedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transactions": transactions})
}

func (h *reconciliationHandler) autoMatch(c *gin.Context) {
	periodID, accountCode, ok := periodAndAccount(c)
	if !ok {
		return
	}
	matchedBy, ok := actorID(c)
	if !ok {
		return
	}

	resp, err := h.reconService.AutoMatch(c.Request.Context(), periodID, accountCode, matchedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *reconciliationHandler) manualMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ManualMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	matchedBy, ok := actorID(c)
	if !ok {
		return
	}

	match, err := h.reconService.ManualMatch(c.Request.Context(), req, matchedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

func (h *reconciliationHandler) unmatch(c *gin.Context) {
	requestedBy, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.reconService.Unmatch(c.Request.Context(), c.Param("id"), requestedBy); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *reconciliationHandler) listUnmatched(c *gin.Context) {
	periodID, accountCode, ok := periodAndAccount(c)
	if !ok {
		return
	}
	resp, err := h.reconService.ListUnmatched(c.Request.Context(), periodID, accountCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *reconciliationHandler) status(c *gin.Context) {
	periodID, accountCode, ok := periodAndAccount(c)
	if !ok {
		return
	}
	resp, err := h.reconService.ReconciliationStatus(c.Request.Context(), periodID, accountCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
