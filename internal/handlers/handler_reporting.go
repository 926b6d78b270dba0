package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
)

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers report routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/profit-and-loss", h.profitAndLoss)
		reports.GET("/balance-sheet", h.balanceSheet)
	}
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	periodID := c.Query("periodID")
	if periodID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodID query parameter is required"})
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), periodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	periodID := c.Query("periodID")
	if periodID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodID query parameter is required"})
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), periodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be a YYYY-MM-DD date"})
			return
		}
		asOf = parsed
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
