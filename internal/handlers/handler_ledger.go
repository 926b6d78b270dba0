package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
)

// ledgerHandler handles HTTP requests for derived ledger views.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers ledger projection routes under the account
// resource.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/:code/balance", h.getBalance)
		accounts.GET("/:code/movements", h.listMovements)
	}
}

func (h *ledgerHandler) getBalance(c *gin.Context) {
	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be a YYYY-MM-DD date"})
			return
		}
		asOf = parsed
	}

	accountCode := c.Param("code")
	balance, err := h.ledgerService.BalanceAsOf(c.Request.Context(), accountCode, asOf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountCode: accountCode,
		AsOf:        asOf.Format(time.DateOnly),
		Balance:     balance,
	})
}

func (h *ledgerHandler) listMovements(c *gin.Context) {
	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.Movements(c.Request.Context(), c.Param("code"), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
