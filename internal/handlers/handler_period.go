package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/middleware"
)

// periodHandler handles HTTP requests for fiscal periods.
type periodHandler struct {
	periodService portssvc.FiscalPeriodSvcFacade
}

func newPeriodHandler(ps portssvc.FiscalPeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: ps}
}

// registerPeriodRoutes registers fiscal period lifecycle routes.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.FiscalPeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.openPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/:id", h.getPeriod)
		periods.GET("/:id/snapshot", h.getSnapshot)
		periods.POST("/:id/close", h.closePeriod)
		periods.POST("/:id/lock", h.lockPeriod)
		periods.POST("/:id/reopen", h.reopenPeriod)
	}
}

func (h *periodHandler) openPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	openedBy, ok := actorID(c)
	if !ok {
		return
	}

	period, err := h.periodService.OpenPeriod(c.Request.Context(), req, openedBy)
	if err != nil {
		logger.Warn("Failed to open period", slog.String("name", req.Name), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

func (h *periodHandler) listPeriods(c *gin.Context) {
	periods, err := h.periodService.ListPeriods(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ListPeriodsResponse{Periods: make([]dto.PeriodResponse, len(periods))}
	for i := range periods {
		resp.Periods[i] = dto.ToPeriodResponse(&periods[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *periodHandler) getPeriod(c *gin.Context) {
	period, err := h.periodService.GetPeriodByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) getSnapshot(c *gin.Context) {
	snapshot, err := h.periodService.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"periodID": c.Param("id"), "rows": snapshot})
}

func (h *periodHandler) closePeriod(c *gin.Context) {
	closedBy, ok := actorID(c)
	if !ok {
		return
	}
	period, err := h.periodService.ClosePeriod(c.Request.Context(), c.Param("id"), closedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) lockPeriod(c *gin.Context) {
	lockedBy, ok := actorID(c)
	if !ok {
		return
	}
	period, err := h.periodService.LockPeriod(c.Request.Context(), c.Param("id"), lockedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) reopenPeriod(c *gin.Context) {
	reopenedBy, ok := actorID(c)
	if !ok {
		return
	}
	period, err := h.periodService.ReopenPeriod(c.Request.Context(), c.Param("id"), reopenedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}
