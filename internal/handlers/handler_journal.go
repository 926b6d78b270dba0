package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/dto"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/middleware"
)

// journalHandler handles HTTP requests for journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers journal engine routes.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createDraft)
		entries.GET("", h.listEntries)
		entries.GET("/:id", h.getEntry)
		entries.PUT("/:id", h.editDraft)
		entries.DELETE("/:id", h.deleteDraft)
		entries.POST("/:id/validate", h.validateEntry)
		entries.POST("/:id/reverse", h.reverseEntry)
	}
}

func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorID, ok := actorID(c)
	if !ok {
		return
	}

	entry, err := h.journalService.CreateDraft(c.Request.Context(), req, creatorID)
	if err != nil {
		logger.Warn("Failed to create draft entry", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.journalService.GetEntryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *journalHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) editDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for EditDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updatedBy, ok := actorID(c)
	if !ok {
		return
	}

	entry, err := h.journalService.EditDraft(c.Request.Context(), c.Param("id"), req, updatedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *journalHandler) deleteDraft(c *gin.Context) {
	deletedBy, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.journalService.DeleteDraft(c.Request.Context(), c.Param("id"), deletedBy); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *journalHandler) validateEntry(c *gin.Context) {
	validatedBy, ok := actorID(c)
	if !ok {
		return
	}
	entry, err := h.journalService.ValidateEntry(c.Request.Context(), c.Param("id"), validatedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestedBy, ok := actorID(c)
	if !ok {
		return
	}

	reversal, err := h.journalService.ReverseEntry(c.Request.Context(), c.Param("id"), req, requestedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}
