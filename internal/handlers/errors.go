package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/apperrors"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/middleware"
)

// statusFromError maps service errors onto HTTP status codes. Input problems
// are 400, missing resources 404, state and uniqueness conflicts 409, a
// busy period lock 503, and internal-consistency failures 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrPeriodNotOpen),
		errors.Is(err, services.ErrPeriodNotClosed),
		errors.Is(err, services.ErrPeriodLocked),
		errors.Is(err, services.ErrDraftsRemain),
		errors.Is(err, services.ErrLockedBoundary),
		errors.Is(err, services.ErrEntryNotDraft),
		errors.Is(err, services.ErrEntryNotValidated),
		errors.Is(err, services.ErrEntryAlreadyReversed),
		errors.Is(err, services.ErrAlreadyMatched),
		errors.Is(err, services.ErrAccountInactive):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, services.ErrEntryUnbalanced),
		errors.Is(err, services.ErrEntryMinAccounts),
		errors.Is(err, services.ErrDescriptionMissing),
		errors.Is(err, services.ErrNoPeriodForDate),
		errors.Is(err, services.ErrPeriodDatesInvalid),
		errors.Is(err, services.ErrPeriodOverlap),
		errors.Is(err, services.ErrAccountCodeInvalid),
		errors.Is(err, services.ErrClassTypeMismatch),
		errors.Is(err, services.ErrClassNotConfigured),
		errors.Is(err, services.ErrAccountParentAbsent),
		errors.Is(err, services.ErrAccountsDiffer):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a service error as a JSON problem payload. Internal
// errors never leak their detail to the client.
func respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// actorID pulls the acting user from the request context. The actor
// middleware guarantees presence on every route it guards.
func actorID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetActorIDFromCtx(c.Request.Context())
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing actor identity"})
		return "", false
	}
	return id, true
}
