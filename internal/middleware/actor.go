package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const actorIDKey = contextKey("actorID")

// ActorMiddleware extracts the acting user's identifier from the X-Actor-ID
// header and stores it in the request context. Identity is established by the
// surrounding deployment (gateway or session layer); the ledger only records
// who performed each operation.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader("X-Actor-ID")
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Actor-ID header is required"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), actorIDKey, actorID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetActorIDFromCtx retrieves the acting user ID from the context.
// It returns the ID and a boolean indicating if it was found.
func GetActorIDFromCtx(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(actorIDKey).(string)
	return actorID, ok
}
