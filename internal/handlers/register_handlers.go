package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/ports/services"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/middleware"
	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	// Setup API v1 routes, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	// Apply ActorMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.ActorMiddleware())

	// Delegate route registration to specific handlers, passing required services
	registerAccountRoutes(v1, service.Chart)
	registerLedgerRoutes(v1, service.Ledger)
	registerJournalRoutes(v1, service.Journal)
	registerPeriodRoutes(v1, service.Period)
	registerReportingRoutes(v1, service.Reporting)
	registerReconciliationRoutes(v1, service.Reconciliation)
}
