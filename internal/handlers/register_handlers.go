package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/middleware"
	"github.com/finkit/gl_ledger_app/pkg/config"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the authenticated /api/v1 group.
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerJournalRoutes(v1, services.Journal)
	registerAccountRoutes(v1, services.Account)
	registerPeriodRoutes(v1, services.Period)
	registerReportingRoutes(v1, services.Reporting)
}
