package handlers

import (
	"net/http"

	"github.com/SscSPs/general_ledger/cmd/docs"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/SscSPs/general_ledger/internal/middleware"
	"github.com/SscSPs/general_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteDeps carries the optional infrastructure the routes are wrapped with.
type RouteDeps struct {
	SubmitLimiter *limiter.Limiter // nil disables rate limiting
	Events        events.Sink      // nil disables request tracking
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) error {
	if err := RegisterValidators(); err != nil {
		return err
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services, deps)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	v1 := r.Group("/api/v1", middleware.ActorMiddleware(cfg.JWTSecret))
	if deps.Events != nil {
		v1.Use(middleware.EventTrackingMiddleware(deps.Events))
	}

	registerAccountRoutes(v1, service.Account)
	registerJournalRoutes(v1, service.Journal, service.Posting)
	registerReportingRoutes(v1, service.Ledger)
	registerSubmissionRoutes(v1, service.Submission, deps.SubmitLimiter)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
