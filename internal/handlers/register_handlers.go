package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/delivery_pricing_app/cmd/docs"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/SscSPs/delivery_pricing_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultSyncRateLimit = "10-M"

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerValidators()

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

	// The sync trigger is reachable by the scheduler's API key as well as a JWT,
	// so it sits outside the JWT-only group.
	syncLimiter, err := middleware.NewMemoryLimiter(cfg.SyncRateLimit)
	if err != nil {
		slog.Warn("Invalid sync rate limit, using default", slog.String("error", err.Error()), slog.String("default", defaultSyncRateLimit))
		syncLimiter, _ = middleware.NewMemoryLimiter(defaultSyncRateLimit)
	}
	registerRateSyncRoute(v1, service.ExchangeRate,
		middleware.SyncAPIKeyAuth(cfg.SyncAPIKeyHash),
		middleware.RateLimit(syncLimiter),
		authMiddleware,
	)

	authed := v1.Group("", authMiddleware)
	registerCurrencyRoutes(authed, service.Currency)
	registerExchangeRateRoutes(authed, service.ExchangeRate)
	registerPricingRuleRoutes(authed, service.PricingRule)
	registerQuoteRoutes(authed, service.Quote)
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
