package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/adapters/events"
	"github.com/SscSPs/delivery_pricing_app/internal/adapters/maps"
	"github.com/SscSPs/delivery_pricing_app/internal/adapters/ratefeed"
	"github.com/SscSPs/delivery_pricing_app/internal/core/services"
	"github.com/SscSPs/delivery_pricing_app/internal/handlers"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/SscSPs/delivery_pricing_app/internal/platform/config"
	"github.com/SscSPs/delivery_pricing_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/delivery_pricing_app/pkg/database"
	"github.com/gin-gonic/gin"
)

// @title Delivery Pricing API
// @version 1.0
// @description Pricing rules, delivery quotes and multi-currency display for the delivery dashboard.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gateways := setupGateways(ctx, cfg, logger)
	serviceContainer := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), gateways)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), middleware.CORS(cfg.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	workerCtx := middleware.WithLogger(ctx, logger)
	var workers sync.WaitGroup
	if gateways.RateFeed != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			services.RunRateSync(workerCtx, serviceContainer.ExchangeRate, cfg.RateSyncInterval)
		}()
	}
	workers.Add(1)
	go func() {
		defer workers.Done()
		services.RunExpirySweeper(workerCtx, serviceContainer.Quote, cfg.QuoteExpirySweepInterval)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	workers.Wait()
}

// setupGateways connects the optional integrations. A gateway that is not
// configured, or fails to start, is left nil and its feature is disabled.
func setupGateways(ctx context.Context, cfg *config.Config, logger *slog.Logger) services.Gateways {
	var gw services.Gateways

	if cfg.RateFeedURL != "" {
		var opts []ratefeed.Option
		if cfg.RateFeedClientID != "" && cfg.RateFeedTokenURL != "" {
			opts = append(opts, ratefeed.WithClientCredentials(cfg.RateFeedClientID, cfg.RateFeedClientSecret, cfg.RateFeedTokenURL))
		}
		gw.RateFeed = ratefeed.NewClient(cfg.RateFeedURL, opts...)
	}

	if cfg.GoogleMapsAPIKey != "" {
		estimator, err := maps.NewRouteEstimator(cfg.GoogleMapsAPIKey, "")
		if err != nil {
			logger.Warn("Route estimation disabled", slog.String("error", err.Error()))
		} else {
			gw.RouteEstimator = estimator
		}
	}

	if cfg.RedisURL != "" {
		client, err := events.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Quote events will only be logged", slog.String("error", err.Error()))
		} else {
			go func() {
				<-ctx.Done()
				_ = client.Close()
			}()
			gw.Publisher = events.NewRedisPublisher(client, cfg.QuoteEventsChannel)
		}
	}

	return gw
}
