package services

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
)

// RunRateSync pulls rates from the configured feed every interval until ctx is done.
// A non-positive interval disables the worker.
func RunRateSync(ctx context.Context, svc portssvc.ExchangeRateWriterSvc, interval time.Duration) {
	if interval <= 0 {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("worker", "rate-sync"))
	ctx = middleware.WithLogger(ctx, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Rate sync worker started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Rate sync worker stopped")
			return
		case <-ticker.C:
			if _, err := svc.SyncRates(ctx, middleware.SyncSystemUserID); err != nil {
				logger.Error("Scheduled rate sync failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunExpirySweeper expires overdue sent quotes every interval until ctx is done.
// A non-positive interval disables the worker.
func RunExpirySweeper(ctx context.Context, svc portssvc.QuoteWriterSvc, interval time.Duration) {
	if interval <= 0 {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("worker", "expiry-sweeper"))
	ctx = middleware.WithLogger(ctx, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Quote expiry sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Quote expiry sweeper stopped")
			return
		case now := <-ticker.C:
			if _, err := svc.ExpireOverdueQuotes(ctx, now); err != nil {
				logger.Error("Quote expiry sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
