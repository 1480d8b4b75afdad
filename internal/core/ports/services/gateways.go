package services

import (
	"context"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
)

// RateFeed fetches current exchange rates from an external provider.
type RateFeed interface {
	// FetchRates returns rates quoted as units of each symbol per 1 unit of base.
	FetchRates(ctx context.Context, base string, symbols []string) (*domain.FeedRates, error)
}

// RouteEstimator estimates driving distance and time between two addresses.
type RouteEstimator interface {
	EstimateRoute(ctx context.Context, origin, destination string) (*domain.RouteEstimate, error)
}

// QuoteEventPublisher delivers quote lifecycle events to downstream subscribers.
type QuoteEventPublisher interface {
	PublishQuoteEvent(ctx context.Context, event domain.QuoteEvent) error
}
