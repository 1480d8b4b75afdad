// Package maps estimates trip distance and duration with the Google Maps Directions API.
package maps

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"googlemaps.github.io/maps"
)

var (
	metersPerKm      = decimal.NewFromInt(1000)
	secondsPerMinute = decimal.NewFromInt(60)
)

// RouteEstimator asks for the driving route between two addresses.
type RouteEstimator struct {
	client *maps.Client
	region string
}

// NewRouteEstimator creates an estimator. region biases address lookups (ccTLD, e.g. "cr"); empty means none.
func NewRouteEstimator(apiKey, region string, opts ...maps.ClientOption) (*RouteEstimator, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteEstimator{client: client, region: region}, nil
}

var _ portssvc.RouteEstimator = (*RouteEstimator)(nil)

// EstimateRoute returns the distance and duration of the first driving route found.
func (e *RouteEstimator) EstimateRoute(ctx context.Context, origin, destination string) (*domain.RouteEstimate, error) {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", apperrors.ErrValidation)
	}

	routes, _, err := e.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Region:      e.region,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") || strings.Contains(err.Error(), "NOT_FOUND") {
			return nil, fmt.Errorf("%w: no route between '%s' and '%s'", apperrors.ErrValidation, origin, destination)
		}
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("%w: no route between '%s' and '%s'", apperrors.ErrValidation, origin, destination)
	}

	meters, seconds := 0, 0.0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		seconds += leg.Duration.Seconds()
	}

	return &domain.RouteEstimate{
		DistanceKm:      decimal.NewFromInt(int64(meters)).Div(metersPerKm),
		DurationMinutes: decimal.NewFromFloat(seconds).DivRound(secondsPerMinute, 2),
	}, nil
}
