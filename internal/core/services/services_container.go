package services

import (
	portsrepo "github.com/SscSPs/delivery_pricing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/platform/config"
)

// Gateways holds the optional outbound integrations. Nil members disable the
// features that need them.
type Gateways struct {
	RateFeed       portssvc.RateFeed
	RouteEstimator portssvc.RouteEstimator
	Publisher      portssvc.QuoteEventPublisher
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gateways Gateways) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo, repos.TxManager)

	var rateOpts []ExchangeRateServiceOption
	if gateways.RateFeed != nil {
		rateOpts = append(rateOpts, WithRateFeed(gateways.RateFeed))
	}
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, repos.CurrencyRepo, repos.TxManager, rateOpts...)

	container.PricingRule = NewPricingRuleService(repos.PricingRuleRepo, repos.CurrencyRepo, repos.TxManager)

	quoteOpts := []QuoteServiceOption{WithDefaultQuoteValidity(cfg.DefaultQuoteValidity)}
	if gateways.RouteEstimator != nil {
		quoteOpts = append(quoteOpts, WithRouteEstimator(gateways.RouteEstimator))
	}
	if gateways.Publisher != nil {
		quoteOpts = append(quoteOpts, WithQuoteEventPublisher(gateways.Publisher))
	}
	container.Quote = NewQuoteService(
		repos.QuoteRepo,
		repos.PricingRuleRepo,
		repos.CurrencyRepo,
		repos.ExchangeRateRepo,
		repos.TxManager,
		quoteOpts...,
	)

	return container
}

