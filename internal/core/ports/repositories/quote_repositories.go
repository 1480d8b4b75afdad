package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
)

// QuoteReader defines read operations for quotes
type QuoteReader interface {
	// FindQuoteByID retrieves a quote.
	FindQuoteByID(ctx context.Context, quoteID string) (*domain.Quote, error)

	// FindQuoteForUpdate retrieves a quote and locks its row until the surrounding transaction ends.
	FindQuoteForUpdate(ctx context.Context, quoteID string) (*domain.Quote, error)

	// ListQuotesByOrder returns every quote version of an order, newest version first.
	ListQuotesByOrder(ctx context.Context, orderID string) ([]domain.Quote, error)

	// CountQuotesByOrder returns how many quotes an order already has.
	CountQuotesByOrder(ctx context.Context, orderID string) (int, error)

	// FindOverdueQuotes returns up to limit sent quotes whose validity ended before now.
	FindOverdueQuotes(ctx context.Context, now time.Time, limit int) ([]domain.Quote, error)
}

// QuoteWriter defines write operations for quotes
type QuoteWriter interface {
	// SaveQuote inserts a new quote.
	SaveQuote(ctx context.Context, quote domain.Quote) error

	// UpdateQuote persists every mutable column of an existing quote.
	UpdateQuote(ctx context.Context, quote domain.Quote) error

	// DeleteQuote removes a quote.
	DeleteQuote(ctx context.Context, quoteID string) error
}

// QuoteRepositoryFacade combines all quote repository interfaces
type QuoteRepositoryFacade interface {
	QuoteReader
	QuoteWriter
}
