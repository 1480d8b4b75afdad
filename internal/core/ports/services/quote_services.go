package services

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
)

// QuoteReaderSvc defines read operations for quotes
type QuoteReaderSvc interface {
	GetQuote(ctx context.Context, quoteID string) (*domain.Quote, error)
	ListQuotesByOrder(ctx context.Context, orderID string) ([]domain.Quote, error)

	// GetQuoteInCurrency re-expresses a quote in a display currency.
	GetQuoteInCurrency(ctx context.Context, quoteID string, currencyCode string) (*domain.QuoteInCurrency, error)
}

// QuoteWriterSvc defines write operations and lifecycle transitions for quotes
type QuoteWriterSvc interface {
	CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, userID string) (*domain.Quote, error)
	UpdateQuote(ctx context.Context, quoteID string, req dto.UpdateQuoteRequest, userID string) (*domain.Quote, error)
	DeleteQuote(ctx context.Context, quoteID string, userID string) error

	SendQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error)
	AcceptQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error)
	RejectQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error)
	ExpireQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error)
	FinalizeQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error)

	// ExpireOverdueQuotes moves sent quotes past their validity to expired and returns how many moved.
	ExpireOverdueQuotes(ctx context.Context, now time.Time) (int, error)
}

// QuoteSvcFacade combines all quote service interfaces
type QuoteSvcFacade interface {
	QuoteReaderSvc
	QuoteWriterSvc
}
