// Package ratefeed fetches daily exchange rates from an external HTTP provider.
package ratefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultSource  = "feed"
	defaultTimeout = 15 * time.Second
)

// latestResponse is the provider's /latest payload. Rates may be JSON numbers or strings.
type latestResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Client calls GET {baseURL}/latest?base=XXX&symbols=A,B.
type Client struct {
	baseURL    string
	source     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for rate requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithClientCredentials authenticates every request with an OAuth2
// client-credentials token obtained from tokenURL and refreshed on expiry.
func WithClientCredentials(clientID, clientSecret, tokenURL string) Option {
	return func(cl *Client) {
		cfg := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		httpClient := cfg.Client(context.Background())
		httpClient.Timeout = defaultTimeout
		cl.httpClient = httpClient
	}
}

// WithSource sets the source label stored with synced rates.
func WithSource(source string) Option {
	return func(cl *Client) {
		if source != "" {
			cl.source = source
		}
	}
}

// NewClient creates a rate feed client for the provider at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		source:     defaultSource,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ portssvc.RateFeed = (*Client)(nil)

// FetchRates returns the provider's latest rates for symbols, quoted against base.
func (c *Client) FetchRates(ctx context.Context, base string, symbols []string) (*domain.FeedRates, error) {
	q := url.Values{}
	q.Set("base", base)
	q.Set("symbols", strings.Join(symbols, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate feed response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rate feed http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload latestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode rate feed response: %w", err)
	}

	result := &domain.FeedRates{
		Base:   strings.ToUpper(payload.Base),
		Source: c.source,
		Rates:  make(map[string]decimal.Decimal, len(payload.Rates)),
	}
	if payload.Date != "" {
		asOf, err := time.Parse(domain.RateDateLayout, payload.Date)
		if err != nil {
			return nil, fmt.Errorf("rate feed returned invalid date '%s': %w", payload.Date, err)
		}
		result.AsOf = asOf
	}
	for code, rate := range payload.Rates {
		result.Rates[strings.ToUpper(code)] = rate
	}
	return result, nil
}
