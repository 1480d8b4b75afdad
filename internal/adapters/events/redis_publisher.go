// Package events publishes quote lifecycle events over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/redis/go-redis/v9"
)

// publishClient is the part of the redis client the publisher needs.
type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher sends each quote event as a JSON message on one channel.
type RedisPublisher struct {
	client  publishClient
	channel string
}

// NewRedisPublisher wraps an existing client.
func NewRedisPublisher(client publishClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Connect parses a redis:// URL, verifies the server answers and returns the client.
// The caller owns the client and closes it on shutdown.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

var _ portssvc.QuoteEventPublisher = (*RedisPublisher)(nil)

// PublishQuoteEvent marshals event and publishes it. A message with no
// subscribers is not an error.
func (p *RedisPublisher) PublishQuoteEvent(ctx context.Context, event domain.QuoteEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode quote event: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s for quote %s: %w", event.Type, event.QuoteID, err)
	}
	slog.DebugContext(ctx, "Quote event published",
		slog.String("event", string(event.Type)),
		slog.String("quote_id", event.QuoteID),
		slog.Int64("receivers", receivers),
	)
	return nil
}
