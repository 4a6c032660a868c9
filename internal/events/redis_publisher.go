package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/revaspay/paygate/internal/services/payment/paygate"
)

// redisPublisher is the subset of *redis.Client used for publishing
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Envelope is the message published on the redis channel
type Envelope struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	OccurredAt time.Time               `json:"occurred_at"`
	Payment    paygate.PaymentReceived `json:"payment"`
}

// RedisPublisher publishes payment notifications as JSON on a redis channel
type RedisPublisher struct {
	client  redisPublisher
	channel string
	now     func() time.Time
}

// NewRedisPublisher creates a publisher for the given channel
func NewRedisPublisher(client redisPublisher, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		now:     time.Now,
	}
}

// Publish sends one envelope. Zero receivers is not an error.
func (p *RedisPublisher) Publish(ctx context.Context, payment paygate.PaymentReceived) error {
	msg, err := json.Marshal(Envelope{
		ID:         uuid.New().String(),
		Type:       PaymentReceivedEvent,
		OccurredAt: p.now().UTC(),
		Payment:    payment,
	})
	if err != nil {
		return fmt.Errorf("failed to encode payment event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	return nil
}
