package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Notice is what an account holder receives on its private channel: the
// transfer plus only its own post-transfer balance.
type Notice struct {
	Event       string           `json:"event"`
	Transaction *Event           `json:"transaction"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
}

// RedisDispatcher publishes a Notice to the private channel of each party.
type RedisDispatcher struct {
	client redis.UniversalClient
}

// NewRedisDispatcher creates a dispatcher publishing over Redis pub/sub.
func NewRedisDispatcher(client redis.UniversalClient) *RedisDispatcher {
	return &RedisDispatcher{client: client}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, event *Event) error {
	shared := event.Redacted()

	for _, party := range []Party{event.Sender, event.Receiver} {
		payload, err := json.Marshal(Notice{
			Event:       event.Name,
			Transaction: shared,
			Balance:     party.Balance,
		})
		if err != nil {
			return fmt.Errorf("failed to encode notice: %w", err)
		}
		if err := d.client.Publish(ctx, Channel(party.ID), payload).Err(); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", Channel(party.ID), err)
		}
	}
	return nil
}
