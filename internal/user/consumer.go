package user

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"socialhub/pkg/events"
	"socialhub/pkg/logger"
	"socialhub/pkg/mq"
)

// CounterStore is the slice of the repository the consumer needs.
type CounterStore interface {
	IncrementPostCount(ctx context.Context, userID string) error
	DecrementPostCount(ctx context.Context, userID string) error
}

// Consumer keeps the per-user materialized post count in sync with
// post lifecycle events.
type Consumer struct {
	store  CounterStore
	logger *zap.Logger
}

func NewConsumer(store CounterStore, logger *zap.Logger) *Consumer {
	return &Consumer{store: store, logger: logger}
}

func (c *Consumer) Subscription() mq.Subscription {
	return mq.Subscription{
		Queue:       events.UserQueue,
		Exchange:    events.PostExchange,
		RoutingKeys: []string{events.PostCreated, events.PostDeleted},
		Handler:     c.Handle,
	}
}

func (c *Consumer) Handle(ctx context.Context, raw json.RawMessage, routingKey string) error {
	log := logger.WithTrace(ctx, c.logger)

	switch routingKey {
	case events.PostCreated:
		var p events.PostCreatedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("failed to decode %s: %w", routingKey, err)
		}
		if p.UserID == "" {
			log.Warn("post.created without userId, skipping")
			return nil
		}
		if err := c.store.IncrementPostCount(ctx, p.UserID); err != nil {
			return fmt.Errorf("failed to increment post count: %w", err)
		}
		log.Info("Incremented post count", zap.String("user_id", p.UserID))

	case events.PostDeleted:
		var p events.PostDeletedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("failed to decode %s: %w", routingKey, err)
		}
		if p.UserID == "" {
			log.Warn("post.deleted without userId, skipping")
			return nil
		}
		if err := c.store.DecrementPostCount(ctx, p.UserID); err != nil {
			return fmt.Errorf("failed to decrement post count: %w", err)
		}
		log.Info("Decremented post count", zap.String("user_id", p.UserID))

	default:
		log.Warn("Unhandled event type", zap.String("routing_key", routingKey))
	}

	return nil
}
