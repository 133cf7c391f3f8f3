package post

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"socialhub/pkg/events"
	"socialhub/pkg/logger"
	"socialhub/pkg/mq"
)

type OwnerPurger interface {
	DeleteByOwner(ctx context.Context, userID string) (int64, error)
}

// Consumer cascades user deletions into this service: every post owned
// by the deleted user is removed. Deleting zero posts is a no-op, not
// an error — the user may have raced an earlier cascade.
type Consumer struct {
	store  OwnerPurger
	logger *zap.Logger
}

func NewConsumer(store OwnerPurger, logger *zap.Logger) *Consumer {
	return &Consumer{store: store, logger: logger}
}

func (c *Consumer) Subscription() mq.Subscription {
	return mq.Subscription{
		Queue:       events.PostQueue,
		Exchange:    events.UserExchange,
		RoutingKeys: []string{events.UserDeleted},
		Handler:     c.Handle,
	}
}

func (c *Consumer) Handle(ctx context.Context, raw json.RawMessage, routingKey string) error {
	log := logger.WithTrace(ctx, c.logger)

	if routingKey != events.UserDeleted {
		log.Warn("Unhandled event type", zap.String("routing_key", routingKey))
		return nil
	}

	var p events.UserDeletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("failed to decode %s: %w", routingKey, err)
	}
	if p.UserID == "" {
		log.Warn("user.deleted without userId, skipping")
		return nil
	}

	deleted, err := c.store.DeleteByOwner(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete posts for user %s: %w", p.UserID, err)
	}

	log.Info("Deleted posts for user",
		zap.String("user_id", p.UserID),
		zap.Int64("count", deleted),
	)
	return nil
}
