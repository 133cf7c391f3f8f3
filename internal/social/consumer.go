package social

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"socialhub/pkg/events"
	"socialhub/pkg/logger"
	"socialhub/pkg/mq"
)

type PostPurger interface {
	DeleteByPost(ctx context.Context, postID int64) (int64, error)
}

// Consumer cascades post deletions: likes, comments and shares
// referencing a deleted post are removed. A post with no interactions
// left is a silent no-op.
type Consumer struct {
	store  PostPurger
	logger *zap.Logger
}

func NewConsumer(store PostPurger, logger *zap.Logger) *Consumer {
	return &Consumer{store: store, logger: logger}
}

func (c *Consumer) Subscription() mq.Subscription {
	return mq.Subscription{
		Queue:       events.SocialQueue,
		Exchange:    events.PostExchange,
		RoutingKeys: []string{events.PostDeleted},
		Handler:     c.Handle,
	}
}

func (c *Consumer) Handle(ctx context.Context, raw json.RawMessage, routingKey string) error {
	log := logger.WithTrace(ctx, c.logger)

	if routingKey != events.PostDeleted {
		log.Warn("Unhandled event type", zap.String("routing_key", routingKey))
		return nil
	}

	var p events.PostDeletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("failed to decode %s: %w", routingKey, err)
	}
	if p.PostID == 0 {
		log.Warn("post.deleted without postId, skipping")
		return nil
	}

	deleted, err := c.store.DeleteByPost(ctx, p.PostID)
	if err != nil {
		return fmt.Errorf("failed to delete interactions for post %d: %w", p.PostID, err)
	}

	log.Info("Deleted social interactions for post",
		zap.Int64("post_id", p.PostID),
		zap.Int64("count", deleted),
	)
	return nil
}
