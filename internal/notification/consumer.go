package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"socialhub/pkg/events"
	"socialhub/pkg/logger"
	"socialhub/pkg/mq"
)

// Sender is the delivery side the consumer hands finished messages to.
type Sender interface {
	SendToUser(ctx context.Context, msg Message) error
}

// Consumer turns social activity events into notification messages
// addressed to the affected post owner.
type Consumer struct {
	sender Sender
	logger *zap.Logger
}

func NewConsumer(sender Sender, log *zap.Logger) *Consumer {
	return &Consumer{sender: sender, logger: log}
}

func (c *Consumer) Subscription() mq.Subscription {
	return mq.Subscription{
		Queue:    events.NotificationQueue,
		Exchange: events.SocialExchange,
		RoutingKeys: []string{
			events.PostLiked,
			events.PostCommented,
			events.PostShared,
		},
		Handler: c.Handle,
	}
}

func (c *Consumer) Handle(ctx context.Context, payload json.RawMessage, routingKey string) error {
	log := logger.WithTrace(ctx, c.logger)

	var msg Message
	switch routingKey {
	case events.PostLiked:
		var p events.PostLikedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", routingKey, err)
		}
		if p.UserID == "" {
			log.Warn("like event without target user", zap.Int64("post_id", p.PostID))
			return nil
		}
		msg = Message{
			Type:         TypeLike,
			TargetUserID: p.UserID,
			PostID:       p.PostID,
			Username:     p.LikedBy,
			Body:         fmt.Sprintf("%s liked your post", p.LikedBy),
		}
	case events.PostCommented:
		var p events.PostCommentedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", routingKey, err)
		}
		if p.UserID == "" {
			log.Warn("comment event without target user", zap.Int64("post_id", p.PostID))
			return nil
		}
		msg = Message{
			Type:         TypeComment,
			TargetUserID: p.UserID,
			PostID:       p.PostID,
			CommentID:    p.CommentID,
			Username:     p.Username,
			Text:         p.Text,
			Body:         fmt.Sprintf("%s commented on your post", p.Username),
		}
	case events.PostShared:
		var p events.PostSharedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", routingKey, err)
		}
		if p.UserID == "" {
			log.Warn("share event without target user", zap.Int64("post_id", p.PostID))
			return nil
		}
		msg = Message{
			Type:         TypeShare,
			TargetUserID: p.UserID,
			PostID:       p.PostID,
			Platform:     p.Platform,
			Body:         fmt.Sprintf("Your post was shared on %s", p.Platform),
		}
	default:
		log.Warn("unexpected routing key", zap.String("routing_key", routingKey))
		return nil
	}

	msg.Timestamp = time.Now().UTC()
	return c.sender.SendToUser(ctx, msg)
}
