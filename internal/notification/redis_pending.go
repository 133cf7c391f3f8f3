package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPending keeps pending queues in a Redis list per user, so a
// fleet of notification instances shares one view of parked messages.
type RedisPending struct {
	client *redis.Client
}

func NewRedisPending(client *redis.Client) *RedisPending {
	return &RedisPending{client: client}
}

func pendingKey(userID string) string {
	return "pending:" + userID
}

func (r *RedisPending) Append(ctx context.Context, userID string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal pending message: %w", err)
	}
	if err := r.client.RPush(ctx, pendingKey(userID), data).Err(); err != nil {
		return fmt.Errorf("append pending message: %w", err)
	}
	return nil
}

func (r *RedisPending) Drain(ctx context.Context, userID string) ([]Message, error) {
	key := pendingKey(userID)
	var cmd *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		cmd = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("drain pending queue: %w", err)
	}
	raw := cmd.Val()
	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		msg.TargetUserID = userID
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
