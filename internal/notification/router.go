package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"socialhub/pkg/metrics"
)

// Router decides, per message, between live delivery and the pending
// queue, and handles the connect/disconnect lifecycle around both.
type Router struct {
	registry *Registry
	pending  PendingStore
	logger   *zap.Logger
}

func NewRouter(registry *Registry, pending PendingStore, logger *zap.Logger) *Router {
	return &Router{registry: registry, pending: pending, logger: logger}
}

// SendToUser delivers msg to every live connection the target user
// holds, or parks it in the pending queue when there is none. A dead
// connection is dropped from the registry on the spot; the message
// still reaches the user's remaining connections.
func (r *Router) SendToUser(ctx context.Context, msg Message) error {
	conns := r.registry.Get(msg.TargetUserID)
	if len(conns) == 0 {
		if err := r.pending.Append(ctx, msg.TargetUserID, msg); err != nil {
			r.logger.Error("failed to queue notification",
				zap.String("user_id", msg.TargetUserID),
				zap.Error(err))
			return err
		}
		metrics.RecordRouted("queued")
		r.logger.Debug("notification queued",
			zap.String("user_id", msg.TargetUserID),
			zap.String("type", string(msg.Type)))
		return nil
	}

	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			r.logger.Warn("dropping dead connection",
				zap.String("user_id", msg.TargetUserID),
				zap.Error(err))
			r.registry.Remove(msg.TargetUserID, conn)
			conn.Close()
			continue
		}
		metrics.RecordRouted("live")
	}
	return nil
}

// Connected registers a fresh connection, then flushes that user's
// pending queue in arrival order. When nothing was waiting the client
// gets a system greeting instead, so it always sees one frame on
// connect.
func (r *Router) Connected(ctx context.Context, userID string, conn Conn) {
	r.registry.Add(userID, conn)

	msgs, err := r.pending.Drain(ctx, userID)
	if err != nil {
		r.logger.Error("failed to drain pending notifications",
			zap.String("user_id", userID),
			zap.Error(err))
		msgs = nil
	}

	if len(msgs) == 0 {
		greeting := Message{
			Type:      TypeSystem,
			Body:      "Connected to notification service",
			Timestamp: time.Now().UTC(),
		}
		if err := conn.Send(greeting); err != nil {
			r.logger.Warn("greeting failed", zap.String("user_id", userID), zap.Error(err))
		}
		return
	}

	r.logger.Info("flushing pending notifications",
		zap.String("user_id", userID),
		zap.Int("count", len(msgs)))
	for _, msg := range msgs {
		if err := conn.Send(msg); err != nil {
			r.logger.Warn("flush interrupted, requeueing remainder",
				zap.String("user_id", userID),
				zap.Error(err))
			if qerr := r.pending.Append(ctx, userID, msg); qerr != nil {
				r.logger.Error("failed to requeue notification",
					zap.String("user_id", userID),
					zap.Error(qerr))
			}
			continue
		}
		metrics.RecordRouted("flushed")
	}
}

func (r *Router) Disconnected(userID string, conn Conn) {
	r.registry.Remove(userID, conn)
}
