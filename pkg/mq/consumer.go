package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"socialhub/pkg/logger"
	"socialhub/pkg/metrics"
	"socialhub/pkg/trace"
)

// Handler processes one decoded message. A non-nil error drops the
// message permanently: it is nacked without requeue and never retried.
type Handler func(ctx context.Context, payload json.RawMessage, routingKey string) error

// Subscription declares a durable queue bound to a topic exchange under
// one or more routing keys. Declaring the same subscription twice is
// idempotent on the broker side.
type Subscription struct {
	Queue       string
	Exchange    string
	RoutingKeys []string
	Handler     Handler
}

type Consumer struct {
	url    string
	sub    Subscription
	logger *zap.Logger
	dlq    *Publisher
}

func NewConsumer(url string, sub Subscription, logger *zap.Logger) *Consumer {
	return &Consumer{
		url:    url,
		sub:    sub,
		logger: logger,
	}
}

// WithDeadLetter captures dropped messages on the dead-letter exchange
// in addition to nacking them.
func (c *Consumer) WithDeadLetter(p *Publisher) *Consumer {
	c.dlq = p
	return c
}

// Run consumes until ctx is cancelled. A lost connection is retried
// forever with a fixed delay; there is no terminal failure state.
func (c *Consumer) Run(ctx context.Context) {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.logger.Info("Consumer stopped", zap.String("queue", c.sub.Queue))
			return
		}
		c.logger.Warn("Consumer connection lost, reconnecting",
			zap.String("queue", c.sub.Queue),
			zap.Duration("delay", ReconnectDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(ReconnectDelay):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, ch, err := dial(c.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := declareExchange(ch, c.sub.Exchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		c.sub.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range c.sub.RoutingKeys {
		if err := ch.QueueBind(q.Name, key, c.sub.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", key, q.Name, err)
		}
	}

	// Prefetch 1: strict one-message-at-a-time processing per queue.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp091.Error, 1))

	c.logger.Info("Consumer started",
		zap.String("queue", q.Name),
		zap.String("exchange", c.sub.Exchange),
		zap.Strings("routing_keys", c.sub.RoutingKeys),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("connection closed")
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, msg)
		}
	}
}

// handle settles exactly one delivery: ack on handler success, nack
// without requeue on any failure so a poison message never blocks the
// queue.
func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()
	tctx := trace.WithTraceID(ctx, trace.NewID())
	log := logger.WithTrace(tctx, c.logger)

	err := c.invoke(tctx, msg)
	if err != nil {
		log.Error("Dropping message",
			zap.String("queue", c.sub.Queue),
			zap.String("routing_key", msg.RoutingKey),
			zap.Error(err),
		)
		if c.dlq != nil {
			if dlqErr := c.dlq.PublishDeadLetter(c.sub.Queue, msg.RoutingKey, msg.Body, err.Error()); dlqErr != nil {
				log.Error("Failed to capture dead letter", zap.Error(dlqErr))
			}
		}
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Error("Failed to nack message", zap.Error(nackErr))
		}
		metrics.RecordConsume(c.sub.Queue, "dropped", time.Since(start))
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error("Failed to ack message", zap.Error(ackErr))
	}
	metrics.RecordConsume(c.sub.Queue, "ack", time.Since(start))
}

func (c *Consumer) invoke(ctx context.Context, msg amqp091.Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	if !json.Valid(msg.Body) {
		return errors.New("malformed message body")
	}
	return c.sub.Handler(ctx, msg.Body, msg.RoutingKey)
}
