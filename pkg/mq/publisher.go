package mq

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"socialhub/pkg/metrics"
)

// Publisher is a fire-and-forget event emitter. A failed publish is
// logged and counted but never undoes the local mutation that preceded
// it; there is no delivery confirmation beyond broker accept.
type Publisher struct {
	url    string
	logger *zap.Logger

	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	declared map[string]bool
}

// NewPublisher attempts an initial connection but always returns a
// usable publisher: if the broker is down, Publish redials on demand.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
	p := &Publisher{
		url:      url,
		logger:   logger,
		declared: make(map[string]bool),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensure(); err != nil {
		logger.Warn("RabbitMQ not reachable at startup, will retry on publish", zap.Error(err))
	}
	return p
}

// ensure opens the connection and channel if needed. Callers hold mu.
func (p *Publisher) ensure() error {
	if p.conn != nil && !p.conn.IsClosed() && p.channel != nil {
		return nil
	}
	p.reset()

	conn, ch, err := dial(p.url)
	if err != nil {
		return err
	}
	p.conn = conn
	p.channel = ch
	p.declared = make(map[string]bool)
	return nil
}

func (p *Publisher) reset() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Publish serializes payload to JSON and emits it on the given topic
// exchange, persistent and timestamped. The error return is advisory:
// callers log it and move on.
func (p *Publisher) Publish(exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordPublish(exchange, routingKey, "failed")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(); err != nil {
		metrics.RecordPublish(exchange, routingKey, "failed")
		return err
	}

	if !p.declared[exchange] {
		if err := declareExchange(p.channel, exchange); err != nil {
			p.reset()
			metrics.RecordPublish(exchange, routingKey, "failed")
			return err
		}
		p.declared[exchange] = true
	}

	err = p.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		// Force a redial on the next publish.
		p.reset()
		metrics.RecordPublish(exchange, routingKey, "failed")
		return err
	}

	p.logger.Debug("Published event",
		zap.String("exchange", exchange),
		zap.String("routing_key", routingKey),
	)
	metrics.RecordPublish(exchange, routingKey, "ok")
	return nil
}

func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}
