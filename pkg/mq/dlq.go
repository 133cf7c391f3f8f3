package mq

import (
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const DLQExchangeName = "dead_letter_exchange"

// PublishDeadLetter copies a dropped message onto the dead-letter
// exchange so it can be inspected later. The original message is still
// nacked without requeue; capture is additive, not a retry path.
func (p *Publisher) PublishDeadLetter(queue, routingKey string, body []byte, cause string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(); err != nil {
		return err
	}

	if !p.declared[DLQExchangeName] {
		if err := declareExchange(p.channel, DLQExchangeName); err != nil {
			p.reset()
			return err
		}
		p.declared[DLQExchangeName] = true
	}

	err := p.channel.Publish(
		DLQExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Headers: amqp091.Table{
				"x-original-error": cause,
				"x-origin-queue":   queue,
			},
		},
	)
	if err != nil {
		p.reset()
		return err
	}
	return nil
}
