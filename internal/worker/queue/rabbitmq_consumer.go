package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Delivery is a consumed message together with its acknowledgement hooks.
type Delivery struct {
	MessageID string
	Body      []byte
	Timestamp time.Time
	Ack       func(multiple bool) error
	Nack      func(multiple bool, requeue bool) error
}

type Consumer interface {
	Consume(ctx context.Context) (<-chan Delivery, error)
	Close() error
}

// channel is the part of *amqp.Channel the consumer needs.
type channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
}

type rabbitMQConsumer struct {
	ch       channel
	queue    string
	tag      string
	prefetch int
	logger   zerolog.Logger
}

// NewRabbitMQConsumer reads notification events from queue with manual
// acknowledgement. prefetch bounds unacknowledged deliveries and should
// match the worker pool size.
func NewRabbitMQConsumer(ch *amqp.Channel, queue, consumerTag string, prefetch int, logger zerolog.Logger) Consumer {
	return newConsumer(ch, queue, consumerTag, prefetch, logger)
}

func newConsumer(ch channel, queue, consumerTag string, prefetch int, logger zerolog.Logger) *rabbitMQConsumer {
	if prefetch <= 0 {
		prefetch = 1
	}
	return &rabbitMQConsumer{
		ch:       ch,
		queue:    queue,
		tag:      consumerTag,
		prefetch: prefetch,
		logger:   logger.With().Str("queue", queue).Logger(),
	}
}

func (c *rabbitMQConsumer) Consume(ctx context.Context) (<-chan Delivery, error) {
	if err := c.ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	// Manual ack: a message leaves the queue only once it is handled.
	raw, err := c.ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	out := make(chan Delivery)
	go c.forward(ctx, raw, out)

	c.logger.Info().Int("prefetch", c.prefetch).Msg("Notification consumer started")
	return out, nil
}

// forward converts broker deliveries until ctx ends or the broker closes
// the stream. A delivery that cannot be handed over is requeued.
func (c *rabbitMQConsumer) forward(ctx context.Context, raw <-chan amqp.Delivery, out chan<- Delivery) {
	defer close(out)

	for {
		var msg amqp.Delivery
		var ok bool

		select {
		case <-ctx.Done():
			return
		case msg, ok = <-raw:
			if !ok {
				c.logger.Warn().Msg("Broker closed the delivery stream")
				return
			}
		}

		select {
		case out <- toDelivery(msg):
		case <-ctx.Done():
			if err := msg.Nack(false, true); err != nil {
				c.logger.Error().Err(err).Str("message_id", msg.MessageId).Msg("Failed to requeue message")
			}
			return
		}
	}
}

func toDelivery(msg amqp.Delivery) Delivery {
	return Delivery{
		MessageID: msg.MessageId,
		Body:      msg.Body,
		Timestamp: msg.Timestamp,
		Ack:       msg.Ack,
		Nack:      msg.Nack,
	}
}

func (c *rabbitMQConsumer) Close() error {
	if err := c.ch.Cancel(c.tag, false); err != nil {
		return fmt.Errorf("failed to cancel consumer %s: %w", c.tag, err)
	}
	c.logger.Info().Msg("Notification consumer stopped")
	return nil
}
