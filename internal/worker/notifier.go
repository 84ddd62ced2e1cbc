package worker

import (
	"context"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/service/integration"
	"github.com/RubachokBoss/thesisflow/pkg/metrics"
	"github.com/rs/zerolog"
)

// DirectNotifier sends notifications on the worker pool without a queue.
type DirectNotifier struct {
	pool   *WorkerPool
	sender *Sender
	logger zerolog.Logger
}

func NewDirectNotifier(pool *WorkerPool, sender *Sender, logger zerolog.Logger) *DirectNotifier {
	return &DirectNotifier{pool: pool, sender: sender, logger: logger}
}

func (n *DirectNotifier) Notify(ctx context.Context, event *models.EmailNotificationEvent) {
	// The request context ends before the e-mail is sent.
	sendCtx := context.WithoutCancel(ctx)

	accepted := n.pool.Submit(func() {
		if err := n.sender.Send(sendCtx, event); err != nil {
			n.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("kind", string(event.Kind)).
				Msg("Failed to send notification")
		}
	})
	if !accepted {
		metrics.RecordNotification(string(event.Kind), "dropped")
	}
}

// QueueNotifier publishes notifications to RabbitMQ and falls back to
// direct delivery when publishing fails.
type QueueNotifier struct {
	client   integration.RabbitMQClient
	fallback *DirectNotifier
	logger   zerolog.Logger
}

func NewQueueNotifier(client integration.RabbitMQClient, fallback *DirectNotifier, logger zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{client: client, fallback: fallback, logger: logger}
}

func (n *QueueNotifier) Notify(ctx context.Context, event *models.EmailNotificationEvent) {
	err := n.client.PublishNotification(context.WithoutCancel(ctx), event)
	if err == nil {
		metrics.RecordNotification(string(event.Kind), "queued")
		return
	}

	n.logger.Warn().
		Err(err).
		Str("event_id", event.ID).
		Msg("Failed to publish notification, sending directly")
	n.fallback.Notify(ctx, event)
}
