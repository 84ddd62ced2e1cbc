package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/service/integration"
	"github.com/RubachokBoss/thesisflow/internal/worker/queue"
	"github.com/RubachokBoss/thesisflow/pkg/metrics"
	"github.com/rs/zerolog"
)

const sendTimeout = 30 * time.Second

var errMalformedEvent = errors.New("malformed notification event")

type WorkerStats struct {
	TotalProcessed int `json:"total_processed"`
	FailedJobs     int `json:"failed_jobs"`
	Duplicates     int `json:"duplicates"`
}

// NotificationWorker consumes notification events from the queue and sends
// them as e-mail on the worker pool.
type NotificationWorker interface {
	Start(ctx context.Context) error
	Stop()
	GetStats() WorkerStats
}

type notificationWorker struct {
	workerPool *WorkerPool
	consumer   queue.Consumer
	sender     *Sender
	logger     zerolog.Logger
	stats      WorkerStats
	statsMutex sync.RWMutex
	startTime  time.Time
}

func NewNotificationWorker(workerPool *WorkerPool, consumer queue.Consumer, sender *Sender, logger zerolog.Logger) NotificationWorker {
	return &notificationWorker{
		workerPool: workerPool,
		consumer:   consumer,
		sender:     sender,
		logger:     logger,
		startTime:  time.Now(),
	}
}

func (w *notificationWorker) Start(ctx context.Context) error {
	w.workerPool.Start()

	msgs, err := w.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Notification worker started")
	return nil
}

func (w *notificationWorker) Stop() {
	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	stats := w.GetStats()
	w.logger.Info().
		Int("total_processed", stats.TotalProcessed).
		Int("failed_jobs", stats.FailedJobs).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Notification worker stopped")
}

func (w *notificationWorker) processMessages(ctx context.Context, msgs <-chan queue.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			accepted := w.workerPool.Submit(func() { w.handle(ctx, msg) })
			if !accepted {
				if err := msg.Nack(false, true); err != nil {
					w.logger.Error().Err(err).Msg("Failed to nack message")
				}
			}
		}
	}
}

func (w *notificationWorker) handle(ctx context.Context, msg queue.Delivery) {
	duplicate, err := w.processMessage(ctx, msg)
	if err != nil {
		w.logger.Error().Err(err).Str("message_id", msg.MessageID).Msg("Failed to process notification")

		w.statsMutex.Lock()
		w.stats.FailedJobs++
		w.statsMutex.Unlock()

		if isPermanentError(err) {
			if ackErr := msg.Ack(false); ackErr != nil {
				w.logger.Error().Err(ackErr).Msg("Failed to ack message")
			}
			return
		}

		if nackErr := msg.Nack(false, true); nackErr != nil {
			w.logger.Error().Err(nackErr).Msg("Failed to nack message")
		}
		return
	}

	w.statsMutex.Lock()
	if duplicate {
		w.stats.Duplicates++
	} else {
		w.stats.TotalProcessed++
	}
	w.statsMutex.Unlock()

	if err := msg.Ack(false); err != nil {
		w.logger.Error().Err(err).Msg("Failed to ack message")
	}
}

func (w *notificationWorker) processMessage(ctx context.Context, msg queue.Delivery) (duplicate bool, err error) {
	var event models.EmailNotificationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return false, fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if event.ID == "" {
		event.ID = msg.MessageID
	}

	if !w.sender.acquire(ctx, event.ID) {
		return true, nil
	}

	if err := w.sender.Send(ctx, &event); err != nil {
		// A requeued event must be able to acquire the key on redelivery.
		if !isPermanentError(err) {
			w.sender.release(ctx, event.ID)
		}
		return false, err
	}
	return false, nil
}

func (w *notificationWorker) GetStats() WorkerStats {
	w.statsMutex.RLock()
	defer w.statsMutex.RUnlock()
	return w.stats
}

func isPermanentError(err error) bool {
	return errors.Is(err, errMalformedEvent) || errors.Is(err, integration.ErrPermanentDelivery)
}

// Sender delivers a single notification through the e-mail client.
type Sender struct {
	email integration.EmailClient
	// dedup is nil when Redis is disabled.
	dedup  integration.CacheClient
	logger zerolog.Logger
}

func NewSender(email integration.EmailClient, dedup integration.CacheClient, logger zerolog.Logger) *Sender {
	return &Sender{email: email, dedup: dedup, logger: logger}
}

func (s *Sender) acquire(ctx context.Context, eventID string) bool {
	if s.dedup == nil || eventID == "" {
		return true
	}
	return s.dedup.AcquireOnce(ctx, "notification:"+eventID)
}

func (s *Sender) release(ctx context.Context, eventID string) {
	if s.dedup == nil || eventID == "" {
		return
	}
	s.dedup.Release(ctx, "notification:"+eventID)
}

func (s *Sender) Send(ctx context.Context, event *models.EmailNotificationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := s.email.Send(ctx, event); err != nil {
		metrics.RecordNotification(string(event.Kind), "error")
		return err
	}
	metrics.RecordNotification(string(event.Kind), "sent")
	return nil
}
