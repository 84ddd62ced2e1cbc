package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/service/integration"
	"github.com/RubachokBoss/thesisflow/internal/worker/queue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
	// failures makes the first N sends fail with a transient error.
	failures int
}

func (f *fakeEmail) Send(ctx context.Context, e *models.EmailNotificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	f.sent = append(f.sent, e.ID)
	return nil
}

func (f *fakeEmail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type memoryDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryDedup() *memoryDedup {
	return &memoryDedup{seen: make(map[string]bool)}
}

func (d *memoryDedup) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (d *memoryDedup) Set(context.Context, string, interface{}) error         { return nil }
func (d *memoryDedup) Close() error                                          { return nil }

func (d *memoryDedup) AcquireOnce(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *memoryDedup) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

type fakeConsumer struct {
	ch chan queue.Delivery
}

func (c *fakeConsumer) Consume(ctx context.Context) (<-chan queue.Delivery, error) {
	return c.ch, nil
}

func (c *fakeConsumer) Close() error { return nil }

type ackRecorder struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
	done    chan struct{}
}

func newAckRecorder() *ackRecorder {
	return &ackRecorder{done: make(chan struct{}, 1)}
}

func (r *ackRecorder) delivery(body []byte) queue.Delivery {
	return queue.Delivery{
		Body: body,
		Ack: func(bool) error {
			r.mu.Lock()
			r.acked++
			r.mu.Unlock()
			r.done <- struct{}{}
			return nil
		},
		Nack: func(_ bool, requeue bool) error {
			r.mu.Lock()
			r.nacked++
			r.requeue = requeue
			r.mu.Unlock()
			r.done <- struct{}{}
			return nil
		},
	}
}

func (r *ackRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was neither acked nor nacked")
	}
}

func eventBody(t *testing.T, id string) []byte {
	t.Helper()
	b, err := json.Marshal(models.EmailNotificationEvent{ID: id, Kind: models.NotificationDueDateSet, ToEmail: "a@example.com"})
	require.NoError(t, err)
	return b
}

func startWorker(t *testing.T, email integration.EmailClient) chan queue.Delivery {
	t.Helper()
	ch, _ := startWorkerWithDedup(t, email, nil)
	return ch
}

func startWorkerWithDedup(t *testing.T, email integration.EmailClient, dedup integration.CacheClient) (chan queue.Delivery, NotificationWorker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(2, zerolog.Nop())
	consumer := &fakeConsumer{ch: make(chan queue.Delivery)}
	w := NewNotificationWorker(pool, consumer, NewSender(email, dedup, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		cancel()
		w.Stop()
		pool.Stop()
	})
	return consumer.ch, w
}

func TestNotificationWorker_SendsAndAcks(t *testing.T) {
	email := &fakeEmail{}
	ch := startWorker(t, email)

	rec := newAckRecorder()
	ch <- rec.delivery(eventBody(t, "e1"))
	rec.wait(t)

	assert.Equal(t, 1, rec.acked)
	assert.Equal(t, 1, email.count())
}

func TestNotificationWorker_MalformedIsAcked(t *testing.T) {
	email := &fakeEmail{}
	ch := startWorker(t, email)

	rec := newAckRecorder()
	ch <- rec.delivery([]byte("{not json"))
	rec.wait(t)

	assert.Equal(t, 1, rec.acked)
	assert.Equal(t, 0, email.count())
}

func TestNotificationWorker_TransientIsRequeued(t *testing.T) {
	email := &fakeEmail{err: errors.New("connection reset")}
	ch := startWorker(t, email)

	rec := newAckRecorder()
	ch <- rec.delivery(eventBody(t, "e1"))
	rec.wait(t)

	assert.Equal(t, 1, rec.nacked)
	assert.True(t, rec.requeue)
}

func TestNotificationWorker_RedeliveryAfterTransientFailureIsSent(t *testing.T) {
	email := &fakeEmail{failures: 1}
	ch, w := startWorkerWithDedup(t, email, newMemoryDedup())

	first := newAckRecorder()
	ch <- first.delivery(eventBody(t, "e1"))
	first.wait(t)
	assert.Equal(t, 1, first.nacked)
	assert.True(t, first.requeue)

	redelivered := newAckRecorder()
	ch <- redelivered.delivery(eventBody(t, "e1"))
	redelivered.wait(t)
	assert.Equal(t, 1, redelivered.acked)
	assert.Equal(t, 1, email.count())

	duplicate := newAckRecorder()
	ch <- duplicate.delivery(eventBody(t, "e1"))
	duplicate.wait(t)
	assert.Equal(t, 1, duplicate.acked)
	assert.Equal(t, 1, email.count())

	stats := w.GetStats()
	assert.Equal(t, 1, stats.TotalProcessed)
	assert.Equal(t, 1, stats.FailedJobs)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestNotificationWorker_PermanentIsAcked(t *testing.T) {
	email := &fakeEmail{err: fmt.Errorf("%w: status 400", integration.ErrPermanentDelivery)}
	ch := startWorker(t, email)

	rec := newAckRecorder()
	ch <- rec.delivery(eventBody(t, "e1"))
	rec.wait(t)

	assert.Equal(t, 1, rec.acked)
}

func TestDirectNotifier(t *testing.T) {
	email := &fakeEmail{}
	pool := NewWorkerPool(1, zerolog.Nop())
	pool.Start()

	n := NewDirectNotifier(pool, NewSender(email, nil, zerolog.Nop()), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	n.Notify(ctx, &models.EmailNotificationEvent{ID: "e1", ToEmail: "a@example.com"})
	cancel()
	pool.Stop()

	assert.Equal(t, 1, email.count())
}
