package worker

import (
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(3, zerolog.Nop())
	pool.Start()

	var n int32
	for i := 0; i < 20; i++ {
		assert.True(t, pool.Submit(func() { atomic.AddInt32(&n, 1) }))
	}
	pool.Stop()

	assert.Equal(t, int32(20), atomic.LoadInt32(&n))
}

func TestWorkerPool_SurvivesPanics(t *testing.T) {
	pool := NewWorkerPool(1, zerolog.Nop())
	pool.Start()

	var n int32
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { atomic.AddInt32(&n, 1) })
	pool.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&n))
	assert.Equal(t, 0, pool.GetStats()["busy_workers"])
}

func TestWorkerPool_RejectsAfterStop(t *testing.T) {
	pool := NewWorkerPool(1, zerolog.Nop())
	pool.Start()
	pool.Stop()
	pool.Stop()

	assert.False(t, pool.Submit(func() {}))
}
