package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func runDispatcher(t *testing.T, d *Dispatcher) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("dispatcher did not drain")
		}
	}
}

func TestDispatcherRunsJobs(t *testing.T) {
	d := New(Options{Workers: 2, QueueSize: 16, MaxRetries: 0, Backoff: time.Millisecond})
	stop := runDispatcher(t, d)

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := d.Enqueue(Job{
			Label: "announce",
			Fn: func() error {
				atomic.AddInt64(&count, 1)
				return nil
			},
			OnDone: func(error) { wg.Done() },
		})
		require.NoError(t, err)
	}
	wg.Wait()
	stop()
	assert.Equal(t, int64(10), atomic.LoadInt64(&count))
}

func TestDispatcherRetriesTransientFailure(t *testing.T) {
	d := New(Options{Workers: 1, QueueSize: 4, MaxRetries: 3, Backoff: time.Millisecond})
	stop := runDispatcher(t, d)
	defer stop()

	var calls int64
	done := make(chan error, 1)
	require.NoError(t, d.Enqueue(Job{
		Label: "announce",
		Fn: func() error {
			if atomic.AddInt64(&calls, 1) < 3 {
				return &tele.Error{Code: 502, Description: "Bad Gateway"}
			}
			return nil
		},
		OnDone: func(err error) { done <- err },
	}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestDispatcherNeverRetriesForbidden(t *testing.T) {
	d := New(Options{Workers: 1, QueueSize: 4, MaxRetries: 5, Backoff: time.Millisecond})
	stop := runDispatcher(t, d)
	defer stop()

	var calls int64
	blocked := &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}
	done := make(chan error, 1)
	require.NoError(t, d.Enqueue(Job{
		Label:  "announce",
		UserID: 99,
		Fn: func() error {
			atomic.AddInt64(&calls, 1)
			return blocked
		},
		OnDone: func(err error) { done <- err },
	}))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, blocked)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "403 must fail on first attempt")
}

func TestDispatcherQueueFull(t *testing.T) {
	d := New(Options{Workers: 1, QueueSize: 1, Backoff: time.Millisecond})
	// Not running: the single queue slot fills and the next enqueue
	// must fail fast instead of blocking.
	require.NoError(t, d.Enqueue(Job{Fn: func() error { return nil }}))
	err := d.Enqueue(Job{Fn: func() error { return nil }})
	assert.Error(t, err)
}

func TestEnqueueAfterStopFailsWithoutPanic(t *testing.T) {
	d := New(Options{Workers: 1, QueueSize: 4, Backoff: time.Millisecond})
	stop := runDispatcher(t, d)
	stop()

	// The queue is closed once Run returns; a late enqueue must be
	// refused, never sent into the closed channel.
	err := d.Enqueue(Job{Fn: func() error { return nil }})
	assert.ErrorContains(t, err, "stopped")
}

func TestEnqueueDuringShutdownDoesNotPanic(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := New(Options{Workers: 1, QueueSize: 1, Backoff: time.Millisecond})
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			d.Run(ctx)
			close(done)
		}()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := d.Enqueue(Job{Fn: func() error { return nil }}); err != nil {
					return
				}
			}
		}()
		cancel()
		wg.Wait()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("dispatcher did not drain")
		}
	}
}

func TestRetryAllowedClassification(t *testing.T) {
	assert.False(t, retryAllowed(nil))
	assert.False(t, retryAllowed(errors.New("telegram: forbidden (403)")))
	assert.True(t, retryAllowed(&tele.Error{Code: 500, Description: "Internal Server Error"}))
	assert.False(t, retryAllowed(&tele.Error{Code: 400, Description: "Bad Request"}))
	assert.True(t, retryAllowed(&tele.Error{Code: 429, Description: "Too Many Requests"}))
	assert.True(t, retryAllowed(errors.New("read tcp 1.2.3.4: i/o timeout")))
}
