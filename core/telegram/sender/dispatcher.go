// Package sender runs outbound Telegram calls through a bounded queue
// of workers with retry. Announcement fan-out and other bulk sends go
// through it so bot API throttling never blocks update handling.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/netutil"
)

// Options tunes the dispatcher.
type Options struct {
	Workers    int
	QueueSize  int
	MaxRetries int
	// Backoff is the base delay; attempt n waits n*Backoff.
	Backoff time.Duration
}

func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
}

// Job is one outbound call.
type Job struct {
	// Label names the operation in logs, e.g. "announce".
	Label string
	// UserID is the target user for logging, zero when not user-bound.
	UserID int64
	// Fn performs the call. It is retried per the dispatcher policy.
	Fn func() error
	// OnDone, if set, receives the final error after retries.
	OnDone func(err error)
}

// Dispatcher owns the queue and worker pool.
type Dispatcher struct {
	opts  Options
	queue chan Job
	wg    sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// New creates a stopped dispatcher. Call Run to start workers.
func New(opts Options) *Dispatcher {
	opts.normalize()
	return &Dispatcher{
		opts:  opts,
		queue: make(chan Job, opts.QueueSize),
	}
}

// Run starts the workers and blocks until ctx is cancelled and the
// queue is drained.
func (d *Dispatcher) Run(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}

	<-ctx.Done()
	d.mu.Lock()
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue queues a job. It fails fast when the queue is full or the
// dispatcher is shutting down rather than blocking the caller.
func (d *Dispatcher) Enqueue(job Job) error {
	if job.Fn == nil {
		return fmt.Errorf("sender: job without Fn")
	}
	// The closed check and the send stay under one lock so Run cannot
	// close the queue between them. The send never blocks, so holding
	// the mutex here is safe.
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("sender: dispatcher stopped")
	}

	select {
	case d.queue <- job:
		return nil
	default:
		return fmt.Errorf("sender: queue full (%d)", d.opts.QueueSize)
	}
}

// QueueLen reports the number of pending jobs.
func (d *Dispatcher) QueueLen() int {
	return len(d.queue)
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for job := range d.queue {
		err := d.attempt(ctx, job)
		if job.OnDone != nil {
			job.OnDone(err)
		}
	}
}

func (d *Dispatcher) attempt(ctx context.Context, job Job) error {
	var err error
	for attempt := 1; ; attempt++ {
		start := time.Now()
		err = job.Fn()
		if err == nil {
			if attempt > 1 {
				logger.Info(ctx, "tg", "send_recovered",
					slog.String("handler", job.Label),
					slog.Int64("user_id", job.UserID),
					slog.Int("attempts", attempt),
				)
			}
			return nil
		}

		retryable := retryAllowed(err) && attempt <= d.opts.MaxRetries
		logger.Warn(ctx, "tg", "send_failed",
			slog.String("handler", job.Label),
			slog.Int64("user_id", job.UserID),
			slog.Int("attempts", attempt),
			slog.String("status", statusFor(retryable)),
			slog.String("err_code", string(netutil.Classify(err))),
			slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
			slog.Duration("duration", time.Since(start)),
		)
		if !retryable {
			return err
		}

		backoff := time.Duration(attempt) * d.opts.Backoff
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
	}
}

func statusFor(retry bool) string {
	if retry {
		return "retry"
	}
	return "fail"
}

// retryAllowed applies the transport classification plus bot API
// specifics: a blocked or deactivated recipient will never succeed,
// flood control always will eventually.
func retryAllowed(err error) bool {
	if err == nil {
		return false
	}
	if isForbidden(err) {
		return false
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return true
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		// 429 without retry_after arrives as a plain API error, not
		// a FloodError; it is still flood control.
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return netutil.ShouldRetry(err)
}

func isForbidden(err error) bool {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "forbidden")
}
