package logger

import (
	"fmt"
	"io"
	"sync"
	"time"
)

type writeReq struct {
	line []byte
	ack  chan struct{}
}

// asyncWriter buffers formatted lines in a bounded channel and flushes
// them to every sink from a single background goroutine. When the
// buffer is full the producer blocks briefly and then drops the line,
// counting the drop.
type asyncWriter struct {
	outs         []io.Writer
	reqs         chan writeReq
	done         chan struct{}
	closeOnce    sync.Once
	blockTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	dropped  uint64
	buffered int
	maxBytes int
}

func newAsyncWriter(outs []io.Writer, maxBufferBytes int) *asyncWriter {
	if maxBufferBytes <= 0 {
		maxBufferBytes = 64 * 1024
	}
	w := &asyncWriter{
		outs:         outs,
		reqs:         make(chan writeReq, 1024),
		done:         make(chan struct{}),
		blockTimeout: 50 * time.Millisecond,
		maxBytes:     maxBufferBytes,
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for req := range w.reqs {
		if req.ack != nil {
			close(req.ack)
			continue
		}
		for _, out := range w.outs {
			_, _ = out.Write(req.line)
		}
		w.mu.Lock()
		w.buffered -= len(req.line)
		w.mu.Unlock()
	}
}

// Write enqueues a single line. Lines include the trailing newline.
func (w *asyncWriter) Write(line []byte) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("logger: writer closed")
	}
	if w.buffered+len(line) > w.maxBytes {
		w.dropped++
		w.mu.Unlock()
		return fmt.Errorf("logger: buffer full, line dropped")
	}
	w.buffered += len(line)
	w.mu.Unlock()

	buf := make([]byte, len(line))
	copy(buf, line)

	select {
	case w.reqs <- writeReq{line: buf}:
		return nil
	default:
	}

	timer := time.NewTimer(w.blockTimeout)
	defer timer.Stop()
	select {
	case w.reqs <- writeReq{line: buf}:
		return nil
	case <-timer.C:
		w.mu.Lock()
		w.dropped++
		w.buffered -= len(buf)
		w.mu.Unlock()
		return fmt.Errorf("logger: buffer full, line dropped")
	}
}

// Flush waits until every line queued before the call has been written.
func (w *asyncWriter) Flush() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	ack := make(chan struct{})
	select {
	case w.reqs <- writeReq{ack: ack}:
	case <-time.After(time.Second):
		return fmt.Errorf("logger: flush timed out enqueueing marker")
	}
	select {
	case <-ack:
		return nil
	case <-time.After(2 * time.Second):
		return fmt.Errorf("logger: flush timed out")
	}
}

// Close stops accepting writes and drains everything already queued.
func (w *asyncWriter) Close() error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.reqs)
	})
	<-w.done
	return nil
}

// Dropped returns the number of lines dropped due to back pressure.
func (w *asyncWriter) Dropped() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}
