package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

// Counters accumulates process-lifetime traffic totals exposed in the
// periodic runtime summary.
type Counters struct {
	UpdatesIn    atomic.Int64
	MessagesOut  atomic.Int64
	BytesOut     atomic.Int64
	HandlerPanic atomic.Int64
}

// Snapshot returns current totals.
func (m *Counters) Snapshot() (updates, messages, kb int64) {
	return m.UpdatesIn.Load(), m.MessagesOut.Load(), m.BytesOut.Load() / 1024
}

// Metrics counts inbound updates and wraps the context so outbound
// sends are counted too.
func Metrics(counters *Counters) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			counters.UpdatesIn.Add(1)
			return next(&countingContext{Context: c, counters: counters})
		}
	}
}

// countingContext intercepts Send and Edit to account outbound volume.
type countingContext struct {
	tele.Context
	counters *Counters
}

func (c *countingContext) Send(what interface{}, opts ...interface{}) error {
	err := c.Context.Send(what, opts...)
	if err == nil {
		c.counters.MessagesOut.Add(1)
		c.counters.BytesOut.Add(approxSize(what))
	}
	return err
}

func (c *countingContext) Edit(what interface{}, opts ...interface{}) error {
	err := c.Context.Edit(what, opts...)
	if err == nil {
		c.counters.MessagesOut.Add(1)
		c.counters.BytesOut.Add(approxSize(what))
	}
	return err
}

func approxSize(what interface{}) int64 {
	switch v := what.(type) {
	case string:
		return int64(len(v))
	case *tele.Photo:
		return int64(len(v.Caption))
	default:
		return 0
	}
}
