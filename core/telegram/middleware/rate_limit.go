package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
)

// userBucket is a token bucket refilled continuously at rate/sec.
type userBucket struct {
	tokens   float64
	lastFill time.Time
}

// RateLimiter throttles update handling per user.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[int64]*userBucket
	rate    float64
	burst   float64
	now     func() time.Time
}

// NewRateLimiter allows ratePerSec updates per user with the given
// burst allowance.
func NewRateLimiter(ratePerSec float64, burst int) *RateLimiter {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		buckets: make(map[int64]*userBucket),
		rate:    ratePerSec,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// Allow consumes one token for the user, reporting false when the
// bucket is empty.
func (r *RateLimiter) Allow(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	b, ok := r.buckets[userID]
	if !ok {
		b = &userBucket{tokens: r.burst, lastFill: now}
		r.buckets[userID] = b
	}
	elapsed := now.Sub(b.lastFill).Seconds()
	b.tokens += elapsed * r.rate
	if b.tokens > r.burst {
		b.tokens = r.burst
	}
	b.lastFill = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Sweep drops buckets idle longer than maxIdle to bound memory.
func (r *RateLimiter) Sweep(maxIdle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	for id, b := range r.buckets {
		if b.lastFill.Before(cutoff) {
			delete(r.buckets, id)
		}
	}
}

// RateLimit drops updates from users exceeding the limit. Dropped
// updates are logged at debug level and acknowledged silently.
func RateLimit(limiter *RateLimiter) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}
			if !limiter.Allow(sender.ID) {
				logger.Debug(helpers.Ctx(c), "tg", "rate_limited",
					slog.Bool("rate_limited", true),
				)
				helpers.Answer(c, "")
				return nil
			}
			return next(c)
		}
	}
}
