package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := NewRateLimiter(1, 2)
	r.now = func() time.Time { return now }

	assert.True(t, r.Allow(1))
	assert.True(t, r.Allow(1))
	assert.False(t, r.Allow(1), "burst exhausted")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, r.Allow(1), "refill at 1/s grants a token after 1.5s")
	assert.False(t, r.Allow(1))
}

func TestRateLimiterIsolatesUsers(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := NewRateLimiter(1, 1)
	r.now = func() time.Time { return now }

	assert.True(t, r.Allow(1))
	assert.False(t, r.Allow(1))
	assert.True(t, r.Allow(2), "second user has an untouched bucket")
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := NewRateLimiter(1, 1)
	r.now = func() time.Time { return now }

	r.Allow(1)
	now = now.Add(time.Hour)
	r.Allow(2)
	r.Sweep(30 * time.Minute)

	r.mu.Lock()
	_, oldGone := r.buckets[1]
	_, freshKept := r.buckets[2]
	r.mu.Unlock()
	assert.False(t, oldGone)
	assert.True(t, freshKept)
}
