package logger

import (
	"strconv"
	"strings"
	"time"
)

// Status maps an error to the canonical status label for summary logs.
func Status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// Took measures elapsed time since start, rounded for log output.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds a duration to whole milliseconds, keeping sub-ms
// durations visible as 1ms instead of collapsing them to zero.
func RoundMS(d time.Duration) time.Duration {
	if d > 0 && d < time.Millisecond {
		return time.Millisecond
	}
	return d.Round(time.Millisecond)
}

// SummarizeStrings joins up to max items into a comma-separated list,
// appending "+N" for the remainder. Used for migration file listings.
func SummarizeStrings(items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	if max <= 0 || len(items) <= max {
		return strings.Join(items, ",")
	}
	shown := strings.Join(items[:max], ",")
	return shown + ",+" + strconv.Itoa(len(items)-max)
}
