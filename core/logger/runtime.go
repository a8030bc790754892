package logger

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

type ctxKey int

const (
	ctxKeyRID ctxKey = iota
	ctxKeyUserID
	ctxKeyChatID
	ctxKeyUpdateID
	ctxKeyHandler
	ctxKeyLogger
)

// BuildRID assembles the request correlation id from the update id and
// chat/user ids, in the form "updateID:chatID:userID". Zero parts are
// encoded as "0" so positional parsing stays stable.
func BuildRID(updateID int, chatID, userID int64) string {
	return strconv.Itoa(updateID) + ":" +
		strconv.FormatInt(chatID, 10) + ":" +
		strconv.FormatInt(userID, 10)
}

// CompactRID re-encodes the numeric RID parts in base36 to shorten the
// correlation id in line-oriented output. Negative ids keep their sign.
func CompactRID(rid string) string {
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	out := make([]string, 0, 3)
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return rid
		}
		if n < 0 {
			out = append(out, "-"+strconv.FormatInt(-n, 36))
		} else {
			out = append(out, strconv.FormatInt(n, 36))
		}
	}
	return strings.Join(out, ":")
}

// WithRID stores the correlation id in the context.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRID, rid)
}

// RIDFrom extracts the correlation id, or empty if absent.
func RIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRID).(string); ok {
		return v
	}
	return ""
}

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

func UserIDFrom(ctx context.Context) int64 {
	if v, ok := ctx.Value(ctxKeyUserID).(int64); ok {
		return v
	}
	return 0
}

func WithChatID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeyChatID, id)
}

func ChatIDFrom(ctx context.Context) int64 {
	if v, ok := ctx.Value(ctxKeyChatID).(int64); ok {
		return v
	}
	return 0
}

func WithUpdateID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ctxKeyUpdateID, id)
}

func UpdateIDFrom(ctx context.Context) int {
	if v, ok := ctx.Value(ctxKeyUpdateID).(int); ok {
		return v
	}
	return 0
}

func WithHandler(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKeyHandler, name)
}

func HandlerFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyHandler).(string); ok {
		return v
	}
	return ""
}

// WithLogger stores a pre-scoped logger in the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, l)
}

// FromContext returns the logger stored in the context, or the process
// default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

var botTokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Sanitize redacts bot tokens embedded in API URLs or error strings so
// they never reach log sinks.
func Sanitize(s string) string {
	return botTokenRe.ReplaceAllString(s, "bot<redacted>")
}

// SanitizeLimit sanitizes and truncates the string to at most n runes,
// appending an ellipsis marker when truncation happened.
func SanitizeLimit(s string, n int) string {
	s = Sanitize(s)
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
