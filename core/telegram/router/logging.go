// Package router connects telebot endpoints to named handlers and
// writes one summary record per handled update.
package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
)

// WithSummary names the handler in the correlation context and logs a
// single outcome record after it returns.
func WithSummary(name string, fn tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := helpers.WithHandler(c, name)
		start := time.Now()
		err := fn(c)

		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		attrs := []slog.Attr{
			slog.String("handler", name),
			slog.String("status", logger.Status(err)),
			slog.Duration("duration", logger.Took(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 300)))
		}
		logger.Event(ctx, "tg", level, "handled", attrs...)
		return err
	}
}
