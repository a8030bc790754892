package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
)

// Logging attaches the correlation context to the update and emits a
// sampled receipt record. It must run first in the chain so every
// later component sees the RID.
func Logging() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := helpers.Attach(c)
			if logger.ShouldSampleDebug() {
				attrs := []slog.Attr{
					slog.String("handler", "dispatch"),
				}
				if chat := c.Chat(); chat != nil {
					attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
				}
				if cb := c.Callback(); cb != nil {
					attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(cb.Data, 64)))
				}
				logger.Debug(ctx, "tg", "update_received", attrs...)
			}
			return next(c)
		}
	}
}
