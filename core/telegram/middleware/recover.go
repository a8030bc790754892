// Package middleware holds the update-processing chain: panic
// recovery, request logging, counters, per-user rate limiting and
// operator access control.
package middleware

import (
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
)

// Recover converts handler panics into logged errors so one broken
// update cannot take the poller down.
func Recover() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(helpers.Ctx(c), "tg", "panic",
						slog.Any("cause", r),
						slog.String("payload", logger.SanitizeLimit(string(debug.Stack()), 2000)),
					)
				}
			}()
			return next(c)
		}
	}
}
