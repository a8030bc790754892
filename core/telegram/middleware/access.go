package middleware

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/helpers"
)

// OperatorChecker reports whether a user may use operator features.
type OperatorChecker interface {
	IsOperator(ctx context.Context, userID int64) (bool, error)
}

// OperatorOnly guards handlers behind the operator roster. deny is the
// message sent to non-operators; empty means silent drop.
func OperatorOnly(checker OperatorChecker, deny string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			ctx := helpers.Ctx(c)
			ok, err := checker.IsOperator(ctx, sender.ID)
			if err != nil {
				logger.Error(ctx, "tg", "operator_check_failed",
					slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
				)
				return helpers.Reply(c, deny)
			}
			if !ok {
				logger.Info(ctx, "tg", "operator_denied",
					slog.String("decision", "deny"),
				)
				if deny == "" {
					return nil
				}
				return helpers.Reply(c, deny)
			}
			return next(c)
		}
	}
}
