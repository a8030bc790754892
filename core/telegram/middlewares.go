package telegram

import (
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/bazumi/promobot/core/config"
	"github.com/bazumi/promobot/core/telegram/middleware"
)

// applyMiddlewares installs the processing chain. Order matters:
// logging attaches the correlation context first, recovery fences
// everything after it, counters and the rate limiter run innermost.
func applyMiddlewares(bot *tele.Bot, cfg *coreconfig.Config, counters *middleware.Counters, limiter *middleware.RateLimiter) {
	bot.Use(middleware.Logging())
	bot.Use(middleware.Recover())
	bot.Use(middleware.Metrics(counters))
	if cfg.RateLimit.Enabled {
		bot.Use(middleware.RateLimit(limiter))
	}
}
