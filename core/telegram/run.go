package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/bazumi/promobot/core/config"
	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/commands"
	"github.com/bazumi/promobot/core/telegram/middleware"
)

// Bot bundles the telebot instance with its middleware state.
type Bot struct {
	Tele     *tele.Bot
	Counters *middleware.Counters
	limiter  *middleware.RateLimiter
	cfg      *coreconfig.Config
}

// NewBot constructs and verifies the bot without starting the poller.
func NewBot(cfg *coreconfig.Config) (*Bot, error) {
	poller, err := newPoller(cfg)
	if err != nil {
		return nil, err
	}

	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: newHTTPClient(cfg),
		OnError: func(err error, c tele.Context) {
			ctx := context.Background()
			if c != nil {
				ctx = logger.WithUpdateID(ctx, c.Update().ID)
			}
			logger.Error(ctx, "tg", "handler_error",
				slog.String("err", logger.SanitizeLimit(err.Error(), 300)),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}

	counters := &middleware.Counters{}
	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerUserPerSec, cfg.RateLimit.Burst)
	applyMiddlewares(b, cfg, counters, limiter)

	logger.Info(context.Background(), "tg.wire", "bot_created",
		slog.String("username", b.Me.Username),
		slog.String("mode", string(cfg.Telegram.RunMode)),
	)
	return &Bot{Tele: b, Counters: counters, limiter: limiter, cfg: cfg}, nil
}

// Run publishes the command menu, starts the poller and blocks until
// ctx is cancelled, then stops the bot gracefully.
func (b *Bot) Run(ctx context.Context) error {
	if err := commands.InitBotCommands(b.Tele); err != nil {
		// Menu registration failing is not fatal; commands still work.
		logger.Warn(ctx, "tg.wire", "set_commands_failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
		)
	}

	go b.housekeeping(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Tele.Start()
	}()

	logger.Info(ctx, "tg", "started",
		slog.String("mode", string(b.cfg.Telegram.RunMode)),
		slog.String("listen", b.cfg.Webhook.Listen),
	)

	<-ctx.Done()
	b.Tele.Stop()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn(context.Background(), "tg", "stop_timeout")
	}
	logger.Info(context.Background(), "tg", "stopped")
	return nil
}

// housekeeping periodically sweeps limiter buckets and reports traffic
// totals.
func (b *Bot) housekeeping(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.limiter.Sweep(30 * time.Minute)
			updates, messages, kb := b.Counters.Snapshot()
			logger.Info(ctx, "tg", "traffic_summary",
				slog.Int64("updates", updates),
				slog.Int64("messages", messages),
				slog.Int64("kb", kb),
			)
		}
	}
}
