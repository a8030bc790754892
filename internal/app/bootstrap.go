package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/bazumi/promobot/core/database"
	"github.com/bazumi/promobot/core/logger"
	coretelegram "github.com/bazumi/promobot/core/telegram"
)

// Runtime bundles everything Bootstrap produced, ready to run.
type Runtime struct {
	cfg *Config
	db  *sqlx.DB
	bot *coretelegram.Bot
	app *App
}

// Bootstrap loads configuration, initializes the logger, prepares the
// database and wires the bot. Nothing is polling yet when it returns.
func Bootstrap(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.Core); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init: %w", err)
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	if err := database.Migrate(ctx, cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations: %w", err)
	}

	bot, err := coretelegram.NewBot(cfg.Core)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := New(cfg, db, bot.Tele)

	// The super operator is always on the roster, so a fresh database
	// is immediately manageable.
	if err := a.store.AddOperator(ctx, cfg.App.SuperOperatorID); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: seed operator: %w", err)
	}
	logger.Info(ctx, "app", "operator_seeded",
		slog.Int64("user", cfg.App.SuperOperatorID),
	)

	reg := coretelegram.NewRegistry(a.States())
	a.Routes(reg)
	reg.Wire(bot.Tele)

	return &Runtime{cfg: cfg, db: db, bot: bot, app: a}, nil
}

// Run starts the background loops and the bot, blocks until ctx is
// cancelled and releases resources on the way out.
func (r *Runtime) Run(ctx context.Context) error {
	go r.app.Run(ctx)
	err := r.bot.Run(ctx)
	if closeErr := r.db.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("app: close database: %w", closeErr)
	}
	return err
}
