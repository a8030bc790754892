// Package database owns the Postgres connection pool and schema
// migrations.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/bazumi/promobot/core/logger"
)

// Connect opens the pool and waits until Postgres answers pings, giving
// the database time to come up alongside the bot.
func Connect(ctx context.Context, cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := waitForPostgres(ctx, db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info(ctx, "db", "connected",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("db", cfg.Name),
	)
	return db, nil
}

func waitForPostgres(ctx context.Context, db *sqlx.DB, cfg *Config) error {
	deadline := time.Now().Add(cfg.ConnectTimeout)
	attempt := 0
	for {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			if attempt > 1 {
				logger.Info(ctx, "db", "ready",
					slog.Int("attempts", attempt),
				)
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database: not reachable after %s: %w", cfg.ConnectTimeout, err)
		}
		logger.Warn(ctx, "db", "wait",
			slog.Int("attempts", attempt),
			slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
