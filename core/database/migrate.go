package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/bazumi/promobot/core/logger"
)

// Migrate applies all pending up migrations from cfg.MigrationsDir.
// Already being up to date is not an error.
func Migrate(ctx context.Context, cfg *Config) error {
	files, err := listMigrationFiles(cfg.MigrationsDir)
	if err != nil {
		return err
	}
	logger.Info(ctx, "db.migrate", "start",
		slog.String("db", cfg.Name),
		slog.String("payload", logger.SummarizeStrings(files, 5)),
	)

	m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.DSN())
	if err != nil {
		return fmt.Errorf("database: init migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn(ctx, "db.migrate", "close",
				slog.Any("err", errors.Join(srcErr, dbErr)),
			)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info(ctx, "db.migrate", "up_to_date")
			return nil
		}
		return fmt.Errorf("database: apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("database: read migration version: %w", err)
	}
	logger.Info(ctx, "db.migrate", "applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

func listMigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("database: read migrations dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
