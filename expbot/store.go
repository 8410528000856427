package expbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/impulse/expbot/expbot/database"
	"github.com/impulse/expbot/expbot/database/repositories"
	"github.com/impulse/expbot/expbot/progression"
	"github.com/impulse/expbot/expbot/storage"
)

// OpenStore builds the backend named by storage.driver. The returned func releases it.
func OpenStore(ctx context.Context, cfg Config) (progression.Store, func(), error) {
	start := time.Now()

	switch cfg.Storage.Driver {
	case DriverPostgres:
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := db.InitializeSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize database schema: %w", err)
		}
		logStoreReady(db.Dialect(), cfg.DB.Database, start)
		return repositories.NewExpRepository(db.BunDB()), db.Close, nil

	case DriverSQLite:
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.InitializeSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize database schema: %w", err)
		}
		logStoreReady(db.Dialect(), cfg.Storage.SQLitePath, start)
		return repositories.NewExpRepository(db.BunDB()), db.Close, nil

	case DriverFile:
		store, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logStoreReady(cfg.Storage.Driver, cfg.Storage.DataDir, start)
		return store, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func logStoreReady(driver, location string, start time.Time) {
	slog.Info("EXP store ready",
		slog.String("type", "db"),
		slog.String("driver", driver),
		slog.String("location", location),
		slog.Duration("took", time.Since(start)))
}
