package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/impulse/expbot/expbot"
	"github.com/impulse/expbot/expbot/logger"
	"github.com/impulse/expbot/expbot/migration"
	"github.com/impulse/expbot/expbot/storage"
)

// Copies the JSON file store into the SQL backend named by the config's storage.driver.
func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	path := flag.String("config", "config.toml", "path to config (.toml or .yaml)")
	from := flag.String("from", "", "directory holding exp.json and exp-config.json (defaults to storage.data_dir)")
	dryRun := flag.Bool("dry-run", false, "read and validate without writing")
	flag.Parse()

	cfg, err := expbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver == expbot.DriverFile {
		slog.Error("Target storage.driver must be postgres or sqlite")
		os.Exit(1)
	}

	dir := *from
	if dir == "" {
		dir = cfg.Storage.DataDir
	}
	source, err := storage.NewFileStore(dir)
	if err != nil {
		slog.Error("Failed to open file store", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	target, closeTarget, err := expbot.OpenStore(ctx, *cfg)
	if err != nil {
		slog.Error("Failed to open target store", "error", err)
		os.Exit(1)
	}
	defer closeTarget()

	migrator := migration.NewMigrator(source, target)
	migrator.SetDryRun(*dryRun)
	if _, err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", "error", err)
		closeTarget()
		os.Exit(1)
	}

	slog.Info("Migration completed successfully!")
}
