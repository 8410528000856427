package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/impulse/expbot/expbot/progression"
)

// MigrationStats summarizes one run.
type MigrationStats struct {
	Users     int
	Skipped   int
	TotalExp  int64
	DoubleExp bool
	StartTime time.Time
	Duration  time.Duration
}

// Migrator copies EXP data from one store into another, normalizing user ids on the way.
type Migrator struct {
	source progression.Store
	target progression.Store
	dryRun bool
}

func NewMigrator(source, target progression.Store) *Migrator {
	return &Migrator{source: source, target: target}
}

// SetDryRun makes MigrateAll read and validate without writing.
func (m *Migrator) SetDryRun(dryRun bool) {
	m.dryRun = dryRun
}

func (m *Migrator) MigrateAll(ctx context.Context) (MigrationStats, error) {
	stats := MigrationStats{StartTime: time.Now()}
	logProgress("Starting EXP migration", slog.Bool("dry_run", m.dryRun))

	entries, err := m.source.LoadLedger(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read source ledger: %w", err)
	}
	ledger := progression.NewLedger()
	stats.Skipped = ledger.Replace(entries)
	normalized := ledger.Entries()
	stats.Users = len(normalized)
	for _, e := range normalized {
		stats.TotalExp += e.Exp
	}
	logProgress("Read source ledger",
		slog.Int("users", stats.Users),
		slog.Int("skipped", stats.Skipped))

	settings, err := m.source.LoadSettings(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read source settings: %w", err)
	}
	stats.DoubleExp = settings.DoubleExp

	if !m.dryRun {
		if err := m.target.SaveLedger(ctx, normalized); err != nil {
			return stats, fmt.Errorf("failed to write target ledger: %w", err)
		}
		if err := m.target.SaveSettings(ctx, settings); err != nil {
			return stats, fmt.Errorf("failed to write target settings: %w", err)
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	logProgress("EXP migration finished",
		slog.Int("users", stats.Users),
		slog.Int64("total_exp", stats.TotalExp),
		slog.Bool("double_exp", stats.DoubleExp),
		slog.Duration("took", stats.Duration))
	return stats, nil
}

func logProgress(message string, attrs ...any) {
	slog.Info(message, append([]any{slog.String("type", "db"), slog.String("service", "ExpBot Migration")}, attrs...)...)
}
