package repositories

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/impulse/expbot/expbot/database"
	"github.com/impulse/expbot/expbot/database/models"
	"github.com/impulse/expbot/expbot/progression"
)

var _ progression.Store = (*ExpRepository)(nil)

func newTestRepository(t *testing.T) *ExpRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "exp.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(db.Close)
	if got := db.Dialect(); got != "sqlite" {
		t.Fatalf("Dialect() = %q, want sqlite", got)
	}

	if err := db.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("InitializeSchema: %v", err)
	}
	return NewExpRepository(db.BunDB())
}

func TestExpRepositoryLedgerRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	empty, err := repo.LoadLedger(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("LoadLedger on empty table = %v, %v", empty, err)
	}

	now := time.Now()
	first := []models.UserExp{
		{UserID: "zed", Exp: 5, Position: 0, UpdatedAt: now},
		{UserID: "alice", Exp: 120, Position: 1, UpdatedAt: now},
		{UserID: "bob", Exp: 7, Position: 2},
	}
	if err := repo.SaveLedger(ctx, first); err != nil {
		t.Fatalf("SaveLedger: %v", err)
	}

	second := first[:2]
	second[1].Exp = 130
	if err := repo.SaveLedger(ctx, second); err != nil {
		t.Fatalf("SaveLedger: %v", err)
	}

	got, err := repo.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the second snapshot to replace the first, got %+v", got)
	}
	if got[0].UserID != "zed" || got[1].UserID != "alice" || got[1].Exp != 130 {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestExpRepositorySavesLargeLedgerInBatches(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	entries := make([]models.UserExp, insertBatchSize*2+3)
	for i := range entries {
		entries[i] = models.UserExp{UserID: fmt.Sprintf("user%d", i), Exp: int64(i), Position: i}
	}
	if err := repo.SaveLedger(ctx, entries); err != nil {
		t.Fatalf("SaveLedger: %v", err)
	}

	got, err := repo.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if len(got) != len(entries) || got[len(got)-1].UserID != entries[len(entries)-1].UserID {
		t.Fatalf("loaded %d rows, want %d", len(got), len(entries))
	}
}

func TestExpRepositorySettings(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	settings, err := repo.LoadSettings(ctx)
	if err != nil || settings.DoubleExp {
		t.Fatalf("LoadSettings without row = %+v, %v", settings, err)
	}

	end := time.UnixMilli(1718000000000)
	tests := []struct {
		name     string
		settings models.ExpSettings
	}{
		{name: "timed window", settings: models.NewExpSettings(true, &end)},
		{name: "indefinite window", settings: models.NewExpSettings(true, nil)},
		{name: "disabled", settings: models.NewExpSettings(false, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.SaveSettings(ctx, tt.settings); err != nil {
				t.Fatalf("SaveSettings: %v", err)
			}
			got, err := repo.LoadSettings(ctx)
			if err != nil {
				t.Fatalf("LoadSettings: %v", err)
			}
			if got.DoubleExp != tt.settings.DoubleExp {
				t.Fatalf("DoubleExp = %v, want %v", got.DoubleExp, tt.settings.DoubleExp)
			}
			if (got.DoubleExpEndTime == nil) != (tt.settings.DoubleExpEndTime == nil) {
				t.Fatalf("end time = %v, want %v", got.DoubleExpEndTime, tt.settings.DoubleExpEndTime)
			}
			if got.DoubleExpEndTime != nil && *got.DoubleExpEndTime != *tt.settings.DoubleExpEndTime {
				t.Fatalf("end time = %d, want %d", *got.DoubleExpEndTime, *tt.settings.DoubleExpEndTime)
			}
		})
	}
}

func TestHandleErrorWrapsRepositoryErrors(t *testing.T) {
	base := &BaseRepository{}
	cause := errors.New("database is locked")

	err := base.HandleError("save", "user_exp", cause)
	var repoErr *RepositoryError
	if !errors.As(err, &repoErr) || repoErr.Operation != "save" || !errors.Is(err, cause) {
		t.Fatalf("HandleError = %v", err)
	}
	if base.HandleError("save", "user_exp", nil) != nil {
		t.Fatal("nil error was wrapped")
	}
}
