package expbot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/impulse/expbot/expbot/database/models"
)

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		storage StorageConfig
		wantErr bool
	}{
		{name: "file", storage: StorageConfig{Driver: DriverFile, DataDir: filepath.Join(dir, "files")}},
		{name: "sqlite", storage: StorageConfig{Driver: DriverSQLite, SQLitePath: filepath.Join(dir, "exp.sqlite")}},
		{name: "unknown", storage: StorageConfig{Driver: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, closeStore, err := OpenStore(ctx, Config{Storage: tt.storage})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			defer closeStore()

			if err := store.SaveLedger(ctx, []models.UserExp{{UserID: "alice", Exp: 9}}); err != nil {
				t.Fatalf("SaveLedger: %v", err)
			}
			entries, err := store.LoadLedger(ctx)
			if err != nil || len(entries) != 1 || entries[0].Exp != 9 {
				t.Fatalf("LoadLedger = %+v, %v", entries, err)
			}
		})
	}
}
