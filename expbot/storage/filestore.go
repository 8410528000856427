package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/database/models"
)

// FileStore keeps the ledger and the double EXP settings as two JSON files in one
// directory. The ledger is a single object of user id to EXP in insertion order.
type FileStore struct {
	mu           sync.Mutex
	ledgerPath   string
	settingsPath string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = config.DefaultDataDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{
		ledgerPath:   filepath.Join(dir, config.LedgerFileName),
		settingsPath: filepath.Join(dir, config.SettingsFileName),
	}, nil
}

func (s *FileStore) LedgerPath() string   { return s.ledgerPath }
func (s *FileStore) SettingsPath() string { return s.settingsPath }

// LoadLedger returns nil for a missing file and an error for a corrupt one.
func (s *FileStore) LoadLedger(ctx context.Context) ([]models.UserExp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	b, err := os.ReadFile(s.ledgerPath)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.ledgerPath, err)
	}

	entries, err := decodeLedger(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.ledgerPath, err)
	}
	return entries, nil
}

func (s *FileStore) SaveLedger(ctx context.Context, entries []models.UserExp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encodeLedger(entries)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.ledgerPath, b)
}

// LoadSettings returns the disabled default for a missing file.
func (s *FileStore) LoadSettings(ctx context.Context) (models.ExpSettings, error) {
	if err := ctx.Err(); err != nil {
		return models.ExpSettings{}, err
	}
	s.mu.Lock()
	b, err := os.ReadFile(s.settingsPath)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return models.NewExpSettings(false, nil), nil
	}
	if err != nil {
		return models.ExpSettings{}, fmt.Errorf("read %s: %w", s.settingsPath, err)
	}

	var settings models.ExpSettings
	if err := json.Unmarshal(b, &settings); err != nil {
		return models.ExpSettings{}, fmt.Errorf("decode %s: %w", s.settingsPath, err)
	}
	settings.ID = models.SettingsRowID
	return settings, nil
}

func (s *FileStore) SaveSettings(ctx context.Context, settings models.ExpSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.settingsPath, b)
}

func writeFileAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// encodeLedger writes entries as one JSON object, keys in slice order.
func encodeLedger(entries []models.UserExp) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		key, err := json.Marshal(e.UserID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")
		fmt.Fprintf(&buf, "%d", e.Exp)
	}
	if len(entries) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// decodeLedger reads the ledger object token by token so key order survives. Values that
// are not non-negative integers are dropped.
func decodeLedger(b []byte) ([]models.UserExp, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	now := time.Now()
	var entries []models.UserExp
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		num, ok := value.(json.Number)
		if !ok {
			continue
		}
		exp, err := num.Int64()
		if err != nil || exp < 0 {
			continue
		}
		entries = append(entries, models.UserExp{
			UserID:    key,
			Exp:       exp,
			Position:  len(entries),
			UpdatedAt: now,
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after ledger object")
	}
	return entries, nil
}
