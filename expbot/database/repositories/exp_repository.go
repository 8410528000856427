package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/impulse/expbot/expbot/database/models"
	"github.com/uptrace/bun"
)

const insertBatchSize = 500

// ExpRepository stores the EXP ledger and the double EXP settings row.
type ExpRepository struct {
	*BaseRepository
}

func NewExpRepository(db *bun.DB) *ExpRepository {
	return &ExpRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ExpRepository) LoadLedger(ctx context.Context) ([]models.UserExp, error) {
	var rows []models.UserExp
	err := r.SelectWithTimeout(ctx, "load", "user_exp", func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&rows).
			Order("position ASC").
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveLedger replaces the whole table so a reset-all or a removed user is reflected.
func (r *ExpRepository) SaveLedger(ctx context.Context, entries []models.UserExp) error {
	return r.Transaction(ctx, "save", "user_exp", func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.UserExp)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return err
		}

		now := time.Now()
		for start := 0; start < len(entries); start += insertBatchSize {
			end := min(start+insertBatchSize, len(entries))
			batch := make([]models.UserExp, end-start)
			copy(batch, entries[start:end])
			for i := range batch {
				if batch[i].UpdatedAt.IsZero() {
					batch[i].UpdatedAt = now
				}
			}
			if _, err := tx.NewInsert().
				Model(&batch).
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSettings returns the disabled default when the row was never written.
func (r *ExpRepository) LoadSettings(ctx context.Context) (models.ExpSettings, error) {
	settings := models.ExpSettings{ID: models.SettingsRowID}
	err := r.SelectOneWithTimeout(ctx, "load", "exp_settings", models.SettingsRowID, func(ctx context.Context) error {
		return r.db.NewSelect().
			Model(&settings).
			WherePK().
			Scan(ctx)
	})

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return models.NewExpSettings(false, nil), nil
	}
	if err != nil {
		return models.ExpSettings{}, err
	}
	return settings, nil
}

func (r *ExpRepository) SaveSettings(ctx context.Context, settings models.ExpSettings) error {
	settings.ID = models.SettingsRowID
	_, err := r.ExecWithTimeout(ctx, "save", "exp_settings", func(ctx context.Context) (sql.Result, error) {
		return r.db.NewInsert().
			Model(&settings).
			On("CONFLICT (id) DO UPDATE").
			Set("double_exp = EXCLUDED.double_exp").
			Set("double_exp_end_time = EXCLUDED.double_exp_end_time").
			Exec(ctx)
	})
	return err
}
