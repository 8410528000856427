package progression

import (
	"context"

	"github.com/impulse/expbot/expbot/database/models"
)

// Store is the durable side of the engine. SaveLedger always receives the full ledger.
type Store interface {
	LoadLedger(ctx context.Context) ([]models.UserExp, error)
	SaveLedger(ctx context.Context, entries []models.UserExp) error
	LoadSettings(ctx context.Context) (models.ExpSettings, error)
	SaveSettings(ctx context.Context, settings models.ExpSettings) error
}

// Notifier receives progression events after the engine releases its lock.
type Notifier interface {
	OnLevelUp(userID string, oldLevel, newLevel int)
	OnMilestone(userID string, level int, bonus int64)
}

// DoubleExpNotifier is implemented by notifiers that also announce double EXP changes.
type DoubleExpNotifier interface {
	OnDoubleExpChanged(cfg DoubleExpConfig, expired bool)
}

// AnnouncingNotifier is implemented by notifiers that broadcast significant levels.
type AnnouncingNotifier interface {
	OnAnnouncement(userID string, level int)
}

type nopNotifier struct{}

func (nopNotifier) OnLevelUp(string, int, int)     {}
func (nopNotifier) OnMilestone(string, int, int64) {}
