package progression

import (
	"time"

	"github.com/impulse/expbot/expbot/database/models"
)

// DoubleExpConfig is the global double EXP state. EndTime is nil while disabled and nil
// for an indefinite window.
type DoubleExpConfig struct {
	Enabled bool
	EndTime *time.Time
}

// Active reports whether the window doubles grants at now.
func (c DoubleExpConfig) Active(now time.Time) bool {
	return c.Enabled && (c.EndTime == nil || now.Before(*c.EndTime))
}

// Remaining is the time left on a timed window.
func (c DoubleExpConfig) Remaining(now time.Time) (time.Duration, bool) {
	if !c.Enabled || c.EndTime == nil {
		return 0, false
	}
	return c.EndTime.Sub(now), true
}

func (c DoubleExpConfig) settings() models.ExpSettings {
	return models.NewExpSettings(c.Enabled, c.EndTime)
}

func configFromSettings(s models.ExpSettings) DoubleExpConfig {
	cfg := DoubleExpConfig{Enabled: s.DoubleExp}
	if cfg.Enabled {
		cfg.EndTime = s.EndTime()
	}
	return cfg
}

// DoubleExpWindow owns the double EXP config and the generation counter that lets the
// engine discard expiry callbacks scheduled before the latest toggle.
type DoubleExpWindow struct {
	cfg        DoubleExpConfig
	factor     int64
	generation uint64
}

func NewDoubleExpWindow(factor int64) *DoubleExpWindow {
	if factor < 1 {
		factor = 1
	}
	return &DoubleExpWindow{factor: factor}
}

// Config returns a copy of the current state.
func (w *DoubleExpWindow) Config() DoubleExpConfig {
	cfg := w.cfg
	if cfg.EndTime != nil {
		end := *cfg.EndTime
		cfg.EndTime = &end
	}
	return cfg
}

func (w *DoubleExpWindow) Generation() uint64 {
	return w.generation
}

// Multiplier is the factor applied to grants at now.
func (w *DoubleExpWindow) Multiplier(now time.Time) int64 {
	if w.cfg.Active(now) {
		return w.factor
	}
	return 1
}

// CheckExpiry disables a window whose end time has passed and reports whether it did.
func (w *DoubleExpWindow) CheckExpiry(now time.Time) bool {
	if w.cfg.Enabled && w.cfg.EndTime != nil && !now.Before(*w.cfg.EndTime) {
		w.set(DoubleExpConfig{})
		return true
	}
	return false
}

// Enable opens a window lasting d from now, or an indefinite one when d is zero.
func (w *DoubleExpWindow) Enable(now time.Time, d time.Duration) DoubleExpConfig {
	cfg := DoubleExpConfig{Enabled: true}
	if d > 0 {
		end := now.Add(d)
		cfg.EndTime = &end
	}
	w.set(cfg)
	return w.Config()
}

func (w *DoubleExpWindow) Disable() DoubleExpConfig {
	w.set(DoubleExpConfig{})
	return w.Config()
}

// Toggle flips the flag. Either direction leaves no end time.
func (w *DoubleExpWindow) Toggle() DoubleExpConfig {
	w.set(DoubleExpConfig{Enabled: !w.cfg.Enabled})
	return w.Config()
}

// Restore applies a loaded config, dropping an end time on a disabled record. It
// reports whether the restored window had already expired.
func (w *DoubleExpWindow) Restore(cfg DoubleExpConfig, now time.Time) bool {
	if !cfg.Enabled {
		cfg.EndTime = nil
	}
	w.set(cfg)
	return w.CheckExpiry(now)
}

// Expire disables the window on behalf of a callback scheduled at generation. A stale
// generation is a no-op.
func (w *DoubleExpWindow) Expire(generation uint64) bool {
	if generation != w.generation || !w.cfg.Enabled {
		return false
	}
	w.set(DoubleExpConfig{})
	return true
}

func (w *DoubleExpWindow) set(cfg DoubleExpConfig) {
	w.cfg = cfg
	w.generation++
}
