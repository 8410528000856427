package progression

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/logger"
)

// Options tunes the engine. Zero values fall back to the defaults in expbot/config.
type Options struct {
	Curve                Curve
	Cooldown             time.Duration
	DoubleExpFactor      int64
	MilestoneInterval    int
	BonusMultiplier      int64
	AnnouncementInterval int
	InactiveThreshold    time.Duration
	ActivityExp          int64
	LadderSize           int
}

func DefaultOptions() Options {
	return Options{
		Curve:                DefaultCurve(),
		Cooldown:             config.ExpCooldown,
		DoubleExpFactor:      config.DoubleExpMultiplier,
		MilestoneInterval:    config.MilestoneLevelInterval,
		BonusMultiplier:      config.BonusExpMultiplier,
		AnnouncementInterval: config.AnnouncementLevelInterval,
		InactiveThreshold:    config.InactiveThreshold,
		ActivityExp:          config.ActivityTickExp,
		LadderSize:           config.LadderSize,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Curve == (Curve{}) {
		o.Curve = d.Curve
	}
	if o.Cooldown == 0 {
		o.Cooldown = d.Cooldown
	}
	if o.DoubleExpFactor == 0 {
		o.DoubleExpFactor = d.DoubleExpFactor
	}
	if o.MilestoneInterval == 0 {
		o.MilestoneInterval = d.MilestoneInterval
	}
	if o.BonusMultiplier == 0 {
		o.BonusMultiplier = d.BonusMultiplier
	}
	if o.AnnouncementInterval == 0 {
		o.AnnouncementInterval = d.AnnouncementInterval
	}
	if o.InactiveThreshold == 0 {
		o.InactiveThreshold = d.InactiveThreshold
	}
	if o.ActivityExp == 0 {
		o.ActivityExp = d.ActivityExp
	}
	if o.LadderSize == 0 {
		o.LadderSize = d.LadderSize
	}
	return o
}

// GrantResult is the outcome of a grant including every cascaded milestone bonus.
type GrantResult struct {
	UserID     string
	Previous   int64
	Exp        int64
	Gained     int64
	Throttled  bool
	Doubled    bool
	OldLevel   int
	NewLevel   int
	LevelUps   []LevelUp
	Milestones []Milestone
}

// Engine owns the ledger, cooldowns, double EXP window and reward dispatch. All
// in-memory state is guarded by mu; notifications run after mu is released.
type Engine struct {
	mu sync.Mutex

	opts        Options
	curve       Curve
	ledger      *Ledger
	cooldowns   *CooldownGate
	window      *DoubleExpWindow
	dispatcher  *RewardDispatcher
	leaderboard *Leaderboard
	activity    *ActivityTracker
	persister   *persister
	notifier    Notifier
	now         func() time.Time

	expiryTimer *time.Timer
	closed      bool
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

func NewEngine(store Store, opts Options, options ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("progression: nil store")
	}
	opts = opts.withDefaults()

	leaderboard, err := NewLeaderboard(opts.Curve, opts.LadderSize, config.LeaderboardCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create leaderboard: %w", err)
	}

	e := &Engine{
		opts:        opts,
		curve:       opts.Curve,
		ledger:      NewLedger(),
		cooldowns:   NewCooldownGate(opts.Cooldown),
		window:      NewDoubleExpWindow(opts.DoubleExpFactor),
		dispatcher:  NewRewardDispatcher(opts.Curve, opts.MilestoneInterval, opts.BonusMultiplier, opts.AnnouncementInterval),
		leaderboard: leaderboard,
		activity:    NewActivityTracker(),
		persister:   newPersister(store),
		notifier:    nopNotifier{},
		now:         time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// SetNotifier swaps the notifier, e.g. once the chat client is connected.
func (e *Engine) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	e.mu.Lock()
	e.notifier = n
	e.mu.Unlock()
}

func (e *Engine) Curve() Curve {
	return e.curve
}

// Options returns the effective options after defaults.
func (e *Engine) Options() Options {
	return e.opts
}

// Load restores ledger and double EXP state and starts the background writer. Missing or
// corrupt data degrades to empty defaults.
func (e *Engine) Load(ctx context.Context) error {
	store := e.persister.store

	start := time.Now()
	entries, err := store.LoadLedger(ctx)
	if err != nil {
		logger.LogWarn("Failed to load EXP ledger, starting empty", err)
		entries = nil
	} else {
		logger.LogStore("load_ledger", time.Since(start), nil, "entries", len(entries))
	}

	start = time.Now()
	settings, err := store.LoadSettings(ctx)
	if err != nil {
		logger.LogWarn("Failed to load EXP settings, double EXP disabled", err)
		settings = DoubleExpConfig{}.settings()
	} else {
		logger.LogStore("load_settings", time.Since(start), nil)
	}

	e.mu.Lock()
	if skipped := e.ledger.Replace(entries); skipped > 0 {
		logger.LogWarn("Skipped invalid ledger rows", nil, slog.Int("skipped", skipped))
	}
	now := e.now()
	if e.window.Restore(configFromSettings(settings), now) {
		logger.LogSystem("Double EXP window expired while offline")
		e.persistSettingsLocked()
	}
	e.scheduleExpiryLocked(now)
	users := e.ledger.Len()
	cfg := e.window.Config()
	e.mu.Unlock()

	e.persister.start()
	logger.LogSystem("EXP engine loaded",
		slog.Int("users", users),
		slog.Bool("double_exp", cfg.Enabled))
	return nil
}

// Flush synchronously writes any pending snapshot.
func (e *Engine) Flush(ctx context.Context) error {
	return e.persister.flush(ctx)
}

// Close cancels the expiry timer, stops the writer and flushes.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	if e.expiryTimer != nil {
		e.expiryTimer.Stop()
		e.expiryTimer = nil
	}
	e.mu.Unlock()
	return e.persister.shutdown(ctx)
}

// Grant adds amount (times the double EXP factor) to userID. Without an issuer the grant is
// self-triggered: it is dropped while the user's cooldown runs and starts a new cooldown.
// With an issuer the grant is privileged and never touches the cooldown table.
func (e *Engine) Grant(userID string, amount int64, reason, issuer string) (GrantResult, error) {
	id := NormalizeID(userID)
	if id == "" {
		return GrantResult{}, fmt.Errorf("grant to %q: %w", userID, ErrInvalidUser)
	}
	if amount <= 0 {
		return GrantResult{}, fmt.Errorf("grant %d: %w", amount, ErrInvalidAmount)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return GrantResult{}, ErrEngineClosed
	}
	now := e.now()
	privileged := issuer != ""

	if !privileged && e.cooldowns.IsThrottled(id, now) {
		exp := e.ledger.Read(id)
		level := e.curve.Level(exp)
		e.mu.Unlock()
		return GrantResult{UserID: id, Previous: exp, Exp: exp, Throttled: true, OldLevel: level, NewLevel: level}, nil
	}

	expired := e.checkExpiryLocked(now)
	doubled := e.window.Multiplier(now) > 1

	chain := newDispatchChain()
	credit := func(base int64) (int64, int64) {
		return e.creditLocked(id, base, now)
	}
	before, after := credit(amount)
	if !privileged {
		e.cooldowns.Record(id, now)
	}
	e.dispatcher.Dispatch(chain, id, before, after, credit)

	final := e.ledger.Read(id)
	e.persistLedgerLocked()
	notifier := e.notifier
	status := e.window.Config()
	e.mu.Unlock()

	result := GrantResult{
		UserID:     id,
		Previous:   before,
		Exp:        final,
		Gained:     final - before,
		Doubled:    doubled,
		OldLevel:   e.curve.Level(before),
		NewLevel:   e.curve.Level(final),
		LevelUps:   chain.levelUps,
		Milestones: chain.milestones,
	}

	logger.LogExp("grant",
		slog.String("user_id", id),
		slog.Int64("amount", amount),
		slog.Int64("gained", result.Gained),
		slog.Bool("double_exp", doubled),
		slog.String("reason", reason),
		slog.String("issuer", issuer))

	if expired {
		notifyDoubleExp(notifier, status, true)
	}
	e.notifyGrant(notifier, result)
	return result, nil
}

// creditLocked applies the double EXP factor to base and credits the ledger.
func (e *Engine) creditLocked(id string, base int64, now time.Time) (int64, int64) {
	gained := base
	if factor := e.window.Multiplier(now); factor > 1 {
		if base > math.MaxInt64/factor {
			gained = math.MaxInt64
		} else {
			gained = base * factor
		}
	}
	before := e.ledger.Read(id)
	return before, e.ledger.Add(id, gained)
}

// Take debits amount when the user can cover all of it; otherwise nothing changes and the
// current balance is returned.
func (e *Engine) Take(userID string, amount int64, reason, issuer string) (int64, error) {
	id := NormalizeID(userID)
	if id == "" {
		return 0, fmt.Errorf("take from %q: %w", userID, ErrInvalidUser)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("take %d: %w", amount, ErrInvalidAmount)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, ErrEngineClosed
	}
	balance, taken := e.ledger.Take(id, amount)
	if taken {
		e.persistLedgerLocked()
	}
	e.mu.Unlock()

	logger.LogExp("take",
		slog.String("user_id", id),
		slog.Int64("amount", amount),
		slog.Bool("applied", taken),
		slog.Int64("balance", balance),
		slog.String("reason", reason),
		slog.String("issuer", issuer))
	return balance, nil
}

// Has reports whether userID holds at least amount.
func (e *Engine) Has(userID string, amount int64) bool {
	id := NormalizeID(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Has(id, amount)
}

// Read returns the balance of userID.
func (e *Engine) Read(userID string) int64 {
	id := NormalizeID(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Read(id)
}

// SetAbsolute overwrites a balance without level-up processing.
func (e *Engine) SetAbsolute(userID string, exp int64, reason, issuer string) error {
	id := NormalizeID(userID)
	if id == "" {
		return fmt.Errorf("set exp of %q: %w", userID, ErrInvalidUser)
	}
	if exp < 0 {
		return fmt.Errorf("set exp %d: %w", exp, ErrInvalidExp)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.ledger.Write(id, exp)
	e.persistLedgerLocked()
	e.mu.Unlock()

	logger.LogExp("set",
		slog.String("user_id", id),
		slog.Int64("exp", exp),
		slog.String("reason", reason),
		slog.String("issuer", issuer))
	return nil
}

// ResetAll clears the whole ledger.
func (e *Engine) ResetAll(reason, issuer string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	users := e.ledger.Len()
	e.ledger.ResetAll()
	e.persistLedgerLocked()
	e.mu.Unlock()

	logger.LogExp("reset_all",
		slog.Int("users", users),
		slog.String("reason", reason),
		slog.String("issuer", issuer))
	return nil
}

func (e *Engine) LevelInfo(userID string) (LevelInfo, error) {
	id := NormalizeID(userID)
	if id == "" {
		return LevelInfo{}, fmt.Errorf("level info of %q: %w", userID, ErrInvalidUser)
	}
	e.mu.Lock()
	exp := e.ledger.Read(id)
	e.mu.Unlock()
	return e.curve.Info(exp), nil
}

// TopUsers returns the n richest users; n <= 0 means the configured ladder size.
func (e *Engine) TopUsers(n int) []Standing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leaderboard.Top(e.ledger, n)
}

// CooldownRemaining is how long userID's self-triggered grants stay throttled.
func (e *Engine) CooldownRemaining(userID string) time.Duration {
	id := NormalizeID(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cooldowns.Remaining(id, e.now())
}

// EnableDoubleExp opens a double EXP window of length d, or an indefinite one for d == 0.
// Any expiry scheduled by an earlier toggle is invalidated.
func (e *Engine) EnableDoubleExp(d time.Duration) (DoubleExpConfig, error) {
	if d < 0 {
		return DoubleExpConfig{}, fmt.Errorf("double exp for %s: %w", d, ErrInvalidDuration)
	}
	return e.toggleDoubleExp(func(now time.Time) DoubleExpConfig {
		return e.window.Enable(now, d)
	})
}

func (e *Engine) DisableDoubleExp() (DoubleExpConfig, error) {
	return e.toggleDoubleExp(func(time.Time) DoubleExpConfig {
		return e.window.Disable()
	})
}

// ToggleDoubleExp flips the window without an end time.
func (e *Engine) ToggleDoubleExp() (DoubleExpConfig, error) {
	return e.toggleDoubleExp(func(time.Time) DoubleExpConfig {
		return e.window.Toggle()
	})
}

func (e *Engine) toggleDoubleExp(apply func(now time.Time) DoubleExpConfig) (DoubleExpConfig, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return DoubleExpConfig{}, ErrEngineClosed
	}
	now := e.now()
	cfg := apply(now)
	e.persistSettingsLocked()
	e.scheduleExpiryLocked(now)
	notifier := e.notifier
	e.mu.Unlock()

	attrs := []any{slog.Bool("enabled", cfg.Enabled)}
	if cfg.EndTime != nil {
		attrs = append(attrs, slog.Time("end_time", *cfg.EndTime))
	}
	logger.LogExp("double_exp", attrs...)

	notifyDoubleExp(notifier, cfg, false)
	return cfg, nil
}

// IsDoubleExpActive checks expiry first so a lapsed window reads as inactive.
func (e *Engine) IsDoubleExpActive() bool {
	return e.DoubleExpStatus().Enabled
}

func (e *Engine) DoubleExpStatus() DoubleExpConfig {
	e.mu.Lock()
	expired := e.checkExpiryLocked(e.now())
	cfg := e.window.Config()
	notifier := e.notifier
	e.mu.Unlock()

	if expired {
		notifyDoubleExp(notifier, cfg, true)
	}
	return cfg
}

// RecordActivity notes a public message for the auto-grant tick.
func (e *Engine) RecordActivity(userID, channelID string) {
	id := NormalizeID(userID)
	if id == "" {
		return
	}
	e.mu.Lock()
	e.activity.Record(id, channelID, e.now())
	e.mu.Unlock()
}

// LastChannel returns where userID last spoke.
func (e *Engine) LastChannel(userID string) (string, bool) {
	id := NormalizeID(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activity.Channel(id)
}

// HandleChatMessage records activity and pays the self-triggered chat grant.
func (e *Engine) HandleChatMessage(userID, channelID string) (GrantResult, error) {
	e.RecordActivity(userID, channelID)
	return e.Grant(userID, config.ChatMessageExp, "", "")
}

// GrantActive pays the self-triggered activity grant to every user who spoke within the
// inactivity threshold and forgets users idle longer than that.
func (e *Engine) GrantActive() []GrantResult {
	e.mu.Lock()
	cutoff := e.now().Add(-e.opts.InactiveThreshold)
	ids := e.activity.ActiveSince(cutoff)
	e.activity.Prune(cutoff)
	e.mu.Unlock()

	results := make([]GrantResult, 0, len(ids))
	for _, id := range ids {
		result, err := e.Grant(id, e.opts.ActivityExp, "", "")
		if err != nil {
			logger.LogError("Activity grant failed", err, slog.String("user_id", id))
			continue
		}
		if !result.Throttled {
			results = append(results, result)
		}
	}
	return results
}

// RunActivityTicker calls GrantActive every period until ctx is done.
func (e *Engine) RunActivityTicker(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			granted := e.GrantActive()
			slog.Debug("Activity tick", slog.String("type", "exp"), slog.Int("granted", len(granted)))
		}
	}
}

func (e *Engine) checkExpiryLocked(now time.Time) bool {
	if !e.window.CheckExpiry(now) {
		return false
	}
	if e.expiryTimer != nil {
		e.expiryTimer.Stop()
		e.expiryTimer = nil
	}
	e.persistSettingsLocked()
	return true
}

// scheduleExpiryLocked replaces the pending expiry callback with one for the current
// generation. The callback is a no-op once another toggle bumps the generation.
func (e *Engine) scheduleExpiryLocked(now time.Time) {
	if e.expiryTimer != nil {
		e.expiryTimer.Stop()
		e.expiryTimer = nil
	}
	remaining, timed := e.window.Config().Remaining(now)
	if !timed || e.closed {
		return
	}
	generation := e.window.Generation()
	e.expiryTimer = time.AfterFunc(remaining, func() {
		e.expireWindow(generation)
	})
}

func (e *Engine) expireWindow(generation uint64) {
	e.mu.Lock()
	// After Close the writer is gone; Load disables the past end time on the next start.
	if e.closed || !e.window.Expire(generation) {
		e.mu.Unlock()
		return
	}
	e.expiryTimer = nil
	e.persistSettingsLocked()
	cfg := e.window.Config()
	notifier := e.notifier
	e.mu.Unlock()

	logger.LogSystem("Double EXP window ended")
	notifyDoubleExp(notifier, cfg, true)
}

func (e *Engine) persistLedgerLocked() {
	e.persister.queueLedger(e.ledger.Entries())
}

func (e *Engine) persistSettingsLocked() {
	e.persister.queueSettings(e.window.Config().settings())
}

func (e *Engine) notifyGrant(n Notifier, result GrantResult) {
	announcer, announces := n.(AnnouncingNotifier)
	for _, up := range result.LevelUps {
		n.OnLevelUp(up.UserID, up.OldLevel, up.NewLevel)
		if up.Announce && announces {
			announcer.OnAnnouncement(up.UserID, up.NewLevel)
		}
	}
	for _, m := range result.Milestones {
		n.OnMilestone(m.UserID, m.Level, m.Bonus)
	}
}

func notifyDoubleExp(n Notifier, cfg DoubleExpConfig, expired bool) {
	if dn, ok := n.(DoubleExpNotifier); ok {
		dn.OnDoubleExpChanged(cfg, expired)
	}
}
