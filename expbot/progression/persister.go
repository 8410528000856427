package progression

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/impulse/expbot/expbot/config"
	"github.com/impulse/expbot/expbot/database/models"
	"github.com/impulse/expbot/expbot/logger"
)

// persister writes the latest ledger and settings snapshots in the background. Snapshots
// queued while a write is in flight coalesce into one write of the newest state.
type persister struct {
	store   Store
	timeout time.Duration

	mu            sync.Mutex
	ledger        []models.UserExp
	ledgerDirty   bool
	settings      models.ExpSettings
	settingsDirty bool

	writeMu sync.Mutex

	kick    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func newPersister(store Store) *persister {
	return &persister{
		store:   store,
		timeout: config.PersistTimeout,
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (p *persister) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.run()
}

func (p *persister) queueLedger(entries []models.UserExp) {
	p.mu.Lock()
	p.ledger = entries
	p.ledgerDirty = true
	p.mu.Unlock()
	p.signal()
}

func (p *persister) queueSettings(settings models.ExpSettings) {
	p.mu.Lock()
	p.settings = settings
	p.settingsDirty = true
	p.mu.Unlock()
	p.signal()
}

func (p *persister) signal() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.kick:
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			_ = p.flush(ctx)
			cancel()
		case <-p.stop:
			return
		}
	}
}

// flush writes whatever is pending. A failed snapshot stays pending unless a newer one
// replaced it in the meantime, so the next mutation or flush retries a full write.
func (p *persister) flush(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	ledger, ledgerDirty := p.ledger, p.ledgerDirty
	settings, settingsDirty := p.settings, p.settingsDirty
	p.ledgerDirty, p.settingsDirty = false, false
	p.mu.Unlock()

	var errs []error
	if ledgerDirty {
		start := time.Now()
		err := p.store.SaveLedger(ctx, ledger)
		logger.LogStore("save_ledger", time.Since(start), err, "entries", len(ledger))
		if err != nil {
			errs = append(errs, err)
			p.mu.Lock()
			if !p.ledgerDirty {
				p.ledger, p.ledgerDirty = ledger, true
			}
			p.mu.Unlock()
		}
	}
	if settingsDirty {
		start := time.Now()
		err := p.store.SaveSettings(ctx, settings)
		logger.LogStore("save_settings", time.Since(start), err, "double_exp", settings.DoubleExp)
		if err != nil {
			errs = append(errs, err)
			p.mu.Lock()
			if !p.settingsDirty {
				p.settings, p.settingsDirty = settings, true
			}
			p.mu.Unlock()
		}
	}
	return errors.Join(errs...)
}

// shutdown stops the background writer and performs a final flush.
func (p *persister) shutdown(ctx context.Context) error {
	p.mu.Lock()
	started := p.started
	p.started = false
	p.mu.Unlock()

	if started {
		close(p.stop)
		select {
		case <-p.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.flush(ctx)
}
