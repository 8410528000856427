package progression

import "time"

// CooldownGate throttles self-triggered grants per user.
type CooldownGate struct {
	window time.Duration
	last   map[string]time.Time
}

func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{window: window, last: make(map[string]time.Time)}
}

func (g *CooldownGate) IsThrottled(id string, now time.Time) bool {
	return g.Remaining(id, now) > 0
}

// Remaining is how long id still has to wait, zero when not throttled.
func (g *CooldownGate) Remaining(id string, now time.Time) time.Duration {
	last, ok := g.last[id]
	if !ok {
		return 0
	}
	if elapsed := now.Sub(last); elapsed < g.window {
		return g.window - elapsed
	}
	return 0
}

func (g *CooldownGate) Record(id string, now time.Time) {
	g.last[id] = now
}

func (g *CooldownGate) LastGrant(id string) (time.Time, bool) {
	last, ok := g.last[id]
	return last, ok
}
