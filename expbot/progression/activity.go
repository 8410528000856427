package progression

import (
	"sort"
	"time"
)

type activity struct {
	at        time.Time
	channelID string
}

// ActivityTracker remembers when and where each user last spoke in public.
type ActivityTracker struct {
	last map[string]activity
}

func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{last: make(map[string]activity)}
}

func (t *ActivityTracker) Record(id, channelID string, now time.Time) {
	t.last[id] = activity{at: now, channelID: channelID}
}

// ActiveSince returns, sorted, the users who spoke at or after cutoff.
func (t *ActivityTracker) ActiveSince(cutoff time.Time) []string {
	ids := make([]string, 0, len(t.last))
	for id, a := range t.last {
		if !a.at.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Channel returns the channel of the user's last recorded message.
func (t *ActivityTracker) Channel(id string) (string, bool) {
	a, ok := t.last[id]
	if !ok || a.channelID == "" {
		return "", false
	}
	return a.channelID, true
}

// Prune forgets users idle since before cutoff.
func (t *ActivityTracker) Prune(cutoff time.Time) int {
	removed := 0
	for id, a := range t.last {
		if a.at.Before(cutoff) {
			delete(t.last, id)
			removed++
		}
	}
	return removed
}
