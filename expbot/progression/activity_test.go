package progression

import (
	"testing"
	"time"
)

func TestActivityTracker(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tracker := NewActivityTracker()

	tracker.Record("carol", "c1", now.Add(-10*time.Minute))
	tracker.Record("bob", "c2", now.Add(-2*time.Minute))
	tracker.Record("alice", "c3", now)

	cutoff := now.Add(-5 * time.Minute)
	active := tracker.ActiveSince(cutoff)
	if len(active) != 2 || active[0] != "alice" || active[1] != "bob" {
		t.Fatalf("ActiveSince = %v", active)
	}

	if ch, ok := tracker.Channel("bob"); !ok || ch != "c2" {
		t.Fatalf("Channel(bob) = %q, %v", ch, ok)
	}

	if removed := tracker.Prune(cutoff); removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}
	if _, ok := tracker.Channel("carol"); ok {
		t.Fatal("pruned user still tracked")
	}
}
