package progression

import "testing"

func TestLeaderboardTop(t *testing.T) {
	lb, err := NewLeaderboard(DefaultCurve(), 100, 8)
	if err != nil {
		t.Fatalf("NewLeaderboard: %v", err)
	}

	l := NewLedger()
	l.Write("alice", 50)
	l.Write("bob", 200)
	l.Write("carol", 50)
	l.Write("dave", 10)

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "full ladder", n: 0, want: []string{"bob", "alice", "carol", "dave"}},
		{name: "truncated", n: 2, want: []string{"bob", "alice"}},
		{name: "larger than ledger", n: 10, want: []string{"bob", "alice", "carol", "dave"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lb.Top(l, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d standings, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].UserID != id || got[i].Rank != i+1 {
					t.Fatalf("standing %d = %+v, want %s", i, got[i], id)
				}
			}
		})
	}

	top := lb.Top(l, 1)[0]
	if top.Level != 5 || top.NextLevelExp != 243 {
		t.Fatalf("bob standing = %+v", top)
	}
}

func TestLeaderboardCacheFollowsRevision(t *testing.T) {
	lb, err := NewLeaderboard(DefaultCurve(), 100, 8)
	if err != nil {
		t.Fatalf("NewLeaderboard: %v", err)
	}
	l := NewLedger()
	l.Write("alice", 10)
	l.Write("bob", 20)

	first := lb.Top(l, 5)
	first[0].UserID = "mutated"

	again := lb.Top(l, 5)
	if again[0].UserID != "bob" {
		t.Fatalf("cached standings were mutated through a returned slice: %+v", again)
	}

	l.Write("alice", 30)
	updated := lb.Top(l, 5)
	if updated[0].UserID != "alice" || updated[0].Exp != 30 {
		t.Fatalf("stale cache after write: %+v", updated)
	}

	l.ResetAll()
	if got := lb.Top(l, 5); len(got) != 0 {
		t.Fatalf("ladder after reset = %+v", got)
	}
}
