package progression

import (
	"math"
	"testing"

	"github.com/impulse/expbot/expbot/database/models"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Alice", want: "alice"},
		{in: "  Bob_the-Builder!", want: "bobthebuilder"},
		{in: "123456789012345678", want: "123456789012345678"},
		{in: "Ünïcode", want: "ncode"},
		{in: "!!!", want: ""},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeID(tt.in); got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLedgerWriteAndAdd(t *testing.T) {
	l := NewLedger()

	if got := l.Read("ghost"); got != 0 {
		t.Fatalf("absent user reads %d", got)
	}
	if l.Contains("ghost") {
		t.Fatal("reading must not create an entry")
	}

	l.Write("alice", -10)
	if got := l.Read("alice"); got != 0 {
		t.Fatalf("negative write stored %d", got)
	}

	if got := l.Add("alice", 7); got != 7 {
		t.Fatalf("Add returned %d, want 7", got)
	}
	l.Write("alice", math.MaxInt64-1)
	if got := l.Add("alice", 10); got != math.MaxInt64 {
		t.Fatalf("Add did not saturate: %d", got)
	}
}

func TestLedgerTake(t *testing.T) {
	tests := []struct {
		name        string
		seed        map[string]int64
		id          string
		amount      int64
		wantBalance int64
		wantTaken   bool
	}{
		{name: "exact balance", seed: map[string]int64{"alice": 10}, id: "alice", amount: 10, wantBalance: 0, wantTaken: true},
		{name: "partial", seed: map[string]int64{"alice": 10}, id: "alice", amount: 4, wantBalance: 6, wantTaken: true},
		{name: "insufficient", seed: map[string]int64{"alice": 3}, id: "alice", amount: 4, wantBalance: 3},
		{name: "absent user", seed: map[string]int64{}, id: "ghost", amount: 1, wantBalance: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			for id, exp := range tt.seed {
				l.Write(id, exp)
			}

			balance, taken := l.Take(tt.id, tt.amount)
			if balance != tt.wantBalance || taken != tt.wantTaken {
				t.Fatalf("Take = (%d, %v), want (%d, %v)", balance, taken, tt.wantBalance, tt.wantTaken)
			}
			if l.Read(tt.id) != tt.wantBalance {
				t.Fatalf("balance after take = %d", l.Read(tt.id))
			}
			if tt.id == "ghost" && l.Contains("ghost") {
				t.Fatal("take on absent user created an entry")
			}
		})
	}
}

func TestLedgerEntriesKeepInsertionOrder(t *testing.T) {
	l := NewLedger()
	l.Write("carol", 5)
	l.Write("alice", 1)
	l.Write("bob", 9)
	l.Write("carol", 6)

	entries := l.Entries()
	want := []string{"carol", "alice", "bob"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries", len(entries))
	}
	for i, id := range want {
		if entries[i].UserID != id || entries[i].Position != i {
			t.Fatalf("entry %d = %+v, want %s at %d", i, entries[i], id, i)
		}
	}
	if entries[0].Exp != 6 {
		t.Fatalf("carol = %d, want 6", entries[0].Exp)
	}
}

func TestLedgerRevisionAndReset(t *testing.T) {
	l := NewLedger()
	rev := l.Revision()
	l.Write("alice", 1)
	if l.Revision() == rev {
		t.Fatal("write did not bump revision")
	}

	rev = l.Revision()
	l.ResetAll()
	if l.Revision() == rev {
		t.Fatal("reset did not bump revision")
	}
	if l.Len() != 0 || l.Contains("alice") {
		t.Fatal("reset left entries behind")
	}
}

func TestLedgerReplace(t *testing.T) {
	l := NewLedger()
	l.Write("stale", 100)

	skipped := l.Replace([]models.UserExp{
		{UserID: "Bob", Exp: 20, Position: 2},
		{UserID: "alice", Exp: 10, Position: 0},
		{UserID: "???", Exp: 5, Position: 1},
		{UserID: "carol", Exp: -1, Position: 3},
		{UserID: "ALICE", Exp: 11, Position: 4},
	})

	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}
	if l.Contains("stale") {
		t.Fatal("replace kept old entries")
	}
	entries := l.Entries()
	if len(entries) != 2 || entries[0].UserID != "alice" || entries[1].UserID != "bob" {
		t.Fatalf("unexpected order %+v", entries)
	}
	if l.Read("alice") != 11 {
		t.Fatalf("duplicate id should keep the later balance, got %d", l.Read("alice"))
	}
}
