package progression

import "testing"

// ledgerCredit credits l the way the engine does, applying factor to every bonus.
func ledgerCredit(l *Ledger, id string, factor int64) creditFunc {
	return func(amount int64) (int64, int64) {
		before := l.Read(id)
		return before, l.Add(id, amount*factor)
	}
}

func TestRewardDispatcherIsMilestone(t *testing.T) {
	d := NewRewardDispatcher(DefaultCurve(), 5, 5, 10)

	tests := []struct {
		level int
		want  bool
	}{
		{level: 0, want: false},
		{level: 4, want: false},
		{level: 5, want: true},
		{level: 10, want: true},
		{level: 11, want: false},
	}
	for _, tt := range tests {
		if got := d.IsMilestone(tt.level); got != tt.want {
			t.Errorf("IsMilestone(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
	if got := d.Bonus(5); got != 25 {
		t.Fatalf("Bonus(5) = %d, want 25", got)
	}
}

func TestRewardDispatcherDispatch(t *testing.T) {
	curve := DefaultCurve()

	tests := []struct {
		name           string
		start          int64
		grant          int64
		factor         int64
		wantLevelUps   int
		wantMilestones []Milestone
		wantFinal      int64
	}{
		{
			name:         "no level change",
			start:        0,
			grant:        10,
			factor:       1,
			wantLevelUps: 0,
			wantFinal:    10,
		},
		{
			name:         "crosses several levels without milestone",
			start:        0,
			grant:        106,
			factor:       1,
			wantLevelUps: 4,
			wantFinal:    106,
		},
		{
			name:           "milestone pays once",
			start:          160,
			grant:          3,
			factor:         1,
			wantLevelUps:   1,
			wantMilestones: []Milestone{{UserID: "alice", Level: 5, Bonus: 25, Granted: 25}},
			wantFinal:      188,
		},
		{
			name:           "milestone bonus doubled",
			start:          0,
			grant:          164,
			factor:         2,
			wantLevelUps:   5,
			wantMilestones: []Milestone{{UserID: "alice", Level: 5, Bonus: 25, Granted: 50}},
			wantFinal:      214,
		},
		{
			// 354 lands one short of level 7; the level 5 bonus finishes the climb.
			name:           "bonus crossing past the grant's last level",
			start:          0,
			grant:          354,
			factor:         1,
			wantLevelUps:   7,
			wantMilestones: []Milestone{{UserID: "alice", Level: 5, Bonus: 25, Granted: 25}},
			wantFinal:      379,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewRewardDispatcher(curve, 5, 5, 10)
			l := NewLedger()
			l.Write("alice", tt.start)

			chain := newDispatchChain()
			before := l.Read("alice")
			after := l.Add("alice", tt.grant)
			d.Dispatch(chain, "alice", before, after, ledgerCredit(l, "alice", tt.factor))

			if len(chain.levelUps) != tt.wantLevelUps {
				t.Fatalf("level ups = %d, want %d (%+v)", len(chain.levelUps), tt.wantLevelUps, chain.levelUps)
			}
			assertAscending(t, chain.levelUps)
			if len(chain.milestones) != len(tt.wantMilestones) {
				t.Fatalf("milestones = %+v, want %+v", chain.milestones, tt.wantMilestones)
			}
			for i, m := range tt.wantMilestones {
				if chain.milestones[i] != m {
					t.Fatalf("milestone %d = %+v, want %+v", i, chain.milestones[i], m)
				}
			}
			if got := l.Read("alice"); got != tt.wantFinal {
				t.Fatalf("final balance = %d, want %d", got, tt.wantFinal)
			}
		})
	}
}

func TestRewardDispatcherCascade(t *testing.T) {
	curve := DefaultCurve()
	// A level 5 bonus of 1000 lands on level 10, whose bonus is dispatched in turn.
	d := NewRewardDispatcher(curve, 5, 200, 10)
	l := NewLedger()

	chain := newDispatchChain()
	after := l.Add("alice", 163)
	d.Dispatch(chain, "alice", 0, after, ledgerCredit(l, "alice", 1))

	final := l.Read("alice")
	if final != 163+1000+2000 {
		t.Fatalf("final balance = %d, want %d", final, 163+1000+2000)
	}
	if len(chain.milestones) != 2 || chain.milestones[0].Level != 5 || chain.milestones[1].Level != 10 {
		t.Fatalf("milestones = %+v", chain.milestones)
	}
	if len(chain.levelUps) != curve.Level(final) {
		t.Fatalf("level ups = %d, want one per level up to %d", len(chain.levelUps), curve.Level(final))
	}
	assertAscending(t, chain.levelUps)

	announced := 0
	for _, up := range chain.levelUps {
		if up.Announce {
			announced++
			if up.NewLevel != 10 {
				t.Fatalf("unexpected announcement for level %d", up.NewLevel)
			}
		}
	}
	if announced != 1 {
		t.Fatalf("announcements = %d, want 1", announced)
	}
}

func assertAscending(t *testing.T, ups []LevelUp) {
	t.Helper()
	for i, up := range ups {
		if up.NewLevel != up.OldLevel+1 {
			t.Fatalf("level up %d skips levels: %+v", i, up)
		}
		if i > 0 && up.OldLevel != ups[i-1].NewLevel {
			t.Fatalf("level up %d out of order: %+v after %+v", i, up, ups[i-1])
		}
	}
}
