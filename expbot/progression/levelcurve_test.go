package progression

import (
	"errors"
	"math"
	"testing"
)

func TestCurveLevel(t *testing.T) {
	curve := DefaultCurve()

	tests := []struct {
		name string
		exp  int64
		want int
	}{
		{name: "zero", exp: 0, want: 0},
		{name: "negative", exp: -5, want: 0},
		{name: "just below first level", exp: 14, want: 0},
		{name: "first level threshold", exp: 15, want: 1},
		{name: "inside level one", exp: 35, want: 1},
		{name: "second level threshold", exp: 36, want: 2},
		{name: "third level threshold", exp: 65, want: 3},
		{name: "fifth level threshold", exp: 163, want: 5},
		{name: "just below sixth", exp: 242, want: 5},
		{name: "saturated balance keeps the last level", exp: math.MaxInt64, want: 119},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := curve.Level(tt.exp); got != tt.want {
				t.Errorf("Level(%d) = %d, want %d", tt.exp, got, tt.want)
			}
		})
	}
}

func TestCurveExpForLevelIsInverseOfLevel(t *testing.T) {
	curve := DefaultCurve()

	if got := curve.ExpForLevel(0); got != 0 {
		t.Fatalf("ExpForLevel(0) = %d, want 0", got)
	}
	if got := curve.ExpForNextLevel(0); got != 15 {
		t.Fatalf("ExpForNextLevel(0) = %d, want 15", got)
	}

	prev := int64(-1)
	for level := 0; level <= 119; level++ {
		threshold := curve.ExpForLevel(level)
		if threshold <= prev {
			t.Fatalf("threshold of level %d (%d) not above level %d (%d)", level, threshold, level-1, prev)
		}
		if got := curve.Level(threshold); got != level {
			t.Fatalf("Level(ExpForLevel(%d)) = %d", level, got)
		}
		if level > 0 {
			if got := curve.Level(threshold - 1); got != level-1 {
				t.Fatalf("Level(ExpForLevel(%d)-1) = %d, want %d", level, got, level-1)
			}
		}
		prev = threshold
	}

	top := curve.ExpForLevel(119)
	if top != 9188984383207842077 {
		t.Fatalf("ExpForLevel(119) = %d", top)
	}
	if got := curve.ExpForLevel(120); got != math.MaxInt64 {
		t.Fatalf("ExpForLevel(120) = %d, want MaxInt64", got)
	}
	if got := curve.Level(math.MaxInt64); got != 119 {
		t.Fatalf("Level(MaxInt64) = %d, want 119", got)
	}
}

func TestCurveLevelIsMonotonic(t *testing.T) {
	curve := DefaultCurve()
	last := 0
	for exp := int64(0); exp < 5000; exp++ {
		level := curve.Level(exp)
		if level < last {
			t.Fatalf("Level(%d) = %d dropped below %d", exp, level, last)
		}
		last = level
	}
}

func TestCurveInfo(t *testing.T) {
	curve := DefaultCurve()

	info := curve.Info(50)
	want := LevelInfo{
		Level:              2,
		CurrentExp:         50,
		ExpForCurrentLevel: 36,
		ExpForNextLevel:    65,
		ProgressInLevel:    14,
		ProgressPercentage: 48,
		ExpNeeded:          15,
	}
	if info != want {
		t.Fatalf("Info(50) = %+v, want %+v", info, want)
	}

	zero := curve.Info(0)
	if zero.Level != 0 || zero.ExpForNextLevel != 15 || zero.ProgressPercentage != 0 || zero.ExpNeeded != 15 {
		t.Fatalf("Info(0) = %+v", zero)
	}

	floor := curve.ExpForLevel(119)
	tests := []struct {
		name         string
		exp          int64
		wantPercent  int
		wantProgress int64
		wantNeeded   int64
	}{
		{name: "top level threshold", exp: floor, wantPercent: 0, wantProgress: 0, wantNeeded: math.MaxInt64 - floor},
		{name: "saturated balance", exp: math.MaxInt64, wantPercent: 100, wantProgress: math.MaxInt64 - floor, wantNeeded: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := curve.Info(tt.exp)
			if info.Level != 119 || info.ExpForCurrentLevel != floor || info.ExpForNextLevel != math.MaxInt64 {
				t.Fatalf("Info(%d) = %+v", tt.exp, info)
			}
			if info.ProgressPercentage != tt.wantPercent || info.ProgressInLevel != tt.wantProgress || info.ExpNeeded != tt.wantNeeded {
				t.Fatalf("Info(%d) = %+v", tt.exp, info)
			}
		})
	}
}

func TestNewCurveValidation(t *testing.T) {
	tests := []struct {
		name       string
		min        int64
		multiplier float64
		wantErr    bool
	}{
		{name: "defaults", min: 15, multiplier: 1.4},
		{name: "flat curve", min: 10, multiplier: 1},
		{name: "zero min", min: 0, multiplier: 1.4, wantErr: true},
		{name: "shrinking multiplier", min: 15, multiplier: 0.9, wantErr: true},
		{name: "nan multiplier", min: 15, multiplier: math.NaN(), wantErr: true},
		{name: "infinite multiplier", min: 15, multiplier: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurve(tt.min, tt.multiplier)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCurve) {
					t.Fatalf("expected ErrInvalidCurve, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
