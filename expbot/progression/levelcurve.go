package progression

import (
	"fmt"
	"math"

	"github.com/impulse/expbot/expbot/config"
)

// Curve maps cumulative EXP to a level. Reaching level 1 costs minLevelExp and every
// following level L+1 costs floor(minLevelExp * multiplier^L) more.
type Curve struct {
	minLevelExp int64
	multiplier  float64
}

// LevelInfo describes where a balance sits on the curve.
type LevelInfo struct {
	Level              int
	CurrentExp         int64
	ExpForCurrentLevel int64
	ExpForNextLevel    int64
	ProgressInLevel    int64
	ProgressPercentage int
	ExpNeeded          int64
}

func NewCurve(minLevelExp int64, multiplier float64) (Curve, error) {
	if minLevelExp < 1 || multiplier < 1 || math.IsInf(multiplier, 0) || math.IsNaN(multiplier) {
		return Curve{}, fmt.Errorf("min level exp %d, multiplier %v: %w", minLevelExp, multiplier, ErrInvalidCurve)
	}
	return Curve{minLevelExp: minLevelExp, multiplier: multiplier}, nil
}

func DefaultCurve() Curve {
	return Curve{minLevelExp: config.MinLevelExp, multiplier: config.LevelMultiplier}
}

func (c Curve) MinLevelExp() int64 { return c.minLevelExp }

func (c Curve) Multiplier() float64 { return c.multiplier }

// step is the EXP needed to go from level to level+1, for level >= 1.
func (c Curve) step(level int) int64 {
	cost := math.Floor(float64(c.minLevelExp) * math.Pow(c.multiplier, float64(level)))
	if cost >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(cost)
}

// walk climbs the threshold staircase from level 1 until done reports true and returns the
// level and cumulative threshold it stopped at. When the next threshold would overflow, walk
// stops at the last reachable level and reports saturated with a threshold of math.MaxInt64.
func (c Curve) walk(done func(level int, threshold int64) bool) (level int, threshold int64, saturated bool) {
	level, threshold = 1, c.minLevelExp
	for !done(level, threshold) {
		step := c.step(level)
		if step > math.MaxInt64-threshold {
			return level, math.MaxInt64, true
		}
		threshold += step
		level++
	}
	return level, threshold, false
}

// Level returns the highest level whose threshold exp has reached.
func (c Curve) Level(exp int64) int {
	if exp < c.minLevelExp {
		return 0
	}
	level, _, saturated := c.walk(func(_ int, threshold int64) bool {
		return exp < threshold
	})
	if saturated {
		// exp reached this level and the next one has no representable threshold.
		return level
	}
	return level - 1
}

// ExpForLevel returns the cumulative EXP at which level is reached. Level 0 starts at 0.
// Levels past the highest reachable one report math.MaxInt64.
func (c Curve) ExpForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	_, threshold, _ := c.walk(func(l int, _ int64) bool {
		return l >= level
	})
	return threshold
}

// ExpForNextLevel returns the threshold of level+1. For level <= 0 that is minLevelExp.
func (c Curve) ExpForNextLevel(level int) int64 {
	if level < 0 {
		level = 0
	}
	return c.ExpForLevel(level + 1)
}

func (c Curve) Info(exp int64) LevelInfo {
	if exp < 0 {
		exp = 0
	}
	level := c.Level(exp)
	floor := c.ExpForLevel(level)
	next := c.ExpForNextLevel(level)

	info := LevelInfo{
		Level:              level,
		CurrentExp:         exp,
		ExpForCurrentLevel: floor,
		ExpForNextLevel:    next,
		ProgressInLevel:    exp - floor,
		ExpNeeded:          next - exp,
	}
	if span := next - floor; span > 0 {
		info.ProgressPercentage = int(math.Floor(float64(info.ProgressInLevel) / float64(span) * 100))
	}
	return info
}
