package progression

// LevelUp is emitted once for every level crossed.
type LevelUp struct {
	UserID   string
	OldLevel int
	NewLevel int
	Announce bool
}

// Milestone is a bonus paid for reaching a level divisible by the milestone interval.
// Bonus is the base amount; Granted is what the ledger received after multipliers.
type Milestone struct {
	UserID  string
	Level   int
	Bonus   int64
	Granted int64
}

// RewardDispatcher turns a balance change into level-up events and milestone bonuses.
type RewardDispatcher struct {
	curve            Curve
	interval         int
	bonusMultiplier  int64
	announceInterval int
}

func NewRewardDispatcher(curve Curve, interval int, bonusMultiplier int64, announceInterval int) *RewardDispatcher {
	return &RewardDispatcher{
		curve:            curve,
		interval:         interval,
		bonusMultiplier:  bonusMultiplier,
		announceInterval: announceInterval,
	}
}

func (d *RewardDispatcher) IsMilestone(level int) bool {
	return d.interval > 0 && level > 0 && level%d.interval == 0
}

func (d *RewardDispatcher) Bonus(level int) int64 {
	return int64(level) * d.bonusMultiplier
}

// dispatchChain collects the effects of one grant including every cascaded bonus.
type dispatchChain struct {
	dispatched map[int]bool
	levelUps   []LevelUp
	milestones []Milestone
}

func newDispatchChain() *dispatchChain {
	return &dispatchChain{dispatched: make(map[int]bool)}
}

// creditFunc credits a privileged bonus and returns the balance before and after.
type creditFunc func(amount int64) (before, after int64)

// Dispatch walks every level in (Level(before), Level(after)]. Once the walk is done, each
// milestone level crossed pays its bonus through credit and the bonus is dispatched in turn,
// so level-ups stay in ascending order. A level pays at most once per chain.
func (d *RewardDispatcher) Dispatch(chain *dispatchChain, userID string, before, after int64, credit creditFunc) {
	from, to := d.curve.Level(before), d.curve.Level(after)
	var milestones []int
	for level := from + 1; level <= to; level++ {
		chain.levelUps = append(chain.levelUps, LevelUp{
			UserID:   userID,
			OldLevel: level - 1,
			NewLevel: level,
			Announce: d.announceInterval > 0 && level%d.announceInterval == 0,
		})

		if !d.IsMilestone(level) || chain.dispatched[level] {
			continue
		}
		chain.dispatched[level] = true
		milestones = append(milestones, level)
	}

	for _, level := range milestones {
		bonus := d.Bonus(level)
		if bonus <= 0 {
			continue
		}
		b, a := credit(bonus)
		chain.milestones = append(chain.milestones, Milestone{
			UserID:  userID,
			Level:   level,
			Bonus:   bonus,
			Granted: a - b,
		})
		d.Dispatch(chain, userID, b, a, credit)
	}
}
