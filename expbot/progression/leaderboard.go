package progression

import (
	"sort"

	lru "github.com/hashicorp/golang-lru"
)

// Standing is one row of the EXP ladder.
type Standing struct {
	Rank         int
	UserID       string
	Exp          int64
	Level        int
	NextLevelExp int64
}

type cachedTop struct {
	revision  uint64
	standings []Standing
}

// Leaderboard projects a Ledger sorted by EXP, caching results per ledger revision.
type Leaderboard struct {
	curve       Curve
	defaultSize int
	cache       *lru.Cache
}

func NewLeaderboard(curve Curve, defaultSize, cacheSize int) (*Leaderboard, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{curve: curve, defaultSize: defaultSize, cache: cache}, nil
}

// Top returns the n richest users, ties kept in ledger insertion order.
func (lb *Leaderboard) Top(ledger *Ledger, n int) []Standing {
	if n <= 0 {
		n = lb.defaultSize
	}

	if v, ok := lb.cache.Get(n); ok {
		if cached := v.(cachedTop); cached.revision == ledger.Revision() {
			return cloneStandings(cached.standings)
		}
	}

	entries := ledger.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Exp > entries[j].Exp
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	standings := make([]Standing, 0, len(entries))
	for i, e := range entries {
		level := lb.curve.Level(e.Exp)
		standings = append(standings, Standing{
			Rank:         i + 1,
			UserID:       e.UserID,
			Exp:          e.Exp,
			Level:        level,
			NextLevelExp: lb.curve.ExpForNextLevel(level),
		})
	}

	lb.cache.Add(n, cachedTop{revision: ledger.Revision(), standings: standings})
	return cloneStandings(standings)
}

func cloneStandings(in []Standing) []Standing {
	out := make([]Standing, len(in))
	copy(out, in)
	return out
}
