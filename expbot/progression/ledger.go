package progression

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/impulse/expbot/expbot/database/models"
)

// NormalizeID lowercases id and drops everything outside [a-z0-9].
func NormalizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Ledger holds cumulative EXP per user in insertion order. It is not safe for concurrent
// use; the Engine serializes access.
type Ledger struct {
	balances map[string]int64
	order    []string
	revision uint64
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]int64)}
}

// Read returns the balance of id, zero when absent.
func (l *Ledger) Read(id string) int64 {
	return l.balances[id]
}

func (l *Ledger) Has(id string, amount int64) bool {
	return l.Read(id) >= amount
}

func (l *Ledger) Contains(id string) bool {
	_, ok := l.balances[id]
	return ok
}

func (l *Ledger) Len() int {
	return len(l.order)
}

// Revision changes on every mutation.
func (l *Ledger) Revision() uint64 {
	return l.revision
}

// Write sets an absolute balance.
func (l *Ledger) Write(id string, exp int64) {
	if exp < 0 {
		exp = 0
	}
	if _, ok := l.balances[id]; !ok {
		l.order = append(l.order, id)
	}
	l.balances[id] = exp
	l.revision++
}

// Add credits amount and returns the new balance, saturating at math.MaxInt64.
func (l *Ledger) Add(id string, amount int64) int64 {
	current := l.Read(id)
	next := current + amount
	if amount > 0 && current > math.MaxInt64-amount {
		next = math.MaxInt64
	}
	l.Write(id, next)
	return next
}

// Take debits amount only when the whole amount is available. It reports whether the
// debit happened and returns the resulting balance.
func (l *Ledger) Take(id string, amount int64) (int64, bool) {
	current := l.Read(id)
	if current < amount || !l.Contains(id) {
		return current, false
	}
	l.Write(id, current-amount)
	return current - amount, true
}

func (l *Ledger) ResetAll() {
	l.balances = make(map[string]int64)
	l.order = nil
	l.revision++
}

// Entries returns a snapshot in insertion order.
func (l *Ledger) Entries() []models.UserExp {
	entries := make([]models.UserExp, 0, len(l.order))
	now := time.Now()
	for i, id := range l.order {
		entries = append(entries, models.UserExp{
			UserID:    id,
			Exp:       l.balances[id],
			Position:  i,
			UpdatedAt: now,
		})
	}
	return entries
}

// Replace swaps the contents for a loaded snapshot. Rows are ordered by Position;
// rows with an empty id after normalization or a negative balance are skipped, and a
// repeated id keeps its first position with the later balance.
func (l *Ledger) Replace(entries []models.UserExp) (skipped int) {
	sorted := make([]models.UserExp, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	l.balances = make(map[string]int64, len(sorted))
	l.order = l.order[:0]
	for _, e := range sorted {
		id := NormalizeID(e.UserID)
		if id == "" || e.Exp < 0 {
			skipped++
			continue
		}
		if _, ok := l.balances[id]; !ok {
			l.order = append(l.order, id)
		}
		l.balances[id] = e.Exp
	}
	l.revision++
	return skipped
}
