// Package presence tracks which badges are physically inside.
//
// Each badge is a two-state machine: an authorized scan while OUTSIDE
// enters, an authorized scan while INSIDE exits. Exits fold the closed
// session into a cumulative duration. There is no timeout-based
// auto-exit — a badge left INSIDE accrues time until its next scan or
// process end.
//
// State is in-memory only: a badge INSIDE at crash time restarts
// OUTSIDE with its accumulated time lost. Known limitation, matching
// the deployed reader's behavior.
package presence

import (
	"sort"
	"sync"
	"time"
)

// Record is a read-only snapshot of one badge's presence state.
type Record struct {
	BadgeID    string
	Inside     bool
	EnteredAt  time.Time     // zero unless Inside
	Cumulative time.Duration // closed sessions only
}

type badgeState struct {
	inside     bool
	enteredAt  time.Time
	cumulative time.Duration
}

type Tracker struct {
	mu     sync.Mutex
	badges map[string]*badgeState

	now func() time.Time // overridable in tests
}

func New() *Tracker {
	return &Tracker{
		badges: make(map[string]*badgeState),
		now:    time.Now,
	}
}

// IsInside reports whether the badge is currently INSIDE. Unseen
// badges are OUTSIDE.
func (t *Tracker) IsInside(badgeID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.badges[badgeID]
	return ok && st.inside
}

// Toggle flips the badge's state and returns the new state. When the
// toggle is an exit, session is the length of the just-closed session;
// it is zero on entry.
func (t *Tracker) Toggle(badgeID string) (inside bool, session time.Duration) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.badges[badgeID]
	if !ok {
		st = &badgeState{}
		t.badges[badgeID] = st
	}

	if !st.inside {
		st.inside = true
		st.enteredAt = now
		return true, 0
	}

	session = now.Sub(st.enteredAt)
	st.cumulative += session
	st.inside = false
	st.enteredAt = time.Time{}
	return false, session
}

// Snapshot returns every badge ever seen, sorted by badge id.
func (t *Tracker) Snapshot() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Record, 0, len(t.badges))
	for id, st := range t.badges {
		out = append(out, Record{
			BadgeID:    id,
			Inside:     st.inside,
			EnteredAt:  st.enteredAt,
			Cumulative: st.cumulative,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeID < out[j].BadgeID })
	return out
}
