package engine

import "time"

// Debouncer suppresses duplicate reads of the same physical tag. A tag
// sitting in the reader's field yields many reads per second; without
// suppression one tap would toggle presence many times.
type Debouncer struct {
	window   time.Duration
	lastTag  string
	lastTime time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Admit reports whether a read should be processed. Rejected reads do
// not update the remembered (tag, time) pair, so a tag held in the
// field stays suppressed only relative to its first accepted read.
func (d *Debouncer) Admit(tagID string, now time.Time) bool {
	if tagID == d.lastTag && !d.lastTime.IsZero() && now.Sub(d.lastTime) < d.window {
		return false
	}
	d.lastTag = tagID
	d.lastTime = now
	return true
}
