package report

import (
	"sync"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// Log is the in-memory append-only record of every event of the day,
// kept independently of the delivery path so end-of-day reports are
// complete even when the remote never came back.
type Log struct {
	mu     sync.Mutex
	events []types.AccessEvent
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Append(ev types.AccessEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// Events returns a copy of the day's events in append order.
func (l *Log) Events() []types.AccessEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.AccessEvent, len(l.events))
	copy(out, l.events)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
