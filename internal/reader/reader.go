// Package reader runs the scan loop: read a tag, debounce, decide,
// record, deliver, signal. One scan is fully processed before the next
// blocking read begins, so per-badge event order is the scan order.
package reader

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/delivery"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/engine"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/feedback"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/report"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// TagSource is the hardware boundary. ReadTag blocks until a tag is
// presented, the source is exhausted (io.EOF), or ctx is cancelled.
type TagSource interface {
	ReadTag(ctx context.Context) (string, error)
}

type Loop struct {
	Source   TagSource
	Debounce *engine.Debouncer
	Engine   *engine.Engine
	DayLog   *report.Log
	Pipeline *delivery.Pipeline
	Feedback feedback.Dispatcher
	Logger   *log.Logger

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// Run processes scans until the source is exhausted or ctx is
// cancelled. Both are clean exits; anything else is returned.
func (l *Loop) Run(ctx context.Context) error {
	now := l.Now
	if now == nil {
		now = time.Now
	}

	for {
		tag, err := l.Source.ReadTag(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		if !l.Debounce.Admit(tag, now()) {
			continue
		}

		ev, ok := l.Engine.Decide(tag)
		if !ok {
			// Fault already logged by the engine; drop the scan.
			continue
		}

		l.DayLog.Append(ev)
		l.Pipeline.Submit(ctx, ev)
		l.Feedback.Dispatch(types.SignalFor(ev.Type))
		l.Logger.Printf("%s badge=%s result=%s reason=%q", ev.Type, ev.BadgeID, ev.Result, ev.Reason)
	}
}

// LineSource reads tag ids as lines, one scan per line. It stands in
// for the RFID hardware when running off-device; blank lines are
// skipped.
type LineSource struct {
	lines chan string
	quit  chan struct{}
	once  sync.Once
}

func NewLineSource(r io.Reader) *LineSource {
	s := &LineSource{
		lines: make(chan string),
		quit:  make(chan struct{}),
	}
	go func() {
		defer close(s.lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := sc.Text()
			if line == "" {
				continue
			}
			select {
			case <-s.quit:
				return
			default:
			}
			select {
			case s.lines <- line:
			case <-s.quit:
				return
			}
		}
	}()
	return s
}

func (s *LineSource) ReadTag(ctx context.Context) (string, error) {
	select {
	case tag, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return tag, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close releases the scanner goroutine when the consumer stops reading.
// Subsequent ReadTag calls drain at most one in-flight line and then
// return io.EOF.
func (s *LineSource) Close() {
	s.once.Do(func() { close(s.quit) })
}
