package delivery_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/delivery"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store/memory"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// flakySink fails every event whose id is in reject, accepting the rest.
type flakySink struct {
	mu        sync.Mutex
	reject    map[string]bool
	delivered []types.AccessEvent
}

func newFlakySink() *flakySink {
	return &flakySink{reject: make(map[string]bool)}
}

func (s *flakySink) SubmitEvent(_ context.Context, ev types.AccessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject[ev.EventID] {
		return errors.New("connection refused")
	}
	s.delivered = append(s.delivered, ev)
	return nil
}

func (s *flakySink) rejectAll(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.reject[id] = true
	}
}

func (s *flakySink) accept(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reject, id)
}

func (s *flakySink) deliveredIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.delivered))
	for i, ev := range s.delivered {
		out[i] = ev.EventID
	}
	return out
}

func silentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func ev(id string) types.AccessEvent {
	return types.AccessEvent{
		EventID:   id,
		BadgeID:   "7",
		Type:      types.EventEntry,
		Result:    types.ResultGranted,
		Timestamp: time.Now().UTC(),
	}
}

func TestSubmit_DirectSendSkipsOutbox(t *testing.T) {
	sink := newFlakySink()
	ob := memory.NewOutboxStore()
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())

	p.Submit(context.Background(), ev("ev-1"))

	if got := sink.deliveredIDs(); len(got) != 1 || got[0] != "ev-1" {
		t.Fatalf("expected direct delivery of ev-1, got %v", got)
	}
	pending, _ := ob.Pending(context.Background())
	if len(pending) != 0 {
		t.Errorf("outbox should be empty after direct delivery, got %d", len(pending))
	}
}

func TestSubmit_FailureEnqueues(t *testing.T) {
	sink := newFlakySink()
	sink.rejectAll("ev-1")
	ob := memory.NewOutboxStore()
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())

	p.Submit(context.Background(), ev("ev-1"))

	pending, _ := ob.Pending(context.Background())
	if len(pending) != 1 || pending[0].Event.EventID != "ev-1" {
		t.Fatalf("expected ev-1 queued, got %+v", pending)
	}
}

func TestDrain_DeliversAllWhenRemoteRecovers(t *testing.T) {
	sink := newFlakySink()
	sink.rejectAll("ev-1", "ev-2", "ev-3")
	ob := memory.NewOutboxStore()
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())
	ctx := context.Background()

	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		p.Submit(ctx, ev(id))
	}

	// Remote still down: everything stays, attempts bumped.
	delivered, remaining, err := p.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if delivered != 0 || remaining != 3 {
		t.Fatalf("expected 0/3, got %d/%d", delivered, remaining)
	}

	// Remote recovers: the queue converges to empty.
	sink.accept("ev-1")
	sink.accept("ev-2")
	sink.accept("ev-3")
	delivered, remaining, err = p.Drain(ctx)
	if err != nil {
		t.Fatalf("drain 2: %v", err)
	}
	if delivered != 3 || remaining != 0 {
		t.Fatalf("expected 3/0, got %d/%d", delivered, remaining)
	}

	// FIFO order preserved on delivery.
	if got := sink.deliveredIDs(); got[0] != "ev-1" || got[1] != "ev-2" || got[2] != "ev-3" {
		t.Errorf("expected FIFO delivery, got %v", got)
	}

	pending, _ := ob.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("outbox should converge to empty, got %d", len(pending))
	}
}

func TestDrain_StuckItemDoesNotBlockNewerItems(t *testing.T) {
	sink := newFlakySink()
	sink.rejectAll("ev-stuck")
	ob := memory.NewOutboxStore()
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())
	ctx := context.Background()

	if err := ob.Enqueue(ctx, ev("ev-stuck")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := ob.Enqueue(ctx, ev("ev-fresh")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	delivered, remaining, err := p.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if delivered != 1 || remaining != 1 {
		t.Fatalf("expected 1 delivered / 1 remaining, got %d/%d", delivered, remaining)
	}

	pending, _ := ob.Pending(ctx)
	if len(pending) != 1 || pending[0].Event.EventID != "ev-stuck" {
		t.Fatalf("expected only ev-stuck to remain, got %+v", pending)
	}
	if pending[0].Attempts != 1 {
		t.Errorf("expected attempt counter bumped, got %d", pending[0].Attempts)
	}
}

// cancelAwareOutbox refuses writes once the caller's context is done,
// the way the sqlite store's serialized writer does.
type cancelAwareOutbox struct {
	*memory.OutboxStore
}

func (s *cancelAwareOutbox) Enqueue(ctx context.Context, e types.AccessEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.OutboxStore.Enqueue(ctx, e)
}

func TestSubmit_QueuesDespiteCancelledScanContext(t *testing.T) {
	sink := newFlakySink()
	sink.rejectAll("ev-1")
	ob := &cancelAwareOutbox{memory.NewOutboxStore()}
	p := delivery.NewPipeline(sink, ob, 50*time.Millisecond, silentLogger())

	// A shutdown signal lands while the send is in flight: the scan
	// context is cancelled and the send fails. The fallback write must
	// still reach the store, which is perfectly healthy.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Submit(ctx, ev("ev-1"))

	pending, _ := ob.Pending(context.Background())
	if len(pending) != 1 || pending[0].Event.EventID != "ev-1" {
		t.Fatalf("expected ev-1 queued after cancelled-context submit, got %+v", pending)
	}
}

func TestSubmit_EnqueueFailureDoesNotPanic(t *testing.T) {
	sink := newFlakySink()
	sink.rejectAll("ev-1")
	ob := memory.NewOutboxStore()
	ob.FailEnqueue = errors.New("disk full")
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())

	// Degraded mode: the event is lost from the durable path but the
	// process keeps going.
	p.Submit(context.Background(), ev("ev-1"))
}
