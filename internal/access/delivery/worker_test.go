package delivery_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/delivery"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store/memory"
)

type countingRefresher struct {
	calls atomic.Int64
	err   error
}

func (r *countingRefresher) Refresh(context.Context) (int, error) {
	r.calls.Add(1)
	if r.err != nil {
		return 0, r.err
	}
	return 1, nil
}

func TestWorker_SweepsImmediatelyAndStops(t *testing.T) {
	sink := newFlakySink()
	ob := memory.NewOutboxStore()
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())
	ref := &countingRefresher{}

	w := delivery.NewWorker(p, ref, time.Hour, silentLogger())
	w.Start(context.Background())

	// The first sweep runs on start, not after the first interval.
	deadline := time.After(2 * time.Second)
	for ref.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never performed its startup sweep")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Stop returns promptly even though the interval is an hour.
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not observe cancellation promptly")
	}
}

func TestWorker_RefreshFailureDoesNotStopDraining(t *testing.T) {
	sink := newFlakySink()
	ob := memory.NewOutboxStore()
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())
	ctx := context.Background()

	if err := ob.Enqueue(ctx, ev("ev-1")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ref := &countingRefresher{err: errors.New("api down")}
	w := delivery.NewWorker(p, ref, time.Hour, silentLogger())
	w.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		pending, _ := ob.Pending(ctx)
		if len(pending) == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("queued event never drained")
		case <-time.After(10 * time.Millisecond):
		}
	}
	w.Stop()
}

func TestWorker_StopWithoutStartReturns(t *testing.T) {
	p := delivery.NewPipeline(newFlakySink(), memory.NewOutboxStore(), time.Second, silentLogger())
	w := delivery.NewWorker(p, &countingRefresher{}, time.Hour, silentLogger())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a worker that was never started")
	}
}

func TestWorker_FinalDrainFlushesQueue(t *testing.T) {
	sink := newFlakySink()
	sink.rejectAll("ev-1")
	ob := memory.NewOutboxStore()
	p := delivery.NewPipeline(sink, ob, time.Second, silentLogger())
	ctx := context.Background()

	p.Submit(ctx, ev("ev-1")) // queued

	w := delivery.NewWorker(p, &countingRefresher{}, time.Hour, silentLogger())

	// Remote comes back just before shutdown.
	sink.accept("ev-1")
	w.FinalDrain(time.Second)

	pending, _ := ob.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox after final drain, got %d", len(pending))
	}
}
