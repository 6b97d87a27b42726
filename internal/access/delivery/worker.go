package delivery

import (
	"context"
	"log"
	"time"
)

// Refresher is the directory cache's refresh operation.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Worker periodically drains the outbox and refreshes the directory
// cache. It runs as a background goroutine, isolated from the scan
// loop: its failures are logged and retried next tick, never
// propagated.
type Worker struct {
	pipeline  *Pipeline
	refresher Refresher
	interval  time.Duration
	logger    *log.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(p *Pipeline, r Refresher, interval time.Duration, logger *log.Logger) *Worker {
	return &Worker{
		pipeline:  p,
		refresher: r,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the background loop: one immediate sweep, then one per
// interval. The loop exits when ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
	w.logger.Printf("delivery worker started (interval=%s)", w.interval)
}

// Stop signals the worker to exit and waits for the in-flight sweep,
// if any, to finish. It does not perform a final drain — the caller
// does that with its own bounded context.
func (w *Worker) Stop() {
	if w.cancel == nil {
		// Never started; nothing to wait for.
		return
	}
	w.cancel()
	<-w.done
}

// FinalDrain makes one last bounded-effort pass over the outbox.
// Called during shutdown, after Stop.
func (w *Worker) FinalDrain(grace time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	delivered, remaining, err := w.pipeline.Drain(ctx)
	if err != nil {
		w.logger.Printf("final drain failed: %v", err)
		return
	}
	if delivered > 0 || remaining > 0 {
		w.logger.Printf("final drain: delivered=%d remaining=%d", delivered, remaining)
	}
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	delivered, remaining, err := w.pipeline.Drain(ctx)
	switch {
	case err != nil:
		w.logger.Printf("outbox drain failed: %v", err)
	case delivered > 0 || remaining > 0:
		w.logger.Printf("outbox drain: delivered=%d remaining=%d", delivered, remaining)
	}

	n, err := w.refresher.Refresh(ctx)
	if err != nil {
		// Expected while offline; the cache keeps serving the prior
		// snapshot.
		w.logger.Printf("directory refresh failed: %v", err)
		return
	}
	w.logger.Printf("directory refreshed: %d collaborators", n)
}
