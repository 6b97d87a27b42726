package db

import (
	"context"
	"database/sql"
)

type TxFn func(ctx context.Context, tx *sql.Tx) error

// Worker serializes all write transactions through one goroutine.
// SQLite allows a single writer; funnelling writes here means the scan
// loop and the delivery worker never contend on SQLITE_BUSY.
type Worker struct {
	db   *sql.DB
	jobs chan txJob
	done chan struct{}
}

type txJob struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:   db,
		jobs: make(chan txJob, 256),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

// Close drains the queue and stops the worker. Callers must not submit
// after Close.
func (w *Worker) Close() {
	close(w.jobs)
	<-w.done
}

// Do runs fn inside a transaction on the writer goroutine and returns
// its result. If ctx expires while the job is queued or running, Do
// returns early; the transaction itself still runs to completion and
// the discarded result lands in the buffered channel.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	j := txJob{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case w.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)

	for j := range w.jobs {
		j.result <- w.runTx(j.ctx, j.fn)
	}
}

func (w *Worker) runTx(ctx context.Context, fn TxFn) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
