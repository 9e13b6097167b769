// Package debounce provides a latest-write-wins delayed writer.
//
// A Debouncer holds at most one pending payload. Scheduling a new payload
// replaces the pending one and restarts the delay, so a burst of changes
// results in a single write of the final state.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/logging"
)

// WriteFunc persists a payload. The context is canceled only when a later
// Schedule supersedes the payload.
type WriteFunc[T any] func(ctx context.Context, payload T) error

// Option configures a Debouncer.
type Option[T any] func(*Debouncer[T])

// WithOnError registers a callback for write failures. Cancellations are
// never reported.
func WithOnError[T any](fn func(error)) Option[T] {
	return func(d *Debouncer[T]) {
		d.onError = fn
	}
}

// WithLogger sets the logger used for write outcomes.
func WithLogger[T any](logger *logging.Logger) Option[T] {
	return func(d *Debouncer[T]) {
		d.logger = logger
	}
}

// Debouncer delays writes and coalesces bursts into the latest payload.
type Debouncer[T any] struct {
	delay   time.Duration
	write   WriteFunc[T]
	onError func(error)
	logger  *logging.Logger

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc // context of the scheduled, not yet started write
	payload T
	pending bool
	seq     uint64

	inflight    context.CancelFunc // context of the timer write in progress
	inflightSeq uint64
	running     sync.WaitGroup
}

// New creates a debouncer that calls write delay after the last Schedule.
func New[T any](delay time.Duration, write WriteFunc[T], opts ...Option[T]) *Debouncer[T] {
	d := &Debouncer[T]{delay: delay, write: write}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule replaces any pending payload with payload and restarts the delay.
// A write already in progress for an older payload is canceled.
func (d *Debouncer[T]) Schedule(payload T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resetLocked()
	if d.inflight != nil {
		d.inflight()
		d.inflight = nil
	}
	d.seq++
	seq := d.seq
	d.payload = payload
	d.pending = true

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.running.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.running.Done()
		d.fire(ctx, cancel, seq)
	})
}

func (d *Debouncer[T]) fire(ctx context.Context, cancel context.CancelFunc, seq uint64) {
	defer cancel()

	d.mu.Lock()
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	payload := d.payload
	d.pending = false
	var zero T
	d.payload = zero
	// From here on only a newer Schedule may cancel this write.
	d.timer = nil
	d.cancel = nil
	d.inflight = cancel
	d.inflightSeq = seq
	d.mu.Unlock()

	err := d.write(ctx, payload)

	d.mu.Lock()
	if d.inflightSeq == seq {
		d.inflight = nil
	}
	d.mu.Unlock()

	d.report(err)
}

func (d *Debouncer[T]) report(err error) {
	switch {
	case err == nil:
		d.logger.Debug("debounced write completed")
	case errors.IsCanceled(err):
		d.logger.Debug("debounced write canceled")
	default:
		d.logger.Warn("debounced write failed", "error", err.Error())
		if d.onError != nil {
			d.onError(err)
		}
	}
}

// resetLocked stops the timer of a scheduled write that has not started.
func (d *Debouncer[T]) resetLocked() {
	if d.timer != nil {
		if d.timer.Stop() {
			d.running.Done()
		}
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Flush writes the pending payload now, if there is one, and returns the
// write's error. When the delay has already elapsed and the write is in
// progress, Flush waits for it instead; its outcome goes to the logger and
// OnError. Nothing stays pending afterwards.
func (d *Debouncer[T]) Flush(ctx context.Context) error {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		d.running.Wait()
		return nil
	}
	d.resetLocked()
	d.seq++
	payload := d.payload
	d.pending = false
	var zero T
	d.payload = zero
	d.mu.Unlock()

	err := d.write(ctx, payload)
	if err != nil && !errors.IsCanceled(err) {
		d.logger.Warn("flush failed", "error", err.Error())
	}
	return err
}

// Stop drops the pending payload. A write whose delay already elapsed runs
// to completion; use Wait to block until it is done.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.seq++
	d.pending = false
	var zero T
	d.payload = zero
}

// Wait blocks until no timer-driven write is scheduled or running.
func (d *Debouncer[T]) Wait() {
	d.running.Wait()
}

// Pending reports whether a payload is waiting for its delay to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
