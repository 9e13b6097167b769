package debounce

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/Iron-Ham/filterbox/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects written payloads.
type recorder struct {
	mu     sync.Mutex
	writes []string
}

func (r *recorder) write(_ context.Context, p string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, p)
	return nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.writes)
}

func TestSchedule_LatestWins(t *testing.T) {
	r := &recorder{}
	d := New(20*time.Millisecond, r.write)

	d.Schedule("P1")
	d.Schedule("P2")
	if !d.Pending() {
		t.Error("Pending() = false right after Schedule, want true")
	}
	d.Wait()

	if got := r.got(); !slices.Equal(got, []string{"P2"}) {
		t.Errorf("writes = %v, want [P2]", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after the write, want false")
	}
}

func TestSchedule_SeparatedByDelayWritesBoth(t *testing.T) {
	r := &recorder{}
	d := New(5*time.Millisecond, r.write)

	d.Schedule("P1")
	d.Wait()
	d.Schedule("P2")
	d.Wait()

	if got := r.got(); !slices.Equal(got, []string{"P1", "P2"}) {
		t.Errorf("writes = %v, want [P1 P2]", got)
	}
}

func TestFlush(t *testing.T) {
	r := &recorder{}
	d := New(time.Hour, r.write)

	d.Schedule("P1")
	d.Schedule("P2")
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	d.Wait()

	if got := r.got(); !slices.Equal(got, []string{"P2"}) {
		t.Errorf("writes = %v, want [P2] exactly once", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after Flush, want false")
	}

	// Nothing pending: Flush is a no-op.
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("second Flush() error = %v", err)
	}
	if got := r.got(); len(got) != 1 {
		t.Errorf("writes after empty Flush = %v, want one write", got)
	}
}

func TestStop(t *testing.T) {
	r := &recorder{}
	d := New(10*time.Millisecond, r.write)

	d.Schedule("P1")
	d.Stop()
	d.Wait()
	time.Sleep(30 * time.Millisecond)

	if got := r.got(); len(got) != 0 {
		t.Errorf("writes = %v, want none after Stop", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after Stop, want false")
	}
}

func TestScheduleCancelsInFlightWrite(t *testing.T) {
	started := make(chan struct{}, 1)
	var (
		mu      sync.Mutex
		results []string
	)
	write := func(ctx context.Context, p string) error {
		if p == "slow" {
			started <- struct{}{}
			<-ctx.Done()
			mu.Lock()
			results = append(results, "slow canceled")
			mu.Unlock()
			return ctx.Err()
		}
		mu.Lock()
		results = append(results, p)
		mu.Unlock()
		return nil
	}

	var reported []error
	d := New(time.Millisecond, write, WithOnError[string](func(err error) {
		reported = append(reported, err)
	}))

	d.Schedule("slow")
	<-started
	d.Schedule("fast")
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	slices.Sort(results)
	if !slices.Equal(results, []string{"fast", "slow canceled"}) {
		t.Errorf("results = %v, want [fast slow canceled]", results)
	}
	if len(reported) != 0 {
		t.Errorf("reported errors = %v, want cancellations swallowed", reported)
	}
}

// blockingWrite records payloads; each write signals started and then waits
// for release or cancellation.
type blockingWrite struct {
	started chan struct{}
	release chan struct{}

	mu      sync.Mutex
	results []string
}

func newBlockingWrite() *blockingWrite {
	return &blockingWrite{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingWrite) write(ctx context.Context, p string) error {
	b.started <- struct{}{}
	var err error
	select {
	case <-b.release:
	case <-ctx.Done():
		err = ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.results = append(b.results, p+" canceled")
	} else {
		b.results = append(b.results, p)
	}
	return err
}

func (b *blockingWrite) got() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.results)
}

func TestFlushWaitsForStartedWrite(t *testing.T) {
	b := newBlockingWrite()
	d := New(time.Millisecond, b.write)

	d.Schedule("latest")
	<-b.started

	flushed := make(chan error, 1)
	go func() { flushed <- d.Flush(context.Background()) }()
	select {
	case err := <-flushed:
		t.Fatalf("Flush() returned %v before the started write finished", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(b.release)
	if err := <-flushed; err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	d.Stop()
	d.Wait()

	if got := b.got(); !slices.Equal(got, []string{"latest"}) {
		t.Errorf("writes = %v, want [latest] completed", got)
	}
}

func TestStopDoesNotCancelStartedWrite(t *testing.T) {
	b := newBlockingWrite()
	d := New(time.Millisecond, b.write)

	d.Schedule("latest")
	<-b.started
	d.Stop()
	close(b.release)
	d.Wait()

	if got := b.got(); !slices.Equal(got, []string{"latest"}) {
		t.Errorf("writes = %v, want [latest] completed", got)
	}
}

func TestWriteErrorsReachOnError(t *testing.T) {
	boom := errors.New("disk full")
	errCh := make(chan error, 1)
	d := New(time.Millisecond,
		func(context.Context, int) error { return boom },
		WithOnError[int](func(err error) { errCh <- err }),
	)

	d.Schedule(1)
	d.Wait()

	select {
	case err := <-errCh:
		if err != boom {
			t.Errorf("reported error = %v, want %v", err, boom)
		}
	default:
		t.Fatal("OnError was not called")
	}
}

func TestFlushReturnsWriteError(t *testing.T) {
	boom := errors.New("remote unavailable")
	d := New(time.Hour, func(context.Context, int) error { return boom })

	d.Schedule(1)
	if err := d.Flush(context.Background()); err != boom {
		t.Errorf("Flush() error = %v, want %v", err, boom)
	}
}
