package collectors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by Start when the scheduler has an active loop.
var ErrAlreadyRunning = errors.New("collectors: scheduler already running")

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used for sample failures.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithErrorHandler registers fn to be called with every failed sample.
// It runs on the sampling goroutine and must not block.
func WithErrorHandler(fn func(error)) SchedulerOption {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// errTracker deduplicates repeated identical sample errors.
type errTracker struct {
	lastMsg    string
	lastTime   time.Time
	suppressed int64
}

// pollRun is the state of one Start..Stop cycle.
type pollRun struct {
	cancel     context.CancelFunc
	done       chan struct{}
	inCallback bool // guarded by Scheduler.mu
}

// Scheduler drives a Sampler at a fixed interval and hands every snapshot to
// a consumer. It has two states, stopped (the initial state) and running.
//
// Exactly one goroutine samples at a time, so a Sampler holding tick state is
// never called concurrently with itself. The consumer runs on that goroutine:
// it must return quickly and do its own hand-off if the snapshot is needed
// elsewhere.
type Scheduler struct {
	sampler Sampler
	logger  *slog.Logger
	onError func(error)

	mu      sync.Mutex
	current *pollRun
	last    *pollRun // most recent run, possibly still finishing a callback
}

// NewScheduler creates a stopped scheduler for the given sampler.
func NewScheduler(sampler Sampler, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sampler: sampler,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins polling. The first sample is taken immediately, subsequent
// samples every interval. consumer is invoked once per successful sample.
// Start returns ErrAlreadyRunning if the scheduler is already running.
func (s *Scheduler) Start(interval time.Duration, consumer func(SystemSnapshot)) error {
	if interval <= 0 {
		return fmt.Errorf("collectors: interval must be positive, got %s", interval)
	}
	if consumer == nil {
		return errors.New("collectors: consumer must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &pollRun{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	prev := s.last
	s.current = run
	s.last = run

	go s.loop(ctx, run, prev, interval, consumer)
	return nil
}

// Stop ends polling. Once Stop returns no new consumer invocation will begin.
// If a sample is in progress Stop waits for it to finish and be discarded.
// Stop may be called from any goroutine, including from inside the consumer
// or error handler, in which case that invocation is the last one.
//
// Stop does not wait for a consumer or error handler invocation that is
// already running, since it cannot tell whether it was called from inside
// one. That invocation may still be executing when Stop returns. A later
// Start takes no sample until it has returned, so invocations never overlap.
//
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	run := s.current
	if run == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	run.cancel()
	inCallback := run.inCallback
	s.mu.Unlock()

	if !inCallback {
		<-run.done
	}
}

// Running reports whether the scheduler is in the running state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// loop is the polling goroutine. It waits for the previous run to wind down,
// samples immediately, then on every tick. Errors are logged but never stop
// the loop.
func (s *Scheduler) loop(ctx context.Context, run, prev *pollRun, interval time.Duration, consumer func(SystemSnapshot)) {
	defer close(run.done)

	if prev != nil {
		select {
		case <-prev.done:
		case <-ctx.Done():
			return
		}
	}

	var errs errTracker
	s.tick(ctx, run, consumer, &errs)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// Both cases may be ready at once; cancellation wins.
		if ctx.Err() != nil {
			return
		}
		s.tick(ctx, run, consumer, &errs)
	}
}

// tick performs one sample and delivers the result.
func (s *Scheduler) tick(ctx context.Context, run *pollRun, consumer func(SystemSnapshot), errs *errTracker) {
	snap, err := s.sample(ctx)
	if err != nil {
		s.logSampleError(errs, err)
		if s.onError != nil {
			s.invoke(ctx, run, func() { s.onError(err) })
		}
		return
	}

	s.invoke(ctx, run, func() { consumer(snap) })
}

// invoke runs fn unless the run has been cancelled. The cancellation check
// and the inCallback flag share s.mu with Stop, so Stop either sees the
// callback in flight or prevents it from starting.
func (s *Scheduler) invoke(ctx context.Context, run *pollRun, fn func()) {
	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	run.inCallback = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		run.inCallback = false
		s.mu.Unlock()

		if r := recover(); r != nil {
			s.logger.Error("snapshot consumer panicked", "sampler", s.sampler.Name(), "panic", r)
		}
	}()

	fn()
}

// sample calls the sampler, converting a panic into an error so one bad
// tick cannot take down the loop.
func (s *Scheduler) sample(ctx context.Context) (snap SystemSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collectors: %s panicked: %v", s.sampler.Name(), r)
		}
	}()
	return s.sampler.Sample(ctx)
}

// logSampleError suppresses repeats of the same error message within an
// hour, logging a summary every 100 suppressions.
func (s *Scheduler) logSampleError(t *errTracker, err error) {
	name := s.sampler.Name()
	msg := err.Error()
	now := time.Now()

	if msg == t.lastMsg && now.Sub(t.lastTime) < time.Hour {
		t.suppressed++
		if t.suppressed%100 == 0 {
			s.logger.Warn("sample failed (repeated)", "sampler", name, "count", t.suppressed, "error", err)
		}
		return
	}
	if t.suppressed > 0 {
		s.logger.Warn("previous sample error repeated", "sampler", name, "count", t.suppressed)
	}
	s.logger.Warn("sample failed", "sampler", name, "error", err)
	t.lastMsg = msg
	t.lastTime = now
	t.suppressed = 0
}
