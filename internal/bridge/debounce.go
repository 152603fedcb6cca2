// Package bridge coalesces bursts of worker-thread filesystem events into
// single trigger fires delivered onto the execution loop.
//
// This is the only component in the module that is legal to call from an
// arbitrary goroutine; everything downstream of it runs on the loop.
package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/pkg/metrics"
)

// Submitter is the thread-safe handoff into the execution loop.
// *loop.Loop satisfies it.
type Submitter interface {
	Submit(fn func()) error
	Running() bool
}

// Bridge debounces Notify calls per trigger identifier. Each identifier has
// at most one pending timer; a repeat Notify inside the window restarts it,
// so the fire happens once, timed from the last event of the burst.
type Bridge struct {
	fire    func(trigger string)
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	loop    Submitter
	seq     uint64
	pending map[string]*pendingTimer
}

// pendingTimer carries a generation number so a timer that fires just as a
// fresh Notify replaces it cannot cancel its successor.
type pendingTimer struct {
	timer *time.Timer
	seq   uint64
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the structured logger for dropped-event diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the instrumentation sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bridge) {
		if m != nil {
			b.metrics = m
		}
	}
}

// New creates a detached Bridge. fire is invoked on the execution loop once
// per debounced trigger.
func New(fire func(trigger string), opts ...Option) *Bridge {
	b := &Bridge{
		fire:    fire,
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
		pending: make(map[string]*pendingTimer),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach connects the bridge to a running execution loop.
func (b *Bridge) Attach(loop Submitter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loop = loop
}

// Detach cancels all pending timers and disconnects the loop. Events
// arriving afterwards are dropped with a logged diagnostic.
func (b *Bridge) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loop = nil
	b.cancelPendingLocked()
}

// Stop cancels all pending timers without detaching.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelPendingLocked()
}

func (b *Bridge) cancelPendingLocked() {
	for trigger, p := range b.pending {
		p.timer.Stop()
		delete(b.pending, trigger)
	}
}

// Pending reports whether the trigger currently has a timer armed.
func (b *Bridge) Pending(trigger string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[trigger]
	return ok
}

// Notify records one filesystem event for the trigger and (re)starts its
// debounce timer. Safe to call concurrently from any number of watcher
// goroutines. Detached bridges drop the event.
func (b *Bridge) Notify(trigger string, delay time.Duration) {
	b.metrics.EventsObserved.WithLabelValues(trigger).Inc()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loop == nil || !b.loop.Running() {
		b.metrics.EventsDropped.Inc()
		b.logger.Warn("filesystem event dropped, bridge not attached", "trigger", trigger)
		return
	}

	if p, ok := b.pending[trigger]; ok {
		p.timer.Stop()
	}
	b.seq++
	seq := b.seq
	b.pending[trigger] = &pendingTimer{
		seq: seq,
		timer: time.AfterFunc(delay, func() {
			b.elapsed(trigger, seq)
		}),
	}
}

// elapsed runs on the timer goroutine when a debounce window closes.
func (b *Bridge) elapsed(trigger string, seq uint64) {
	b.mu.Lock()
	p, ok := b.pending[trigger]
	if !ok || p.seq != seq {
		// Cancelled or superseded between firing and acquiring the lock.
		b.mu.Unlock()
		return
	}
	delete(b.pending, trigger)
	loop := b.loop
	b.mu.Unlock()

	if loop == nil {
		b.metrics.EventsDropped.Inc()
		b.logger.Warn("debounced trigger dropped, bridge detached", "trigger", trigger)
		return
	}

	err := loop.Submit(func() {
		b.fire(trigger)
	})
	if err != nil {
		b.metrics.EventsDropped.Inc()
		b.logger.Warn("debounced trigger dropped, loop stopped", "trigger", trigger, "err", err)
		return
	}
	b.metrics.TriggersFired.WithLabelValues(trigger).Inc()
}
