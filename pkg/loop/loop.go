// Package loop provides the cooperative single-threaded execution context
// that owns all controller and presentation state.
//
// A Loop is a single goroutine draining a queue of submitted functions.
// Submit is the only legal way to reach that goroutine from outside: worker
// threads (file watchers, host callbacks) hand work over instead of mutating
// shared state. Everything executed inside the loop can assume exactly one
// logical writer and no reentrancy.
package loop

import (
	"log/slog"
	"sync"

	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/pkg/domain"
)

const defaultQueueSize = 256

// Loop is a single-goroutine task executor.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	tasks   chan func()
	stopped chan struct{}
	done    chan struct{}
	running bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the structured logger used for panics in submitted tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a stopped Loop. Call Start before submitting work.
func New(opts ...Option) *Loop {
	l := &Loop{
		logger:  logging.NewNop(),
		tasks:   make(chan func(), defaultQueueSize),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the loop goroutine. Starting an already-running loop is a
// no-op; a stopped loop cannot be restarted.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	select {
	case <-l.stopped:
		return
	default:
	}
	l.running = true
	go l.run()
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			l.invoke(fn)
		case <-l.stopped:
			// Drain whatever was accepted before the stop.
			for {
				select {
				case fn := <-l.tasks:
					l.invoke(fn)
				default:
					return
				}
			}
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in loop task", "panic", r)
		}
	}()
	fn()
}

// Running reports whether the loop goroutine is accepting work.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Submit schedules fn to run on the loop goroutine. Safe to call from any
// goroutine. Returns domain.ErrLoopNotRunning once the loop has stopped.
func (l *Loop) Submit(fn func()) error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return domain.ErrLoopNotRunning
	}
	l.mu.Unlock()

	select {
	case l.tasks <- fn:
		return nil
	case <-l.stopped:
		return domain.ErrLoopNotRunning
	}
}

// SubmitWait schedules fn and blocks until it has executed. Intended for
// hosts that need a synchronization point (startup, tests); never call it
// from inside the loop itself.
func (l *Loop) SubmitWait(fn func()) error {
	ran := make(chan struct{})
	if err := l.Submit(func() {
		defer close(ran)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		return domain.ErrLoopNotRunning
	}
}

// Stop shuts the loop down after draining already-accepted tasks and waits
// for the goroutine to exit. Safe to call repeatedly.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopped)
	l.mu.Unlock()
	<-l.done
}
