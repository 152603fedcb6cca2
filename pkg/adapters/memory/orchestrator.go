// Package memory provides an in-process implementation of the Orchestrator
// port. It executes commands through a pluggable Executor, propagates
// trigger chains across lifecycle cascades, and keeps a bounded run history.
//
// It is the reference engine for tests, examples, and hosts that have not
// wired a production orchestrator.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// maxChainDepth bounds lifecycle cascades so mutually-triggering commands
// cannot run forever. The hierarchy builder reports such cycles; the engine
// additionally refuses to follow them past this depth.
const maxChainDepth = 16

const defaultHistoryLimit = 50

// Executor runs a single command to completion. A context cancellation must
// abort the run and surface as ctx.Err().
type Executor interface {
	Execute(ctx context.Context, def domain.CommandDefinition) (outputPath string, err error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, def domain.CommandDefinition) (string, error)

// Execute satisfies Executor.
func (f ExecutorFunc) Execute(ctx context.Context, def domain.CommandDefinition) (string, error) {
	return f(ctx, def)
}

// instantExecutor succeeds immediately. The zero-config default.
type instantExecutor struct{}

func (instantExecutor) Execute(context.Context, domain.CommandDefinition) (string, error) {
	return "", nil
}

// Orchestrator is an in-memory execution engine.
type Orchestrator struct {
	defs         []domain.CommandDefinition
	byName       map[string]domain.CommandDefinition
	executor     Executor
	logger       *slog.Logger
	historyLimit int

	mu      sync.Mutex
	active  map[string][]*runHandle
	history map[string][]domain.RunResult
	subs    map[string][]*subscription
	closed  bool

	wg sync.WaitGroup
}

type subscription struct {
	sub ports.Subscriber
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithExecutor replaces the default instant-success executor.
func WithExecutor(e Executor) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.executor = e
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHistoryLimit bounds the per-command history ring.
func WithHistoryLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// New creates an Orchestrator over the command definitions.
func New(defs []domain.CommandDefinition, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		defs:         defs,
		byName:       make(map[string]domain.CommandDefinition, len(defs)),
		executor:     instantExecutor{},
		logger:       logging.NewNop(),
		historyLimit: defaultHistoryLimit,
		active:       make(map[string][]*runHandle),
		history:      make(map[string][]domain.RunResult),
		subs:         make(map[string][]*subscription),
	}
	for _, def := range defs {
		if _, dup := o.byName[def.Name]; !dup {
			o.byName[def.Name] = def
		}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run starts the named command manually.
func (o *Orchestrator) Run(ctx context.Context, name string) (ports.RunHandle, error) {
	return o.start(ctx, name, nil)
}

// Trigger fires an external event identifier, starting every command that
// lists it among its triggers with the event as chain root.
func (o *Orchestrator) Trigger(ctx context.Context, event string) error {
	o.fireTrigger(ctx, event, nil)
	return nil
}

// Cancel cancels all active runs of the command.
func (o *Orchestrator) Cancel(ctx context.Context, name string) (int, error) {
	if !o.Has(name) {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, name)
	}

	o.mu.Lock()
	handles := append([]*runHandle(nil), o.active[name]...)
	o.mu.Unlock()

	for _, h := range handles {
		h.cancelRun()
	}
	return len(handles), nil
}

// History returns up to limit completed runs, most recent first.
func (o *Orchestrator) History(name string, limit int) []domain.RunResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	results := o.history[name]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return append([]domain.RunResult(nil), results...)
}

// Active returns the in-flight run handles for the command.
func (o *Orchestrator) Active(name string) []ports.RunHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	handles := make([]ports.RunHandle, 0, len(o.active[name]))
	for _, h := range o.active[name] {
		handles = append(handles, h)
	}
	return handles
}

// Has reports whether the command is configured.
func (o *Orchestrator) Has(name string) bool {
	_, ok := o.byName[name]
	return ok
}

// Commands lists the configured command names in definition order.
func (o *Orchestrator) Commands() []string {
	names := make([]string, 0, len(o.defs))
	seen := make(map[string]bool, len(o.defs))
	for _, def := range o.defs {
		if !seen[def.Name] {
			seen[def.Name] = true
			names = append(names, def.Name)
		}
	}
	return names
}

// Subscribe registers lifecycle callbacks for the command.
func (o *Orchestrator) Subscribe(name string, sub ports.Subscriber) func() {
	entry := &subscription{sub: sub}
	o.mu.Lock()
	o.subs[name] = append(o.subs[name], entry)
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		list := o.subs[name]
		for i, e := range list {
			if e == entry {
				o.subs[name] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Close cancels every active run and waits for run goroutines to finish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	var handles []*runHandle
	for _, list := range o.active {
		handles = append(handles, list...)
	}
	o.mu.Unlock()

	for _, h := range handles {
		h.cancelRun()
	}
	o.wg.Wait()
}

// fireTrigger starts every command reacting to event, extending baseChain.
func (o *Orchestrator) fireTrigger(ctx context.Context, event string, baseChain []string) {
	if len(baseChain) >= maxChainDepth {
		o.logger.Warn("trigger cascade truncated", "event", event, "depth", len(baseChain))
		return
	}

	chain := make([]string, 0, len(baseChain)+1)
	chain = append(chain, baseChain...)
	chain = append(chain, event)

	for _, def := range o.defs {
		for _, trigger := range def.Triggers {
			if trigger != event {
				continue
			}
			if _, err := o.start(ctx, def.Name, chain); err != nil {
				o.logger.Error("triggered run failed to start", "command", def.Name, "event", event, "err", err)
			}
			break
		}
	}
}

func (o *Orchestrator) start(ctx context.Context, name string, chain []string) (ports.RunHandle, error) {
	def, ok := o.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, name)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	h := newRunHandle(uuid.NewString(), name, chain, cancel)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		cancel()
		return nil, errors.New("orchestrator is closed")
	}
	o.active[name] = append(o.active[name], h)
	o.wg.Add(1)
	o.mu.Unlock()

	go o.execute(runCtx, def, h)
	return h, nil
}

// execute owns the whole lifecycle of one run: started callback, executor,
// finalization, history, terminal callback, lifecycle cascade.
func (o *Orchestrator) execute(ctx context.Context, def domain.CommandDefinition, h *runHandle) {
	defer o.wg.Done()

	started := time.Now()
	o.emit(def.Name, func(sub ports.Subscriber) { sub.OnStarted(h) })

	output, err := o.executor.Execute(ctx, def)

	status := domain.StatusSuccess
	errMsg := ""
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		status = domain.StatusCancelled
	case err != nil:
		status = domain.StatusFailed
		errMsg = err.Error()
	}

	result := domain.RunResult{
		RunID:        h.ID(),
		Command:      def.Name,
		Status:       status,
		StartedAt:    started,
		FinishedAt:   time.Now(),
		TriggerChain: h.TriggerChain(),
		OutputPath:   output,
		Error:        errMsg,
	}
	h.finalize(result)

	o.mu.Lock()
	o.removeActiveLocked(def.Name, h)
	o.history[def.Name] = prependBounded(o.history[def.Name], result, o.historyLimit)
	o.mu.Unlock()

	switch status {
	case domain.StatusSuccess:
		o.emit(def.Name, func(sub ports.Subscriber) { sub.OnSuccess(h) })
	case domain.StatusFailed:
		o.emit(def.Name, func(sub ports.Subscriber) { sub.OnFailed(h) })
	case domain.StatusCancelled:
		o.emit(def.Name, func(sub ports.Subscriber) { sub.OnCancelled(h) })
	}

	o.fireTrigger(context.Background(), domain.LifecycleEvent(phaseFor(status), def.Name), h.TriggerChain())
}

func phaseFor(status domain.RunStatus) string {
	switch status {
	case domain.StatusFailed:
		return domain.PhaseFailed
	case domain.StatusCancelled:
		return domain.PhaseCancelled
	default:
		return domain.PhaseSuccess
	}
}

func (o *Orchestrator) removeActiveLocked(name string, h *runHandle) {
	list := o.active[name]
	for i, candidate := range list {
		if candidate == h {
			o.active[name] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// emit delivers one callback to every subscriber of the command. Subscriber
// panics are recovered and logged, never propagated into the engine.
func (o *Orchestrator) emit(name string, deliver func(ports.Subscriber)) {
	o.mu.Lock()
	subs := append([]*subscription(nil), o.subs[name]...)
	o.mu.Unlock()

	for _, entry := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("subscriber panic", "command", name, "panic", r)
				}
			}()
			deliver(entry.sub)
		}()
	}
}

func prependBounded(results []domain.RunResult, result domain.RunResult, limit int) []domain.RunResult {
	results = append([]domain.RunResult{result}, results...)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
