package podium

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/orchestra-dev/podium/internal/bridge"
	"github.com/orchestra-dev/podium/internal/hierarchy"
	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/internal/reconcile"
	"github.com/orchestra-dev/podium/internal/tracker"
	"github.com/orchestra-dev/podium/internal/watch"
	"github.com/orchestra-dev/podium/pkg/config"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/loop"
	"github.com/orchestra-dev/podium/pkg/metrics"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// Controller owns the orchestration frontend lifecycle: the hierarchy
// forest, lifecycle subscriptions, filesystem watchers, and the sync-safe
// run/cancel entry points. Primary embed point for hosts.
//
// All mutable controller state lives on the execution loop passed to
// Attach. Methods documented as sync-safe may be called from any goroutine;
// everything else belongs to the loop.
type Controller struct {
	cfg      config.Config
	orch     ports.Orchestrator
	logger   *slog.Logger
	notifier ports.Notifier
	metrics  *metrics.Metrics

	enableWatchers bool
	fileMarker     string

	forest      []*domain.CommandNode
	occurrences map[string]int
	validation  domain.ValidationResult
	conflicts   map[string][]string

	tracker    *tracker.Tracker
	bridge     *bridge.Bridge
	watchers   *watch.Manager
	reconciler *reconcile.Reconciler

	// loop holds the attached execution handle. Sync-safe entry points and
	// engine-callback goroutines read it concurrently with Attach/Detach
	// writes, so access goes through the atomic pointer.
	loop   atomic.Pointer[loop.Loop]
	unsubs []func()

	// Outbound intent signals. The host wires these; the controller only
	// reports intent, it does not interpret it.
	OnQuitRequested      func()
	OnCancelAllRequested func()
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets the structured logger shared by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets the user-facing message sink. Defaults to silent.
func WithNotifier(n ports.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithWatchers controls whether filesystem watchers auto-start on Attach.
// Enabled by default; hosts that manage watching themselves disable it.
func WithWatchers(enabled bool) Option {
	return func(c *Controller) {
		c.enableWatchers = enabled
	}
}

// WithMetricsRegistry mounts the prometheus collectors on reg instead of a
// private registry.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(c *Controller) {
		c.metrics = metrics.New(reg)
	}
}

// New builds a Controller over the engine. The forest, the hotkey conflict
// map, and the validation result are computed here, once; configuration
// issues are collected as diagnostics and never fail construction.
func New(cfg config.Config, orch ports.Orchestrator, opts ...Option) (*Controller, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}

	c := &Controller{
		cfg:            cfg,
		orch:           orch,
		logger:         logging.NewNop(),
		notifier:       ports.NopNotifier{},
		enableWatchers: true,
		fileMarker:     cfg.FileMarker,
		tracker:        tracker.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNop()
	}

	forest, diags := hierarchy.Build(cfg.Commands)
	c.forest = forest
	c.occurrences = make(map[string]int)
	domain.WalkForest(forest, func(node *domain.CommandNode, depth int) {
		c.occurrences[node.Name()]++
	})
	c.conflicts = computeConflicts(cfg.Hotkeys)
	c.validation = c.validate(diags)

	c.bridge = bridge.New(c.fireTrigger,
		bridge.WithLogger(c.logger),
		bridge.WithMetrics(c.metrics),
	)
	c.watchers = watch.NewManager(c.bridge, cfg.Watchers, c.logger)
	c.reconciler = reconcile.New(orch, c.fileMarker, c.logger)

	return c, nil
}

// Attach connects the controller to a running execution loop: lifecycle
// subscriptions are wired, watchers started, and a one-shot reconciliation
// scheduled. Idempotent; attaching while already attached is a no-op.
// Attaching to a loop that is not running fails fast, since every sync-safe
// entry point depends on the stored handle.
func (c *Controller) Attach(l *loop.Loop) error {
	if c.loop.Load() != nil {
		c.logger.Debug("attach skipped, already attached")
		return nil
	}
	if l == nil || !l.Running() {
		return fmt.Errorf("attach requires a running loop (start it before Attach): %w", domain.ErrLoopNotRunning)
	}

	c.loop.Store(l)
	c.subscribeAll()
	c.bridge.Attach(l)

	if c.enableWatchers && len(c.cfg.Watchers) > 0 {
		if err := c.watchers.Start(); err != nil {
			c.logger.Error("failed to start file watchers", "err", err)
			c.notifier.Error(fmt.Sprintf("File watcher initialization failed: %v", err))
		} else {
			c.notifier.Info(fmt.Sprintf("File watchers started (%d configured)", len(c.cfg.Watchers)))
		}
	}

	// Runs after any view registrations already queued on the loop.
	if err := l.Submit(func() {
		c.reconciler.ReconcileAll(c.tracker)
	}); err != nil {
		c.logger.Warn("reconciliation not scheduled, loop stopped", "err", err)
	}

	return nil
}

// Detach stops watchers, cancels all pending debounce timers, removes
// lifecycle subscriptions, and clears the stored loop handle. In-flight
// engine runs are left alone; cancel them explicitly first if needed.
// Safe to call repeatedly.
func (c *Controller) Detach() {
	c.watchers.Stop()
	c.bridge.Detach()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	if c.loop.Swap(nil) != nil {
		c.notifier.Info("File watchers stopped")
	}
}

// Attached reports whether the controller currently holds a loop handle.
func (c *Controller) Attached() bool {
	return c.loop.Load() != nil
}

// RequestRun schedules a run of the named command on the stored loop.
// Sync-safe: callable from keyboard handlers or any goroutine. Fails fast
// before Attach.
func (c *Controller) RequestRun(name string) error {
	l := c.loop.Load()
	if l == nil {
		return fmt.Errorf("cannot run %q: %w", name, domain.ErrNotAttached)
	}
	c.metrics.RunsRequested.Inc()
	return l.Submit(func() {
		c.runCommand(name)
	})
}

// RequestCancel schedules cancellation of the named command's active runs.
// Sync-safe. Fails fast before Attach.
func (c *Controller) RequestCancel(name string) error {
	l := c.loop.Load()
	if l == nil {
		return fmt.Errorf("cannot cancel %q: %w", name, domain.ErrNotAttached)
	}
	c.metrics.CancelsRequested.Inc()
	return l.Submit(func() {
		c.cancelCommand(name)
	})
}

// RequestQuit reports a quit intent to the host.
func (c *Controller) RequestQuit() {
	if c.OnQuitRequested != nil {
		c.safeInvoke("quit intent", c.OnQuitRequested)
	}
}

// RequestCancelAll reports a cancel-everything intent to the host.
func (c *Controller) RequestCancelAll() {
	if c.OnCancelAllRequested != nil {
		c.safeInvoke("cancel-all intent", c.OnCancelAllRequested)
	}
}

// runCommand executes on the loop.
func (c *Controller) runCommand(name string) {
	if !c.orch.Has(name) {
		c.notifier.Warning(fmt.Sprintf("Command not found: %s", name))
		return
	}
	if _, err := c.orch.Run(context.Background(), name); err != nil {
		c.logger.Error("run failed to start", "command", name, "err", err)
		c.notifier.Error(fmt.Sprintf("Failed to start %s: %v", name, err))
		return
	}
	c.notifier.Info(fmt.Sprintf("Started: %s", name))
}

// cancelCommand executes on the loop.
func (c *Controller) cancelCommand(name string) {
	if !c.orch.Has(name) {
		c.notifier.Warning(fmt.Sprintf("Command not found: %s", name))
		return
	}
	count, err := c.orch.Cancel(context.Background(), name)
	if err != nil {
		c.logger.Error("cancel failed", "command", name, "err", err)
		c.notifier.Error(fmt.Sprintf("Failed to cancel %s: %v", name, err))
		return
	}
	c.notifier.Info(fmt.Sprintf("Cancelled: %s (%d run(s))", name, count))
}

// fireTrigger executes on the loop when a debounced filesystem trigger
// elapses.
func (c *Controller) fireTrigger(trigger string) {
	if err := c.orch.Trigger(context.Background(), trigger); err != nil {
		c.logger.Error("trigger failed", "trigger", trigger, "err", err)
	}
}

// Forest returns the hierarchy roots. Built once per config load and
// read-only afterwards, so concurrent reads are safe.
func (c *Controller) Forest() []*domain.CommandNode {
	return c.forest
}

// Validation returns the cached configuration validation result.
func (c *Controller) Validation() domain.ValidationResult {
	return c.validation
}

// Conflicts returns, per hotkey, the command names bound to it where more
// than one command shares the key. Computed once after configuration load
// and cached; callers must not mutate the result.
func (c *Controller) Conflicts() map[string][]string {
	return c.conflicts
}

// Hotkeys returns key token -> command name hints for the host to wire.
// On conflicting bindings the first command in configuration order wins.
func (c *Controller) Hotkeys() map[string]string {
	hints := make(map[string]string, len(c.cfg.Hotkeys))
	for _, def := range c.cfg.Commands {
		key, ok := c.cfg.Hotkeys[def.Name]
		if !ok {
			continue
		}
		if _, taken := hints[key]; !taken {
			hints[key] = def.Name
		}
	}
	return hints
}

// RegisterView adds one occurrence view to the duplicate tracker. Must be
// called from the execution loop (or before Attach, while still
// single-threaded).
func (c *Controller) RegisterView(v ports.OccurrenceView) {
	c.tracker.Register(v)
}

// FileMarker returns the configured filesystem-trigger marker, empty for
// the default. Adapters classifying trigger chains themselves must use it
// so their provenance matches the live lifecycle path.
func (c *Controller) FileMarker() string {
	return c.fileMarker
}

// IsDuplicate reports whether the command appears at more than one place in
// the forest. Derived from the hierarchy itself, not from view
// registrations, so it answers correctly for headless hosts too.
func (c *Controller) IsDuplicate(name string) bool {
	return c.occurrences[name] > 1
}

// Orchestrator exposes the underlying engine collaborator.
func (c *Controller) Orchestrator() ports.Orchestrator {
	return c.orch
}

func (c *Controller) safeInvoke(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.SubscriberPanics.Inc()
			c.logger.Error("host callback panicked", "callback", what, "panic", r)
		}
	}()
	fn()
}
