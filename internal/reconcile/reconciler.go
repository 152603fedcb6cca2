// Package reconcile performs the one-shot, read-only synchronization of
// presentation state to the engine's truth at attach time.
package reconcile

import (
	"log/slog"

	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/internal/tracker"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// Reconciler syncs occurrence views with orchestrator state. It is purely
// read-only: it never starts execution, and repeated reconciliation against
// unchanged engine state produces the same updates.
type Reconciler struct {
	orch       ports.Orchestrator
	fileMarker string
	logger     *slog.Logger
}

// New creates a Reconciler over the engine. fileMarker is the substring
// identifying filesystem-origin triggers, matching what the live lifecycle
// path classifies with; empty selects the default.
func New(orch ports.Orchestrator, fileMarker string, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{orch: orch, fileMarker: fileMarker, logger: logger}
}

// Reconcile pushes one presentation update to the view, derived from the
// engine's current truth: an in-flight run if one exists, otherwise the most
// recent completed run from history. No run and no history leaves the view
// untouched at its idle default.
func (r *Reconciler) Reconcile(v ports.OccurrenceView) {
	name := v.CommandName()

	if active := r.orch.Active(name); len(active) > 0 {
		handle := active[len(active)-1]
		if res, ok := handle.Result(); ok {
			v.Apply(domain.ResultUpdate(res))
			return
		}
		src := domain.ClassifyChain(handle.TriggerChain(), r.fileMarker)
		v.Apply(domain.RunningUpdate(src))
		return
	}

	history := r.orch.History(name, 1)
	if len(history) == 0 {
		return
	}
	v.Apply(domain.ResultUpdate(history[0]))
}

// ReconcileAll reconciles every occurrence registered with the tracker, in
// registration order.
func (r *Reconciler) ReconcileAll(t *tracker.Tracker) {
	for _, name := range t.Names() {
		for _, v := range t.Occurrences(name) {
			r.Reconcile(v)
		}
	}
	r.logger.Debug("state reconciled", "commands", len(t.Names()))
}
