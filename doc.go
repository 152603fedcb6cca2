/*
Package podium turns a flat set of triggerable command definitions into a
live, reactive hierarchy in front of a command execution engine.

It is the embeddable core of a command-orchestrator frontend: the rendering
host (TUI, editor plugin, headless daemon) stays thin, while podium owns the
hard parts — hierarchy expansion with intentional duplication, trigger
provenance, debounced filesystem triggers, and the concurrency boundary
between watcher threads and the single-threaded execution context.

# Architecture

The Controller is the primary embed point. It consumes a ports.Orchestrator
(the execution engine collaborator) and a pre-parsed config.Config, builds
the hierarchy forest once, and exposes sync-safe entry points the host can
call from any callback:

	ctrl, err := podium.New(cfg, engine)
	l := loop.New()
	l.Start()
	if err := ctrl.Attach(l); err != nil { ... }

	ctrl.RequestRun("Build")   // safe from any goroutine
	ctrl.RequestCancel("Build")

All engine and presentation state is owned by the execution loop: exactly
one logical writer. Filesystem watcher goroutines cross into the loop only
through the debounced event bridge; nothing else in the module may be
invoked from a worker thread.

# Hierarchy

Commands reference each other through lifecycle triggers such as
"command_success:Build". The hierarchy builder expands those edges into a
forest, duplicating any command reachable via multiple parents — each
occurrence carries its own provenance path and is updated independently,
even though they all reflect the same underlying run.

# Reconciliation

On attach, a one-shot read-only reconciler syncs every forest occurrence to
the engine's truth (in-flight run, else most recent history entry). It never
starts execution.
*/
package podium
