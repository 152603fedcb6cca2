package ports

import (
	"context"

	"github.com/orchestra-dev/podium/pkg/domain"
)

// RunHandle represents one run of a command, in flight or completed.
// Implementations must be safe for concurrent reads.
type RunHandle interface {
	// ID uniquely identifies the run.
	ID() string

	// Command returns the command name the run belongs to.
	Command() string

	// TriggerChain returns the ordered provenance of the run, root cause
	// first. Empty means started manually. Frozen at run completion.
	TriggerChain() []string

	// Finalized reports whether the run has reached a terminal state.
	Finalized() bool

	// Result returns the frozen run record. ok is false until Finalized.
	Result() (res domain.RunResult, ok bool)
}

// Subscriber receives lifecycle callbacks for one command. For a given run,
// OnStarted is delivered first, followed by exactly one terminal callback,
// in emission order. Implementations must not block.
type Subscriber interface {
	OnStarted(h RunHandle)
	OnSuccess(h RunHandle)
	OnFailed(h RunHandle)
	OnCancelled(h RunHandle)
}

// Orchestrator is the execution engine collaborator. The controller consumes
// this interface; it never starts processes or tracks run state itself.
type Orchestrator interface {
	// Run starts the named command manually (empty trigger chain).
	Run(ctx context.Context, name string) (RunHandle, error)

	// Cancel requests cancellation of every active run of the named
	// command and returns how many runs were signalled.
	Cancel(ctx context.Context, name string) (int, error)

	// Trigger fires an external event identifier. Commands whose triggers
	// include it are started with the event as their chain root.
	Trigger(ctx context.Context, event string) error

	// History returns up to limit completed runs for the command, most
	// recent first.
	History(name string, limit int) []domain.RunResult

	// Active returns the handles of in-flight runs for the command.
	Active(name string) []RunHandle

	// Has reports whether the command is known to the engine.
	Has(name string) bool

	// Commands lists all known command names in configuration order.
	Commands() []string

	// Subscribe registers lifecycle callbacks for the named command and
	// returns a function that removes the registration.
	Subscribe(name string, sub Subscriber) (unsubscribe func())
}
