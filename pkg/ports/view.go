package ports

import "github.com/orchestra-dev/podium/pkg/domain"

// OccurrenceView is one visible occurrence of a command in the rendered
// forest. The controller pushes presentation state through it; it never
// reads state back. Called only from the execution loop.
type OccurrenceView interface {
	// CommandName identifies which command the occurrence displays.
	CommandName() string

	// Apply replaces the displayed state with the update snapshot.
	Apply(update domain.PresentationUpdate)
}

// Notifier is an optional sink for user-facing messages (log pane, status
// bar). The default implementation discards everything, so embedded hosts
// without a message surface stay silent.
type Notifier interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// NopNotifier discards all messages.
type NopNotifier struct{}

func (NopNotifier) Info(string)    {}
func (NopNotifier) Warning(string) {}
func (NopNotifier) Error(string)   {}
