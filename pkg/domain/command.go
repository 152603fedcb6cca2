package domain

import (
	"fmt"
	"regexp"
)

// Lifecycle phases emitted by the execution engine when a run reaches a
// terminal state. A command listing "<phase>:<name>" among its triggers
// reacts to that outcome of command <name>.
const (
	PhaseSuccess   = "command_success"
	PhaseFailed    = "command_failed"
	PhaseCancelled = "command_cancelled"
)

var lifecycleTriggerRe = regexp.MustCompile(`^(command_success|command_failed|command_cancelled):(.+)$`)

// CommandDefinition describes a single triggerable command as supplied by
// the host configuration. Immutable once handed to the controller.
type CommandDefinition struct {
	// Name uniquely identifies the command.
	Name string `yaml:"name" json:"name" mapstructure:"name"`

	// Command is the executable or shell line the engine runs.
	Command string `yaml:"command" json:"command" mapstructure:"command"`

	// Args are passed verbatim to the executable.
	Args []string `yaml:"args,omitempty" json:"args,omitempty" mapstructure:"args"`

	// Triggers lists the event identifiers this command reacts to. A
	// lifecycle-shaped trigger ("command_success:Build") links this command
	// under its parent in the hierarchy; any other identifier is an
	// external event (file watcher, manual trigger).
	Triggers []string `yaml:"triggers,omitempty" json:"triggers,omitempty" mapstructure:"triggers"`
}

// ParseLifecycleTrigger splits a lifecycle-shaped trigger identifier into
// its phase and parent command name. ok is false for any other identifier.
func ParseLifecycleTrigger(trigger string) (phase, parent string, ok bool) {
	m := lifecycleTriggerRe.FindStringSubmatch(trigger)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// LifecycleEvent builds the trigger identifier the engine emits when the
// named command terminates in the given phase.
func LifecycleEvent(phase, name string) string {
	return fmt.Sprintf("%s:%s", phase, name)
}
