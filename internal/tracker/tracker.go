// Package tracker fans presentation updates out to every forest occurrence
// of a command name. One underlying run (and one shared hotkey, if bound)
// must be reflected at every place the command appears.
package tracker

import (
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/ports"
)

// Tracker maintains name -> occurrence views. It is owned by the controller
// and mutated only from the execution loop; it carries no locks on purpose.
type Tracker struct {
	occurrences map[string][]ports.OccurrenceView
	order       []string
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{occurrences: make(map[string][]ports.OccurrenceView)}
}

// Register adds one occurrence view. Registering the same command under
// multiple views is the expected case for duplicated forest nodes.
func (t *Tracker) Register(v ports.OccurrenceView) {
	name := v.CommandName()
	if _, ok := t.occurrences[name]; !ok {
		t.order = append(t.order, name)
	}
	t.occurrences[name] = append(t.occurrences[name], v)
}

// Occurrences returns the registered views for a command name.
func (t *Tracker) Occurrences(name string) []ports.OccurrenceView {
	return t.occurrences[name]
}

// IsDuplicate reports whether the command appears more than once.
func (t *Tracker) IsDuplicate(name string) bool {
	return len(t.occurrences[name]) > 1
}

// Names returns the registered command names in registration order.
func (t *Tracker) Names() []string {
	return t.order
}

// Broadcast applies the update to every occurrence of the command.
func (t *Tracker) Broadcast(name string, update domain.PresentationUpdate) {
	for _, v := range t.occurrences[name] {
		v.Apply(update)
	}
}

// Reset drops all registrations, for forest rebuilds on config reload.
func (t *Tracker) Reset() {
	t.occurrences = make(map[string][]ports.OccurrenceView)
	t.order = nil
}
