package domain

import "fmt"

// DiagnosticKind discriminates the configuration issues the controller and
// hierarchy builder collect. All of them are non-fatal: they are reported,
// never raised.
type DiagnosticKind string

const (
	DiagCycle          DiagnosticKind = "cycle"
	DiagUnknownParent  DiagnosticKind = "unknown_parent"
	DiagInvalidHotkey  DiagnosticKind = "invalid_hotkey"
	DiagDuplicateKey   DiagnosticKind = "duplicate_hotkey"
	DiagUnknownCommand DiagnosticKind = "unknown_command"
)

// Diagnostic is one non-fatal configuration finding.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

// ValidationResult summarizes configuration intake for display by the host.
// Built once by the controller; the host renders it and does not re-derive.
type ValidationResult struct {
	CommandsLoaded    int          `json:"commands_loaded"`
	WatchersConfigured int         `json:"watchers_configured"`
	Warnings          []Diagnostic `json:"warnings,omitempty"`
}

// Warn appends a diagnostic.
func (v *ValidationResult) Warn(kind DiagnosticKind, format string, args ...any) {
	v.Warnings = append(v.Warnings, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
