package domain

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a single command run.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusSuccess   RunStatus = "success"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is a final outcome.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Icon returns the glyph hosts conventionally display for the status.
func (s RunStatus) Icon() string {
	switch s {
	case StatusSuccess:
		return "✅"
	case StatusFailed:
		return "❌"
	case StatusCancelled:
		return "⏹"
	case StatusRunning:
		return "⏳"
	default:
		return "❓"
	}
}

// RunResult is the frozen record of a completed run as reported by the
// execution engine.
type RunResult struct {
	RunID        string    `json:"run_id"`
	Command      string    `json:"command"`
	Status       RunStatus `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	TriggerChain []string  `json:"trigger_chain,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Duration returns the wall-clock duration of the run.
func (r RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// DurationString renders the duration rounded for tooltips.
func (r RunResult) DurationString() string {
	d := r.Duration()
	if d == 0 {
		return "?"
	}
	return d.Round(10 * time.Millisecond).String()
}

// Tooltip renders the conventional one-line result summary.
func (r RunResult) Tooltip() string {
	return fmt.Sprintf("%s (%s)", r.Status, r.DurationString())
}
