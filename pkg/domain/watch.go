package domain

import "time"

// DefaultDebounce is applied when a WatchSpec carries no explicit interval.
const DefaultDebounce = 300 * time.Millisecond

// WatchSpec configures one filesystem watch: the directory to observe, the
// files that count, and the trigger identifier to fire after the debounce
// window closes.
type WatchSpec struct {
	// Dir is the directory to watch, recursively.
	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`

	// Patterns are doublestar globs matched against the path relative to
	// Dir (e.g. "**/*.go"). When empty, Extensions is consulted instead.
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty" mapstructure:"patterns"`

	// Extensions is the fallback filter (".go", ".md") used when no
	// patterns are configured. Empty means every file matches.
	Extensions []string `yaml:"extensions,omitempty" json:"extensions,omitempty" mapstructure:"extensions"`

	// IgnoreDirs names directories skipped entirely (".git", "node_modules").
	IgnoreDirs []string `yaml:"ignore_dirs,omitempty" json:"ignore_dirs,omitempty" mapstructure:"ignore_dirs"`

	// Trigger is the event identifier fired into the engine on change.
	Trigger string `yaml:"trigger" json:"trigger" mapstructure:"trigger"`

	// DebounceMS is the quiet period in milliseconds before the trigger
	// fires. Zero means DefaultDebounce.
	DebounceMS int `yaml:"debounce_ms,omitempty" json:"debounce_ms,omitempty" mapstructure:"debounce_ms"`
}

// Debounce returns the effective debounce interval.
func (w WatchSpec) Debounce() time.Duration {
	if w.DebounceMS <= 0 {
		return DefaultDebounce
	}
	return time.Duration(w.DebounceMS) * time.Millisecond
}
