package podium

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/orchestra-dev/podium/pkg/domain"
)

// hotkeyPattern accepts digits 1-9, lowercase letters, and function keys
// f1-f12 as bindable tokens.
var hotkeyPattern = regexp.MustCompile(`^([1-9]|[a-z]|f([1-9]|1[0-2]))$`)

// validate folds the hierarchy diagnostics together with hotkey checks into
// the cached validation result.
func (c *Controller) validate(builderDiags []domain.Diagnostic) domain.ValidationResult {
	result := domain.ValidationResult{
		CommandsLoaded:     len(c.cfg.Commands),
		WatchersConfigured: len(c.cfg.Watchers),
		Warnings:           builderDiags,
	}

	known := make(map[string]bool, len(c.cfg.Commands))
	for _, def := range c.cfg.Commands {
		known[def.Name] = true
	}

	for _, def := range c.cfg.Commands {
		key, ok := c.cfg.Hotkeys[def.Name]
		if !ok {
			continue
		}
		if !hotkeyPattern.MatchString(key) {
			result.Warn(domain.DiagInvalidHotkey,
				"invalid hotkey %q for command %q (expected 1-9, a-z, or f1-f12)", key, def.Name)
		}
	}
	for name := range c.cfg.Hotkeys {
		if !known[name] {
			result.Warn(domain.DiagUnknownCommand,
				"hotkey configured for unknown command %q", name)
		}
	}
	for key, names := range c.conflicts {
		result.Warn(domain.DiagDuplicateKey,
			"hotkey %q bound to multiple commands: %s", key, fmt.Sprint(names))
	}

	return result
}

// computeConflicts groups bound commands by key, keeping only keys bound
// more than once. The per-key command order follows the default map
// iteration of the bindings, then sorts lexicographically for stable
// reporting.
func computeConflicts(hotkeys map[string]string) map[string][]string {
	byKey := make(map[string][]string)
	for name, key := range hotkeys {
		byKey[key] = append(byKey[key], name)
	}
	conflicts := make(map[string][]string)
	for key, names := range byKey {
		if len(names) > 1 {
			sort.Strings(names)
			conflicts[key] = names
		}
	}
	return conflicts
}
