package domain

import (
	"strings"
)

// TriggerKind classifies what ultimately caused a run.
type TriggerKind string

const (
	TriggerManual    TriggerKind = "manual"
	TriggerFile      TriggerKind = "file"
	TriggerLifecycle TriggerKind = "lifecycle"
)

// Display constants for formatting trigger chains.
const (
	// ChainSeparator joins chain elements for display.
	ChainSeparator = " → "

	// minFormatWidth is the floor below which FormatChain refuses to
	// truncate: narrower widths would leave a degenerate remainder after
	// reserving room for the ellipsis.
	minFormatWidth = 10
)

// DefaultFileMarker is the substring that identifies a filesystem-origin
// trigger identifier when no custom marker is configured.
const DefaultFileMarker = "file"

// TriggerSource records why a run started: the ordered chain of trigger
// identifiers from root cause to immediate cause. An empty chain means the
// run was started manually. Frozen once attached to a completed run.
type TriggerSource struct {
	// Name is the immediate cause: the last identifier in the chain, or
	// "manual" for an empty chain.
	Name string

	// Kind classifies the immediate cause.
	Kind TriggerKind

	// Chain is the full provenance, root cause first.
	Chain []string
}

// ClassifyChain derives a TriggerSource from an engine trigger chain.
// Only the last element decides the kind: a lifecycle-shaped identifier is
// a lifecycle trigger, an identifier containing fileMarker (case-insensitive)
// is a file trigger, anything else counts as manual. Pass "" for fileMarker
// to use DefaultFileMarker.
func ClassifyChain(chain []string, fileMarker string) TriggerSource {
	if len(chain) == 0 {
		return TriggerSource{Name: "manual", Kind: TriggerManual}
	}
	if fileMarker == "" {
		fileMarker = DefaultFileMarker
	}

	last := chain[len(chain)-1]
	kind := TriggerManual
	switch {
	case isLifecycleEvent(last):
		kind = TriggerLifecycle
	case strings.Contains(strings.ToLower(last), strings.ToLower(fileMarker)):
		kind = TriggerFile
	}

	return TriggerSource{Name: last, Kind: kind, Chain: chain}
}

func isLifecycleEvent(trigger string) bool {
	_, _, ok := ParseLifecycleTrigger(trigger)
	return ok
}

// Summary returns a short human-readable description of the trigger source.
func (t TriggerSource) Summary() string {
	if len(t.Chain) == 0 {
		return "Ran manually"
	}
	switch t.Kind {
	case TriggerFile:
		return "Ran automatically (file change)"
	case TriggerLifecycle:
		return "Ran automatically (triggered by another command)"
	default:
		return "Ran automatically"
	}
}

// FormatChain renders the chain joined by sep, bounded to maxWidth runes.
// When the joined chain exceeds maxWidth it is truncated from the left and
// prefixed with an ellipsis, keeping the rightmost (most recent) portion.
// Widths below the floor skip truncation entirely and return the full
// string. Pass "" for sep to use ChainSeparator.
func (t TriggerSource) FormatChain(sep string, maxWidth int) string {
	if len(t.Chain) == 0 {
		return "manual"
	}
	if sep == "" {
		sep = ChainSeparator
	}

	full := strings.Join(t.Chain, sep)
	if maxWidth < minFormatWidth {
		return full
	}

	runes := []rune(full)
	if len(runes) <= maxWidth {
		return full
	}

	// Reserve room for the ellipsis marker and separator.
	keep := maxWidth - 4
	return "..." + sep + string(runes[len(runes)-keep:])
}
