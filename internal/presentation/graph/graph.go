// Package graph renders the command forest for humans: an indented text
// tree for terminals and Mermaid flowchart syntax for docs and dashboards.
package graph

import (
	"fmt"
	"strings"

	"github.com/orchestra-dev/podium/pkg/domain"
)

// Overlay carries dynamic state to visualize on top of the static forest.
type Overlay struct {
	Running    []string
	Duplicates []string
}

// Tree renders the forest as an indented text tree. Duplicate occurrences
// are annotated so the fan-out is visible at a glance.
func Tree(forest []*domain.CommandNode, overlay *Overlay) string {
	var sb strings.Builder
	if overlay == nil {
		overlay = &Overlay{}
	}
	dup := toSet(overlay.Duplicates)
	running := toSet(overlay.Running)

	domain.WalkForest(forest, func(node *domain.CommandNode, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		if depth > 0 {
			sb.WriteString("└─ ")
		}
		sb.WriteString(node.Name())
		if dup[node.Name()] {
			sb.WriteString(" (duplicate)")
		}
		if running[node.Name()] {
			sb.WriteString(" ▶")
		}
		sb.WriteString("\n")
	})
	return sb.String()
}

// Mermaid produces flowchart syntax for the forest. Each edge means "the
// child runs after the parent finishes". Duplicate commands keep one Mermaid
// node per forest occurrence, matching how the hierarchy is displayed.
func Mermaid(forest []*domain.CommandNode, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	occurrence := 0
	var walk func(node *domain.CommandNode, parentID string)
	walk = func(node *domain.CommandNode, parentID string) {
		occurrence++
		id := fmt.Sprintf("%s_%d", sanitizeID(node.Name()), occurrence)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, node.Name()))
		if parentID != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))
		}
		for _, child := range node.Children {
			walk(child, id)
		}
	}
	for _, root := range forest {
		walk(root, "")
	}

	if overlay != nil && len(overlay.Running) > 0 {
		sb.WriteString("\n    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:2px,color:#000;\n")
		// Style every occurrence of a running command. Occurrence IDs are
		// regenerated by a second walk in the same order.
		runningSet := toSet(overlay.Running)
		occurrence = 0
		var mark func(node *domain.CommandNode)
		mark = func(node *domain.CommandNode) {
			occurrence++
			if runningSet[node.Name()] {
				sb.WriteString(fmt.Sprintf("    class %s_%d running;\n", sanitizeID(node.Name()), occurrence))
			}
			for _, child := range node.Children {
				mark(child)
			}
		}
		for _, root := range forest {
			mark(root)
		}
	}

	return sb.String()
}

func sanitizeID(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
