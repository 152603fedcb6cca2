// Package hierarchy turns the flat command list into the forest the host
// renders. Lifecycle-shaped triggers ("command_success:Build") define the
// parent/child edges; everything else is ignored here.
package hierarchy

import (
	"github.com/orchestra-dev/podium/pkg/domain"
)

// Build expands the lifecycle-trigger relationships between defs into a
// forest of CommandNode trees.
//
// A command reachable from two distinct parents is expanded twice, into two
// independent occurrences each carrying its own subtree: the duplication is
// intentional, since each occurrence sits on a different provenance path.
// A command re-encountered on the same path is a cycle; the branch is
// truncated at the repeat and a diagnostic recorded. Roots are the commands
// never named as a lifecycle target, in definition order, so the result is
// deterministic for a given input.
//
// Build never fails: malformed references degrade to diagnostics.
func Build(defs []domain.CommandDefinition) ([]*domain.CommandNode, []domain.Diagnostic) {
	byName := make(map[string]domain.CommandDefinition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		if _, dup := byName[def.Name]; dup {
			continue
		}
		byName[def.Name] = def
		order = append(order, def.Name)
	}

	var diags []domain.Diagnostic

	// Adjacency: parent name -> child names, in definition order of the
	// children (each child contributes edges as its triggers are scanned).
	adjacency := make(map[string][]string, len(byName))
	isChild := make(map[string]bool)
	for _, name := range order {
		for _, trigger := range byName[name].Triggers {
			_, parent, ok := domain.ParseLifecycleTrigger(trigger)
			if !ok {
				continue
			}
			if _, known := byName[parent]; !known {
				diags = append(diags, domain.Diagnostic{
					Kind:    domain.DiagUnknownParent,
					Message: "trigger '" + trigger + "' on command '" + name + "' references unknown command '" + parent + "'",
				})
				continue
			}
			adjacency[parent] = append(adjacency[parent], name)
			isChild[name] = true
		}
	}

	var roots []*domain.CommandNode
	path := make(map[string]bool)
	reached := make(map[string]bool)
	for _, name := range order {
		if isChild[name] {
			continue
		}
		node, nodeDiags := expand(name, byName, adjacency, path, reached)
		diags = append(diags, nodeDiags...)
		roots = append(roots, node)
	}

	// A cycle with no external parent leaves its members without a root.
	// Promote the first unreached member (definition order) to a root; the
	// expansion re-encounters it on-path and truncates there.
	for _, name := range order {
		if reached[name] {
			continue
		}
		node, nodeDiags := expand(name, byName, adjacency, path, reached)
		diags = append(diags, nodeDiags...)
		roots = append(roots, node)
	}

	return roots, diags
}

// expand builds the occurrence of name reached via the current path. The
// path set holds exactly the ancestors of this occurrence; entries are
// removed on backtrack so sibling branches each see their own path.
func expand(name string, byName map[string]domain.CommandDefinition, adjacency map[string][]string, path map[string]bool, reached map[string]bool) (*domain.CommandNode, []domain.Diagnostic) {
	node := &domain.CommandNode{Def: byName[name]}
	reached[name] = true

	var diags []domain.Diagnostic
	path[name] = true
	for _, child := range adjacency[name] {
		if path[child] {
			diags = append(diags, domain.Diagnostic{
				Kind:    domain.DiagCycle,
				Message: "cycle detected: '" + child + "' already on path under '" + name + "', branch truncated",
			})
			continue
		}
		childNode, childDiags := expand(child, byName, adjacency, path, reached)
		diags = append(diags, childDiags...)
		node.Children = append(node.Children, childNode)
	}
	delete(path, name)

	return node, diags
}
