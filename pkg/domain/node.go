package domain

// CommandNode is one occurrence of a command in the hierarchy forest.
//
// The same command may appear as several distinct CommandNode instances when
// it is reachable from more than one parent. That duplication is deliberate:
// each occurrence sits on a different provenance path and is presented (and
// updated) independently by the host view.
type CommandNode struct {
	Def      CommandDefinition
	Children []*CommandNode
}

// Name returns the underlying command name.
func (n *CommandNode) Name() string {
	return n.Def.Name
}

// Walk visits the node and its subtree depth-first, in child order.
// The callback receives the depth relative to the receiver (0 for itself).
func (n *CommandNode) Walk(fn func(node *CommandNode, depth int)) {
	n.walk(fn, 0)
}

func (n *CommandNode) walk(fn func(node *CommandNode, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// WalkForest visits every node of every tree depth-first, in root order.
func WalkForest(roots []*CommandNode, fn func(node *CommandNode, depth int)) {
	for _, r := range roots {
		r.Walk(fn)
	}
}
