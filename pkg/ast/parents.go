package ast

// Parents is the parent relation of a tree, kept as a lookup table beside
// the nodes. It never owns the nodes it points at.
type Parents struct {
	of map[Node]Node
}

// LinkParents records the parent of every node reachable from root.
func LinkParents(root Node) *Parents {
	p := &Parents{of: map[Node]Node{}}
	p.link(root)
	return p
}

func (p *Parents) link(n Node) {
	for _, c := range Children(n) {
		p.of[c] = n
		p.link(c)
	}
}

// Of returns the parent of n, or nil for the root and for unknown nodes.
func (p *Parents) Of(n Node) Node {
	if p == nil {
		return nil
	}
	return p.of[n]
}

// Set records parent as the parent of child.
func (p *Parents) Set(child, parent Node) {
	p.of[child] = parent
}

// Wrap records that wrapper has taken old's place in the tree, with old now
// its only child.
func (p *Parents) Wrap(old, wrapper Node) {
	if parent, ok := p.of[old]; ok {
		p.of[wrapper] = parent
	}
	p.of[old] = wrapper
}

// IsAssignmentTarget reports whether expr is the left operand of an `=`.
func (p *Parents) IsAssignmentTarget(expr Expression) bool {
	bin, ok := p.Of(expr).(*Binary)
	return ok && bin.IsAssignment() && bin.Left == expr
}

// Len returns the number of linked child nodes.
func (p *Parents) Len() int {
	return len(p.of)
}
