package ast

// Visitor is called for each node; returning false skips the node's children.
type Visitor func(n *Node) bool

// Walk traverses the tree depth-first in source order.
func Walk(n *Node, visit Visitor) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// WalkScope traverses n without descending into nested function or class
// definitions, which run in their own scope.
func WalkScope(n *Node, visit Visitor) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		Walk(c, func(m *Node) bool {
			if m.Kind == KindFunction || m.Kind == KindClass {
				return false
			}
			return visit(m)
		})
	}
}

// Count returns the number of nodes of the given kind under n, including n.
func Count(n *Node, kind Kind) int {
	total := 0
	Walk(n, func(m *Node) bool {
		if m.Kind == kind {
			total++
		}
		return true
	})
	return total
}

// Functions returns every function definition in declaration order.
func (t *Tree) Functions() []*Node {
	var fns []*Node
	Walk(t.Root, func(n *Node) bool {
		if n.Kind == KindFunction {
			fns = append(fns, n)
		}
		return true
	})
	return fns
}
