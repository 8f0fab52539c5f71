package ast

// Visitor is called for each node during a walk. Returning false skips the
// node's children.
type Visitor func(n *Node) bool

// Walk traverses the tree in depth-first source order.
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

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}

// Find returns all nodes of the given kind in source order.
func Find(n *Node, kind Kind) []*Node {
	var found []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == kind {
			found = append(found, c)
		}
		return true
	})
	return found
}

// Contains reports whether any node below n (n included) has the given kind.
func Contains(n *Node, kind Kind) bool {
	found := false
	Walk(n, func(c *Node) bool {
		if found {
			return false
		}
		if c.Kind == kind {
			found = true
			return false
		}
		return true
	})
	return found
}
