package plan

import "github.com/src-d/go-crossquery/query"

// UnaryNode is a node with one child.
type UnaryNode struct {
	Child query.Node
}

// Schema implements the Node interface.
func (n UnaryNode) Schema() query.Schema {
	return n.Child.Schema()
}

// Children implements the Node interface.
func (n UnaryNode) Children() []query.Node {
	return []query.Node{n.Child}
}

// Backend implements the Node interface.
func (n UnaryNode) Backend() string {
	return n.Child.Backend()
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	left  query.Node
	right query.Node
}

// Left returns the left child.
func (n BinaryNode) Left() query.Node { return n.left }

// Right returns the right child.
func (n BinaryNode) Right() query.Node { return n.right }

// Children implements the Node interface.
func (n BinaryNode) Children() []query.Node {
	return []query.Node{n.left, n.right}
}

// Backend implements the Node interface.
func (n BinaryNode) Backend() string {
	l, r := n.left.Backend(), n.right.Backend()
	if l != r {
		return ""
	}
	return l
}

// Inspect traverses the plan in depth-first order. It calls f on every
// node, and descends into children only while f returns true.
func Inspect(node query.Node, f func(query.Node) bool) {
	if !f(node) {
		return
	}
	for _, child := range node.Children() {
		Inspect(child, f)
	}
}

// TransformUp applies f to every node of the tree, bottom-up, returning
// a new tree. Untouched subtrees are shared with the original.
func TransformUp(node query.Node, f func(query.Node) (query.Node, error)) (query.Node, error) {
	children := node.Children()
	if len(children) > 0 {
		newChildren := make([]query.Node, len(children))
		var changed bool
		for i, child := range children {
			nc, err := TransformUp(child, f)
			if err != nil {
				return nil, err
			}
			if nc != child {
				changed = true
			}
			newChildren[i] = nc
		}
		if changed {
			var err error
			node, err = node.WithChildren(newChildren...)
			if err != nil {
				return nil, err
			}
		}
	}

	return f(node)
}
