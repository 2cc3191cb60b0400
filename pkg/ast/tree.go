package ast

// NodeID indexes a node within its Tree. IDs follow pre-order, so the
// descendants of a node occupy the range (id, end).
type NodeID uint32

const noParent = -1

type nodeData struct {
	kind     Kind
	text     string
	pos      Position
	parent   int32
	end      NodeID
	children []NodeID
}

// Tree owns all nodes of one compilation unit.
type Tree struct {
	path  string
	nodes []nodeData
}

// Path returns the file the tree was built from.
func (t *Tree) Path() string {
	return t.path
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root node, or the zero Node for an empty tree.
func (t *Tree) Root() Node {
	if t == nil || len(t.nodes) == 0 {
		return Node{}
	}
	return Node{tree: t, id: 0}
}

// Node returns the node with the given ID, or the zero Node if out of range.
func (t *Tree) Node(id NodeID) Node {
	if t == nil || int(id) >= len(t.nodes) {
		return Node{}
	}
	return Node{tree: t, id: id}
}

// FindAll returns every node of the given kind in source order.
func (t *Tree) FindAll(kind Kind) []Node {
	var result []Node
	for i := range t.nodes {
		if t.nodes[i].kind == kind {
			result = append(result, Node{tree: t, id: NodeID(i)})
		}
	}
	return result
}

// Node is a read-only handle to a node in a Tree. The zero value is a
// detached node with no parent and no children.
type Node struct {
	tree *Tree
	id   NodeID
}

func (n Node) data() *nodeData {
	return &n.tree.nodes[n.id]
}

// IsZero reports whether n is the detached zero node.
func (n Node) IsZero() bool {
	return n.tree == nil
}

// Tree returns the tree that owns n.
func (n Node) Tree() *Tree {
	return n.tree
}

// ID returns the node's index in its tree.
func (n Node) ID() NodeID {
	return n.id
}

// Kind returns the node kind.
func (n Node) Kind() Kind {
	if n.IsZero() {
		return KindInvalid
	}
	return n.data().kind
}

// Text returns the source text of leaf nodes; empty for interior nodes.
func (n Node) Text() string {
	if n.IsZero() {
		return ""
	}
	return n.data().text
}

// Pos returns the start position of the node.
func (n Node) Pos() Position {
	if n.IsZero() {
		return Position{}
	}
	return n.data().pos
}

// Parent returns the enclosing node. It reports false for the root and for
// detached nodes.
func (n Node) Parent() (Node, bool) {
	if n.IsZero() {
		return Node{}, false
	}
	p := n.data().parent
	if p == noParent {
		return Node{}, false
	}
	return Node{tree: n.tree, id: NodeID(p)}, true
}

// Children returns the direct children of n in source order.
func (n Node) Children() []Node {
	if n.IsZero() {
		return nil
	}
	ids := n.data().children
	result := make([]Node, len(ids))
	for i, id := range ids {
		result[i] = Node{tree: n.tree, id: id}
	}
	return result
}

// ChildCount returns the number of direct children.
func (n Node) ChildCount() int {
	if n.IsZero() {
		return 0
	}
	return len(n.data().children)
}

// FirstChild returns the first direct child of the given kind.
func (n Node) FirstChild(kind Kind) (Node, bool) {
	if n.IsZero() {
		return Node{}, false
	}
	for _, id := range n.data().children {
		if n.tree.nodes[id].kind == kind {
			return Node{tree: n.tree, id: id}, true
		}
	}
	return Node{}, false
}

// Span returns the half-open ID range [start, end) covered by n and its
// descendants.
func (n Node) Span() (start, end NodeID) {
	if n.IsZero() {
		return 0, 0
	}
	return n.id, n.data().end
}

// Contains reports whether other is n or one of its descendants.
func (n Node) Contains(other Node) bool {
	if n.IsZero() || other.tree != n.tree {
		return false
	}
	start, end := n.Span()
	return other.id >= start && other.id < end
}

// BranchContains reports whether any node beneath n has the given kind.
// The search is limited to n's own subtree.
func (n Node) BranchContains(kind Kind) bool {
	if n.IsZero() {
		return false
	}
	start, end := n.Span()
	for id := start + 1; id < end; id++ {
		if n.tree.nodes[id].kind == kind {
			return true
		}
	}
	return false
}

// InInterfaceBody reports whether the nearest enclosing type body of n is
// an interface body. A class body (including enum, record and anonymous
// class bodies) ends the search.
func (n Node) InInterfaceBody() bool {
	for cur, ok := n.Parent(); ok; cur, ok = cur.Parent() {
		if cur.Kind().IsTypeBody() {
			return cur.Kind() == KindInterfaceBody
		}
	}
	return false
}

// DeclaredName returns the first binding name in n's subtree.
func (n Node) DeclaredName() (Node, bool) {
	if n.IsZero() {
		return Node{}, false
	}
	start, end := n.Span()
	for id := start; id < end; id++ {
		if n.tree.nodes[id].kind == KindName {
			return Node{tree: n.tree, id: id}, true
		}
	}
	return Node{}, false
}
