package ast

// Builder constructs a Tree in pre-order. Every Open must be matched by a
// Close; Tree closes anything left open.
type Builder struct {
	tree  *Tree
	stack []NodeID
}

// NewBuilder starts a tree for the given file.
func NewBuilder(path string) *Builder {
	return &Builder{tree: &Tree{path: path}}
}

// Open appends a node as the last child of the innermost open node and
// makes it the innermost open node.
func (b *Builder) Open(kind Kind, text string, pos Position) NodeID {
	id := NodeID(len(b.tree.nodes))
	parent := int32(noParent)
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		parent = int32(top)
		b.tree.nodes[top].children = append(b.tree.nodes[top].children, id)
	}
	if pos.File == "" {
		pos.File = b.tree.path
	}
	b.tree.nodes = append(b.tree.nodes, nodeData{
		kind:   kind,
		text:   text,
		pos:    pos,
		parent: parent,
	})
	b.stack = append(b.stack, id)
	return id
}

// Close finishes the innermost open node.
func (b *Builder) Close() {
	if len(b.stack) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.tree.nodes[top].end = NodeID(len(b.tree.nodes))
}

// Leaf appends a node without children.
func (b *Builder) Leaf(kind Kind, text string, pos Position) NodeID {
	id := b.Open(kind, text, pos)
	b.Close()
	return id
}

// Tree closes any open nodes and returns the finished tree.
func (b *Builder) Tree() *Tree {
	for len(b.stack) > 0 {
		b.Close()
	}
	return b.tree
}

// Shape describes a subtree declaratively.
type Shape struct {
	Kind     Kind
	Text     string
	Line     int
	Column   int
	Children []Shape
}

// S returns a shape of the given kind with children.
func S(kind Kind, children ...Shape) Shape {
	return Shape{Kind: kind, Children: children}
}

// Leaf returns a childless shape carrying text.
func Leaf(kind Kind, text string) Shape {
	return Shape{Kind: kind, Text: text}
}

// At returns a copy of s positioned at line and column.
func (s Shape) At(line, column int) Shape {
	s.Line = line
	s.Column = column
	return s
}

// Build materializes a shape into a Tree.
func Build(path string, root Shape) *Tree {
	b := NewBuilder(path)
	var add func(s Shape)
	add = func(s Shape) {
		b.Open(s.Kind, s.Text, Position{Line: s.Line, Column: s.Column})
		for _, c := range s.Children {
			add(c)
		}
		b.Close()
	}
	add(root)
	return b.Tree()
}
