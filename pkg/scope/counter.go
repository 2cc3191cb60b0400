// Package scope counts lexical references to parameter bindings.
package scope

import (
	"errors"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/paramlint/pkg/ast"
)

var (
	// ErrForeignNode is returned for a declaration from a different tree.
	ErrForeignNode = errors.New("declaration does not belong to the indexed tree")
	// ErrNoScope is returned when the declaration has no method, constructor,
	// lambda or catch clause owning it.
	ErrNoScope = errors.New("declaration has no enclosing scope")
	// ErrNoName is returned when the declaration does not introduce a name.
	ErrNoName = errors.New("declaration has no name")
	// ErrMalformed is returned when the scope contains parse errors.
	ErrMalformed = errors.New("scope contains syntax errors")
)

// Counter resolves references within a single tree. Building a Counter
// indexes every identifier by name; lookups after that only intersect
// bitmaps of node IDs. A Counter is read-only after construction and may be
// shared between goroutines.
type Counter struct {
	tree  *ast.Tree
	names map[string]*roaring.Bitmap
}

// NewCounter indexes the identifiers of tree.
func NewCounter(tree *ast.Tree) *Counter {
	c := &Counter{
		tree:  tree,
		names: make(map[string]*roaring.Bitmap),
	}
	for _, ident := range tree.FindAll(ast.KindIdentifier) {
		bm, ok := c.names[ident.Text()]
		if !ok {
			bm = roaring.New()
			c.names[ident.Text()] = bm
		}
		bm.Add(uint32(ident.ID()))
	}
	return c
}

// CountReferences returns the number of references to the binding
// introduced by decl within its own scope.
func (c *Counter) CountReferences(decl ast.Node) (int, error) {
	refs, err := c.resolve(decl)
	if err != nil {
		return 0, err
	}
	return int(refs.GetCardinality()), nil
}

// References returns the identifier nodes referring to the binding
// introduced by decl, in source order.
func (c *Counter) References(decl ast.Node) ([]ast.Node, error) {
	refs, err := c.resolve(decl)
	if err != nil {
		return nil, err
	}
	result := make([]ast.Node, 0, refs.GetCardinality())
	it := refs.Iterator()
	for it.HasNext() {
		result = append(result, c.tree.Node(ast.NodeID(it.Next())))
	}
	return result, nil
}

func (c *Counter) resolve(decl ast.Node) (*roaring.Bitmap, error) {
	if decl.IsZero() || decl.Tree() != c.tree {
		return nil, ErrForeignNode
	}
	owner, err := Owner(decl)
	if err != nil {
		return nil, err
	}
	nameNode, ok := decl.DeclaredName()
	if !ok {
		return nil, ErrNoName
	}
	if owner.BranchContains(ast.KindError) {
		return nil, ErrMalformed
	}

	name := nameNode.Text()
	refs := roaring.New()
	if all, ok := c.names[name]; ok {
		start, end := owner.Span()
		refs.AddRange(uint64(start), uint64(end))
		refs.And(all)
	}
	if refs.IsEmpty() {
		return refs, nil
	}

	for _, r := range shadowedRanges(owner, name) {
		refs.RemoveRange(uint64(r.start), uint64(r.end))
	}
	return refs, nil
}

// Owner returns the node whose subtree is the scope of decl: the method,
// constructor or lambda for a formal parameter, or the catch clause for an
// exception parameter.
func Owner(decl ast.Node) (ast.Node, error) {
	parent, ok := decl.Parent()
	if !ok {
		return ast.Node{}, ErrNoScope
	}
	switch parent.Kind() {
	case ast.KindCatchClause:
		return parent, nil
	case ast.KindParameters:
		owner, ok := parent.Parent()
		if ok && owner.Kind().IsScopeOwner() {
			return owner, nil
		}
	}
	return ast.Node{}, ErrNoScope
}

type idRange struct {
	start, end ast.NodeID
}

// shadowedRanges returns the parts of owner's subtree where name is
// rebound by a nested declaration.
func shadowedRanges(owner ast.Node, name string) []idRange {
	var ranges []idRange
	tree := owner.Tree()
	start, end := owner.Span()

	for id := start + 1; id < end; id++ {
		n := tree.Node(id)
		switch k := n.Kind(); {
		case k.IsScopeOwner():
			if declares(ownParameters(n), name) {
				ranges = append(ranges, span(n))
			}
		case k == ast.KindClassBody:
			for _, member := range n.Children() {
				if member.Kind() == ast.KindField && declares(member.Children(), name) {
					ranges = append(ranges, span(n))
					break
				}
			}
		case k == ast.KindDeclarator:
			if !declares([]ast.Node{n}, name) {
				continue
			}
			local, ok := n.Parent()
			if !ok || local.Kind() != ast.KindLocalVariable {
				continue
			}
			scope, ok := local.Parent()
			if !ok {
				continue
			}
			_, scopeEnd := scope.Span()
			ranges = append(ranges, idRange{start: id, end: scopeEnd})
		case k == ast.KindForEach:
			if binds(n, name) {
				ranges = append(ranges, span(n))
			}
		case k == ast.KindResource:
			if binds(n, name) {
				ranges = append(ranges, idRange{start: id, end: resourceScopeEnd(n)})
			}
		case k == ast.KindPattern:
			if binds(n, name) {
				ranges = append(ranges, span(enclosingStatement(n)))
			}
		}
	}
	return ranges
}

func span(n ast.Node) idRange {
	start, end := n.Span()
	return idRange{start: start, end: end}
}

// ownParameters returns the declarations a scope owner introduces.
func ownParameters(owner ast.Node) []ast.Node {
	if owner.Kind() == ast.KindCatchClause {
		if param, ok := owner.FirstChild(ast.KindParameter); ok {
			return []ast.Node{param}
		}
		return nil
	}
	if params, ok := owner.FirstChild(ast.KindParameters); ok {
		return params.Children()
	}
	return nil
}

// declares reports whether any of nodes binds name directly.
func declares(nodes []ast.Node, name string) bool {
	for _, n := range nodes {
		switch n.Kind() {
		case ast.KindParameter, ast.KindDeclarator:
			if decl, ok := n.DeclaredName(); ok && decl.Text() == name {
				return true
			}
		}
	}
	return false
}

// binds reports whether n has a direct name child equal to name. Only
// direct children count so names inside initializers or operands are not
// mistaken for the binding.
func binds(n ast.Node, name string) bool {
	decl, ok := n.FirstChild(ast.KindName)
	return ok && decl.Text() == name
}

// resourceScopeEnd returns the end of the try block guarded by a
// try-with-resources resource. The resource variable is visible in the
// later resources and the try block, but not in catch or finally clauses.
func resourceScopeEnd(resource ast.Node) ast.NodeID {
	_, end := resource.Span()
	list, ok := resource.Parent()
	if !ok {
		return end
	}
	stmt, ok := list.Parent()
	if !ok {
		return end
	}
	if body, ok := stmt.FirstChild(ast.KindBlock); ok {
		_, end = body.Span()
	}
	return end
}

// enclosingStatement returns the outermost ancestor of n that is still
// below the nearest block, lambda or type body. A pattern variable is
// treated as visible throughout that statement.
func enclosingStatement(n ast.Node) ast.Node {
	cur := n
	for {
		parent, ok := cur.Parent()
		if !ok {
			return cur
		}
		switch k := parent.Kind(); {
		case k == ast.KindBlock, k == ast.KindLambda, k.IsTypeBody():
			return cur
		}
		cur = parent
	}
}
