package treesitter

import (
	"github.com/panbanda/paramlint/pkg/ast"
	"github.com/panbanda/paramlint/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// nodeKinds maps tree-sitter-java node types to ast kinds. Anything not
// listed becomes ast.KindOther.
var nodeKinds = map[string]ast.Kind{
	"program":                         ast.KindCompilationUnit,
	"class_declaration":               ast.KindClass,
	"enum_declaration":                ast.KindClass,
	"record_declaration":              ast.KindClass,
	"interface_declaration":           ast.KindInterface,
	"annotation_type_declaration":     ast.KindInterface,
	"class_body":                      ast.KindClassBody,
	"enum_body":                       ast.KindClassBody,
	"interface_body":                  ast.KindInterfaceBody,
	"annotation_type_body":            ast.KindInterfaceBody,
	"method_declaration":              ast.KindMethod,
	"constructor_declaration":         ast.KindConstructor,
	"compact_constructor_declaration": ast.KindConstructor,
	"lambda_expression":               ast.KindLambda,
	"formal_parameters":               ast.KindParameters,
	"inferred_parameters":             ast.KindParameters,
	"formal_parameter":                ast.KindParameter,
	"spread_parameter":                ast.KindParameter,
	"catch_formal_parameter":          ast.KindParameter,
	"catch_clause":                    ast.KindCatchClause,
	"modifiers":                       ast.KindModifiers,
	"annotation":                      ast.KindAnnotation,
	"marker_annotation":               ast.KindAnnotation,
	"block":                           ast.KindBlock,
	"constructor_body":                ast.KindBlock,
	"local_variable_declaration":      ast.KindLocalVariable,
	"field_declaration":               ast.KindField,
	"constant_declaration":            ast.KindField,
	"variable_declarator":             ast.KindDeclarator,
	"enhanced_for_statement":          ast.KindForEach,
	"resource":                        ast.KindResource,
	"type_pattern":                    ast.KindPattern,
	"record_pattern_component":        ast.KindPattern,
	"instanceof_expression":           ast.KindPattern,
	"ERROR":                           ast.KindError,
}

// nameFields holds, per node type, the field whose identifier introduces a binding.
var nameFields = map[string]string{
	"formal_parameter":                    "name",
	"spread_parameter":                    "name",
	"catch_formal_parameter":              "name",
	"variable_declarator":                 "name",
	"resource":                            "name",
	"enhanced_for_statement":              "name",
	"method_declaration":                  "name",
	"constructor_declaration":             "name",
	"compact_constructor_declaration":     "name",
	"class_declaration":                   "name",
	"enum_declaration":                    "name",
	"record_declaration":                  "name",
	"interface_declaration":               "name",
	"annotation_type_declaration":         "name",
	"annotation_type_element_declaration": "name",
	"enum_constant":                       "name",
}

// memberFields holds fields whose identifier names a member rather than a variable.
var memberFields = map[string][]string{
	"field_access":       {"field"},
	"method_invocation":  {"name"},
	"annotation":         {"name"},
	"marker_annotation":  {"name"},
	"element_value_pair": {"key"},
}

// memberParents are node types whose identifier children never refer to variables.
var memberParents = map[string]bool{
	"scoped_identifier":  true,
	"labeled_statement":  true,
	"break_statement":    true,
	"continue_statement": true,
}

// needsModifiers lists owners that always carry a modifiers node, even an
// empty one, so the classifier sees a uniform shape.
var needsModifiers = map[string]bool{
	"method_declaration":              true,
	"constructor_declaration":         true,
	"compact_constructor_declaration": true,
}

type role uint8

const (
	roleReference role = iota
	roleName
	roleMember
	roleLambdaParam   // bare lambda parameter: x -> ...
	roleInferredParam // member of (x, y) -> ...
)

type span struct {
	start, end uint32
}

func spanOf(n *sitter.Node) span {
	return span{start: n.StartByte(), end: n.EndByte()}
}

// Convert builds an ast.Tree from a tree-sitter parse result.
func Convert(result *parser.ParseResult) *ast.Tree {
	c := &converter{
		b:      ast.NewBuilder(result.Path),
		source: result.Source,
		path:   result.Path,
	}
	if result.Tree != nil {
		c.convert(result.Tree.RootNode())
	}
	return c.b.Tree()
}

type converter struct {
	b      *ast.Builder
	source []byte
	path   string
}

func (c *converter) pos(n *sitter.Node) ast.Position {
	p := n.StartPoint()
	return ast.Position{
		File:   c.path,
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
		Offset: int(n.StartByte()),
	}
}

func (c *converter) convert(node *sitter.Node) {
	nodeType := node.Type()
	kind, ok := nodeKinds[nodeType]
	if !ok {
		kind = ast.KindOther
	}

	text := ""
	if node.ChildCount() == 0 {
		text = parser.GetNodeText(node, c.source)
	}
	c.b.Open(kind, text, c.pos(node))
	defer c.b.Close()

	if needsModifiers[nodeType] && !hasChildOfType(node, "modifiers") {
		c.b.Leaf(ast.KindModifiers, "", c.pos(node))
	}

	roles := childRoles(node, nodeType)
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.IsMissing() {
			c.b.Leaf(ast.KindError, "", c.pos(child))
			continue
		}
		if !child.IsNamed() {
			if nodeType == "modifiers" {
				c.keyword(child)
			}
			continue
		}
		switch child.Type() {
		case "line_comment", "block_comment":
			continue
		case "identifier":
			c.identifier(child, nodeType, roles)
			continue
		}
		c.convert(child)
	}
}

func (c *converter) keyword(node *sitter.Node) {
	text := parser.GetNodeText(node, c.source)
	if node.Type() == "abstract" {
		c.b.Leaf(ast.KindAbstract, text, c.pos(node))
		return
	}
	c.b.Leaf(ast.KindModifier, text, c.pos(node))
}

func (c *converter) identifier(node *sitter.Node, parentType string, roles map[span]role) {
	pos := c.pos(node)
	text := parser.GetNodeText(node, c.source)

	r, ok := roles[spanOf(node)]
	if !ok {
		switch {
		case memberParents[parentType]:
			r = roleMember
		case parentType == "inferred_parameters":
			r = roleInferredParam
		default:
			r = roleReference
		}
	}

	switch r {
	case roleName:
		c.b.Leaf(ast.KindName, text, pos)
	case roleMember:
		c.b.Leaf(ast.KindMember, text, pos)
	case roleLambdaParam:
		c.b.Open(ast.KindParameters, "", pos)
		c.b.Open(ast.KindParameter, "", pos)
		c.b.Leaf(ast.KindName, text, pos)
		c.b.Close()
		c.b.Close()
	case roleInferredParam:
		c.b.Open(ast.KindParameter, "", pos)
		c.b.Leaf(ast.KindName, text, pos)
		c.b.Close()
	default:
		c.b.Leaf(ast.KindIdentifier, text, pos)
	}
}

// childRoles classifies the identifier children of node that sit in a
// field with a fixed meaning.
func childRoles(node *sitter.Node, nodeType string) map[span]role {
	roles := make(map[span]role)
	if field, ok := nameFields[nodeType]; ok {
		if n := node.ChildByFieldName(field); n != nil {
			roles[spanOf(n)] = roleName
		}
	}
	for _, field := range memberFields[nodeType] {
		if n := node.ChildByFieldName(field); n != nil {
			roles[spanOf(n)] = roleMember
		}
	}

	switch nodeType {
	case "type_pattern", "record_pattern_component":
		for i := range int(node.ChildCount()) {
			if child := node.Child(i); child != nil && child.Type() == "identifier" {
				roles[spanOf(child)] = roleName
			}
		}
	case "instanceof_expression":
		left := node.ChildByFieldName("left")
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			if child == nil || child.Type() != "identifier" {
				continue
			}
			if left == nil || spanOf(child) != spanOf(left) {
				roles[spanOf(child)] = roleName
			}
		}
	case "lambda_expression":
		if p := node.ChildByFieldName("parameters"); p != nil && p.Type() == "identifier" {
			roles[spanOf(p)] = roleLambdaParam
		}
	case "method_reference":
		afterColons := false
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if child.Type() == "::" {
				afterColons = true
				continue
			}
			if afterColons && child.Type() == "identifier" {
				roles[spanOf(child)] = roleMember
			}
		}
	}
	return roles
}

func hasChildOfType(node *sitter.Node, nodeType string) bool {
	for i := range int(node.ChildCount()) {
		if child := node.Child(i); child != nil && child.Type() == nodeType {
			return true
		}
	}
	return false
}
