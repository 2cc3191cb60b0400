// Package ast provides a small, immutable syntax tree for Java compilation
// units, decoupled from the parser that produced it.
//
// A Tree owns every node in a flat arena laid out in pre-order, so each
// subtree occupies a contiguous range of node IDs. Nodes are lightweight
// handles into that arena; parent links are indexes used for upward lookups
// only and never keep anything alive.
//
// The Provider interface abstracts the parsing mechanism. The tree-sitter
// implementation lives in the treesitter subpackage.
//
// Usage:
//
//	provider := treesitter.New()
//	defer provider.Close()
//
//	tree, err := provider.Parse("Main.java")
//	if err != nil {
//	    return err
//	}
//
//	for _, param := range tree.FindAll(ast.KindParameter) {
//	    name, _ := param.DeclaredName()
//	    fmt.Printf("%s at line %d\n", name.Text(), name.Pos().Line)
//	}
package ast
