package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// class A { abstract void f(@Deprecated int x); }
func sampleTree() *Tree {
	return Build("A.java", S(KindCompilationUnit,
		S(KindClass,
			Leaf(KindName, "A"),
			S(KindClassBody,
				S(KindMethod,
					S(KindModifiers,
						S(KindAnnotation, Leaf(KindMember, "Deprecated")),
						Leaf(KindAbstract, "abstract"),
					),
					Leaf(KindName, "f"),
					S(KindParameters,
						S(KindParameter,
							Leaf(KindOther, "int"),
							Leaf(KindName, "x").At(1, 30),
						),
					),
				),
			),
		),
	))
}

func TestBuildPreOrder(t *testing.T) {
	tree := sampleTree()

	assert.Equal(t, "A.java", tree.Path())
	assert.Equal(t, 14, tree.Len())

	root := tree.Root()
	assert.Equal(t, KindCompilationUnit, root.Kind())
	_, ok := root.Parent()
	assert.False(t, ok, "root has no parent")

	start, end := root.Span()
	assert.Equal(t, NodeID(0), start)
	assert.Equal(t, NodeID(tree.Len()), end)
}

func TestParentAndChildren(t *testing.T) {
	tree := sampleTree()
	params := tree.FindAll(KindParameter)
	require.Len(t, params, 1)

	parent, ok := params[0].Parent()
	require.True(t, ok)
	assert.Equal(t, KindParameters, parent.Kind())

	owner, ok := parent.Parent()
	require.True(t, ok)
	assert.Equal(t, KindMethod, owner.Kind())
	assert.Equal(t, 3, owner.ChildCount())

	mods, ok := owner.FirstChild(KindModifiers)
	require.True(t, ok)
	assert.True(t, mods.BranchContains(KindAbstract))
	assert.True(t, mods.BranchContains(KindMember), "annotation names are nested beneath modifiers")
	assert.False(t, mods.BranchContains(KindModifiers), "search excludes the node itself")

	_, ok = owner.FirstChild(KindBlock)
	assert.False(t, ok)
}

func TestDeclaredName(t *testing.T) {
	tree := sampleTree()
	param := tree.FindAll(KindParameter)[0]

	name, ok := param.DeclaredName()
	require.True(t, ok)
	assert.Equal(t, "x", name.Text())
	assert.Equal(t, Position{File: "A.java", Line: 1, Column: 30}, name.Pos())
}

func TestContains(t *testing.T) {
	tree := sampleTree()
	method := tree.FindAll(KindMethod)[0]
	param := tree.FindAll(KindParameter)[0]
	class := tree.FindAll(KindClass)[0]

	assert.True(t, method.Contains(param))
	assert.True(t, method.Contains(method))
	assert.False(t, param.Contains(method))

	className, _ := class.FirstChild(KindName)
	assert.False(t, method.Contains(className))

	other := sampleTree()
	assert.False(t, method.Contains(other.FindAll(KindParameter)[0]), "nodes of different trees")
}

func TestInInterfaceBody(t *testing.T) {
	tree := Build("I.java", S(KindCompilationUnit,
		S(KindInterface,
			S(KindInterfaceBody,
				S(KindMethod,
					S(KindModifiers),
					S(KindParameters, S(KindParameter, Leaf(KindName, "a"))),
					S(KindBlock,
						S(KindLocalVariable,
							S(KindDeclarator,
								Leaf(KindName, "r"),
								S(KindOther,
									S(KindClassBody,
										S(KindMethod,
											S(KindModifiers),
											S(KindParameters, S(KindParameter, Leaf(KindName, "b"))),
										),
									),
								),
							),
						),
					),
				),
			),
		),
	))

	params := tree.FindAll(KindParameter)
	require.Len(t, params, 2)
	assert.True(t, params[0].InInterfaceBody())
	assert.False(t, params[1].InInterfaceBody(), "anonymous class body ends the search")
}

func TestZeroNode(t *testing.T) {
	var n Node

	assert.True(t, n.IsZero())
	assert.Equal(t, KindInvalid, n.Kind())
	assert.Empty(t, n.Text())
	assert.Nil(t, n.Children())
	assert.Zero(t, n.ChildCount())
	assert.False(t, n.BranchContains(KindAbstract))
	assert.False(t, n.InInterfaceBody())

	_, ok := n.Parent()
	assert.False(t, ok)
	_, ok = n.FirstChild(KindModifiers)
	assert.False(t, ok)
	_, ok = n.DeclaredName()
	assert.False(t, ok)
}

func TestBuilderClosesOpenNodes(t *testing.T) {
	b := NewBuilder("B.java")
	b.Open(KindCompilationUnit, "", Position{})
	b.Open(KindClass, "", Position{})
	b.Leaf(KindName, "B", Position{Line: 1, Column: 7})
	tree := b.Tree()
	assert.Equal(t, 3, tree.Len())

	class := tree.Node(1)
	start, end := class.Span()
	assert.Equal(t, NodeID(1), start)
	assert.Equal(t, NodeID(3), end)
	assert.Equal(t, "B.java", tree.Node(2).Pos().File)
	assert.True(t, tree.Node(99).IsZero())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "parameters", KindParameters.String())
	assert.Equal(t, "catch_clause", KindCatchClause.String())
	assert.Equal(t, "unknown", Kind(250).String())
	assert.True(t, KindInterfaceBody.IsTypeBody())
	assert.False(t, KindBlock.IsTypeBody())
	assert.True(t, KindLambda.IsScopeOwner())
	assert.False(t, KindClass.IsScopeOwner())
}
