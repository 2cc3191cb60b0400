package unusedparam

import (
	"testing"

	"github.com/panbanda/paramlint/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// param builds a parameter named x.
func param() ast.Shape {
	return ast.S(ast.KindParameter, ast.Leaf(ast.KindOther, "int"), ast.Leaf(ast.KindName, "x").At(1, 12))
}

func method(mods ast.Shape) ast.Shape {
	return ast.S(ast.KindMethod, mods, ast.Leaf(ast.KindName, "f"), ast.S(ast.KindParameters, param()))
}

// inBody wraps member in a type declaration of the given body kind.
func inBody(body ast.Kind, member ast.Shape) ast.Shape {
	typeKind := ast.KindClass
	if body == ast.KindInterfaceBody {
		typeKind = ast.KindInterface
	}
	return ast.S(ast.KindCompilationUnit,
		ast.S(typeKind, ast.Leaf(ast.KindName, "T"), ast.S(body, member)),
	)
}

func onlyParam(t *testing.T, tree *ast.Tree) ast.Node {
	t.Helper()
	params := tree.FindAll(ast.KindParameter)
	require.Len(t, params, 1)
	return params[0]
}

func TestMustCheckDecisionTable(t *testing.T) {
	tests := []struct {
		name string
		root ast.Shape
		want bool
	}{
		{
			name: "concrete method",
			root: inBody(ast.KindClassBody, method(ast.S(ast.KindModifiers))),
			want: true,
		},
		{
			name: "method with public modifier",
			root: inBody(ast.KindClassBody, method(ast.S(ast.KindModifiers, ast.Leaf(ast.KindModifier, "public")))),
			want: true,
		},
		{
			name: "abstract method",
			root: inBody(ast.KindClassBody, method(ast.S(ast.KindModifiers, ast.Leaf(ast.KindAbstract, "abstract")))),
			want: false,
		},
		{
			name: "abstract nested under annotation",
			root: inBody(ast.KindClassBody, method(ast.S(ast.KindModifiers,
				ast.S(ast.KindAnnotation, ast.Leaf(ast.KindAbstract, "abstract")),
			))),
			want: false,
		},
		{
			name: "method without modifiers node",
			root: inBody(ast.KindClassBody, ast.S(ast.KindMethod, ast.Leaf(ast.KindName, "f"), ast.S(ast.KindParameters, param()))),
			want: false,
		},
		{
			name: "interface method",
			root: inBody(ast.KindInterfaceBody, method(ast.S(ast.KindModifiers))),
			want: false,
		},
		{
			name: "interface default method",
			root: inBody(ast.KindInterfaceBody, method(ast.S(ast.KindModifiers, ast.Leaf(ast.KindModifier, "default")))),
			want: false,
		},
		{
			name: "constructor",
			root: inBody(ast.KindClassBody, ast.S(ast.KindConstructor, ast.S(ast.KindModifiers), ast.S(ast.KindParameters, param()))),
			want: true,
		},
		{
			name: "constructor with abstract marker is still checked",
			root: inBody(ast.KindClassBody, ast.S(ast.KindConstructor,
				ast.S(ast.KindModifiers, ast.Leaf(ast.KindAbstract, "abstract")),
				ast.S(ast.KindParameters, param()),
			)),
			want: true,
		},
		{
			name: "lambda parameter",
			root: ast.S(ast.KindLambda, ast.S(ast.KindParameters, param())),
			want: false,
		},
		{
			name: "parameters without owner",
			root: ast.S(ast.KindParameters, param()),
			want: false,
		},
		{
			name: "detached parameter",
			root: param(),
			want: false,
		},
		{
			name: "parameter under unrelated parent",
			root: ast.S(ast.KindBlock, param()),
			want: false,
		},
		{
			name: "record components",
			root: ast.S(ast.KindClass, ast.Leaf(ast.KindName, "R"), ast.S(ast.KindParameters, param())),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := onlyParam(t, ast.Build("T.java", tt.root))
			assert.Equal(t, tt.want, MustCheck(decl, DefaultConfig()))
			assert.Equal(t, tt.want, MustCheck(decl, Config{IgnoreCatchParameters: false}),
				"catch configuration must not affect non-catch parameters")
		})
	}
}

func TestMustCheckCatchParameter(t *testing.T) {
	tree := ast.Build("T.java", inBody(ast.KindClassBody, ast.S(ast.KindMethod,
		ast.S(ast.KindModifiers),
		ast.Leaf(ast.KindName, "f"),
		ast.S(ast.KindParameters),
		ast.S(ast.KindBlock,
			ast.S(ast.KindCatchClause, param(), ast.S(ast.KindBlock)),
		),
	)))
	decl := onlyParam(t, tree)

	assert.False(t, MustCheck(decl, Config{IgnoreCatchParameters: true}))
	assert.True(t, MustCheck(decl, Config{IgnoreCatchParameters: false}))
}

func TestMustCheckAnonymousClassInInterface(t *testing.T) {
	anon := ast.S(ast.KindClassBody, method(ast.S(ast.KindModifiers)))
	tree := ast.Build("T.java", inBody(ast.KindInterfaceBody, ast.S(ast.KindMethod,
		ast.S(ast.KindModifiers, ast.Leaf(ast.KindModifier, "default")),
		ast.Leaf(ast.KindName, "g"),
		ast.S(ast.KindParameters),
		ast.S(ast.KindBlock, ast.S(ast.KindOther, anon)),
	)))

	assert.True(t, MustCheck(onlyParam(t, tree), DefaultConfig()))
}

func TestMustCheckAbstractSearchScopedToModifiers(t *testing.T) {
	// An abstract member of a local class inside the body must not exempt
	// the enclosing method.
	local := ast.S(ast.KindClass,
		ast.S(ast.KindModifiers, ast.Leaf(ast.KindAbstract, "abstract")),
		ast.Leaf(ast.KindName, "Local"),
		ast.S(ast.KindClassBody),
	)
	tree := ast.Build("T.java", inBody(ast.KindClassBody, ast.S(ast.KindMethod,
		ast.S(ast.KindModifiers),
		ast.Leaf(ast.KindName, "f"),
		ast.S(ast.KindParameters, param()),
		ast.S(ast.KindBlock, local),
	)))

	assert.True(t, MustCheck(onlyParam(t, tree), DefaultConfig()))
}

func TestMustCheckNonParameter(t *testing.T) {
	tree := ast.Build("T.java", inBody(ast.KindClassBody, method(ast.S(ast.KindModifiers))))

	assert.False(t, MustCheck(tree.Root(), DefaultConfig()))
	assert.False(t, MustCheck(ast.Node{}, DefaultConfig()))
	for _, m := range tree.FindAll(ast.KindMethod) {
		assert.False(t, MustCheck(m, DefaultConfig()))
	}
}

func TestMustCheckIsPure(t *testing.T) {
	tree := ast.Build("T.java", inBody(ast.KindClassBody, method(ast.S(ast.KindModifiers))))
	decl := onlyParam(t, tree)
	cfg := DefaultConfig()

	first := MustCheck(decl, cfg)
	for range 5 {
		assert.Equal(t, first, MustCheck(decl, cfg))
	}
	assert.True(t, DefaultConfig().IgnoreCatchParameters)
}
