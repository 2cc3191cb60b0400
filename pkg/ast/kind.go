package ast

// Kind tags a node with its syntactic category.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCompilationUnit
	KindClass
	KindClassBody
	KindInterface
	KindInterfaceBody
	KindMethod
	KindConstructor
	KindLambda
	KindParameters
	KindParameter
	KindCatchClause
	KindModifiers
	KindModifier
	KindAbstract
	KindAnnotation
	KindBlock
	KindLocalVariable
	KindField
	KindDeclarator
	KindForEach  // enhanced for statement binding its loop variable
	KindResource // try-with-resources resource
	KindPattern  // type pattern or instanceof binding
	KindName       // identifier introducing a binding
	KindIdentifier // identifier referring to a binding
	KindMember     // identifier naming a member, label or annotation
	KindError
	KindOther
)

var kindNames = [...]string{
	KindInvalid:         "invalid",
	KindCompilationUnit: "compilation_unit",
	KindClass:           "class",
	KindClassBody:       "class_body",
	KindInterface:       "interface",
	KindInterfaceBody:   "interface_body",
	KindMethod:          "method",
	KindConstructor:     "constructor",
	KindLambda:          "lambda",
	KindParameters:      "parameters",
	KindParameter:       "parameter",
	KindCatchClause:     "catch_clause",
	KindModifiers:       "modifiers",
	KindModifier:        "modifier",
	KindAbstract:        "abstract",
	KindAnnotation:      "annotation",
	KindBlock:           "block",
	KindLocalVariable:   "local_variable",
	KindField:           "field",
	KindDeclarator:      "declarator",
	KindForEach:         "for_each",
	KindResource:        "resource",
	KindPattern:         "pattern",
	KindName:            "name",
	KindIdentifier:      "identifier",
	KindMember:          "member",
	KindError:           "error",
	KindOther:           "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsTypeBody reports whether k is the body of a class-like or interface-like declaration.
func (k Kind) IsTypeBody() bool {
	return k == KindClassBody || k == KindInterfaceBody
}

// IsScopeOwner reports whether nodes of kind k introduce parameters.
func (k Kind) IsScopeOwner() bool {
	switch k {
	case KindMethod, KindConstructor, KindLambda, KindCatchClause:
		return true
	default:
		return false
	}
}
