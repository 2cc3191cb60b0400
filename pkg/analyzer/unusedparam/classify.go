// Package unusedparam reports method, constructor and catch clause
// parameters that are declared but never referenced.
package unusedparam

import "github.com/panbanda/paramlint/pkg/ast"

// Config controls which parameters are eligible for checking. A Config is
// read once per run and never mutated while files are being checked.
type Config struct {
	// IgnoreCatchParameters exempts exception parameters of catch clauses.
	IgnoreCatchParameters bool `json:"ignore_catch_parameters" toml:"ignore_catch_parameters" yaml:"ignore_catch_parameters"`
}

// DefaultConfig returns the default configuration: catch parameters are ignored.
func DefaultConfig() Config {
	return Config{IgnoreCatchParameters: true}
}

// MustCheck reports whether decl is a parameter whose usage should be
// verified. Parameters of abstract methods and of methods declared in an
// interface body have nowhere to be referenced, so they are skipped.
// Constructor parameters are always checked. Catch parameters are checked
// only when cfg does not ignore them. Any other shape, including a detached
// node or one with missing ancestors, is skipped.
func MustCheck(decl ast.Node, cfg Config) bool {
	if decl.Kind() != ast.KindParameter {
		return false
	}
	parent, ok := decl.Parent()
	if !ok {
		return false
	}

	switch parent.Kind() {
	case ast.KindCatchClause:
		return !cfg.IgnoreCatchParameters
	case ast.KindParameters:
		owner, ok := parent.Parent()
		if !ok {
			return false
		}
		switch owner.Kind() {
		case ast.KindConstructor:
			return true
		case ast.KindMethod:
			return isConcreteMethod(owner) && !decl.InInterfaceBody()
		}
	}
	return false
}

// isConcreteMethod reports whether the method's own modifier list exists
// and does not mark it abstract. Only the Modifiers child is searched so an
// abstract member of a local class in the body does not count.
func isConcreteMethod(method ast.Node) bool {
	mods, ok := method.FirstChild(ast.KindModifiers)
	if !ok {
		return false
	}
	return !mods.BranchContains(ast.KindAbstract)
}
