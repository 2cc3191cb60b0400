package unusedparam

import (
	"github.com/panbanda/paramlint/pkg/ast"
)

// ErrorKey identifies unused parameter violations.
const ErrorKey = "unused.parameter"

// ReferenceCounter counts the references to the binding introduced by a
// declaration within its own scope. *scope.Counter implements it.
type ReferenceCounter interface {
	CountReferences(decl ast.Node) (int, error)
}

// Classifier decides whether a declaration is eligible for checking.
type Classifier func(decl ast.Node) bool

// Violation is a parameter that is never referenced.
type Violation struct {
	Key  string       `json:"key"`
	Name string       `json:"name"`
	Pos  ast.Position `json:"position"`
}

// Message renders the violation the way checkstyle does.
func (v Violation) Message() string {
	return "Unused parameter '" + v.Name + "'."
}

// Evaluate classifies decl and, if it must be checked, asks counter for its
// reference count. A zero count yields a violation positioned at the
// declared name. The counter is not consulted for skipped declarations, and
// a counter error means no violation.
func Evaluate(decl ast.Node, classify Classifier, counter ReferenceCounter) (Violation, bool) {
	if !classify(decl) {
		return Violation{}, false
	}
	name, ok := decl.DeclaredName()
	if !ok {
		return Violation{}, false
	}
	count, err := counter.CountReferences(decl)
	if err != nil || count != 0 {
		return Violation{}, false
	}
	return Violation{
		Key:  ErrorKey,
		Name: name.Text(),
		Pos:  name.Pos(),
	}, true
}

// Rule binds a Config to the classifier.
type Rule struct {
	cfg Config
}

// NewRule returns a rule using cfg.
func NewRule(cfg Config) *Rule {
	return &Rule{cfg: cfg}
}

// Config returns the rule's configuration.
func (r *Rule) Config() Config {
	return r.cfg
}

// MustCheck classifies decl under the rule's configuration.
func (r *Rule) MustCheck(decl ast.Node) bool {
	return MustCheck(decl, r.cfg)
}

// Evaluate decides a single declaration.
func (r *Rule) Evaluate(decl ast.Node, counter ReferenceCounter) (Violation, bool) {
	return Evaluate(decl, r.MustCheck, counter)
}

// Check evaluates every parameter of tree in source order.
func (r *Rule) Check(tree *ast.Tree, counter ReferenceCounter) []Violation {
	var violations []Violation
	for _, decl := range tree.FindAll(ast.KindParameter) {
		if v, ok := r.Evaluate(decl, counter); ok {
			violations = append(violations, v)
		}
	}
	return violations
}
