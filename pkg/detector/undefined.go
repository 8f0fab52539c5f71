package detector

import (
	"fmt"

	"github.com/panbanda/pysentry/pkg/ast"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
	"github.com/panbanda/pysentry/pkg/scope"
)

// Undefined reports names read before any binding is visible. It is a
// single forward walk, so reads in a loop body of names assigned later in
// the loop are reported and conditionally bound names are not.
type Undefined struct {
	builtins []string
}

// UndefinedOption configures an Undefined detector.
type UndefinedOption func(*Undefined)

// WithExtraBuiltins treats additional names as always defined, for example
// names injected by a framework.
func WithExtraBuiltins(names ...string) UndefinedOption {
	return func(d *Undefined) {
		d.builtins = append(d.builtins, names...)
	}
}

// NewUndefined creates an undefined-name detector.
func NewUndefined(opts ...UndefinedOption) *Undefined {
	d := &Undefined{builtins: append([]string(nil), builtinNames...)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements Detector.
func (d *Undefined) Name() string { return "undefined" }

// Detect implements Detector.
func (d *Undefined) Detect(r *parser.Result) []models.Issue {
	if !r.OK() {
		return nil
	}
	v := &undefinedVisitor{scopes: scope.New[int]()}
	for _, name := range d.builtins {
		v.scopes.Define(name, 0)
	}
	v.scopes.Push()
	v.visit(r.Tree)
	return v.issues
}

type undefinedVisitor struct {
	scopes *scope.Stack[int]
	issues []models.Issue
}

func (v *undefinedVisitor) define(nodes ...*ast.Node) {
	for _, n := range nodes {
		v.scopes.Define(n.Name, n.Line)
	}
}

func (v *undefinedVisitor) visitAll(nodes []*ast.Node) {
	for _, n := range nodes {
		v.visit(n)
	}
}

// visitExcept visits the children of n other than skip.
func (v *undefinedVisitor) visitExcept(n, skip *ast.Node) {
	for _, c := range n.Children {
		if c != skip {
			v.visit(c)
		}
	}
}

func (v *undefinedVisitor) visit(n *ast.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case ast.KindName:
		switch n.Ctx {
		case ast.Load:
			if _, ok := v.scopes.Lookup(n.Name); !ok {
				v.issues = append(v.issues, models.Issue{
					Type:    models.IssueUndefinedVariable,
					Message: fmt.Sprintf("Variable '%s' used before assignment", n.Name),
					Line:    n.Line,
					Column:  n.Column,
				})
			}
		case ast.Store:
			// Walrus targets and augmented assignment.
			v.define(n)
		}
		return

	case ast.KindFunctionDef:
		v.scopes.Define(n.Name, n.Line)
		// Defaults, annotations and the return type belong to the enclosing scope.
		v.visitExcept(n, n.Body)
		v.scopes.Push()
		v.define(n.Params...)
		v.visit(n.Body)
		v.scopes.Pop()
		return

	case ast.KindLambda:
		v.visitExcept(n, n.Body)
		v.scopes.Push()
		v.define(n.Params...)
		v.visit(n.Body)
		v.scopes.Pop()
		return

	case ast.KindClassDef:
		v.scopes.Define(n.Name, n.Line)

	case ast.KindAssign, ast.KindAnnAssign:
		for _, t := range n.Targets {
			v.define(ast.BoundNames(t)...)
		}

	case ast.KindImport:
		v.define(n.Binds...)
		return

	case ast.KindFor:
		v.visit(n.Iter)
		for _, t := range n.Targets {
			v.define(ast.BoundNames(t)...)
		}
		v.visit(n.Body)
		v.visit(n.Else)
		return

	case ast.KindWith:
		v.visitExcept(n, n.Body)
		v.define(n.Binds...)
		v.visit(n.Body)
		return

	case ast.KindExceptHandler:
		v.visit(n.Test)
		v.define(n.Binds...)
		v.visit(n.Body)
		return

	case ast.KindComprehension:
		v.visitComprehension(n)
		return
	}

	v.visitAll(n.Children)
}

// visitComprehension binds the loop variables before the element
// expression, which comes first in the source but runs last.
func (v *undefinedVisitor) visitComprehension(n *ast.Node) {
	v.scopes.Push()
	defer v.scopes.Pop()

	var rest []*ast.Node
	for _, c := range n.Children {
		if c.Kind != ast.KindComprehensionFor {
			rest = append(rest, c)
			continue
		}
		v.visit(c.Iter)
		for _, t := range c.Targets {
			v.define(ast.BoundNames(t)...)
		}
	}
	v.visitAll(rest)
}
