package detector

import (
	"fmt"

	"github.com/panbanda/pysentry/pkg/ast"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
	"github.com/panbanda/pysentry/pkg/scope"
)

// Duplicate reports a simple-name assignment to a name already assigned in
// the same function scope. Each reassignment after the first is reported.
type Duplicate struct{}

// NewDuplicate creates a duplicate-assignment detector.
func NewDuplicate() *Duplicate { return &Duplicate{} }

// Name implements Detector.
func (d *Duplicate) Name() string { return "duplicate" }

// Detect implements Detector.
func (d *Duplicate) Detect(r *parser.Result) []models.Issue {
	if !r.OK() {
		return nil
	}
	v := &duplicateVisitor{scopes: scope.New[int]()}
	v.visit(r.Tree)
	return v.issues
}

type duplicateVisitor struct {
	scopes *scope.Stack[int]
	issues []models.Issue
}

func (v *duplicateVisitor) visit(n *ast.Node) {
	switch n.Kind {
	case ast.KindFunctionDef:
		v.scopes.Push()
		for _, c := range n.Children {
			v.visit(c)
		}
		v.scopes.Pop()
		return

	case ast.KindAssign:
		for _, t := range n.SimpleTargets() {
			if _, ok := v.scopes.LookupLocal(t.Name); ok {
				v.issues = append(v.issues, models.Issue{
					Type:    models.IssueDuplicateAssignment,
					Message: fmt.Sprintf("Variable '%s' assigned multiple times", t.Name),
					Line:    n.Line,
				})
			}
			v.scopes.Define(t.Name, n.Line)
		}
	}

	for _, c := range n.Children {
		v.visit(c)
	}
}
