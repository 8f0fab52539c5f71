package detector

import (
	"github.com/panbanda/pysentry/pkg/ast"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
)

// Unreachable reports expression statements that follow a return or raise.
// The dead state covers the rest of the enclosing block and every block
// nested in it, and starts over in each function body. Only expression
// statements are reported.
type Unreachable struct{}

// NewUnreachable creates an unreachable-code detector.
func NewUnreachable() *Unreachable { return &Unreachable{} }

// Name implements Detector.
func (d *Unreachable) Name() string { return "unreachable" }

// Detect implements Detector.
func (d *Unreachable) Detect(r *parser.Result) []models.Issue {
	if !r.OK() {
		return nil
	}
	v := &unreachableVisitor{}
	v.visit(r.Tree)
	return v.issues
}

type unreachableVisitor struct {
	dead   bool
	issues []models.Issue
}

func (v *unreachableVisitor) visitChildren(n *ast.Node) {
	for _, c := range n.Children {
		v.visit(c)
	}
}

func (v *unreachableVisitor) visit(n *ast.Node) {
	switch n.Kind {
	case ast.KindFunctionDef:
		outer := v.dead
		v.dead = false
		v.visitChildren(n)
		v.dead = outer
		return

	case ast.KindBlock:
		outer := v.dead
		v.visitChildren(n)
		v.dead = outer
		return

	case ast.KindReturn, ast.KindRaise:
		v.visitChildren(n)
		v.dead = true
		return

	case ast.KindExprStmt:
		if v.dead {
			v.issues = append(v.issues, models.Issue{
				Type:    models.IssueUnreachableCode,
				Message: "This statement will never execute",
				Line:    n.Line,
			})
		}
	}
	v.visitChildren(n)
}
