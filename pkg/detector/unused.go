package detector

import (
	"fmt"

	"github.com/panbanda/pysentry/pkg/ast"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
)

// Unused reports names that are assigned but never read anywhere in the
// source. It keeps one flat table with no scoping: a read in any function
// counts as a use of every binding of that name.
type Unused struct{}

// NewUnused creates an unused-name detector.
func NewUnused() *Unused { return &Unused{} }

// Name implements Detector.
func (d *Unused) Name() string { return "unused" }

// Detect implements Detector.
func (d *Unused) Detect(r *parser.Result) []models.Issue {
	if !r.OK() {
		return nil
	}

	var order []string
	assigned := make(map[string]int)
	used := make(map[string]bool)

	ast.Walk(r.Tree, func(n *ast.Node) bool {
		switch {
		case n.Kind == ast.KindAssign:
			for _, t := range n.SimpleTargets() {
				if _, seen := assigned[t.Name]; !seen {
					order = append(order, t.Name)
				}
				assigned[t.Name] = n.Line
			}
		case n.Kind == ast.KindName && n.Ctx == ast.Load:
			used[n.Name] = true
		}
		return true
	})

	var issues []models.Issue
	for _, name := range order {
		if used[name] {
			continue
		}
		issues = append(issues, models.Issue{
			Type:    models.IssueUnusedVariable,
			Message: fmt.Sprintf("Variable '%s' assigned but never used", name),
			Line:    assigned[name],
		})
	}
	return issues
}
