package detector

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
)

// maxIndentStep is the widest indent increase accepted in one step.
const maxIndentStep = 4

// Indentation flags lines indented more than four columns past the
// enclosing level. It reads raw text and does not need a tree.
type Indentation struct{}

// NewIndentation creates an indentation detector.
func NewIndentation() *Indentation { return &Indentation{} }

// Name implements Detector.
func (d *Indentation) Name() string { return "indentation" }

// Detect implements Detector.
func (d *Indentation) Detect(r *parser.Result) []models.Issue {
	return d.Scan(r.Source)
}

// Scan checks source line by line against a stack of indent widths. A
// dedent that matches no earlier level is not reported.
func (d *Indentation) Scan(source []byte) []models.Issue {
	var issues []models.Issue
	stack := []int{0}

	for i, line := range strings.Split(string(source), "\n") {
		stripped := strings.TrimLeftFunc(line, unicode.IsSpace)
		if stripped == "" {
			continue
		}
		width := utf8.RuneCountInString(line) - utf8.RuneCountInString(stripped)
		top := stack[len(stack)-1]

		if width > top+maxIndentStep {
			issues = append(issues, models.Issue{
				Type:    models.IssueIndentationError,
				Message: "Unexpected indentation",
				Line:    i + 1,
				Column:  width + 1,
			})
		}
		switch {
		case width > top:
			stack = append(stack, width)
		case width < top:
			for len(stack) > 1 && width < stack[len(stack)-1] {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return issues
}
