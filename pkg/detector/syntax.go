package detector

import (
	"strings"

	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
)

// ClassifySyntax turns a parse failure into a single issue.
func ClassifySyntax(err *parser.SyntaxError) models.Issue {
	typ := models.IssueSyntaxError
	switch {
	case strings.Contains(err.Msg, "expected ':'"):
		typ = models.IssueMissingColon
	case strings.Contains(err.Msg, "unexpected indent"):
		typ = models.IssueIndentationError
	}
	return models.Issue{
		Type:    typ,
		Message: err.Msg,
		Line:    err.Line,
		Column:  err.Column,
	}
}
