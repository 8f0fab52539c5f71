// Package fixer applies single-line textual fixes for reported findings.
//
// Findings are applied bottom to top so an edit never shifts the line
// numbers of findings still waiting to be applied. Each finding gets at
// most one transformation, chosen by its id from a rule table.
package fixer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/pysentry/pkg/models"
	"go.uber.org/zap"
)

// Finding identifies a line to fix and which rule to use.
type Finding struct {
	Line int    `json:"line"`
	ID   string `json:"id"`
}

// Result is the outcome of applying findings to a source.
type Result struct {
	Source  string
	Log     []string
	Applied int
	Skipped int
	// Touched holds the 1-based numbers of changed lines.
	Touched *roaring.Bitmap
}

// Fixer applies rules to findings.
type Fixer struct {
	rules  Rules
	logger *zap.Logger
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithLogger sets the logger used for fix and skip events.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fixer) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a fixer over rules. A nil table uses DefaultRules.
func New(rules Rules, opts ...Option) *Fixer {
	if rules == nil {
		rules = DefaultRules()
	}
	f := &Fixer{rules: rules, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FixLine applies the rule for id to line. It reports false when there is
// no rule for id or the rule leaves the line unchanged.
func (f *Fixer) FixLine(line, id string) (string, bool) {
	rule, ok := f.rules[id]
	if !ok {
		return line, false
	}

	var fixed string
	switch rule.Action {
	case ActionAppendAtEnd:
		fixed = strings.TrimRight(line, " \t") + rule.Correction
	case ActionAddIndent:
		fixed = rule.Correction + line
	case ActionReplaceOperator:
		fixed = replaceAssignment(line)
	case ActionWrapContent:
		fixed = wrapPrint(line)
	case ActionCommentLine:
		fixed = rule.Correction + line
	default:
		return line, false
	}
	return fixed, fixed != line
}

// Apply fixes source for each finding. Findings outside the source are
// ignored; findings without a usable rule are logged as skipped and leave
// the line unchanged.
func (f *Fixer) Apply(source string, findings []Finding) *Result {
	lines := strings.Split(source, "\n")
	count := len(lines)
	if strings.HasSuffix(source, "\n") {
		count--
	}

	ordered := make([]Finding, len(findings))
	copy(ordered, findings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Line > ordered[j].Line
	})

	res := &Result{Touched: roaring.New()}
	for _, fd := range ordered {
		if fd.Line < 1 || fd.Line > count {
			continue
		}
		idx := fd.Line - 1
		body, cr := strings.CutSuffix(lines[idx], "\r")

		fixed, ok := f.FixLine(body, fd.ID)
		if !ok {
			res.Skipped++
			msg := fmt.Sprintf("Skipped Line %d: No rule found for %s", fd.Line, fd.ID)
			res.Log = append(res.Log, msg)
			f.logger.Info("skipped finding", zap.Int("line", fd.Line), zap.String("id", fd.ID))
			continue
		}

		if cr {
			fixed += "\r"
		}
		lines[idx] = fixed
		res.Applied++
		res.Touched.Add(uint32(fd.Line))
		res.Log = append(res.Log, fmt.Sprintf("Fixed Line %d: Applied %s", fd.Line, fd.ID))
		f.logger.Debug("fixed finding", zap.Int("line", fd.Line), zap.String("id", fd.ID))
	}

	res.Source = strings.Join(lines, "\n")
	return res
}

// Lines returns the touched line numbers in ascending order.
func (r *Result) Lines() []int {
	out := make([]int, 0, r.Touched.GetCardinality())
	it := r.Touched.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// FindingsFromIssues derives findings from analyzer issues. The id is the
// issue type, refined for syntax errors whose message names a fixable
// mistake.
func FindingsFromIssues(issues []models.Issue) []Finding {
	findings := make([]Finding, 0, len(issues))
	for _, is := range issues {
		findings = append(findings, Finding{Line: is.Line, ID: findingID(is)})
	}
	return findings
}

func findingID(is models.Issue) string {
	if is.Type == models.IssueSyntaxError {
		switch {
		case strings.Contains(is.Message, "Missing parentheses in call to 'print'"):
			return "PrintStatement"
		case strings.Contains(is.Message, "instead of '='"):
			return "AssignmentInCondition"
		}
	}
	return string(is.Type)
}

// replaceAssignment rewrites the first lone '=' of an if header to '=='.
func replaceAssignment(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "if ") && !strings.HasPrefix(trimmed, "elif ") {
		return line
	}
	for i := 1; i < len(line); i++ {
		if line[i] != '=' {
			continue
		}
		if i+1 < len(line) && line[i+1] == '=' {
			i++
			continue
		}
		if strings.IndexByte("=!<>:+-*/%&|^@", line[i-1]) >= 0 {
			continue
		}
		return line[:i] + "==" + line[i+1:]
	}
	return line
}

// wrapPrint turns a statement-form print into a call, keeping indentation.
func wrapPrint(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	rest, ok := strings.CutPrefix(trimmed, "print")
	if !ok || strings.HasPrefix(strings.TrimSpace(rest), "(") {
		return line
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return line
	}
	indent := line[:len(line)-len(trimmed)]
	return indent + "print(" + strings.TrimSpace(rest) + ")"
}
