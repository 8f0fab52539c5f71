package parser

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrEmptyTree is returned when tree-sitter yields no root node.
var ErrEmptyTree = errors.New("parser returned no syntax tree")

// ErrorKind is the exception class a Python interpreter would raise.
type ErrorKind string

const (
	KindSyntaxError      ErrorKind = "SyntaxError"
	KindIndentationError ErrorKind = "IndentationError"
)

// String returns the string representation.
func (k ErrorKind) String() string { return string(k) }

// SyntaxError describes why source failed to parse.
type SyntaxError struct {
	Kind   ErrorKind
	Msg    string
	Line   int // 1-based
	Column int // 1-based
}

// Error renders the error the way the interpreter prints it for source that
// was not read from a file.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (<unknown>, line %d)", e.Msg, e.Line)
}

// blockKeywords start compound statements whose header ends with a colon.
var blockKeywords = map[string]bool{
	"if": true, "elif": true, "else": true, "for": true, "while": true,
	"def": true, "class": true, "try": true, "except": true, "finally": true,
	"with": true, "async": true, "match": true, "case": true,
}

var closers = map[string]string{")": "(", "]": "[", "}": "{"}

// diagnose returns the first syntax problem in the tree, or nil.
func diagnose(root *sitter.Node, source []byte) *SyntaxError {
	lines := strings.Split(string(source), "\n")

	if root.HasError() {
		if bad := firstError(root); bad != nil {
			return describe(bad, lines)
		}
		return &SyntaxError{Kind: KindSyntaxError, Msg: "invalid syntax", Line: 1, Column: 1}
	}

	if legacy := firstLegacyStatement(root); legacy != nil {
		keyword := "print"
		if legacy.Type() == "exec_statement" {
			keyword = "exec"
		}
		return &SyntaxError{
			Kind:   KindSyntaxError,
			Msg:    fmt.Sprintf("Missing parentheses in call to '%s'. Did you mean %s(...)?", keyword, keyword),
			Line:   int(legacy.StartPoint().Row) + 1,
			Column: int(legacy.StartPoint().Column) + 1,
		}
	}

	return checkIndentation(root, source, lines)
}

// firstError finds the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := range int(n.ChildCount()) {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

// firstLegacyStatement finds Python 2 print/exec statements, which the
// grammar accepts but the language no longer does.
func firstLegacyStatement(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "print_statement", "exec_statement":
		return n
	}
	for i := range int(n.NamedChildCount()) {
		if found := firstLegacyStatement(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func describe(bad *sitter.Node, lines []string) *SyntaxError {
	line := int(bad.StartPoint().Row) + 1
	col := int(bad.StartPoint().Column) + 1

	if bad.IsMissing() {
		missing := bad.Type()
		switch {
		case missing == ":":
			return &SyntaxError{Kind: KindSyntaxError, Msg: "expected ':'", Line: line, Column: col}
		case closers[missing] != "":
			return &SyntaxError{
				Kind:   KindSyntaxError,
				Msg:    fmt.Sprintf("'%s' was never closed", closers[missing]),
				Line:   line,
				Column: col,
			}
		}
		return &SyntaxError{Kind: KindSyntaxError, Msg: "invalid syntax", Line: line, Column: col}
	}

	// The ERROR node may start before or after the offending header, so look
	// at the line above it as well as every line it spans.
	last := int(bad.EndPoint().Row) + 1
	for l := max(line-1, 1); l <= last; l++ {
		if text := lineAt(lines, l); headerMissingColon(text) {
			return &SyntaxError{Kind: KindSyntaxError, Msg: "expected ':'", Line: l, Column: len(strings.TrimRight(stripComment(text), " \t")) + 1}
		}
	}
	for l := max(line-1, 1); l <= last; l++ {
		if col := assignmentInCondition(lineAt(lines, l)); col > 0 {
			return &SyntaxError{
				Kind:   KindSyntaxError,
				Msg:    "invalid syntax. Maybe you meant '==' or ':=' instead of '='?",
				Line:   l,
				Column: col,
			}
		}
	}
	for l := line; l <= last; l++ {
		if err := indentProblem(lines, l); err != nil {
			return err
		}
	}
	return &SyntaxError{Kind: KindSyntaxError, Msg: "invalid syntax", Line: line, Column: col}
}

// indentProblem compares a line with the code line above it.
func indentProblem(lines []string, line int) *SyntaxError {
	text := lineAt(lines, line)
	if strings.TrimSpace(stripComment(text)) == "" {
		return nil
	}
	prev := ""
	for l := line - 1; l >= 1; l-- {
		if code := stripComment(lineAt(lines, l)); strings.TrimSpace(code) != "" {
			prev = code
			break
		}
	}

	indent, prevIndent := indentOf(text), indentOf(prev)
	opensBlock := strings.HasSuffix(strings.TrimSpace(prev), ":")
	switch {
	case opensBlock && indent <= prevIndent:
		return &SyntaxError{Kind: KindIndentationError, Msg: "expected an indented block", Line: line, Column: indent + 1}
	case !opensBlock && indent > prevIndent:
		return &SyntaxError{Kind: KindIndentationError, Msg: "unexpected indent", Line: line, Column: indent + 1}
	}
	return nil
}

// headerMissingColon reports whether a line opens a compound statement but
// does not end with the block colon.
func headerMissingColon(text string) bool {
	code := strings.TrimSpace(stripComment(text))
	if code == "" || strings.HasSuffix(code, ":") {
		return false
	}
	word := code
	if i := strings.IndexAny(code, " \t(:"); i >= 0 {
		word = code[:i]
	}
	if !blockKeywords[word] {
		return false
	}
	// An inline suite such as "if x: pass" already has its colon.
	return !strings.Contains(code, ":")
}

// assignmentInCondition returns the 1-based column of a lone '=' at the
// top level of an if, elif or while header, or 0.
func assignmentInCondition(text string) int {
	code := stripComment(text)
	trimmed := strings.TrimLeft(code, " \t")
	word := trimmed
	if i := strings.IndexAny(trimmed, " \t("); i >= 0 {
		word = trimmed[:i]
	}
	if word != "if" && word != "elif" && word != "while" {
		return 0
	}

	offset := len(code) - len(trimmed)
	depth := 0
	inQuote := byte(0)
	for i := len(word); i < len(trimmed); i++ {
		c := trimmed[i]
		switch {
		case inQuote != 0:
			if c == '\\' {
				i++
			} else if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == '=' && depth == 0:
			if i+1 < len(trimmed) && trimmed[i+1] == '=' {
				i++
				continue
			}
			if strings.IndexByte("=!<>:+-*/%&|^@", trimmed[i-1]) >= 0 {
				continue
			}
			return offset + i + 1
		}
	}
	return 0
}

func stripComment(text string) string {
	inQuote := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inQuote != 0:
			if c == '\\' {
				i++
			} else if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
		case c == '#':
			return text[:i]
		}
	}
	return text
}

func lineAt(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
