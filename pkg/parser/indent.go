package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// checkIndentation enforces the block alignment rules that tree-sitter
// tolerates but the interpreter rejects. Module statements start at column
// zero and every statement of a block shares the block's column.
func checkIndentation(root *sitter.Node, source []byte, lines []string) *SyntaxError {
	return checkBlock(root, 0, true, source, lines)
}

func checkBlock(block *sitter.Node, expected int, fixed bool, source []byte, lines []string) *SyntaxError {
	var prev *sitter.Node
	for i := range int(block.NamedChildCount()) {
		stmt := block.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}

		if startsLine(stmt, source) {
			col := int(stmt.StartPoint().Column)
			if !fixed {
				expected, fixed = col, true
			}
			if col != expected {
				return misindented(stmt, col, expected, prev, lines)
			}
		}

		if err := checkChildren(stmt, source, lines); err != nil {
			return err
		}
		prev = stmt
	}
	return nil
}

// checkChildren finds the blocks nested in a statement and checks each
// against the indentation of the line its header starts on.
func checkChildren(n *sitter.Node, source []byte, lines []string) *SyntaxError {
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if child.Type() != "block" {
			if err := checkChildren(child, source, lines); err != nil {
				return err
			}
			continue
		}

		headerIndent := indentOf(lineAt(lines, int(n.StartPoint().Row)+1))
		first := firstStatement(child)
		if first != nil && first.StartPoint().Row > n.StartPoint().Row && startsLine(first, source) {
			if int(first.StartPoint().Column) <= headerIndent {
				return &SyntaxError{
					Kind:   KindIndentationError,
					Msg:    "expected an indented block",
					Line:   int(first.StartPoint().Row) + 1,
					Column: int(first.StartPoint().Column) + 1,
				}
			}
			if err := checkBlock(child, int(first.StartPoint().Column), true, source, lines); err != nil {
				return err
			}
			continue
		}
		// Inline suite ("if x: pass"): nothing to align.
		if err := checkBlock(child, 0, false, source, lines); err != nil {
			return err
		}
	}
	return nil
}

func misindented(stmt *sitter.Node, col, expected int, prev *sitter.Node, lines []string) *SyntaxError {
	line := int(stmt.StartPoint().Row) + 1
	msg := "unexpected indent"
	if col < expected || (prev != nil && lastIndent(prev, lines) > col) {
		msg = "unindent does not match any outer indentation level"
	}
	return &SyntaxError{Kind: KindIndentationError, Msg: msg, Line: line, Column: col + 1}
}

// lastIndent returns the indentation of the last non-blank line of n.
func lastIndent(n *sitter.Node, lines []string) int {
	row := int(n.EndPoint().Row)
	if n.EndPoint().Column == 0 && row > int(n.StartPoint().Row) {
		row--
	}
	for ; row >= int(n.StartPoint().Row); row-- {
		text := lineAt(lines, row+1)
		if strings.TrimSpace(text) != "" {
			return indentOf(text)
		}
	}
	return 0
}

func firstStatement(block *sitter.Node) *sitter.Node {
	for i := range int(block.NamedChildCount()) {
		if c := block.NamedChild(i); c.Type() != "comment" {
			return c
		}
	}
	return nil
}

// startsLine reports whether only whitespace precedes n on its line.
func startsLine(n *sitter.Node, source []byte) bool {
	for i := int(n.StartByte()) - 1; i >= 0 && i < len(source); i-- {
		switch source[i] {
		case '\n':
			return true
		case ' ', '\t', '\f':
			continue
		default:
			return false
		}
	}
	return true
}

func indentOf(text string) int {
	return len(text) - len(strings.TrimLeft(text, " \t\f"))
}
