package ast

import "strings"

// PythonCount returns the number of nodes Python's ast module yields for the
// tree rooted at n. Expression contexts, operators, argument lists and import
// aliases count as nodes of their own; token-level grammar nodes (string
// delimiters, separators) and purely syntactic wrappers (blocks, parentheses,
// else clauses) do not.
func PythonCount(n *Node) int {
	return pyCount(n, "")
}

// transparent grammar nodes contribute only their children.
var transparent = map[string]bool{
	"block":                    true,
	"else_clause":              true,
	"finally_clause":           true,
	"decorated_definition":     true,
	"decorator":                true,
	"type":                     true,
	"with_clause":              true,
	"argument_list":            true,
	"pair":                     true,
	"if_clause":                true,
	"parenthesized_expression": true,
	"as_pattern":               true,
	"as_pattern_target":        true,
}

// ctxNodes carry an expression context next to themselves.
var ctxNodes = map[string]bool{
	"attribute":          true,
	"list":               true,
	"tuple":              true,
	"pattern_list":       true,
	"tuple_pattern":      true,
	"list_pattern":       true,
	"expression_list":    true,
	"list_splat":         true,
	"list_splat_pattern": true,
}

func pyCount(n *Node, parent string) int {
	if n == nil {
		return 0
	}

	switch n.Type {
	case "identifier", "keyword_identifier":
		if n.Kind == KindName {
			return 2
		}
		return 0
	case "string":
		if !isFString(n.Literal) {
			return 1
		}
		return 1 + partsCount(n.Children)
	case "concatenated_string":
		return concatCount(n)
	case "line_continuation", "keyword_separator", "positional_separator",
		"type_conversion", "relative_import":
		return 0
	case "case_pattern":
		return patternCount(n)
	}
	if n.Kind == KindConstant {
		return 1
	}

	sum := func(kids []*Node) int {
		total := 0
		for _, c := range kids {
			total += pyCount(c, n.Type)
		}
		return total
	}

	switch {
	case transparent[n.Type]:
		return sum(n.Children)

	case n.Type == "expression_list" && parent == "delete_statement":
		return sum(n.Children)

	case ctxNodes[n.Type]:
		return 2 + sum(n.Children)
	}

	switch n.Type {
	case "expression_statement":
		if len(n.Children) == 1 {
			switch n.Children[0].Type {
			case "assignment", "augmented_assignment":
				return sum(n.Children)
			}
		}
		if len(n.Children) > 1 {
			// bare "a, b" is an expression over a tuple
			return 3 + sum(n.Children)
		}
		return 1 + sum(n.Children)

	case "assignment":
		// "a = b = 1" is one node with two targets.
		total := 1
		for _, c := range n.Children {
			if c.Type == "assignment" {
				total += pyCount(c, n.Type) - 1
				continue
			}
			total += pyCount(c, n.Type)
		}
		return total

	case "unary_operator", "not_operator", "binary_operator", "augmented_assignment":
		return 2 + sum(n.Children)

	case "boolean_operator":
		// "a and b and c" is one node with three values.
		total := 2
		for _, c := range n.Children {
			if c.Type == n.Type && c.Op == n.Op {
				total += pyCount(c, n.Type) - 2
				continue
			}
			total += pyCount(c, n.Type)
		}
		return total

	case "comparison_operator":
		return 1 + (len(n.Children) - 1) + sum(n.Children)

	case "subscript":
		total := 2 + sum(n.Children)
		if len(n.Children) > 2 {
			total += 2
		}
		return total

	case "dictionary_splat":
		if parent == "argument_list" {
			return 1 + sum(n.Children)
		}
		return sum(n.Children)

	case "parameters", "lambda_parameters":
		total := 1
		for _, p := range n.Children {
			total += paramCount(p)
		}
		return total

	case "lambda":
		total := 1 + sum(n.Children)
		hasParams := false
		for _, c := range n.Children {
			if c.Type == "lambda_parameters" {
				hasParams = true
			}
		}
		if !hasParams {
			total++
		}
		return total

	case "import_statement", "future_import_statement":
		return 1 + aliasCount(n.Children)

	case "import_from_statement":
		if len(n.Children) == 0 {
			return 1
		}
		return 1 + aliasCount(n.Children[1:])

	case "except_clause", "except_group_clause":
		// the handler name is a plain string
		total := 1
		seenType := false
		for _, c := range n.Children {
			switch {
			case c.Type == "block":
				total += pyCount(c, n.Type)
			case seenType:
			case c.Type == "as_pattern" && len(c.Children) > 0:
				total += pyCount(c.Children[0], n.Type)
				seenType = true
			default:
				total += pyCount(c, n.Type)
				seenType = true
			}
		}
		return total

	case "case_clause":
		total := 1 + sum(n.Children)
		patterns := 0
		for _, c := range n.Children {
			if c.Type == "case_pattern" {
				patterns++
			}
		}
		if patterns > 1 {
			total++
		}
		return total
	}

	return 1 + sum(n.Children)
}

func paramCount(p *Node) int {
	switch p.Type {
	case "identifier", "keyword_identifier", "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
		return 1
	case "default_parameter", "typed_parameter", "typed_default_parameter":
		total := 1
		if len(p.Children) > 1 {
			for _, c := range p.Children[1:] {
				total += pyCount(c, p.Type)
			}
		}
		return total
	}
	return pyCount(p, "parameters")
}

func aliasCount(kids []*Node) int {
	total := 0
	for _, c := range kids {
		switch c.Type {
		case "dotted_name", "aliased_import", "wildcard_import", "identifier":
			total++
		}
	}
	return total
}

func isFString(literal string) bool {
	i := strings.IndexAny(literal, `'"`)
	if i < 0 {
		return false
	}
	return strings.ContainsAny(literal[:i], "fF")
}

// partsCount counts the values of a formatted string: each run of literal
// text is one constant and each replacement field one formatted value.
func partsCount(kids []*Node) int {
	total := 0
	inLiteral := false
	for _, c := range kids {
		switch c.Type {
		case "string_content", "escape_sequence", "escape_interpolation":
			if !inLiteral {
				total++
				inLiteral = true
			}
		case "interpolation", "format_expression":
			inLiteral = false
			total += interpolationCount(c)
		}
	}
	return total
}

func interpolationCount(n *Node) int {
	total := 1
	for _, c := range n.Children {
		if c.Type != "format_specifier" {
			total += pyCount(c, n.Type)
			continue
		}
		// Literal spec text is not a named node; a spec without nested
		// fields is one constant.
		spec := partsCount(c.Children)
		total += 1 + max(spec, 1)
	}
	return total
}

// concatCount treats adjacent literals as one constant, or one formatted
// string when any piece is an f-string.
func concatCount(n *Node) int {
	formatted := false
	var parts []*Node
	for _, c := range n.Children {
		if c.Type != "string" {
			continue
		}
		if isFString(c.Literal) {
			formatted = true
		}
		parts = append(parts, c.Children...)
	}
	if !formatted {
		return 1
	}
	return 1 + partsCount(parts)
}

// patternCount counts match statement patterns.
func patternCount(n *Node) int {
	patterns := func(kids []*Node) int {
		total := 0
		for _, c := range kids {
			total += patternCount(c)
		}
		return total
	}

	switch n.Type {
	case "case_pattern":
		switch len(n.Children) {
		case 0:
			return 1 // wildcard
		case 1:
			return patternCount(n.Children[0])
		}
		return 1 + patterns(n.Children)
	case "dotted_name":
		if len(n.Children) <= 1 {
			return 1 // capture
		}
		return 1 + dottedCount(n)
	case "list_pattern", "tuple_pattern", "union_pattern":
		return 1 + patterns(n.Children)
	case "splat_pattern":
		return 1
	case "as_pattern":
		if len(n.Children) == 0 {
			return 1
		}
		return 1 + patternCount(n.Children[0])
	case "keyword_pattern":
		if len(n.Children) < 2 {
			return 0
		}
		return patterns(n.Children[1:])
	case "class_pattern":
		if len(n.Children) == 0 {
			return 1
		}
		return 1 + dottedCount(n.Children[0]) + patterns(n.Children[1:])
	case "dict_pattern":
		total := 1
		for _, c := range n.Children {
			switch c.Type {
			case "case_pattern":
				total += patternCount(c)
			case "splat_pattern":
			case "dotted_name":
				total += dottedCount(c)
			default:
				total += pyCount(c, n.Type)
			}
		}
		return total
	case "true", "false", "none":
		return 1
	}
	return 1 + pyCount(n, "case_pattern")
}

// dottedCount counts a dotted name read as an expression: a name and one
// attribute per further part, each with its context.
func dottedCount(n *Node) int {
	if n.Type != "dotted_name" {
		return pyCount(n, "")
	}
	return 2 * max(len(n.Children), 1)
}
