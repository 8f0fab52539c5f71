package parser

import (
	"github.com/panbanda/pysentry/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

// role is the position an identifier occupies.
type role int

const (
	roleLoad role = iota
	roleStore
	roleDel
	roleIdent // a bare name that is not a variable reference (def name, keyword, attribute)
)

// fieldRoles overrides the role of specific fields.
var fieldRoles = map[string]map[string]role{
	"assignment":              {"left": roleStore},
	"augmented_assignment":    {"left": roleStore},
	"for_statement":           {"left": roleStore},
	"for_in_clause":           {"left": roleStore},
	"named_expression":        {"name": roleStore},
	"as_pattern":              {"alias": roleStore},
	"function_definition":     {"name": roleIdent},
	"class_definition":        {"name": roleIdent},
	"keyword_argument":        {"name": roleIdent},
	"attribute":               {"attribute": roleIdent},
	"default_parameter":       {"name": roleIdent},
	"typed_default_parameter": {"name": roleIdent},
	"typed_parameter":         {"type": roleLoad},
	"aliased_import":          {"alias": roleIdent},
}

// inheriting node types pass their own role down to their children.
var inheriting = map[string]bool{
	"pattern_list":             true,
	"tuple_pattern":            true,
	"list_pattern":             true,
	"list_splat_pattern":       true,
	"dictionary_splat_pattern": true,
	"as_pattern_target":        true,
	"parenthesized_expression": true,
	"expression_list":          true,
	"tuple":                    true,
	"list":                     true,
	"list_splat":               true,
	"class_pattern":            true,
	"dict_pattern":             true,
	"union_pattern":            true,
}

// defaultRoles covers node types whose unfielded children are not loads.
var defaultRoles = map[string]role{
	"parameters":              roleIdent,
	"lambda_parameters":       roleIdent,
	"typed_parameter":         roleIdent,
	"dotted_name":             roleIdent,
	"relative_import":         roleIdent,
	"aliased_import":          roleIdent,
	"import_statement":        roleIdent,
	"import_from_statement":   roleIdent,
	"future_import_statement": roleIdent,
	"global_statement":        roleIdent,
	"nonlocal_statement":      roleIdent,
	"delete_statement":        roleDel,
	"keyword_pattern":         roleIdent,
	"splat_pattern":           roleIdent,
}

var constantTypes = map[string]bool{
	"true": true, "false": true, "none": true, "integer": true, "float": true,
	"string": true, "concatenated_string": true, "ellipsis": true,
}

var comprehensionTypes = map[string]bool{
	"list_comprehension": true, "set_comprehension": true,
	"dictionary_comprehension": true, "generator_expression": true,
}

type lowerer struct {
	source []byte
}

// lower converts a tree-sitter tree into an ast tree, one node per named
// grammar node.
func lower(root *sitter.Node, source []byte) *ast.Node {
	l := &lowerer{source: source}
	return l.node(root, roleLoad)
}

func (l *lowerer) node(n *sitter.Node, r role) *ast.Node {
	typ := n.Type()
	out := &ast.Node{
		Type:    typ,
		Line:    int(n.StartPoint().Row) + 1,
		Column:  int(n.StartPoint().Column) + 1,
		EndLine: int(n.EndPoint().Row) + 1,
	}

	if typ == "identifier" || typ == "keyword_identifier" {
		out.Name = GetNodeText(n, l.source)
		switch r {
		case roleStore:
			out.Kind, out.Ctx = ast.KindName, ast.Store
		case roleDel:
			out.Kind, out.Ctx = ast.KindName, ast.Del
		case roleIdent:
			out.Kind = ast.KindIdent
		default:
			out.Kind, out.Ctx = ast.KindName, ast.Load
		}
		return out
	}

	kids := namedChildren(n)
	roles := childRoles(n, typ, r, kids)
	out.Children = make([]*ast.Node, len(kids))
	for i, c := range kids {
		out.Children[i] = l.node(c, roles[i])
	}
	l.annotate(out, n, kids)
	return out
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	kids := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		kids = append(kids, c)
	}
	return kids
}

func childRoles(n *sitter.Node, typ string, inherited role, kids []*sitter.Node) []role {
	def := roleLoad
	if inheriting[typ] {
		def = inherited
	} else if d, ok := defaultRoles[typ]; ok {
		def = d
	}

	roles := make([]role, len(kids))
	for i := range roles {
		roles[i] = def
	}
	for field, fr := range fieldRoles[typ] {
		if i := indexOf(kids, n.ChildByFieldName(field)); i >= 0 {
			roles[i] = fr
		}
	}
	for i, c := range kids {
		if c.Type() == "as_pattern_target" {
			roles[i] = roleStore
		}
	}

	// "except E, e" and grammar versions that expose "except E as e" as two
	// sibling expressions rather than an as_pattern.
	if typ == "except_clause" || typ == "except_group_clause" {
		var exprs []int
		for i, c := range kids {
			if c.Type() != "block" {
				exprs = append(exprs, i)
			}
		}
		if len(exprs) == 2 && kids[exprs[0]].Type() != "as_pattern" {
			roles[exprs[1]] = roleStore
		}
	}
	return roles
}

func (l *lowerer) annotate(out *ast.Node, n *sitter.Node, kids []*sitter.Node) {
	field := func(name string) *ast.Node {
		if i := indexOf(kids, n.ChildByFieldName(name)); i >= 0 {
			return out.Children[i]
		}
		return nil
	}

	switch typ := out.Type; {
	case typ == "module":
		out.Kind = ast.KindModule

	case typ == "block":
		out.Kind = ast.KindBlock

	case typ == "expression_statement":
		out.Kind = ast.KindExprStmt
		if len(kids) > 0 {
			switch kids[0].Type() {
			case "assignment", "augmented_assignment":
				out.Kind = ast.KindOther
			}
		}

	case typ == "assignment":
		out.Op = "="
		if n.ChildByFieldName("type") != nil {
			out.Op = ":"
		}
		if right := field("right"); right != nil {
			out.Kind = ast.KindAssign
			if out.Op == ":" {
				out.Kind = ast.KindAnnAssign
			}
			out.Value = right
			if left := field("left"); left != nil {
				out.Targets = []*ast.Node{left}
			}
		}

	case typ == "augmented_assignment":
		out.Kind = ast.KindAugAssign
		out.Op = operator(n)
		out.Value = field("right")
		if left := field("left"); left != nil {
			out.Targets = []*ast.Node{left}
		}

	case typ == "function_definition":
		out.Kind = ast.KindFunctionDef
		if name := field("name"); name != nil {
			out.Name = name.Name
		}
		params := field("parameters")
		out.Params = paramNames(params)
		out.Defaults = paramDefaults(params)
		out.Body = field("body")

	case typ == "lambda":
		out.Kind = ast.KindLambda
		params := field("parameters")
		out.Params = paramNames(params)
		out.Defaults = paramDefaults(params)
		out.Body = field("body")

	case typ == "class_definition":
		out.Kind = ast.KindClassDef
		if name := field("name"); name != nil {
			out.Name = name.Name
		}
		out.Body = field("body")

	case typ == "for_statement":
		out.Kind = ast.KindFor
		if left := field("left"); left != nil {
			out.Targets = []*ast.Node{left}
		}
		out.Iter = field("right")
		out.Body = field("body")
		out.Else = field("alternative")

	case typ == "for_in_clause":
		out.Kind = ast.KindComprehensionFor
		if left := field("left"); left != nil {
			out.Targets = []*ast.Node{left}
		}
		out.Iter = field("right")

	case typ == "while_statement":
		out.Kind = ast.KindWhile
		out.Test = field("condition")
		out.Body = field("body")
		out.Else = field("alternative")

	case typ == "with_statement":
		out.Kind = ast.KindWith
		out.Body = field("body")
		for _, c := range out.Children {
			if c == out.Body {
				continue
			}
			ast.Walk(c, func(w *ast.Node) bool {
				if w.Type == "as_pattern_target" {
					out.Binds = append(out.Binds, ast.BoundNames(w)...)
					return false
				}
				return true
			})
		}

	case typ == "except_clause" || typ == "except_group_clause":
		out.Kind = ast.KindExceptHandler
		var exprs []*ast.Node
		for _, c := range out.Children {
			if c.Type == "block" {
				out.Body = c
				continue
			}
			exprs = append(exprs, c)
		}
		switch {
		case len(exprs) == 0:
		case exprs[0].Type == "as_pattern" && len(exprs[0].Children) > 0:
			out.Test = exprs[0].Children[0]
			for _, c := range exprs[0].Children[1:] {
				out.Binds = append(out.Binds, ast.BoundNames(c)...)
			}
		default:
			out.Test = exprs[0]
			if len(exprs) > 1 {
				out.Binds = ast.BoundNames(exprs[1])
			}
		}

	case typ == "import_statement" || typ == "import_from_statement" || typ == "future_import_statement":
		out.Kind = ast.KindImport
		module := field("module_name")
		for _, c := range out.Children {
			if c == module {
				continue
			}
			if bound := importBinding(c, typ == "import_statement"); bound != nil {
				out.Binds = append(out.Binds, bound)
			}
		}

	case typ == "call":
		out.Kind = ast.KindCall
		out.Func = field("function")

	case typ == "return_statement":
		out.Kind = ast.KindReturn

	case typ == "raise_statement":
		out.Kind = ast.KindRaise

	case typ == "break_statement":
		out.Kind = ast.KindBreak

	case typ == "unary_operator" || typ == "binary_operator" || typ == "boolean_operator":
		out.Op = operator(n)

	case constantTypes[typ]:
		out.Kind = ast.KindConstant
		out.Literal = GetNodeText(n, l.source)

	case comprehensionTypes[typ]:
		out.Kind = ast.KindComprehension
	}
}

func operator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	return ""
}

// importBinding returns the name an import clause binds. "import a.b" binds
// the top-level package a; "from m import a.b" does not occur.
func importBinding(c *ast.Node, plainImport bool) *ast.Node {
	switch c.Type {
	case "aliased_import":
		if len(c.Children) > 1 {
			return c.Children[len(c.Children)-1]
		}
	case "dotted_name":
		if len(c.Children) == 0 {
			return nil
		}
		if plainImport {
			return c.Children[0]
		}
		return c.Children[len(c.Children)-1]
	case "identifier":
		return c
	}
	return nil
}

// paramNames returns the identifiers a parameter list binds.
func paramNames(p *ast.Node) []*ast.Node {
	if p == nil {
		return nil
	}
	switch p.Type {
	case "identifier", "keyword_identifier":
		return []*ast.Node{p}
	case "parameters", "lambda_parameters", "list_splat_pattern", "dictionary_splat_pattern", "tuple_pattern":
		var names []*ast.Node
		for _, c := range p.Children {
			names = append(names, paramNames(c)...)
		}
		return names
	case "default_parameter", "typed_default_parameter", "typed_parameter":
		if len(p.Children) > 0 {
			return paramNames(p.Children[0])
		}
	}
	return nil
}

// paramDefaults returns the default values and annotations of a parameter
// list; they are evaluated in the enclosing scope.
func paramDefaults(params *ast.Node) []*ast.Node {
	if params == nil {
		return nil
	}
	var defaults []*ast.Node
	for _, p := range params.Children {
		switch p.Type {
		case "default_parameter", "typed_default_parameter", "typed_parameter":
			if len(p.Children) > 1 {
				defaults = append(defaults, p.Children[1:]...)
			}
		}
	}
	return defaults
}

// indexOf finds target among siblings by byte range and type.
func indexOf(kids []*sitter.Node, target *sitter.Node) int {
	if target == nil {
		return -1
	}
	for i, k := range kids {
		if k.StartByte() == target.StartByte() && k.EndByte() == target.EndByte() && k.Type() == target.Type() {
			return i
		}
	}
	return -1
}
