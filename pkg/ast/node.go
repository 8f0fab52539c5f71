package ast

// Kind tags the variant of a Node.
type Kind int

const (
	KindOther Kind = iota
	KindModule
	KindBlock
	KindExprStmt
	KindAssign
	KindAugAssign
	KindAnnAssign
	KindFunctionDef
	KindLambda
	KindClassDef
	KindFor
	KindWhile
	KindWith
	KindExceptHandler
	KindImport
	KindReturn
	KindRaise
	KindBreak
	KindCall
	KindName
	KindIdent
	KindConstant
	KindComprehension
	KindComprehensionFor
)

var kindNames = [...]string{
	KindOther:            "Other",
	KindModule:           "Module",
	KindBlock:            "Block",
	KindExprStmt:         "ExprStmt",
	KindAssign:           "Assign",
	KindAugAssign:        "AugAssign",
	KindAnnAssign:        "AnnAssign",
	KindFunctionDef:      "FunctionDef",
	KindLambda:           "Lambda",
	KindClassDef:         "ClassDef",
	KindFor:              "For",
	KindWhile:            "While",
	KindWith:             "With",
	KindExceptHandler:    "ExceptHandler",
	KindImport:           "Import",
	KindReturn:           "Return",
	KindRaise:            "Raise",
	KindBreak:            "Break",
	KindCall:             "Call",
	KindName:             "Name",
	KindIdent:            "Ident",
	KindConstant:         "Constant",
	KindComprehension:    "Comprehension",
	KindComprehensionFor: "ComprehensionFor",
}

// String returns the string representation.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Context is the access mode of a name reference.
type Context int

const (
	Load Context = iota
	Store
	Del
)

// String returns the string representation.
func (c Context) String() string {
	switch c {
	case Store:
		return "Store"
	case Del:
		return "Del"
	default:
		return "Load"
	}
}

// Node is one lowered syntax tree node.
//
// Role fields are populated only for the kinds that use them:
//
//	KindName, KindIdent          Name, Ctx
//	KindFunctionDef, KindLambda  Name (def only), Params, Defaults, Body
//	KindClassDef                 Name, Body
//	KindAssign, KindAugAssign    Targets, Value, Op
//	KindAnnAssign                Targets, Value, Op
//	KindFor, KindComprehensionFor Targets, Iter, Body (for only), Else
//	KindWhile                    Test, Body, Else
//	KindWith                     Binds, Body
//	KindExceptHandler            Test (nil for a bare handler), Binds, Body
//	KindImport                   Binds
//	KindCall                     Func
//	KindConstant                 Literal (source text)
//
// Op holds the operator token of unary, binary, boolean and augmented
// assignment nodes, and "=" or ":" for assignments.
type Node struct {
	Kind    Kind
	Type    string // grammar node type, e.g. "function_definition"
	Line    int    // 1-based
	Column  int    // 1-based
	EndLine int

	Name string
	Ctx  Context

	Params   []*Node
	Defaults []*Node
	Targets  []*Node
	Binds    []*Node
	Value    *Node
	Iter     *Node
	Test     *Node
	Func     *Node
	Body     *Node
	Else     *Node
	Literal  string
	Op       string

	Children []*Node
}

// IsName reports whether n is a name reference to name.
func (n *Node) IsName(name string) bool {
	return n != nil && n.Kind == KindName && n.Name == name
}

// IsTrue reports whether n is the constant True.
func (n *Node) IsTrue() bool {
	return n != nil && n.Kind == KindConstant && n.Type == "true"
}

// Statements returns the statements of a module or block node.
func (n *Node) Statements() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

// SimpleTargets returns the targets of an assignment that are plain names.
func (n *Node) SimpleTargets() []*Node {
	var names []*Node
	for _, t := range n.Targets {
		if t.Kind == KindName {
			names = append(names, t)
		}
	}
	return names
}

// BoundNames returns every name bound by a target, descending into tuple and
// list unpacking patterns.
func BoundNames(target *Node) []*Node {
	if target == nil {
		return nil
	}
	switch target.Kind {
	case KindName:
		if target.Ctx == Store {
			return []*Node{target}
		}
		return nil
	case KindOther:
		switch target.Type {
		case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list",
			"parenthesized_expression", "list_splat_pattern", "list_splat",
			"as_pattern_target":
			var names []*Node
			for _, c := range target.Children {
				names = append(names, BoundNames(c)...)
			}
			return names
		}
	}
	return nil
}
