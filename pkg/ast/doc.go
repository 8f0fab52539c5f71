// Package ast defines the syntax tree consumed by the detectors and the
// validator.
//
// The tree is a closed set of tagged node variants lowered from the
// tree-sitter concrete syntax tree by package parser. Every named grammar
// node (comments excluded) becomes exactly one Node, so node counts track the
// grammar rather than the lowering. Nodes a detector cares about carry a Kind
// other than KindOther together with role fields (Targets, Params, Test, ...);
// everything else is reachable through Children.
//
// Usage:
//
//	ast.Walk(tree, func(n *ast.Node) bool {
//	    if n.Kind == ast.KindCall && n.Func.IsName("eval") {
//	        fmt.Printf("eval at line %d\n", n.Line)
//	    }
//	    return true
//	})
package ast
