package parser

import (
	"testing"

	"github.com/panbanda/pysentry/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source string) *ast.Node {
	t.Helper()
	r := ParseString(source)
	require.Nil(t, r.Err, "unexpected syntax error")
	return r.Tree
}

func names(nodes []*ast.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func namesIn(root *ast.Node, ctx ast.Context) []string {
	var out []string
	ast.Walk(root, func(n *ast.Node) bool {
		if n.Kind == ast.KindName && n.Ctx == ctx {
			out = append(out, n.Name)
		}
		return true
	})
	return out
}

func TestLowerAssignment(t *testing.T) {
	tree := mustParse(t, "x = y\n")
	assigns := ast.Find(tree, ast.KindAssign)
	require.Len(t, assigns, 1)

	a := assigns[0]
	assert.Equal(t, []string{"x"}, names(a.SimpleTargets()))
	assert.True(t, a.Value.IsName("y"))
	assert.Equal(t, 1, a.Line)

	assert.Equal(t, []string{"x"}, namesIn(tree, ast.Store))
	assert.Equal(t, []string{"y"}, namesIn(tree, ast.Load))
}

func TestLowerAssignmentStatementIsNotExprStmt(t *testing.T) {
	tree := mustParse(t, "x = 1\nf()\n")
	stmts := ast.Find(tree, ast.KindExprStmt)
	require.Len(t, stmts, 1)
	assert.Equal(t, 2, stmts[0].Line)
}

func TestLowerTupleUnpacking(t *testing.T) {
	tree := mustParse(t, "a, (b, *c) = items\n")
	a := ast.Find(tree, ast.KindAssign)[0]
	assert.Empty(t, a.SimpleTargets())
	assert.Equal(t, []string{"a", "b", "c"}, names(ast.BoundNames(a.Targets[0])))
}

func TestLowerAnnotationOnly(t *testing.T) {
	tree := mustParse(t, "x: int\n")
	assert.Empty(t, ast.Find(tree, ast.KindAssign))
}

func TestLowerAnnotatedAssignment(t *testing.T) {
	tree := mustParse(t, "x: int = 1\n")
	assert.Empty(t, ast.Find(tree, ast.KindAssign))

	ann := ast.Find(tree, ast.KindAnnAssign)
	require.Len(t, ann, 1)
	assert.Equal(t, ":", ann[0].Op)
	assert.Equal(t, []string{"x"}, names(ann[0].SimpleTargets()))
	assert.Equal(t, []string{"x"}, namesIn(tree, ast.Store))
}

func TestLowerOperatorTokens(t *testing.T) {
	tree := mustParse(t, "a or b\n-c\nd += 1\n")
	var ops []string
	ast.Walk(tree, func(n *ast.Node) bool {
		if n.Op != "" {
			ops = append(ops, n.Op)
		}
		return true
	})
	assert.Equal(t, []string{"or", "-", "+="}, ops)
}

func TestLowerMatchPatternsBindNothing(t *testing.T) {
	tree := mustParse(t, "match p:\n    case [a, *rest]:\n        pass\n    case Point(x=0):\n        pass\n")
	assert.Empty(t, namesIn(tree, ast.Store))
	assert.Equal(t, []string{"p"}, namesIn(tree, ast.Load))
}

func TestLowerAttributeAndSubscriptTargets(t *testing.T) {
	tree := mustParse(t, "self.value = 1\nitems[i] = 2\n")
	assert.Empty(t, namesIn(tree, ast.Store))
	assert.ElementsMatch(t, []string{"self", "items", "i"}, namesIn(tree, ast.Load))
}

func TestLowerFunctionDef(t *testing.T) {
	tree := mustParse(t, "def f(a, b=d, *args, c: int = 3, **kw):\n    return a\n")
	defs := ast.Find(tree, ast.KindFunctionDef)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "f", def.Name)
	assert.Equal(t, []string{"a", "b", "args", "c", "kw"}, names(def.Params))
	require.NotNil(t, def.Body)
	assert.Equal(t, ast.KindBlock, def.Body.Kind)

	var defaults []string
	for _, d := range def.Defaults {
		defaults = append(defaults, d.Name)
	}
	assert.Contains(t, defaults, "d")
	assert.ElementsMatch(t, []string{"d", "int", "a"}, namesIn(tree, ast.Load))
}

func TestLowerLambda(t *testing.T) {
	tree := mustParse(t, "f = lambda x, y=1: x + y\n")
	lambdas := ast.Find(tree, ast.KindLambda)
	require.Len(t, lambdas, 1)
	assert.Equal(t, []string{"x", "y"}, names(lambdas[0].Params))
}

func TestLowerClassDef(t *testing.T) {
	tree := mustParse(t, "class A(Base):\n    pass\n")
	classes := ast.Find(tree, ast.KindClassDef)
	require.Len(t, classes, 1)
	assert.Equal(t, "A", classes[0].Name)
	assert.Equal(t, []string{"Base"}, namesIn(tree, ast.Load))
}

func TestLowerForLoop(t *testing.T) {
	tree := mustParse(t, "for i, v in pairs:\n    print(v)\nelse:\n    done()\n")
	loops := ast.Find(tree, ast.KindFor)
	require.Len(t, loops, 1)

	loop := loops[0]
	assert.Equal(t, []string{"i", "v"}, names(ast.BoundNames(loop.Targets[0])))
	assert.True(t, loop.Iter.IsName("pairs"))
	assert.NotNil(t, loop.Body)
	assert.NotNil(t, loop.Else)
}

func TestLowerWhile(t *testing.T) {
	tree := mustParse(t, "while True:\n    break\n")
	loops := ast.Find(tree, ast.KindWhile)
	require.Len(t, loops, 1)
	assert.True(t, loops[0].Test.IsTrue())
	assert.True(t, ast.Contains(loops[0].Body, ast.KindBreak))
}

func TestLowerWith(t *testing.T) {
	tree := mustParse(t, "with open(p) as fh, lock:\n    fh.read()\n")
	withs := ast.Find(tree, ast.KindWith)
	require.Len(t, withs, 1)
	assert.Equal(t, []string{"fh"}, names(withs[0].Binds))
}

func TestLowerExceptHandlers(t *testing.T) {
	source := `try:
    run()
except ValueError as err:
    log(err)
except (KeyError, IndexError):
    pass
except:
    pass
`
	tree := mustParse(t, source)
	handlers := ast.Find(tree, ast.KindExceptHandler)
	require.Len(t, handlers, 3)

	assert.True(t, handlers[0].Test.IsName("ValueError"))
	assert.Equal(t, []string{"err"}, names(handlers[0].Binds))
	assert.NotNil(t, handlers[1].Test)
	assert.Empty(t, handlers[1].Binds)
	assert.Nil(t, handlers[2].Test)
}

func TestLowerImports(t *testing.T) {
	source := "import os.path\nimport numpy as np\nfrom a.b import c, d as e\nfrom m import *\n"
	tree := mustParse(t, source)
	imports := ast.Find(tree, ast.KindImport)
	require.Len(t, imports, 4)

	assert.Equal(t, []string{"os"}, names(imports[0].Binds))
	assert.Equal(t, []string{"np"}, names(imports[1].Binds))
	assert.Equal(t, []string{"c", "e"}, names(imports[2].Binds))
	assert.Empty(t, imports[3].Binds)
	assert.Empty(t, namesIn(tree, ast.Load))
}

func TestLowerCallsAndConstants(t *testing.T) {
	tree := mustParse(t, "eval('2+2')\nobj.run(key=None)\n")
	calls := ast.Find(tree, ast.KindCall)
	require.Len(t, calls, 2)
	assert.True(t, calls[0].Func.IsName("eval"))
	assert.False(t, calls[1].Func.IsName("run"))

	consts := ast.Find(tree, ast.KindConstant)
	require.Len(t, consts, 2)
	assert.Equal(t, "'2+2'", consts[0].Literal)
	assert.Equal(t, []string{"eval", "obj"}, namesIn(tree, ast.Load))
}

func TestLowerComprehension(t *testing.T) {
	tree := mustParse(t, "squares = [n * n for n in nums if n]\n")
	comps := ast.Find(tree, ast.KindComprehension)
	require.Len(t, comps, 1)

	fors := ast.Find(comps[0], ast.KindComprehensionFor)
	require.Len(t, fors, 1)
	assert.Equal(t, []string{"n"}, names(ast.BoundNames(fors[0].Targets[0])))
	assert.True(t, fors[0].Iter.IsName("nums"))
}

func TestLowerDelete(t *testing.T) {
	tree := mustParse(t, "del a, b\n")
	assert.ElementsMatch(t, []string{"a", "b"}, namesIn(tree, ast.Del))
}

func TestLowerGlobalNames(t *testing.T) {
	tree := mustParse(t, "def f():\n    global counter\n    counter += 1\n")
	assert.Empty(t, namesIn(tree, ast.Load))
	assert.Equal(t, []string{"counter"}, namesIn(tree, ast.Store))
}

func TestLowerLineNumbers(t *testing.T) {
	tree := mustParse(t, "\n\ndef f():\n    return 1\n")
	def := ast.Find(tree, ast.KindFunctionDef)[0]
	assert.Equal(t, 3, def.Line)
	assert.Equal(t, 1, def.Column)
	assert.Equal(t, 4, def.EndLine)
	ret := ast.Find(tree, ast.KindReturn)[0]
	assert.Equal(t, 4, ret.Line)
	assert.Equal(t, 5, ret.Column)
}
