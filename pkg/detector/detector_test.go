package detector

import (
	"strings"
	"testing"

	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *parser.Result {
	t.Helper()
	r := parser.ParseString(source)
	require.True(t, r.OK(), "source should parse: %v", r.Err)
	return r
}

func ofType(issues []models.Issue, typ models.IssueType) []models.Issue {
	var out []models.Issue
	for _, is := range issues {
		if is.Type == typ {
			out = append(out, is)
		}
	}
	return out
}

func lines(issues []models.Issue) []int {
	out := make([]int, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Line)
	}
	return out
}

func TestDefaultOrder(t *testing.T) {
	var names []string
	for _, d := range Default() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"undefined", "unused", "duplicate", "unreachable", "indentation"}, names)
}

func TestDetectorsSkipFailedParse(t *testing.T) {
	r := parser.ParseString("def f(\n")
	require.False(t, r.OK())
	for _, d := range []Detector{NewUndefined(), NewUnused(), NewDuplicate(), NewUnreachable()} {
		assert.Empty(t, d.Detect(r), d.Name())
	}
}

func TestClassifySyntax(t *testing.T) {
	tests := []struct {
		msg  string
		want models.IssueType
	}{
		{"expected ':'", models.IssueMissingColon},
		{"unexpected indent", models.IssueIndentationError},
		{"invalid syntax", models.IssueSyntaxError},
		{"'(' was never closed", models.IssueSyntaxError},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			is := ClassifySyntax(&parser.SyntaxError{Kind: parser.KindSyntaxError, Msg: tt.msg, Line: 3, Column: 7})
			assert.Equal(t, tt.want, is.Type)
			assert.Equal(t, tt.msg, is.Message)
			assert.Equal(t, 3, is.Line)
			assert.Equal(t, 7, is.Column)
		})
	}
}

func TestClassifySyntaxFromParser(t *testing.T) {
	r := parser.ParseString("def f()\n    return 1\n")
	require.NotNil(t, r.Err)
	is := ClassifySyntax(r.Err)
	assert.Equal(t, models.IssueMissingColon, is.Type)
	assert.Equal(t, 1, is.Line)
}

func TestIndentationUniformFourSpaces(t *testing.T) {
	source := "def f(x):\n    if x:\n        return 1\n    return 2\n\nclass A:\n    pass\n"
	assert.Empty(t, NewIndentation().Scan([]byte(source)))
}

func TestIndentationJumpTooLarge(t *testing.T) {
	source := "def f():\n        x = 1\n        return x\n"
	issues := NewIndentation().Scan([]byte(source))
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueIndentationError, issues[0].Type)
	assert.Equal(t, "Unexpected indentation", issues[0].Message)
	assert.Equal(t, 2, issues[0].Line)
}

func TestIndentationDedentToUnknownLevel(t *testing.T) {
	// Dedenting to a width that was never pushed is not reported.
	source := "if a:\n    if b:\n        x = 1\n  y = 2\n"
	assert.Empty(t, NewIndentation().Scan([]byte(source)))
}

func TestIndentationSkipsBlankLines(t *testing.T) {
	source := "x = 1\n\n            \ny = 2\n"
	assert.Empty(t, NewIndentation().Scan([]byte(source)))
}

func TestUndefinedName(t *testing.T) {
	issues := NewUndefined().Detect(parse(t, "x = 1\nprint(z)\n"))
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueUndefinedVariable, issues[0].Type)
	assert.Equal(t, "Variable 'z' used before assignment", issues[0].Message)
	assert.Equal(t, 2, issues[0].Line)
}

func TestUndefinedParametersVisibleInBody(t *testing.T) {
	source := "def f(a, b=1, *args, **kwargs):\n    return a + b + len(args) + len(kwargs)\n"
	assert.Empty(t, NewUndefined().Detect(parse(t, source)))
}

func TestUndefinedParametersNotVisibleOutside(t *testing.T) {
	source := "def f(a):\n    return a\nprint(a)\n"
	issues := NewUndefined().Detect(parse(t, source))
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Line)
}

func TestUndefinedClosureSeesOuterNames(t *testing.T) {
	source := `limit = 10

def outer(x):
    def inner():
        return x + limit
    return inner
`
	assert.Empty(t, NewUndefined().Detect(parse(t, source)))
}

func TestUndefinedBindingForms(t *testing.T) {
	source := `import os
import numpy as np
from collections import OrderedDict as OD

class Config:
    pass

for i, (k, v) in enumerate(pairs()):
    print(i, k, v)

with open(os.devnull) as fh:
    fh.read()

try:
    Config()
except ValueError as err:
    print(err)

total = sum(n * n for n in range(3))
squares = {k: v for k, v in OD().items()}
np.array(total, squares)
`
	issues := NewUndefined().Detect(parse(t, source))
	require.Len(t, issues, 1, "only pairs is undefined: %v", issues)
	assert.Equal(t, "Variable 'pairs' used before assignment", issues[0].Message)
}

func TestUndefinedReadBeforeLaterAssignment(t *testing.T) {
	source := "print(later)\nlater = 1\n"
	issues := NewUndefined().Detect(parse(t, source))
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Line)
}

func TestUndefinedBuiltins(t *testing.T) {
	source := "print(len([]), __name__, __file__, Exception, True)\n"
	assert.Empty(t, NewUndefined().Detect(parse(t, source)))
}

func TestUndefinedExtraBuiltins(t *testing.T) {
	r := parse(t, "app.run()\n")
	assert.Len(t, NewUndefined().Detect(r), 1)
	assert.Empty(t, NewUndefined(WithExtraBuiltins("app")).Detect(r))
}

func TestUndefinedMatchPatternsBindNothing(t *testing.T) {
	source := `p = [1]
match p:
    case [a, *rest]:
        print(a, rest)
    case Point(x=0):
        pass
`
	issues := NewUndefined().Detect(parse(t, source))
	require.Len(t, issues, 2, "%v", issues)
	assert.Equal(t, "Variable 'a' used before assignment", issues[0].Message)
	assert.Equal(t, "Variable 'rest' used before assignment", issues[1].Message)
	assert.Equal(t, []int{4, 4}, lines(issues))
}

func TestAnnotatedAssignment(t *testing.T) {
	r := parse(t, "x: int = 1\nx: int = 2\n")
	assert.Empty(t, NewUnused().Detect(r))
	assert.Empty(t, NewDuplicate().Detect(r))
	assert.Empty(t, NewUndefined().Detect(parse(t, "x: int = 1\nprint(x)\n")))
}

func TestUnusedName(t *testing.T) {
	source := "a = 1\nb = 2\nprint(a)\nb = 3\n"
	issues := NewUnused().Detect(parse(t, source))
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueUnusedVariable, issues[0].Type)
	assert.Equal(t, "Variable 'b' assigned but never used", issues[0].Message)
	assert.Equal(t, 4, issues[0].Line, "reported at the last assignment")
}

func TestUnusedIsFlatAcrossFunctions(t *testing.T) {
	source := "def f():\n    tmp = 1\n\ndef g(tmp):\n    return tmp\n"
	assert.Empty(t, NewUnused().Detect(parse(t, source)))
}

func TestUnusedIgnoresTupleTargets(t *testing.T) {
	assert.Empty(t, NewUnused().Detect(parse(t, "a, b = 1, 2\n")))
}

func TestDuplicateAssignment(t *testing.T) {
	source := "def f():\n    x = 1\n    x = 2\n    x = 3\n    return x\n"
	issues := NewDuplicate().Detect(parse(t, source))
	require.Len(t, issues, 2)
	assert.Equal(t, []int{3, 4}, lines(issues))
	assert.Equal(t, "Variable 'x' assigned multiple times", issues[0].Message)
}

func TestDuplicateScopedPerFunction(t *testing.T) {
	source := "x = 1\n\ndef f():\n    x = 2\n    return x\n\ndef g():\n    x = 3\n    return x\n"
	assert.Empty(t, NewDuplicate().Detect(parse(t, source)))
}

func TestUnreachableAfterReturn(t *testing.T) {
	source := `def f():
    return 1
    print("dead")

def g():
    print("alive")
`
	issues := NewUnreachable().Detect(parse(t, source))
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueUnreachableCode, issues[0].Type)
	assert.Equal(t, "This statement will never execute", issues[0].Message)
	assert.Equal(t, 3, issues[0].Line)
}

func TestUnreachableAfterRaiseOnlyExpressions(t *testing.T) {
	source := `def f():
    raise ValueError()
    x = 1
    log(x)
`
	issues := NewUnreachable().Detect(parse(t, source))
	assert.Equal(t, []int{4}, lines(issues))
}

func TestUnreachableBlockLocal(t *testing.T) {
	source := `def f(x):
    if x:
        return 1
    print("reachable")
`
	assert.Empty(t, NewUnreachable().Detect(parse(t, source)))
}

func TestUnreachableNestedBlockAfterReturn(t *testing.T) {
	source := `def f(x):
    return 1
    if x:
        print("dead")
`
	issues := NewUnreachable().Detect(parse(t, source))
	assert.Equal(t, []int{4}, lines(issues))
}

func TestAllLinesInRange(t *testing.T) {
	source := `import os

def f(a):
    b = 1
    b = 2
    return missing
    print(a)

        `
	r := parse(t, strings.TrimRight(source, " "))
	total := strings.Count(string(r.Source), "\n") + 1
	for _, d := range Default() {
		for _, is := range d.Detect(r) {
			assert.GreaterOrEqual(t, is.Line, 1, d.Name())
			assert.LessOrEqual(t, is.Line, total, d.Name())
		}
	}
}
