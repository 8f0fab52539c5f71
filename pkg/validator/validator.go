// Package validator judges whether a rewritten source is safe to adopt in
// place of its original.
//
// Validation runs six phases in a fixed order (syntax, tree integrity,
// structure diff, semantic, security, stability). Every phase contributes
// errors or warnings, and the totals are folded into a deterministic trust
// score, risk level and readiness verdict.
package validator

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/panbanda/pysentry/pkg/ast"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
	"go.uber.org/zap"
)

// Version is reported in every result.
const Version = "5.1.0"

// Thresholds applied by the phases.
const (
	MaxRemovalRatio = 0.6
	MinASTNodes     = 5
)

// Score deductions.
const (
	phasePenalty   = 25
	errorPenalty   = 12
	warningPenalty = 6
)

// BannedCalls are the dynamic evaluation primitives rejected by the
// security phase.
var BannedCalls = []string{"eval", "exec", "compile", "__import__"}

// Messages produced by the phases.
const (
	MsgTooSmall       = "AST integrity failure: code structure too small"
	MsgUnparsable     = "AST integrity failure: fixed code unparsable"
	MsgRegression     = "Structural regression: excessive code removal"
	MsgInfiniteLoop   = "Infinite loop risk: while True without break"
	MsgBareExcept     = "Bare except detected"
	MsgSmallScript    = "Very small script – review recommended"
	msgSecurityFormat = "Security violation: use of %s()"
)

// Validator runs validations. The zero value is not usable; call New.
type Validator struct {
	logger *zap.Logger
	trees  *parser.TreeCache
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the validator logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithTreeCache parses through c instead of a cache private to each call.
// The cache is keyed by exact source content, so sharing it across calls
// never returns a tree for different text. The caller owns c.
func WithTreeCache(c *parser.TreeCache) Option {
	return func(v *Validator) {
		v.trees = c
	}
}

// New creates a validator.
func New(opts ...Option) *Validator {
	v := &Validator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate compares fixed against original with a default validator.
func Validate(original, fixed string) *models.ValidationResult {
	return New().Validate(context.Background(), original, fixed)
}

// run holds the state of one validation call.
type run struct {
	original string
	fixed    string
	parsed   *parser.Result

	errors     []string
	warnings   []string
	categories map[models.Category][]string
	metrics    models.ValidationMetrics
}

func (r *run) addError(msg string) {
	r.errors = append(r.errors, msg)
	r.categorize(msg)
}

func (r *run) addWarning(msg string) {
	r.warnings = append(r.warnings, msg)
	r.categorize(msg)
}

func (r *run) categorize(msg string) {
	cat := Categorize(msg)
	r.categories[cat] = append(r.categories[cat], msg)
}

// phase reports whether it passed.
type phase func(*run) bool

// Validate runs every phase and scores the result. It never panics on
// unparsable input: when fixed does not parse, the tree-dependent phases
// fail together with a single error.
func (v *Validator) Validate(ctx context.Context, original, fixed string) *models.ValidationResult {
	trees := v.trees
	if trees == nil {
		trees = parser.NewTreeCache()
		defer trees.Close()
	}

	r := &run{
		original:   original,
		fixed:      fixed,
		categories: make(map[models.Category][]string, len(models.Categories)),
	}
	for _, cat := range models.Categories {
		r.categories[cat] = []string{}
	}

	parsed, err := trees.Parse(ctx, []byte(fixed))
	if err != nil {
		// The parser itself failed, for example on cancellation.
		parsed = &parser.Result{Err: &parser.SyntaxError{Kind: parser.KindSyntaxError, Msg: err.Error(), Line: 1, Column: 1}}
	}
	r.parsed = parsed

	results := make([]bool, 0, 6)
	results = append(results, syntaxPhase(r))
	if r.parsed.OK() {
		results = append(results,
			integrityPhase(r),
			structurePhase(r),
			semanticPhase(r),
			securityPhase(r),
		)
	} else {
		countLines(r)
		r.addError(MsgUnparsable)
		results = append(results, false, false, false, false)
	}
	results = append(results, stabilityPhase(r))

	failed := 0
	for _, ok := range results {
		if !ok {
			failed++
		}
	}

	trust := TrustScore(failed, len(r.errors), len(r.warnings))
	rollback := trust < 50 || !results[0]
	status := models.StatusPass
	if rollback {
		status = models.StatusFail
	}

	r.metrics.ValidatorVersion = Version
	r.metrics.TrustScore = trust
	r.metrics.ErrorCount = len(r.errors)
	r.metrics.WarningCount = len(r.warnings)
	r.metrics.PhasesFailed = failed
	r.metrics.OriginalFingerprint = Fingerprint(original)
	r.metrics.FixedFingerprint = Fingerprint(fixed)

	result := &models.ValidationResult{
		Version:          Version,
		Status:           status,
		TrustScore:       trust,
		RiskLevel:        Risk(original, fixed),
		Readiness:        ReadinessFor(trust),
		Warnings:         nonNil(r.warnings),
		Errors:           nonNil(r.errors),
		RollbackRequired: rollback,
		Metrics:          r.metrics,
		Categories:       r.categories,
	}

	v.logger.Debug("validated",
		zap.String("fixed", r.metrics.FixedFingerprint),
		zap.Int("trust_score", trust),
		zap.String("status", string(status)),
	)
	return result
}

func syntaxPhase(r *run) bool {
	if r.parsed.OK() {
		r.metrics.SyntaxOK = true
		return true
	}
	err := r.parsed.Err
	r.addError(fmt.Sprintf("%s: %s", err.Kind, err.Error()))
	return false
}

func integrityPhase(r *run) bool {
	n := ast.PythonCount(r.parsed.Tree)
	r.metrics.ASTNodeCount = n
	if n < MinASTNodes {
		r.addError(MsgTooSmall)
		return false
	}
	return true
}

func countLines(r *run) (orig, fixed int) {
	orig = LineCount(r.original)
	fixed = LineCount(r.fixed)
	r.metrics.OriginalLines = orig
	r.metrics.FixedLines = fixed
	return orig, fixed
}

func structurePhase(r *run) bool {
	orig, fixed := countLines(r)
	if orig == 0 {
		return true
	}

	ratio := float64(orig-fixed) / float64(max(orig, 1))
	rounded := math.RoundToEven(ratio*100) / 100
	r.metrics.RemovalRatio = &rounded
	if ratio > MaxRemovalRatio {
		r.addError(MsgRegression)
		return false
	}
	return true
}

func semanticPhase(r *run) bool {
	ast.Walk(r.parsed.Tree, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindWhile:
			if n.Test.IsTrue() && !ast.Contains(n, ast.KindBreak) {
				r.addWarning(MsgInfiniteLoop)
			}
		case ast.KindExceptHandler:
			if n.Test == nil {
				r.addWarning(MsgBareExcept)
			}
		}
		return true
	})
	return true
}

func securityPhase(r *run) bool {
	ok := true
	ast.Walk(r.parsed.Tree, func(n *ast.Node) bool {
		if n.Kind != ast.KindCall || n.Func == nil || n.Func.Kind != ast.KindName {
			return true
		}
		for _, banned := range BannedCalls {
			if n.Func.Name == banned {
				r.addError(fmt.Sprintf(msgSecurityFormat, banned))
				ok = false
			}
		}
		return true
	})
	return ok
}

func stabilityPhase(r *run) bool {
	newlines := 0
	for i := 0; i < len(r.fixed); i++ {
		if r.fixed[i] == '\n' {
			newlines++
		}
	}
	if newlines < 2 {
		r.addWarning(MsgSmallScript)
	}
	return true
}

// TrustScore folds phase failures, errors and warnings into [0, 100].
func TrustScore(phasesFailed, errors, warnings int) int {
	score := 100 - phasePenalty*phasesFailed - errorPenalty*errors - warningPenalty*warnings
	return min(max(score, 0), 100)
}

// Risk buckets the relative change in length, in characters, between
// original and fixed.
func Risk(original, fixed string) models.RiskLevel {
	o := utf8.RuneCountInString(original)
	f := utf8.RuneCountInString(fixed)
	delta := math.Abs(float64(f-o)) / float64(max(o, 1))
	switch {
	case delta > 0.6:
		return models.RiskCritical
	case delta > 0.3:
		return models.RiskHigh
	case delta > 0.1:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// ReadinessFor maps a trust score to its verdict.
func ReadinessFor(trust int) models.Readiness {
	switch {
	case trust >= 90:
		return models.ReadinessProduction
	case trust >= 70:
		return models.ReadinessSafe
	case trust >= 50:
		return models.ReadinessReview
	default:
		return models.ReadinessUnsafe
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
