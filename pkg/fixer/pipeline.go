package fixer

import (
	"context"

	"github.com/panbanda/pysentry/pkg/analyzer"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/validator"
)

// Outcome is the result of analyzing, fixing and validating one source.
type Outcome struct {
	Issues     []models.Issue           `json:"issues"`
	Fixed      string                   `json:"fixed"`
	Log        []string                 `json:"log"`
	Validation *models.ValidationResult `json:"validation"`
}

// Adoptable reports whether the fixed source may replace the original.
func (o *Outcome) Adoptable() bool {
	return o.Validation.Status == models.StatusPass
}

// Pipeline runs analyze, fix and validate in sequence.
type Pipeline struct {
	Engine    *analyzer.Engine
	Fixer     *Fixer
	Validator *validator.Validator
	// Ledger, when set, records rollback recommendations.
	Ledger *validator.RollbackLedger
}

// Run analyzes source, applies fixes for its issues and validates the
// result against the original.
func (p *Pipeline) Run(ctx context.Context, path string, source []byte) (*Outcome, error) {
	issues, err := p.Engine.AnalyzeSource(ctx, path, source)
	if err != nil {
		return nil, err
	}

	original := string(source)
	fix := p.Fixer.Apply(original, FindingsFromIssues(issues))
	result := p.Validator.Validate(ctx, original, fix.Source)
	if p.Ledger != nil {
		p.Ledger.Review(result)
	}

	return &Outcome{
		Issues:     issues,
		Fixed:      fix.Source,
		Log:        fix.Log,
		Validation: result,
	}, nil
}
