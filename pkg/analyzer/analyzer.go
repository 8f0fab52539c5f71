// Package analyzer runs the detector suite over sources and batches of
// files.
package analyzer

import (
	"context"

	"github.com/panbanda/pysentry/pkg/detector"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
)

// Analyze parses source and runs detectors over it. When the source does
// not parse, the only issue returned is the classified syntax failure and
// no detector runs. Issues keep detector order; callers that want line
// order sort them with models.SortByLine.
func Analyze(ctx context.Context, p *parser.Parser, source []byte, detectors []detector.Detector) ([]models.Issue, error) {
	result, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	return Detect(result, detectors), nil
}

// Detect runs detectors over an existing parse result.
func Detect(result *parser.Result, detectors []detector.Detector) []models.Issue {
	if !result.OK() {
		return []models.Issue{detector.ClassifySyntax(result.Err)}
	}

	issues := []models.Issue{}
	for _, d := range detectors {
		issues = append(issues, d.Detect(result)...)
	}
	return issues
}

// AnalyzeString analyzes source with the default detectors and a
// short-lived parser.
func AnalyzeString(source string) []models.Issue {
	return Detect(parser.ParseString(source), detector.Default())
}
