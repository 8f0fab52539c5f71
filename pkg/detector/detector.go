// Package detector implements the defect detectors run over Python source.
//
// Tree detectors walk the lowered syntax tree once and keep their own
// state; the indentation detector reads raw text only. None of them return
// errors: every anomaly is reported as a models.Issue.
package detector

import (
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
)

// Detector inspects one parsed source.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string
	// Detect returns the issues found, in the order they were encountered.
	Detect(r *parser.Result) []models.Issue
}

// Default returns the detectors run on a successfully parsed source, in
// registration order.
func Default() []Detector {
	return []Detector{
		NewUndefined(),
		NewUnused(),
		NewDuplicate(),
		NewUnreachable(),
		NewIndentation(),
	}
}
