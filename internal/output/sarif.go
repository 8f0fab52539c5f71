package output

import (
	"path/filepath"
	"strings"

	"github.com/panbanda/pysentry/pkg/models"
)

// SARIF 2.1.0 document types, limited to the fields pysentry emits.

type SARIFLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []SARIFRule `json:"rules,omitempty"`
}

type SARIFRule struct {
	ID               string       `json:"id"`
	ShortDescription SARIFMessage `json:"shortDescription"`
}

type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations"`
}

type SARIFMessage struct {
	Text string `json:"text"`
}

type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region"`
}

type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

var ruleDescriptions = map[models.IssueType]string{
	models.IssueMissingColon:        "Compound statement header is missing its colon",
	models.IssueIndentationError:    "Line is indented inconsistently with its block",
	models.IssueSyntaxError:         "Source does not parse",
	models.IssueUndefinedVariable:   "Name is read before any visible binding",
	models.IssueUnusedVariable:      "Name is assigned but never read",
	models.IssueDuplicateAssignment: "Name is reassigned in the same scope",
	models.IssueUnreachableCode:     "Statement follows a return or raise",
	models.IssueEngineError:         "File could not be analyzed",
}

// NewSARIF converts a report into a SARIF log with one run.
func NewSARIF(report *models.Report, version string) *SARIFLog {
	results := make([]SARIFResult, 0, report.Summary.TotalIssues)
	used := make(map[models.IssueType]bool)

	for _, f := range report.Files {
		for _, is := range f.Issues {
			used[is.Type] = true
			path := is.File
			if path == "" {
				path = f.Path
			}
			results = append(results, SARIFResult{
				RuleID:  string(is.Type),
				Level:   sarifLevel(is.Severity),
				Message: SARIFMessage{Text: strings.TrimSpace(is.Message)},
				Locations: []SARIFLocation{{
					PhysicalLocation: SARIFPhysicalLocation{
						ArtifactLocation: SARIFArtifactLocation{URI: sarifURI(path)},
						Region:           SARIFRegion{StartLine: max(is.Line, 1), StartColumn: is.Column},
					},
				}},
			})
		}
	}

	var rules []SARIFRule
	for _, typ := range sortedTypes(used) {
		rules = append(rules, SARIFRule{ID: string(typ), ShortDescription: SARIFMessage{Text: ruleDescriptions[typ]}})
	}

	return &SARIFLog{
		Version: "2.1.0",
		Schema:  sarifSchema,
		Runs: []SARIFRun{{
			Tool: SARIFTool{Driver: SARIFDriver{
				Name:           "pysentry",
				Version:        version,
				InformationURI: "https://github.com/panbanda/pysentry",
				Rules:          rules,
			}},
			Results: results,
		}},
	}
}

func sortedTypes(used map[models.IssueType]bool) []models.IssueType {
	var out []models.IssueType
	for _, typ := range []models.IssueType{
		models.IssueSyntaxError,
		models.IssueMissingColon,
		models.IssueIndentationError,
		models.IssueUndefinedVariable,
		models.IssueUnusedVariable,
		models.IssueDuplicateAssignment,
		models.IssueUnreachableCode,
		models.IssueEngineError,
	} {
		if used[typ] {
			out = append(out, typ)
		}
	}
	return out
}

func sarifLevel(s models.Severity) string {
	switch s {
	case models.SeverityHigh:
		return "error"
	case models.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func sarifURI(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return "UNKNOWN"
	}
	return p
}
