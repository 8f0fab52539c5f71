package models

import "sort"

// IssueType identifies the kind of defect an issue reports.
type IssueType string

const (
	IssueMissingColon        IssueType = "MissingColon"
	IssueIndentationError    IssueType = "IndentationError"
	IssueSyntaxError         IssueType = "SyntaxError"
	IssueUndefinedVariable   IssueType = "UndefinedVariable"
	IssueUnusedVariable      IssueType = "UnusedVariable"
	IssueDuplicateAssignment IssueType = "DuplicateAssignment"
	IssueUnreachableCode     IssueType = "UnreachableCode"
	IssueEngineError         IssueType = "EngineError"
)

// Severity is the urgency assigned to an issue type.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Rank orders severities from LOW (1) to HIGH (3). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// Issue is one reported defect. Detectors fill Type, Message, Line and,
// when known, Column; File and Severity are attributed by the engine.
type Issue struct {
	Type     IssueType `json:"type"`
	Message  string    `json:"message"`
	Line     int       `json:"line"`
	Column   int       `json:"column,omitempty"`
	File     string    `json:"file,omitempty"`
	Severity Severity  `json:"severity,omitempty"`
}

// SeverityTable maps issue types to severities.
type SeverityTable map[IssueType]Severity

// DefaultSeverities is the built-in severity table.
func DefaultSeverities() SeverityTable {
	return SeverityTable{
		IssueSyntaxError:         SeverityHigh,
		IssueMissingColon:        SeverityHigh,
		IssueIndentationError:    SeverityHigh,
		IssueEngineError:         SeverityHigh,
		IssueUndefinedVariable:   SeverityMedium,
		IssueUnreachableCode:     SeverityMedium,
		IssueDuplicateAssignment: SeverityLow,
		IssueUnusedVariable:      SeverityLow,
	}
}

// Lookup returns the severity for an issue type, LOW when unmapped.
func (t SeverityTable) Lookup(typ IssueType) Severity {
	if s, ok := t[typ]; ok {
		return s
	}
	return SeverityLow
}

// Merge returns a copy of t with overrides applied on top.
func (t SeverityTable) Merge(overrides map[string]string) SeverityTable {
	merged := make(SeverityTable, len(t)+len(overrides))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range overrides {
		if s := Severity(v); s.Valid() {
			merged[IssueType(k)] = s
		}
	}
	return merged
}

// FileReport groups the issues found in one file.
type FileReport struct {
	Path   string  `json:"path"`
	Issues []Issue `json:"issues"`
}

// Report is the result of analyzing a set of files.
type Report struct {
	Files   []FileReport  `json:"files"`
	Summary ReportSummary `json:"summary"`
}

// ReportSummary aggregates counts across a report.
type ReportSummary struct {
	FilesAnalyzed  int               `json:"files_analyzed"`
	FilesWithIssue int               `json:"files_with_issues"`
	TotalIssues    int               `json:"total_issues"`
	ByType         map[IssueType]int `json:"by_type"`
	BySeverity     map[Severity]int  `json:"by_severity"`
	IssuesPerFile  float64           `json:"issues_per_file"`
	StdDevPerFile  float64           `json:"stddev_per_file"`
	MaxPerFile     int               `json:"max_per_file"`
}

// Issues returns every issue in the report, file by file.
func (r *Report) Issues() []Issue {
	var all []Issue
	for _, f := range r.Files {
		all = append(all, f.Issues...)
	}
	return all
}

// HasSeverity reports whether any issue is at least as severe as min.
func (r *Report) HasSeverity(min Severity) bool {
	for _, f := range r.Files {
		for _, is := range f.Issues {
			if is.Severity.Rank() >= min.Rank() {
				return true
			}
		}
	}
	return false
}

// SortByLine orders issues by line then column, keeping detector order for
// ties.
func SortByLine(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Column < issues[j].Column
	})
}
