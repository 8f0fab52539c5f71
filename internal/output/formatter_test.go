package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/pysentry/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.Report {
	return &models.Report{
		Files: []models.FileReport{
			{
				Path: "pkg/app.py",
				Issues: []models.Issue{
					{Type: models.IssueUndefinedVariable, Message: "Variable 'z' used before assignment", Line: 3, Column: 7, File: "pkg/app.py", Severity: models.SeverityMedium},
					{Type: models.IssueMissingColon, Message: "expected ':'", Line: 9, Column: 8, File: "pkg/app.py", Severity: models.SeverityHigh},
				},
			},
			{Path: "pkg/clean.py", Issues: []models.Issue{}},
		},
		Summary: models.ReportSummary{
			FilesAnalyzed:  2,
			FilesWithIssue: 1,
			TotalIssues:    2,
			ByType:         map[models.IssueType]int{models.IssueUndefinedVariable: 1, models.IssueMissingColon: 1},
			BySeverity:     map[models.Severity]int{models.SeverityHigh: 1, models.SeverityMedium: 1},
			IssuesPerFile:  1,
			StdDevPerFile:  1,
			MaxPerFile:     2,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"toon", FormatTOON},
		{"SARIF", FormatSARIF},
		{"", FormatText},
		{"bogus", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFormat(tt.input))
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	require.NoError(t, err)
	assert.False(t, f.Colored(), "color is disabled for files")

	require.NoError(t, f.Output(map[string]int{"a": 1}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(data))
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, "/nonexistent/directory/file.txt", false)
	assert.Error(t, err)
}

func TestIssueReportText(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	require.NoError(t, f.Output(NewIssueReport(sampleReport(), "1.0.0")))

	out := buf.String()
	assert.Contains(t, out, "pkg/app.py")
	assert.Contains(t, out, "UndefinedVariable")
	assert.Contains(t, out, "expected ':'")
	assert.NotContains(t, out, "pkg/clean.py")
	assert.Contains(t, out, "2 issues in 1 of 2 files")
	assert.Contains(t, out, "HIGH 1  MEDIUM 1  LOW 0")
}

func TestIssueReportTextClean(t *testing.T) {
	var buf bytes.Buffer
	report := &models.Report{Summary: models.ReportSummary{FilesAnalyzed: 3}}
	require.NoError(t, NewIssueReport(report, "").RenderText(&buf, false))
	assert.Equal(t, "No issues found in 3 files\n", buf.String())
}

func TestIssueReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatJSON, &buf, false).Output(NewIssueReport(sampleReport(), "1.0.0")))

	var decoded struct {
		Files []struct {
			Path   string           `json:"path"`
			Issues []map[string]any `json:"issues"`
		} `json:"files"`
		Summary map[string]any `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Files, 2)
	issue := decoded.Files[0].Issues[0]
	assert.Equal(t, "UndefinedVariable", issue["type"])
	assert.Equal(t, float64(3), issue["line"])
	assert.Equal(t, "MEDIUM", issue["severity"])
	assert.Equal(t, float64(2), decoded.Summary["total_issues"])
}

func TestIssueReportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatMarkdown, &buf, false).Output(NewIssueReport(sampleReport(), "1.0.0")))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Analysis Report"))
	assert.Contains(t, out, "## Issues by Type")
	assert.Contains(t, out, "| MissingColon | 1 |")
	assert.Contains(t, out, "## `pkg/app.py`")
	assert.Contains(t, out, "| 9 | HIGH | MissingColon | expected ':' |")
}

func TestIssueReportTOON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatTOON, &buf, false).Output(NewIssueReport(sampleReport(), "1.0.0")))

	out := buf.String()
	assert.Contains(t, out, "files")
	assert.Contains(t, out, "UndefinedVariable")
	assert.Contains(t, out, "pkg/app.py")
}

func TestIssueReportSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatSARIF, &buf, false).Output(NewIssueReport(sampleReport(), "1.0.0")))

	var log SARIFLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)

	run := log.Runs[0]
	assert.Equal(t, "pysentry", run.Tool.Driver.Name)
	assert.Equal(t, "1.0.0", run.Tool.Driver.Version)
	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "MissingColon", run.Tool.Driver.Rules[0].ID)

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "UndefinedVariable", first.RuleID)
	assert.Equal(t, "warning", first.Level)
	assert.Equal(t, "pkg/app.py", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 3, first.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "error", run.Results[1].Level)
}

func TestSARIFURI(t *testing.T) {
	assert.Equal(t, "a/b.py", sarifURI("../../a/b.py"))
	assert.Equal(t, "a.py", sarifURI("./a.py"))
	assert.Equal(t, "UNKNOWN", sarifURI(" "))
}

func TestSARIFFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("T", []string{"A"}, [][]string{{"1"}}, nil, nil)
	require.NoError(t, NewWriterFormatter(FormatSARIF, &buf, false).Output(table))
	assert.JSONEq(t, `[{"A": "1"}]`, buf.String())
}

func TestTableRenderText(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("Results", []string{"File", "Count"}, [][]string{{"a.py", "2"}}, []string{"Total", "2"}, nil)
	require.NoError(t, table.RenderText(&buf, false))

	out := buf.String()
	for _, want := range []string{"Results", "FILE", "COUNT", "a.py", "Total"} {
		assert.Contains(t, out, want)
	}
}

func TestTableRenderMarkdownEscapesPipes(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("", []string{"Message"}, [][]string{{"a | b"}}, nil, nil)
	require.NoError(t, table.RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), `| a \| b |`)
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}}, nil, nil)
	assert.Equal(t, []map[string]string{{"A": "1", "B": "2"}}, table.RenderData())

	wrapped := NewTable("", nil, nil, nil, "data")
	assert.Equal(t, "data", wrapped.RenderData())
}

func TestOutputRawData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatMarkdown, &buf, false).Output(map[string]int{"n": 1}))
	assert.True(t, strings.HasPrefix(buf.String(), "```json\n"))
	assert.True(t, strings.HasSuffix(buf.String(), "```\n"))
}

func TestMarshalTOONUsesJSONNames(t *testing.T) {
	out, err := MarshalTOON(models.Issue{Type: models.IssueUnusedVariable, Message: "m", Line: 2})
	require.NoError(t, err)
	assert.Contains(t, out, "type")
	assert.Contains(t, out, "UnusedVariable")
	assert.NotContains(t, out, "Severity")
}

func TestMessageHelpers(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	f.Success("done %d", 1)
	f.Warning("careful")
	f.Error("broken")
	assert.Equal(t, "done 1\nWARNING: careful\nERROR: broken\n", buf.String())
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, "plain", SeverityColor("unknown", "plain"))
	assert.Contains(t, SeverityColor("HIGH", "x"), "x")
}
