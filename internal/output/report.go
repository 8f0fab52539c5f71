package output

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/pysentry/pkg/models"
)

// IssueReport renders an analysis report.
type IssueReport struct {
	Report  *models.Report
	Version string
}

// NewIssueReport wraps report for rendering.
func NewIssueReport(report *models.Report, version string) *IssueReport {
	return &IssueReport{Report: report, Version: version}
}

func (r *IssueReport) RenderData() any {
	return r.Report
}

func (r *IssueReport) RenderText(w io.Writer, colored bool) error {
	for _, f := range r.Report.Files {
		if len(f.Issues) == 0 {
			continue
		}
		rows := make([][]string, 0, len(f.Issues))
		for _, is := range f.Issues {
			sev := string(is.Severity)
			if colored {
				sev = SeverityColor(sev, sev)
			}
			rows = append(rows, []string{strconv.Itoa(is.Line), sev, string(is.Type), is.Message})
		}
		t := NewTable(f.Path, []string{"Line", "Severity", "Type", "Message"}, rows, nil, nil)
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}

	s := r.Report.Summary
	summary := fmt.Sprintf("%d issues in %d of %d files", s.TotalIssues, s.FilesWithIssue, s.FilesAnalyzed)
	if s.TotalIssues == 0 {
		summary = fmt.Sprintf("No issues found in %d files", s.FilesAnalyzed)
	}
	if colored {
		c := color.New(color.FgGreen)
		if s.BySeverity[models.SeverityHigh] > 0 {
			c = color.New(color.FgRed)
		}
		c.Fprintln(w, summary)
	} else {
		fmt.Fprintln(w, summary)
	}
	if s.TotalIssues > 0 {
		fmt.Fprintf(w, "HIGH %d  MEDIUM %d  LOW %d\n",
			s.BySeverity[models.SeverityHigh], s.BySeverity[models.SeverityMedium], s.BySeverity[models.SeverityLow])
	}
	return nil
}

func (r *IssueReport) RenderMarkdown(w io.Writer) error {
	fmt.Fprintln(w, "# Analysis Report")
	fmt.Fprintln(w)

	s := r.Report.Summary
	fmt.Fprintf(w, "- Files analyzed: %d\n", s.FilesAnalyzed)
	fmt.Fprintf(w, "- Files with issues: %d\n", s.FilesWithIssue)
	fmt.Fprintf(w, "- Total issues: %d\n", s.TotalIssues)
	fmt.Fprintf(w, "- Issues per file: %.2f (stddev %.2f, max %d)\n", s.IssuesPerFile, s.StdDevPerFile, s.MaxPerFile)
	fmt.Fprintln(w)

	if len(s.ByType) > 0 {
		types := make([]string, 0, len(s.ByType))
		for typ := range s.ByType {
			types = append(types, string(typ))
		}
		slices.Sort(types)
		rows := make([][]string, 0, len(types))
		for _, typ := range types {
			rows = append(rows, []string{typ, strconv.Itoa(s.ByType[models.IssueType(typ)])})
		}
		if err := NewTable("Issues by Type", []string{"Type", "Count"}, rows, nil, nil).RenderMarkdown(w); err != nil {
			return err
		}
	}

	for _, f := range r.Report.Files {
		if len(f.Issues) == 0 {
			continue
		}
		rows := make([][]string, 0, len(f.Issues))
		for _, is := range f.Issues {
			rows = append(rows, []string{strconv.Itoa(is.Line), string(is.Severity), string(is.Type), is.Message})
		}
		title := "`" + strings.ReplaceAll(f.Path, "`", "") + "`"
		if err := NewTable(title, []string{"Line", "Severity", "Type", "Message"}, rows, nil, nil).RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func (r *IssueReport) RenderSARIF() *SARIFLog {
	return NewSARIF(r.Report, r.Version)
}
