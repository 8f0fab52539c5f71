package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/panbanda/pysentry/pkg/models"
)

// ValidationView renders a validation result.
type ValidationView struct {
	Result *models.ValidationResult
}

func (v *ValidationView) RenderData() any {
	return v.Result
}

func (v *ValidationView) rows(colored bool) [][]string {
	r := v.Result
	paint := func(key, text string) string {
		if colored {
			return SeverityColor(key, text)
		}
		return text
	}
	rows := [][]string{
		{"Status", paint(string(r.Status), string(r.Status))},
		{"Trust score", strconv.Itoa(r.TrustScore)},
		{"Risk level", paint(string(r.RiskLevel), string(r.RiskLevel))},
		{"Readiness", paint(string(r.Readiness), string(r.Readiness))},
		{"Rollback required", strconv.FormatBool(r.RollbackRequired)},
		{"Syntax OK", strconv.FormatBool(r.Metrics.SyntaxOK)},
		{"AST nodes", strconv.Itoa(r.Metrics.ASTNodeCount)},
		{"Lines", fmt.Sprintf("%d -> %d", r.Metrics.OriginalLines, r.Metrics.FixedLines)},
	}
	if r.Metrics.RemovalRatio != nil {
		rows = append(rows, []string{"Removal ratio", strconv.FormatFloat(*r.Metrics.RemovalRatio, 'f', 2, 64)})
	}
	rows = append(rows, []string{"Fingerprint", r.Metrics.OriginalFingerprint + " -> " + r.Metrics.FixedFingerprint})
	return rows
}

func (v *ValidationView) RenderText(w io.Writer, colored bool) error {
	title := "Validation (v" + v.Result.Version + ")"
	if err := NewTable(title, []string{"Check", "Value"}, v.rows(colored), nil, nil).RenderText(w, colored); err != nil {
		return err
	}
	writeMessages(w, "Errors", v.Result.Errors, "-")
	writeMessages(w, "Warnings", v.Result.Warnings, "-")
	return nil
}

func (v *ValidationView) RenderMarkdown(w io.Writer) error {
	title := "Validation (v" + v.Result.Version + ")"
	if err := NewTable(title, []string{"Check", "Value"}, v.rows(false), nil, nil).RenderMarkdown(w); err != nil {
		return err
	}

	var rows [][]string
	for _, cat := range models.Categories {
		for _, msg := range v.Result.Categories[cat] {
			rows = append(rows, []string{string(cat), msg})
		}
	}
	if len(rows) > 0 {
		return NewTable("Findings", []string{"Category", "Message"}, rows, nil, nil).RenderMarkdown(w)
	}
	return nil
}

func writeMessages(w io.Writer, title string, msgs []string, bullet string) {
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, m := range msgs {
		fmt.Fprintf(w, "  %s %s\n", bullet, m)
	}
	fmt.Fprintln(w)
}

// FixView renders the outcome of an automatic fix.
type FixView struct {
	Path       string                   `json:"path"`
	Log        []string                 `json:"log"`
	Written    bool                     `json:"written"`
	Fixed      string                   `json:"fixed,omitempty"`
	Validation *models.ValidationResult `json:"validation"`
}

func (v *FixView) RenderData() any {
	return v
}

func (v *FixView) RenderText(w io.Writer, colored bool) error {
	writeMessages(w, "Fixes for "+v.Path, v.Log, "*")
	if len(v.Log) == 0 {
		fmt.Fprintf(w, "No fixes for %s\n\n", v.Path)
	}
	if err := (&ValidationView{Result: v.Validation}).RenderText(w, colored); err != nil {
		return err
	}
	if v.Written {
		fmt.Fprintf(w, "Wrote %s\n", v.Path)
	}
	return nil
}

func (v *FixView) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Fixes for `%s`\n\n", v.Path)
	for _, entry := range v.Log {
		fmt.Fprintf(w, "- %s\n", entry)
	}
	fmt.Fprintln(w)
	if v.Fixed != "" {
		fmt.Fprintf(w, "```python\n%s\n```\n\n", strings.TrimRight(v.Fixed, "\n"))
	}
	return (&ValidationView{Result: v.Validation}).RenderMarkdown(w)
}
