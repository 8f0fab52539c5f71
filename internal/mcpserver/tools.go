package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/pysentry/internal/output"
	"github.com/panbanda/pysentry/pkg/analyzer"
	"github.com/panbanda/pysentry/pkg/fixer"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/validator"
	"go.uber.org/zap"
)

// FormatInput is accepted by every tool.
type FormatInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// SourceInput carries a single source text.
type SourceInput struct {
	FormatInput
	Source string `json:"source" jsonschema:"Python source text."`
	Path   string `json:"path,omitempty" jsonschema:"File name used in findings. Default <source>."`
}

// PathsInput selects files and directories to analyze.
type PathsInput struct {
	FormatInput
	Paths []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
}

// ValidateInput is an original source and its proposed fix.
type ValidateInput struct {
	FormatInput
	Original string `json:"original" jsonschema:"Source before the fix."`
	Fixed    string `json:"fixed" jsonschema:"Source after the fix."`
}

// fixResult is what fix_source returns.
type fixResult struct {
	Issues     []models.Issue           `json:"issues"`
	Fixed      string                   `json:"fixed"`
	Log        []string                 `json:"log"`
	Adoptable  bool                     `json:"adoptable"`
	Validation *models.ValidationResult `json:"validation"`
}

func getPaths(input PathsInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(format string) output.Format {
	switch strings.ToLower(format) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func sourcePath(input SourceInput) string {
	if input.Path == "" {
		return "<source>"
	}
	return input.Path
}

// formatOutput renders data for a tool response. Renderable values use
// their markdown form; everything else is encoded as TOON or JSON.
func formatOutput(data any, format output.Format) (string, error) {
	var b strings.Builder
	f := output.NewWriterFormatter(format, &b, false)
	if err := f.Output(data); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeSource(ctx context.Context, req *mcp.CallToolRequest, input SourceInput) (*mcp.CallToolResult, any, error) {
	issues, err := s.engine.AnalyzeSource(ctx, sourcePath(input), []byte(input.Source))
	if err != nil {
		return toolError(err.Error())
	}
	out := struct {
		Issues []models.Issue `json:"issues"`
	}{issues}
	return toolResult(out, getFormat(input.Format))
}

func (s *Server) handleAnalyzePaths(ctx context.Context, req *mcp.CallToolRequest, input PathsInput) (*mcp.CallToolResult, any, error) {
	files, err := s.engine.Discover(getPaths(input))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no Python files found")
	}

	report := s.engine.AnalyzeFiles(ctx, files)
	return toolResult(output.NewIssueReport(report, analyzer.Version), getFormat(input.Format))
}

func (s *Server) handleValidateFix(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, any, error) {
	result := validator.New(validator.WithLogger(s.logger)).Validate(ctx, input.Original, input.Fixed)
	s.ledger.Review(result)
	return toolResult(&output.ValidationView{Result: result}, getFormat(input.Format))
}

func (s *Server) handleFixSource(ctx context.Context, req *mcp.CallToolRequest, input SourceInput) (*mcp.CallToolResult, any, error) {
	p := &fixer.Pipeline{
		Engine:    s.engine,
		Fixer:     fixer.New(s.rules, fixer.WithLogger(s.logger)),
		Validator: validator.New(validator.WithLogger(s.logger)),
		Ledger:    s.ledger,
	}
	outcome, err := p.Run(ctx, sourcePath(input), []byte(input.Source))
	if err != nil {
		s.logger.Warn("fix failed", zap.String("path", sourcePath(input)), zap.Error(err))
		return toolError(err.Error())
	}

	return toolResult(fixResult{
		Issues:     outcome.Issues,
		Fixed:      outcome.Fixed,
		Log:        outcome.Log,
		Adoptable:  outcome.Adoptable(),
		Validation: outcome.Validation,
	}, getFormat(input.Format))
}
