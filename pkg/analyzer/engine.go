package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/panbanda/pysentry/internal/cache"
	"github.com/panbanda/pysentry/internal/fileproc"
	"github.com/panbanda/pysentry/internal/scanner"
	"github.com/panbanda/pysentry/pkg/config"
	"github.com/panbanda/pysentry/pkg/detector"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/parser"
	"github.com/panbanda/pysentry/pkg/stats"
	"go.uber.org/zap"
)

// Version identifies the detector suite. Cached results written by a
// different version are ignored.
const Version = "1.0.0"

// CacheVersion returns the cache version for results produced under cfg. It
// extends Version with a digest of the detector settings, so changing the
// extra builtins invalidates cached issues.
func CacheVersion(cfg *config.Config) string {
	if cfg == nil || len(cfg.Analysis.Builtins) == 0 {
		return Version
	}
	names := slices.Clone(cfg.Analysis.Builtins)
	slices.Sort(names)
	names = slices.Compact(names)
	digest := cache.HashBytes([]byte(strings.Join(names, "\n")))
	return Version + "+" + digest[:12]
}

// ProgressFunc is called after each file is analyzed.
type ProgressFunc func(current, total int)

// Engine analyzes batches of files. A failure in one file becomes an
// EngineError issue for that file and never stops the batch.
type Engine struct {
	config     *config.Config
	logger     *zap.Logger
	severities models.SeverityTable
	cache      *cache.Cache
	progress   ProgressFunc
	detectors  func() []detector.Detector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCache reuses per-file results for unchanged content.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithProgress registers a callback invoked once per analyzed file.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithDetectors replaces the detector suite. fn is called once per file so
// every file gets fresh detectors.
func WithDetectors(fn func() []detector.Detector) Option {
	return func(e *Engine) {
		e.detectors = fn
	}
}

// New creates an engine from configuration. Severity overrides and extra
// builtins are taken from cfg.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{
		config:     cfg,
		logger:     zap.NewNop(),
		severities: models.DefaultSeverities().Merge(cfg.SeverityOverrides()),
	}
	builtins := cfg.Analysis.Builtins
	e.detectors = func() []detector.Detector {
		ds := detector.Default()
		if len(builtins) > 0 {
			ds[0] = detector.NewUndefined(detector.WithExtraBuiltins(builtins...))
		}
		return ds
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Severities returns the severity table applied to issues.
func (e *Engine) Severities() models.SeverityTable {
	return e.severities
}

// Discover returns the source files under paths, excluding ignored
// directories and files above the configured size limit.
func (e *Engine) Discover(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := scanner.NewScanner(e.config).ScanPaths(paths)
	if err != nil {
		return nil, err
	}
	files, skipped := scanner.FilterBySize(files, e.config.Analysis.MaxFileSize)
	if skipped > 0 {
		e.logger.Debug("skipped large files", zap.Int("count", skipped), zap.Int64("max_file_size", e.config.Analysis.MaxFileSize))
	}
	return files, nil
}

// Run discovers and analyzes the files under paths.
func (e *Engine) Run(ctx context.Context, paths []string) (*models.Report, error) {
	files, err := e.Discover(paths)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeFiles(ctx, files), nil
}

// AnalyzeFiles analyzes files concurrently. The report lists files in path
// order and each file's issues in detector order, independent of worker
// scheduling.
func (e *Engine) AnalyzeFiles(ctx context.Context, files []string) *models.Report {
	files = slices.Clone(files)
	slices.Sort(files)
	files = slices.Compact(files)

	var done atomic.Int32
	total := len(files)
	onProgress := func() {
		n := int(done.Add(1))
		if e.progress != nil {
			e.progress(n, total)
		}
	}

	analyze := func(p *parser.Parser, path string) ([]models.Issue, error) {
		return e.analyzeFile(ctx, p, path)
	}
	results, errs := fileproc.MapFiles(ctx, files, analyze,
		fileproc.WithWorkers(e.config.Analysis.Workers),
		fileproc.WithProgress(onProgress),
	)

	failed := make(map[string]error)
	if errs != nil {
		for _, pe := range errs.Errors {
			failed[pe.Path] = pe.Err
		}
	}

	report := &models.Report{Files: make([]models.FileReport, 0, len(files))}
	for i, path := range files {
		issues := results[i]
		if err, ok := failed[path]; ok {
			e.logger.Warn("analysis failed", zap.String("file", path), zap.Error(err))
			issues = []models.Issue{engineError(err)}
		}
		report.Files = append(report.Files, models.FileReport{
			Path:   path,
			Issues: e.attribute(path, issues),
		})
	}
	report.Summary = Summarize(report)
	return report
}

// AnalyzeSource analyzes an in-memory source and attributes it to path,
// which may be empty.
func (e *Engine) AnalyzeSource(ctx context.Context, path string, source []byte) ([]models.Issue, error) {
	p := parser.New()
	defer p.Close()

	issues, err := Analyze(ctx, p, source, e.detectors())
	if err != nil {
		return nil, err
	}
	return e.attribute(path, issues), nil
}

func (e *Engine) analyzeFile(ctx context.Context, p *parser.Parser, path string) ([]models.Issue, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if e.cache != nil {
		if issues, ok := e.cache.Lookup(path, source); ok {
			e.logger.Debug("cache hit", zap.String("file", path))
			return issues, nil
		}
	}

	issues, err := Analyze(ctx, p, source, e.detectors())
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	if e.cache != nil {
		if err := e.cache.Store(path, source, issues); err != nil {
			e.logger.Debug("cache write failed", zap.String("file", path), zap.Error(err))
		}
	}
	return issues, nil
}

// attribute returns copies of issues carrying the file and severity.
func (e *Engine) attribute(path string, issues []models.Issue) []models.Issue {
	out := make([]models.Issue, len(issues))
	for i, is := range issues {
		is.File = path
		is.Severity = e.severities.Lookup(is.Type)
		out[i] = is
	}
	return out
}

func engineError(err error) models.Issue {
	var pe fileproc.PanicError
	msg := err.Error()
	if errors.As(err, &pe) {
		msg = fmt.Sprintf("internal error: %v", pe.Value)
	}
	return models.Issue{
		Type:    models.IssueEngineError,
		Message: msg,
		Line:    1,
	}
}

// Summarize computes the report summary.
func Summarize(r *models.Report) models.ReportSummary {
	s := models.ReportSummary{
		FilesAnalyzed: len(r.Files),
		ByType:        make(map[models.IssueType]int),
		BySeverity:    make(map[models.Severity]int),
	}
	counts := make([]int, 0, len(r.Files))
	for _, f := range r.Files {
		counts = append(counts, len(f.Issues))
		if len(f.Issues) > 0 {
			s.FilesWithIssue++
		}
		for _, is := range f.Issues {
			s.TotalIssues++
			s.ByType[is.Type]++
			if is.Severity != "" {
				s.BySeverity[is.Severity]++
			}
		}
	}
	dist := stats.Summarize(counts)
	s.IssuesPerFile = dist.Mean
	s.StdDevPerFile = dist.StdDev
	s.MaxPerFile = dist.Max
	return s
}
