package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/pysentry/internal/cache"
	"github.com/panbanda/pysentry/internal/output"
	"github.com/panbanda/pysentry/internal/progress"
	"github.com/panbanda/pysentry/pkg/analyzer"
	"github.com/panbanda/pysentry/pkg/config"
	"github.com/panbanda/pysentry/pkg/models"
	"github.com/panbanda/pysentry/pkg/watch"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze Python files for syntax errors and static issues",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "fail-on",
				Value: string(models.SeverityHigh),
				Usage: "Exit with code 2 when an issue at or above this severity is found: HIGH, MEDIUM, LOW, or NONE",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-analyze files as they change",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before re-analyzing a changed file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the result cache even when configured",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide the progress bar",
			},
		},
		Action: runAnalyzeCmd,
	}
}

// parseFailOn returns the severity threshold, or "" for NONE.
func parseFailOn(s string) (models.Severity, error) {
	if strings.EqualFold(s, "none") {
		return "", nil
	}
	sev := models.Severity(strings.ToUpper(s))
	if !sev.Valid() {
		return "", fmt.Errorf("--fail-on must be HIGH, MEDIUM, LOW or NONE (got %q)", s)
	}
	return sev, nil
}

func runAnalyzeCmd(c *cli.Context) error {
	failOn, err := parseFailOn(c.String("fail-on"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := appLogger(c)

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	opts := []analyzer.Option{analyzer.WithLogger(logger)}
	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		rc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, analyzer.CacheVersion(cfg), true)
		if err != nil {
			logger.Warn("cache disabled", zap.Error(err))
		} else {
			opts = append(opts, analyzer.WithCache(rc))
		}
	}

	var tracker *progress.Tracker
	if !c.Bool("no-progress") && !c.Bool("watch") && interactive() {
		tracker = progress.NewWriterTracker(c.App.ErrWriter, "Analyzing", 0)
		opts = append(opts, analyzer.WithProgress(tracker.Update))
	}

	engine := analyzer.New(cfg, opts...)
	paths := getPaths(c)

	report, err := engine.Run(c.Context, paths)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.Finish()
		}
	}
	if err != nil {
		return err
	}

	if report.Summary.FilesAnalyzed == 0 {
		formatter.Warning("No Python files found")
	} else if err := formatter.Output(output.NewIssueReport(report, analyzer.Version)); err != nil {
		return err
	}

	if c.Bool("watch") {
		return watchAndAnalyze(c.Context, c, cfg, engine, formatter, paths)
	}

	if failOn != "" && report.HasSeverity(failOn) {
		return &findingsError{}
	}
	return nil
}

// watchAndAnalyze re-analyzes changed files under the first path until ctx
// is cancelled.
func watchAndAnalyze(ctx context.Context, c *cli.Context, cfg *config.Config, engine *analyzer.Engine, formatter *output.Formatter, paths []string) error {
	root, err := filepath.Abs(paths[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	w, err := watch.NewWatcher(root, cfg,
		watch.WithDebounce(c.Duration("debounce")),
		watch.WithLogger(appLogger(c)))
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Stop()

	w.OnChange(func(ctx context.Context, changed []string) {
		for _, p := range changed {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				rel = p
			}
			fmt.Fprintln(c.App.Writer, color.YellowString("File changed: %s", rel))
		}
		report := engine.AnalyzeFiles(ctx, changed)
		if err := formatter.Output(output.NewIssueReport(report, analyzer.Version)); err != nil {
			formatter.Error("%v", err)
		}
	})

	fmt.Fprintln(c.App.ErrWriter, color.CyanString("Watching for changes in %s... (Ctrl+C to stop)", root))
	err = w.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
