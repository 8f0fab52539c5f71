package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/pysentry/internal/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitFindings = 2
)

// findingsError reports a run that completed but found blocking problems.
type findingsError struct {
	msg string
}

func (e *findingsError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	err := app.RunContext(ctx, args)

	var fe *findingsError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &fe):
		if fe.msg != "" {
			fmt.Fprintln(stderr, fe.msg)
		}
		return exitFindings
	default:
		fmt.Fprintln(stderr, color.RedString("Error: %v", err))
		return exitError
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "pysentry",
		Usage:     "Python syntax and static analysis with validated auto-fixing",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  make(map[string]interface{}),
		Description: `pysentry parses Python sources, reports syntax errors and lightweight
static issues (undefined, unused and duplicate names, unreachable code,
inconsistent indentation), applies rule-based line fixes, and validates a
fixed version against the original before it is adopted.

Exit codes: 0 clean, 1 error, 2 findings at or above --fail-on or a fix
that requires rollback.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PYSENTRY_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, sarif (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging to stderr",
				EnvVars: []string{"PYSENTRY_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := logging.New(c.Bool("debug"))
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			c.App.Metadata["logger"] = logger
			return nil
		},
		After: func(c *cli.Context) error {
			if logger, ok := c.App.Metadata["logger"].(*zap.Logger); ok {
				_ = logger.Sync()
			}
			return nil
		},
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			analyzeCmd(),
			validateCmd(),
			fixCmd(),
			configCmd(),
			mcpCmd(),
		},
	}
}
