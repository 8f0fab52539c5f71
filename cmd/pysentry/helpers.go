package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/panbanda/pysentry/internal/output"
	"github.com/panbanda/pysentry/pkg/config"
	"github.com/panbanda/pysentry/pkg/fixer"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func appLogger(c *cli.Context) *zap.Logger {
	if logger, ok := c.App.Metadata["logger"].(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// loadConfig loads the --config file or the first config in the standard
// locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if result.Source != "" {
		appLogger(c).Debug("loaded config", zap.String("source", result.Source))
	}
	return result.Config, nil
}

// newFormatter builds the formatter from --format, --output and the config.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	format := output.ParseFormat(name)
	if name != "" && !strings.EqualFold(name, string(format)) && !strings.EqualFold(name, "md") {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownFormat, name)
	}

	colored := cfg.Output.Color && !c.Bool("no-color") && !color.NoColor
	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, false)
	}
	return output.NewWriterFormatter(format, c.App.Writer, colored), nil
}

// loadRules returns the rule table from path, the config, or the built-in
// table, in that order.
func loadRules(path string, cfg *config.Config) (fixer.Rules, error) {
	if path == "" {
		path = cfg.Fixer.Rules
	}
	if path == "" {
		return fixer.DefaultRules(), nil
	}
	return fixer.LoadRules(path)
}

// interactive reports whether stderr is a terminal, where a progress bar
// makes sense.
func interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
