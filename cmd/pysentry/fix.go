package main

import (
	"fmt"
	"os"

	"github.com/panbanda/pysentry/internal/output"
	"github.com/panbanda/pysentry/pkg/analyzer"
	"github.com/panbanda/pysentry/pkg/fixer"
	"github.com/panbanda/pysentry/pkg/validator"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func fixCmd() *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "Apply rule-based fixes to a Python file and validate the result",
		ArgsUsage: "FILE",
		Description: `Analyzes FILE, applies the fixer rule for each finding from the last
line to the first, then validates the fixed text against the original.

With --write the file is replaced only when validation passes. Exits with
code 2 when the fix requires rollback.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write the fixed source back to FILE when validation passes",
			},
			&cli.StringFlag{
				Name:  "rules",
				Usage: "Path to a JSON or YAML fixer rule table",
			},
		},
		Action: runFixCmd,
	}
}

func runFixCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("fix requires exactly one FILE")
	}
	path := c.Args().First()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	rules, err := loadRules(c.String("rules"), cfg)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	logger := appLogger(c)
	pipeline := &fixer.Pipeline{
		Engine:    analyzer.New(cfg, analyzer.WithLogger(logger)),
		Fixer:     fixer.New(rules, fixer.WithLogger(logger)),
		Validator: validator.New(validator.WithLogger(logger)),
		Ledger:    validator.NewRollbackLedger(logger),
	}
	outcome, err := pipeline.Run(c.Context, path, source)
	if err != nil {
		return err
	}

	written := false
	if c.Bool("write") && outcome.Adoptable() && outcome.Fixed != string(source) {
		if err := os.WriteFile(path, []byte(outcome.Fixed), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		written = true
		logger.Debug("wrote fixed file", zap.String("path", path), zap.Int("fixes", len(outcome.Log)))
	}

	view := &output.FixView{
		Path:       path,
		Log:        outcome.Log,
		Written:    written,
		Fixed:      outcome.Fixed,
		Validation: outcome.Validation,
	}
	if err := formatter.Output(view); err != nil {
		return err
	}
	if outcome.Validation.RollbackRequired {
		return &findingsError{msg: "rollback required: fixed source was not adopted"}
	}
	return nil
}
