package main

import (
	"fmt"
	"os"

	"github.com/panbanda/pysentry/internal/output"
	"github.com/panbanda/pysentry/pkg/validator"
	"github.com/urfave/cli/v2"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a fixed version of a Python file against the original",
		ArgsUsage: "ORIGINAL FIXED",
		Description: `Runs the phased validator (syntax, integrity, structure, semantics,
security, stability) over FIXED, comparing it with ORIGINAL, and reports the
trust score, risk level and readiness verdict.

Exits with code 2 when the fix requires rollback.`,
		Action: runValidateCmd,
	}
}

func runValidateCmd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("validate requires ORIGINAL and FIXED paths")
	}
	original, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("reading original: %w", err)
	}
	fixed, err := os.ReadFile(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("reading fixed: %w", err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	logger := appLogger(c)
	result := validator.New(validator.WithLogger(logger)).Validate(c.Context, string(original), string(fixed))
	validator.NewRollbackLedger(logger).Review(result)

	if err := formatter.Output(&output.ValidationView{Result: result}); err != nil {
		return err
	}
	if result.RollbackRequired {
		return &findingsError{msg: "rollback required: " + string(result.Readiness)}
	}
	return nil
}
