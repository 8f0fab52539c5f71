package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/pysentry/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a pysentry configuration file for syntax errors and invalid values.

Examples:
  pysentry config validate                       # Validates default config locations
  pysentry -c pysentry.toml config validate      # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  pysentry config show
  pysentry -c .pysentry/pysentry.yaml config show`,
				Action: runConfigShow,
			},
		},
	}
}

func configOptions(c *cli.Context) []config.LoadOption {
	if path := c.String("config"); path != "" {
		return []config.LoadOption{config.WithPath(path)}
	}
	return nil
}

func runConfigValidate(c *cli.Context) error {
	w := c.App.Writer
	result, err := config.LoadConfig(configOptions(c)...)
	if err != nil {
		fmt.Fprintln(w, color.RedString("Configuration validation failed:"))
		fmt.Fprintf(w, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		fmt.Fprintln(w, color.GreenString("Configuration valid: %s", result.Source))
	} else {
		fmt.Fprintln(w, color.YellowString("No config file found. Default configuration is valid."))
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	w := c.App.Writer
	result, err := config.LoadConfig(configOptions(c)...)
	if err != nil {
		return err
	}

	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(w, string(content))
	return nil
}
