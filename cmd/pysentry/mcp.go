package main

import (
	"github.com/panbanda/pysentry/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes pysentry's
analyzer, fixer and validator as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "pysentry": {
        "command": "pysentry",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_source   Analyze a Python source text
  - analyze_paths    Analyze Python files and directories
  - validate_fix     Validate a fixed source against the original
  - fix_source       Apply rule-based fixes and validate them`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	rules, err := loadRules("", cfg)
	if err != nil {
		return err
	}

	server := mcpserver.NewServer(version,
		mcpserver.WithConfig(cfg),
		mcpserver.WithLogger(appLogger(c)),
		mcpserver.WithRules(rules))
	return server.Run(c.Context)
}
