package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/fairlens/fairlens/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes fairlens's
auditors as tools that LLMs can invoke. This lets AI assistants audit
their own outputs for bias before presenting them.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "fairlens": {
        "command": "fairlens",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - evaluate_bias             Stereotype bias audit of text
  - evaluate_code_bias        Bias audit of code comments, names, literals
  - compare_code_bias         Differential complexity and divergence of two snippets
  - scan_terminology          Non-inclusive terminology scan
  - generate_counterfactuals  Group-term swapped variants of a text
  - evaluate_model_outputs    Batch audit with per-attribute aggregates
  - analyze_repository_bias   Per-author bias scorecards over git history`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, cfg)
	return server.Run(context.Background())
}
