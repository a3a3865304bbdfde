package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/fairlens/fairlens/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new fairlens configuration file",
		Description: `Creates a fairlens.yaml configuration file in the current directory
with the documented defaults and the full embedded lexicon, ready to
customize.

Examples:
  fairlens init                          # Creates fairlens.yaml in current directory
  fairlens init -o .fairlens/fairlens.yaml
  fairlens init --force                  # Overwrite existing config file`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "fairlens.yaml",
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	outputPath := c.String("output")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Println("Edit this file to customize thresholds and lexicons.")
	return nil
}

func generateDefaultConfig() (string, error) {
	cfg := config.DefaultConfig()

	// The lexicon structs carry json tags matching the config key names,
	// so a JSON round-trip yields a plain map yaml can render.
	var lexicon map[string]any
	raw, err := json.Marshal(cfg.Lexicon)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lexicon: %w", err)
	}
	if err := json.Unmarshal(raw, &lexicon); err != nil {
		return "", fmt.Errorf("failed to marshal lexicon: %w", err)
	}

	doc := map[string]any{
		"thresholds": map[string]any{
			"complexity_ratio":      cfg.Thresholds.ComplexityRatio,
			"nesting_delta":         cfg.Thresholds.NestingDelta,
			"decision_delta":        cfg.Thresholds.DecisionDelta,
			"stereotype_disparity":  cfg.Thresholds.StereotypeDisparity,
			"category_disparity":    cfg.Thresholds.CategoryDisparity,
			"channel_disparity":     cfg.Thresholds.ChannelDisparity,
			"stereotype_score":      cfg.Thresholds.StereotypeScore,
			"microaggression_score": cfg.Thresholds.MicroaggressionScore,
			"suite_pass_rate":       cfg.Thresholds.SuitePassRate,
		},
		"repository": map[string]any{
			"max_commits":            cfg.Repository.MaxCommits,
			"min_commits_per_author": cfg.Repository.MinCommitsPerAuthor,
			"anonymize_authors":      cfg.Repository.AnonymizeAuthors,
			"progress":               cfg.Repository.Progress,
		},
		"cache": map[string]any{
			"enabled": cfg.Cache.Enabled,
			"dir":     cfg.Cache.Dir,
			"ttl":     cfg.Cache.TTL,
		},
		"output": map[string]any{
			"format":  cfg.Output.Format,
			"color":   cfg.Output.Color,
			"verbose": cfg.Output.Verbose,
		},
		"lexicon": lexicon,
	}

	content, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Fairlens Configuration\n")
	buf.WriteString("# Documentation: https://github.com/fairlens/fairlens\n\n")
	buf.Write([]byte(content))
	return buf.String(), nil
}
