package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fairlens/fairlens/internal/output"
	"github.com/fairlens/fairlens/pkg/analyzer/differential"
	"github.com/fairlens/fairlens/pkg/models"
	"github.com/fairlens/fairlens/pkg/parser"
)

func compareCmd() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Aliases:   []string{"cmp"},
		Usage:     "Compare two code snippets for structural bias",
		ArgsUsage: "FILE_A FILE_B",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "persona-a",
				Value: "Persona A",
				Usage: "Label for the first snippet",
			},
			&cli.StringFlag{
				Name:  "persona-b",
				Value: "Persona B",
				Usage: "Label for the second snippet",
			},
			&cli.StringFlag{
				Name:  "language-a",
				Usage: "Language hint for the first snippet (auto-detected from extension if empty)",
			},
			&cli.StringFlag{
				Name:  "language-b",
				Usage: "Language hint for the second snippet",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Complexity ratio threshold (defaults to configured value)",
			},
			&cli.BoolFlag{
				Name:  "complexity-only",
				Usage: "Run only the complexity comparison",
			},
			&cli.BoolFlag{
				Name:  "divergence-only",
				Usage: "Run only the control-flow divergence detection",
			},
		},
		Action: runCompareCmd,
	}
}

func runCompareCmd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("compare requires exactly two file arguments")
	}

	codeA, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Args().Get(0), err)
	}
	codeB, err := os.ReadFile(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.Args().Get(1), err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	threshold := c.Float64("threshold")
	if threshold == 0 {
		threshold = cfg.Thresholds.ComplexityRatio
	}

	req := differential.Request{
		CodeA:          string(codeA),
		CodeB:          string(codeB),
		LabelA:         c.String("persona-a"),
		LabelB:         c.String("persona-b"),
		LanguageA:      languageHint(c.String("language-a"), c.Args().Get(0), string(codeA)),
		LanguageB:      languageHint(c.String("language-b"), c.Args().Get(1), string(codeB)),
		ThresholdRatio: threshold,
	}

	var report *models.DifferentialReport
	switch {
	case c.Bool("complexity-only"):
		report = differential.CompareComplexity(req)
	case c.Bool("divergence-only"):
		report = differential.DetectDivergence(req)
	default:
		report = differential.Analyze(req)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(report)
	}

	if report.Status == models.StatusError {
		formatter.Error("ERROR: %s", report.Details)
		return nil
	}

	table := output.MetricsTable("Differential Code Analysis", report.Metrics, report)
	if err := formatter.Output(table); err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer(), report.Details)

	if report.Status == models.StatusFail {
		formatter.Error("Differential analysis failed")
	} else {
		formatter.Success("Differential analysis passed")
	}
	return nil
}

// languageHint prefers the explicit flag, then the file extension.
func languageHint(flag, path, code string) string {
	if flag != "" {
		return flag
	}
	return string(parser.DetectLanguageFromPath(path, code))
}
