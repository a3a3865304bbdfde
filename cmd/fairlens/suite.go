package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/fairlens/fairlens/internal/output"
	"github.com/fairlens/fairlens/pkg/analyzer/suite"
	"github.com/fairlens/fairlens/pkg/models"
)

func suiteCmd() *cli.Command {
	return &cli.Command{
		Name:      "suite",
		Usage:     "Batch-audit model outputs, one per line",
		ArgsUsage: "[file]",
		Description: `Reads model outputs one per line from the given file (or stdin),
audits every output against the requested protected attributes, and
aggregates pass rates and disparity statistics per attribute.`,
		Flags: []cli.Flag{
			attributeFlag(),
			&cli.StringFlag{
				Name:  "content-type",
				Value: suite.ContentText,
				Usage: "How to audit each output: text or code",
			},
			&cli.StringFlag{
				Name:  "suite-name",
				Value: "default_suite",
				Usage: "Name recorded on the suite report",
			},
			&cli.BoolFlag{
				Name:  "detailed",
				Usage: "Attach per-output reports to the suite report",
			},
		},
		Action: runSuiteCmd,
	}
}

func runSuiteCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	content, err := readContent(c)
	if err != nil {
		return err
	}

	var outputs []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			outputs = append(outputs, trimmed)
		}
	}

	report, err := suite.New(cfg).Evaluate(suite.Request{
		SuiteName:   c.String("suite-name"),
		Outputs:     outputs,
		Attributes:  c.StringSlice("attribute"),
		ContentType: c.String("content-type"),
		Detailed:    c.Bool("detailed"),
	})
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(report)
	}

	title := fmt.Sprintf("Suite Evaluation: %s", report.SuiteName)
	if err := formatter.Output(output.MetricsTable(title, report.Metrics, report)); err != nil {
		return err
	}

	if len(report.Aggregates) > 0 {
		var rows [][]string
		for _, agg := range report.Aggregates {
			rows = append(rows, []string{
				agg.Attribute,
				strconv.Itoa(agg.FailCount),
				strconv.Itoa(agg.Outputs),
				fmt.Sprintf("%.1f%%", agg.FailRate),
				strconv.FormatFloat(agg.MeanDisparity, 'f', -1, 64),
				string(agg.Status),
			})
		}
		table := &output.Table{
			Title:   "Per-Attribute Aggregates",
			Headers: []string{"Attribute", "Failed", "Outputs", "Fail Rate", "Mean Disparity", "Status"},
			Rows:    rows,
			Data:    report.Aggregates,
		}
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	fmt.Fprintln(formatter.Writer(), report.Details)
	if report.Status == models.StatusFail {
		formatter.Error("Suite evaluation failed")
	} else {
		formatter.Success("Suite evaluation passed")
	}
	return nil
}
