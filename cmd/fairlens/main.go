package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/fairlens/fairlens/internal/output"
	"github.com/fairlens/fairlens/pkg/analyzer/codebias"
	"github.com/fairlens/fairlens/pkg/analyzer/counterfactual"
	"github.com/fairlens/fairlens/pkg/analyzer/lexicon"
	"github.com/fairlens/fairlens/pkg/analyzer/terminology"
	"github.com/fairlens/fairlens/pkg/config"
	"github.com/fairlens/fairlens/pkg/models"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "fairlens",
		Usage:   "Bias auditing for model outputs, code, and repositories",
		Version: version,
		Description: `Fairlens audits text and code for stereotype bias, compares
persona-differentiated code snippets for structural bias, scans for
non-inclusive terminology, and scores git history by author.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{config.EnvConfigPath},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
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
		},
		Commands: []*cli.Command{
			compareCmd(),
			auditCmd(),
			codeCmd(),
			terminologyCmd(),
			counterfactualCmd(),
			suiteCmd(),
			repoCmd(),
			pipeCmd(),
			mcpCmd(),
			initCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective config for a command invocation.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// newFormatter builds the output formatter from the global flags.
func newFormatter(c *cli.Context) (*output.Formatter, error) {
	return output.NewFormatter(
		output.ParseFormat(c.String("format")),
		c.String("output"),
		!c.Bool("no-color"),
	)
}

// readContent returns the content for a command: the named file when a
// positional argument is given, stdin otherwise.
func readContent(c *cli.Context) (string, error) {
	if c.Args().Len() > 0 {
		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", c.Args().First(), err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func attributeFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "attribute",
		Aliases: []string{"a"},
		Value:   cli.NewStringSlice(lexicon.AttrGender),
		Usage:   "Protected attribute(s): gender, race, age, disability",
	}
}

func auditCmd() *cli.Command {
	return &cli.Command{
		Name:      "audit",
		Usage:     "Audit text for stereotype bias",
		ArgsUsage: "[file]",
		Flags:     []cli.Flag{attributeFlag()},
		Action:    runAuditCmd,
	}
}

func runAuditCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	content, err := readContent(c)
	if err != nil {
		return err
	}

	auditor := lexicon.New(cfg)
	reports := make([]*models.AuditReport, 0, len(c.StringSlice("attribute")))
	for _, attr := range c.StringSlice("attribute") {
		reports = append(reports, auditor.Evaluate(content, attr))
	}
	return writeAuditReports(c, reports)
}

func codeCmd() *cli.Command {
	return &cli.Command{
		Name:      "code",
		Usage:     "Audit source code for bias in comments, names, and literals",
		ArgsUsage: "[file]",
		Flags:     []cli.Flag{attributeFlag()},
		Action:    runCodeCmd,
	}
}

func runCodeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	content, err := readContent(c)
	if err != nil {
		return err
	}

	auditor := codebias.New(cfg)
	reports := make([]*models.AuditReport, 0, len(c.StringSlice("attribute")))
	for _, attr := range c.StringSlice("attribute") {
		reports = append(reports, auditor.Evaluate(content, attr))
	}
	return writeAuditReports(c, reports)
}

func writeAuditReports(c *cli.Context, reports []*models.AuditReport) error {
	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		if len(reports) == 1 {
			return formatter.Output(reports[0])
		}
		return formatter.Output(reports)
	}

	failed := 0
	for _, report := range reports {
		title := fmt.Sprintf("Bias Audit: %s", report.Attribute)
		if err := formatter.Output(output.MetricsTable(title, report.Metrics, report)); err != nil {
			return err
		}
		fmt.Fprintln(formatter.Writer(), report.Details)
		fmt.Fprintln(formatter.Writer())
		if report.Status == models.StatusFail {
			failed++
		}
	}

	if failed > 0 {
		formatter.Error("%d of %d attribute audits failed", failed, len(reports))
	} else {
		formatter.Success("All %d attribute audits passed", len(reports))
	}
	return nil
}

func terminologyCmd() *cli.Command {
	return &cli.Command{
		Name:      "terminology",
		Aliases:   []string{"terms"},
		Usage:     "Scan for non-inclusive terminology",
		ArgsUsage: "[file]",
		Action:    runTerminologyCmd,
	}
}

func runTerminologyCmd(c *cli.Context) error {
	content, err := readContent(c)
	if err != nil {
		return err
	}
	scan := terminology.Scan(content)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(scan)
	}

	if len(scan.Findings) > 0 {
		var rows [][]string
		for _, f := range scan.Findings {
			severity := string(f.Severity)
			if formatter.Colored() {
				severity = output.SeverityColor(f.Severity, severity)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", f.Line),
				f.Term,
				severity,
				f.Recommendation,
			})
		}
		table := &output.Table{
			Title:   "Non-Inclusive Terminology",
			Headers: []string{"Line", "Term", "Severity", "Recommendation"},
			Rows:    rows,
			Data:    scan,
		}
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	fmt.Fprintln(formatter.Writer(), scan.Details)
	if scan.Status == models.StatusFail {
		formatter.Error("Terminology scan failed")
	} else {
		formatter.Success("Terminology scan passed")
	}
	return nil
}

func counterfactualCmd() *cli.Command {
	return &cli.Command{
		Name:      "counterfactual",
		Aliases:   []string{"cf"},
		Usage:     "Generate counterfactual variants of a text",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Value:   "gender",
				Usage:   "Sensitive group: gender or race",
			},
		},
		Action: runCounterfactualCmd,
	}
}

func runCounterfactualCmd(c *cli.Context) error {
	content, err := readContent(c)
	if err != nil {
		return err
	}
	set := counterfactual.Generate(strings.TrimRight(content, "\n"), c.String("group"))

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(set)
	}

	for i, variant := range set.Variants {
		fmt.Fprintf(formatter.Writer(), "%d. %s (%d swaps)\n", i+1, variant.Text, variant.Swaps)
	}
	return nil
}
