package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/fairlens/fairlens/internal/output"
	"github.com/fairlens/fairlens/pkg/analyzer/repobias"
)

func repoCmd() *cli.Command {
	return &cli.Command{
		Name:      "repo",
		Usage:     "Audit a git repository's history for bias patterns by author",
		ArgsUsage: "[path]",
		Description: `Walks the repository's commit history, audits each commit's message
and touched paths against the requested protected attributes, and
builds per-author bias scorecards. Authors are pseudonymized unless
--no-anonymize is given.`,
		Flags: []cli.Flag{
			attributeFlag(),
			&cli.IntFlag{
				Name:  "max-commits",
				Usage: "Limit the number of commits analyzed (0 = full history)",
			},
			&cli.IntFlag{
				Name:  "min-commits",
				Usage: "Minimum commits for an author to receive a scorecard (defaults to configured value)",
			},
			&cli.BoolFlag{
				Name:  "no-anonymize",
				Usage: "Show real author names and emails on scorecards",
			},
		},
		Action: runRepoCmd,
	}
}

func runRepoCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	repoPath := "."
	if c.Args().Len() > 0 {
		repoPath = c.Args().First()
	}

	if v := c.Int("max-commits"); v > 0 {
		cfg.Repository.MaxCommits = v
	}
	if v := c.Int("min-commits"); v > 0 {
		cfg.Repository.MinCommitsPerAuthor = v
	}
	if c.Bool("no-anonymize") {
		cfg.Repository.AnonymizeAuthors = false
	}
	// Progress bars corrupt redirected or structured output.
	if c.String("output") != "" || c.String("format") != "text" {
		cfg.Repository.Progress = false
	}

	report, err := repobias.New(cfg).Analyze(c.Context, repoPath, c.StringSlice("attribute"))
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

	var summaryRows [][]string
	for _, s := range report.Summary {
		summaryRows = append(summaryRows, []string{
			s.Attribute,
			strconv.Itoa(s.TotalFailures),
			fmt.Sprintf("%.1f%%", s.FailureRate*100),
			strconv.Itoa(s.OverlapWithOthers),
		})
	}
	summary := &output.Table{
		Title:   fmt.Sprintf("Repository Bias Summary: %s", report.RepositoryPath),
		Headers: []string{"Attribute", "Flagged Commits", "Failure Rate", "Overlap"},
		Rows:    summaryRows,
		Data:    report.Summary,
	}
	if err := formatter.Output(summary); err != nil {
		return err
	}

	if len(report.Scorecards) > 0 {
		var rows [][]string
		for _, card := range report.Scorecards {
			level := string(card.Level)
			if formatter.Colored() {
				level = output.LevelColor(card.Level, level)
			}
			rows = append(rows, []string{
				card.Name,
				strconv.Itoa(card.TotalCommits),
				strconv.FormatFloat(card.BiasScore, 'f', -1, 64),
				level,
			})
		}
		table := &output.Table{
			Title:   "Author Scorecards",
			Headers: []string{"Author", "Commits", "Bias Score", "Level"},
			Rows:    rows,
			Data:    report.Scorecards,
		}
		if err := formatter.Output(table); err != nil {
			return err
		}

		for _, card := range report.Scorecards {
			for _, rec := range card.Recommendations {
				fmt.Fprintf(formatter.Writer(), "  %s: %s\n", card.Name, rec)
			}
		}
	}

	fmt.Fprintf(formatter.Writer(), "\nAnalyzed %d commits from %d authors.\n",
		report.TotalCommits, report.TotalAuthors)
	return nil
}
