// Package repobias audits a git repository's history for bias
// patterns. Every commit message and its touched paths are run through
// the code-channel bias audits for each protected attribute, then the
// findings are rolled up into per-author scorecards and a repository
// summary.
package repobias

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/zeebo/blake3"

	"github.com/fairlens/fairlens/internal/progress"
	"github.com/fairlens/fairlens/internal/vcs"
	"github.com/fairlens/fairlens/pkg/analyzer/codebias"
	"github.com/fairlens/fairlens/pkg/config"
	"github.com/fairlens/fairlens/pkg/models"
)

// maxPatternsPerAttribute caps the flagged patterns kept on a
// scorecard so noisy authors do not bloat reports.
const maxPatternsPerAttribute = 10

// explainRate is the fail rate above which an attribute earns an
// explanation on the scorecard.
const explainRate = 0.3

// Analyzer walks repository history and scores authors.
type Analyzer struct {
	cfg     *config.Config
	auditor *codebias.Auditor
	opener  vcs.Opener
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithOpener substitutes the repository opener, for tests.
func WithOpener(opener vcs.Opener) Option {
	return func(a *Analyzer) { a.opener = opener }
}

// New creates an analyzer from a loaded config.
func New(cfg *config.Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:     cfg,
		auditor: codebias.New(cfg),
		opener:  vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// commitRecord is one audited commit.
type commitRecord struct {
	hash    string
	author  vcs.Signature
	when    time.Time
	failed  map[string][]models.Metric // attribute -> failing metrics
	flagged map[string]bool
}

// Analyze audits up to MaxCommits commits (0 means all) against the
// given protected attributes and returns the repository report.
func (a *Analyzer) Analyze(ctx context.Context, repoPath string, attributes []string) (*models.RepoReport, error) {
	if len(attributes) == 0 {
		return nil, fmt.Errorf("protected attributes list cannot be empty")
	}

	repo, err := a.opener.PlainOpenWithDetect(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", repoPath, err)
	}

	commits, err := a.collectCommits(ctx, repo)
	if err != nil {
		return nil, err
	}

	records, flaggedSets, err := a.auditCommits(ctx, commits, attributes)
	if err != nil {
		return nil, err
	}

	report := &models.RepoReport{
		RepositoryPath: repoPath,
		AnalyzedAt:     time.Now().UTC(),
		TotalCommits:   len(records),
		Attributes:     attributes,
		Summary:        summarize(flaggedSets, attributes, len(records)),
	}
	report.Scorecards = a.scorecards(records, attributes)
	report.TotalAuthors = len(report.Scorecards)
	return report, nil
}

// auditedCommit pairs a commit with the text the audits run on.
type auditedCommit struct {
	commit vcs.Commit
	text   string
}

func (a *Analyzer) collectCommits(ctx context.Context, repo vcs.Repository) ([]auditedCommit, error) {
	iter, err := repo.Log(&vcs.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading commit log: %w", err)
	}
	defer iter.Close()

	maxCommits := a.cfg.Repository.MaxCommits
	var commits []auditedCommit

	var spinner *progress.Tracker
	if a.cfg.Repository.Progress {
		spinner = progress.NewSpinner("collecting commits")
	}

	err = iter.ForEach(func(c vcs.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if maxCommits > 0 && len(commits) >= maxCommits {
			return errStopIteration
		}
		text := c.Message()
		if paths, err := c.TouchedPaths(); err == nil && len(paths) > 0 {
			text += "\n" + strings.Join(paths, "\n")
		}
		commits = append(commits, auditedCommit{commit: c, text: text})
		spinner.Tick()
		return nil
	})
	spinner.FinishSuccess()
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, fmt.Errorf("walking commit history: %w", err)
	}
	return commits, nil
}

var errStopIteration = errors.New("stop iteration")

func (a *Analyzer) auditCommits(ctx context.Context, commits []auditedCommit, attributes []string) ([]commitRecord, map[string]*roaring.Bitmap, error) {
	flaggedSets := make(map[string]*roaring.Bitmap, len(attributes))
	for _, attr := range attributes {
		flaggedSets[attr] = roaring.New()
	}

	var bar *progress.Tracker
	if a.cfg.Repository.Progress {
		bar = progress.NewTracker("auditing commits", len(commits))
	}

	records := make([]commitRecord, 0, len(commits))
	for i, ac := range commits {
		if err := ctx.Err(); err != nil {
			bar.FinishError(err)
			return nil, nil, err
		}

		rec := commitRecord{
			hash:    ac.commit.Hash(),
			author:  ac.commit.Author(),
			when:    ac.commit.Author().When,
			failed:  make(map[string][]models.Metric),
			flagged: make(map[string]bool),
		}
		for _, attr := range attributes {
			report := a.auditor.Evaluate(ac.text, attr)
			if report.Status != models.StatusFail {
				continue
			}
			rec.flagged[attr] = true
			flaggedSets[attr].Add(uint32(i))
			for _, m := range report.Metrics {
				if m.Result == models.ResultFail {
					rec.failed[attr] = append(rec.failed[attr], m)
				}
			}
		}
		records = append(records, rec)
		bar.Tick()
	}
	bar.FinishSuccess()
	return records, flaggedSets, nil
}

// summarize builds the repository-wide per-attribute summary,
// including the overlap between each attribute's flagged commits and
// the union of all the others.
func summarize(flaggedSets map[string]*roaring.Bitmap, attributes []string, totalCommits int) []models.AttributeRepoSummary {
	summaries := make([]models.AttributeRepoSummary, 0, len(attributes))
	for _, attr := range attributes {
		set := flaggedSets[attr]

		others := roaring.New()
		for _, other := range attributes {
			if other != attr {
				others.Or(flaggedSets[other])
			}
		}
		others.And(set)

		failures := int(set.GetCardinality())
		rate := 0.0
		if totalCommits > 0 {
			rate = float64(failures) / float64(totalCommits)
		}
		summaries = append(summaries, models.AttributeRepoSummary{
			Attribute:         attr,
			TotalFailures:     failures,
			FailureRate:       round3(rate),
			OverlapWithOthers: int(others.GetCardinality()),
		})
	}
	return summaries
}

func (a *Analyzer) scorecards(records []commitRecord, attributes []string) []models.AuthorScorecard {
	byEmail := make(map[string][]commitRecord)
	for _, rec := range records {
		byEmail[rec.author.Email] = append(byEmail[rec.author.Email], rec)
	}

	minCommits := a.cfg.Repository.MinCommitsPerAuthor
	cards := make([]models.AuthorScorecard, 0, len(byEmail))
	for email, recs := range byEmail {
		if len(recs) < minCommits {
			continue
		}
		cards = append(cards, a.scorecard(email, recs, attributes))
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].BiasScore != cards[j].BiasScore {
			return cards[i].BiasScore > cards[j].BiasScore
		}
		return cards[i].Name < cards[j].Name
	})
	return cards
}

func (a *Analyzer) scorecard(email string, recs []commitRecord, attributes []string) models.AuthorScorecard {
	card := models.AuthorScorecard{
		Name:         recs[0].author.Name,
		Email:        email,
		AuthorID:     authorID(email),
		TotalCommits: len(recs),
		Patterns:     make(map[string][]models.FlaggedPattern),
		FirstCommit:  recs[0].when,
		LastCommit:   recs[0].when,
	}
	for _, rec := range recs {
		if rec.when.Before(card.FirstCommit) {
			card.FirstCommit = rec.when
		}
		if rec.when.After(card.LastCommit) {
			card.LastCommit = rec.when
		}
	}

	if a.cfg.Repository.AnonymizeAuthors {
		card.Name = "Author-" + card.AuthorID
		card.Email = card.AuthorID + "@anonymous.local"
	}

	overall := 0.0
	anyHighRate := false
	for _, attr := range attributes {
		failCount := 0
		for _, rec := range recs {
			if !rec.flagged[attr] {
				continue
			}
			failCount++
			for _, m := range rec.failed[attr] {
				if len(card.Patterns[attr]) >= maxPatternsPerAttribute {
					break
				}
				card.Patterns[attr] = append(card.Patterns[attr], models.FlaggedPattern{
					Metric: m.Name,
					Value:  m.Value,
					Commit: shortHash(rec.hash),
					Date:   rec.when,
				})
			}
		}

		failRate := float64(failCount) / float64(len(recs))
		score := int(failRate * 100)
		if score > 100 {
			score = 100
		}
		card.Scores = append(card.Scores, models.AttributeScore{
			Attribute:    attr,
			FailCount:    failCount,
			TotalCommits: len(recs),
			FailRate:     round3(failRate),
			BiasScore:    score,
		})
		overall += float64(score)

		if failRate > 0.5 {
			anyHighRate = true
		}
		if failRate > explainRate {
			card.Explanations = append(card.Explanations,
				explain(attr, failRate, card.Patterns[attr]))
		}
	}
	if len(attributes) > 0 {
		overall /= float64(len(attributes))
	}
	card.BiasScore = round2(overall)
	card.Level = models.LevelFor(card.BiasScore)
	card.Recommendations = recommend(card.BiasScore, anyHighRate, len(card.Explanations))
	return card
}

func explain(attribute string, failRate float64, patterns []models.FlaggedPattern) string {
	msg := fmt.Sprintf("High %s bias failure rate: %.0f%% of commits flagged.", attribute, failRate*100)
	if len(patterns) == 0 {
		return msg
	}
	seen := make(map[string]struct{})
	var names []string
	for _, p := range patterns {
		if _, ok := seen[p.Metric]; ok {
			continue
		}
		seen[p.Metric] = struct{}{}
		names = append(names, p.Metric)
		if len(names) == 3 {
			break
		}
	}
	return msg + " Common patterns: " + strings.Join(names, ", ") + "."
}

func recommend(overall float64, anyHighRate bool, explanationCount int) []string {
	var recs []string
	if overall >= 70 {
		recs = append(recs, "CRITICAL: Review this author's recent commits for systematic bias patterns.")
	}
	if anyHighRate {
		recs = append(recs, "Consider pair programming or code review focus on flagged bias categories.")
	}
	if explanationCount > 2 {
		recs = append(recs, "Multiple attributes affected; a comprehensive bias audit of this author's work is recommended.")
	}
	if len(recs) == 0 {
		recs = append(recs, "No specific action needed; continue standard review practices.")
	}
	return recs
}

// authorID derives a stable pseudonymous identifier from an email.
func authorID(email string) string {
	sum := blake3.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])[:12]
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
