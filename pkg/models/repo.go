package models

import "time"

// BiasLevel buckets an author or repository bias score.
type BiasLevel string

const (
	BiasHigh    BiasLevel = "HIGH"
	BiasMedium  BiasLevel = "MEDIUM"
	BiasLow     BiasLevel = "LOW"
	BiasMinimal BiasLevel = "MINIMAL"
)

// LevelFor buckets a 0-100 bias score.
func LevelFor(score float64) BiasLevel {
	switch {
	case score >= 70:
		return BiasHigh
	case score >= 40:
		return BiasMedium
	case score >= 20:
		return BiasLow
	default:
		return BiasMinimal
	}
}

// AttributeScore is the per-attribute portion of an author scorecard.
type AttributeScore struct {
	Attribute    string  `json:"attribute"`
	FailCount    int     `json:"fail_count"`
	TotalCommits int     `json:"total_commits"`
	FailRate     float64 `json:"fail_rate"`
	BiasScore    int     `json:"bias_score"`
}

// FlaggedPattern records one failing metric observed in a commit.
type FlaggedPattern struct {
	Metric string    `json:"metric"`
	Value  Ratio     `json:"value"`
	Commit string    `json:"commit"`
	Date   time.Time `json:"date"`
}

// AuthorScorecard aggregates bias findings over one author's commits.
type AuthorScorecard struct {
	Name         string    `json:"author_name"`
	Email        string    `json:"author_email"`
	AuthorID     string    `json:"author_id"`
	TotalCommits int       `json:"total_commits"`
	BiasScore    float64   `json:"overall_bias_score"`
	Level        BiasLevel `json:"bias_level"`

	Scores          []AttributeScore            `json:"attribute_scores"`
	Patterns        map[string][]FlaggedPattern `json:"attribute_patterns,omitempty"`
	Explanations    []string                    `json:"explanations"`
	Recommendations []string                    `json:"recommendations"`

	FirstCommit time.Time `json:"first_commit"`
	LastCommit  time.Time `json:"last_commit"`
}

// AttributeRepoSummary is the repository-wide failure summary for one
// attribute.
type AttributeRepoSummary struct {
	Attribute     string  `json:"attribute"`
	TotalFailures int     `json:"total_failures"`
	FailureRate   float64 `json:"failure_rate"`

	// OverlapWithOthers counts commits flagged for this attribute that
	// were also flagged for at least one other attribute.
	OverlapWithOthers int `json:"overlap_with_others"`
}

// RepoReport is the full repository bias analysis.
type RepoReport struct {
	RepositoryPath string    `json:"repository_path"`
	AnalyzedAt     time.Time `json:"analysis_date"`

	TotalCommits int `json:"total_commits_analyzed"`
	TotalAuthors int `json:"total_authors"`

	Attributes []string               `json:"protected_attributes"`
	Summary    []AttributeRepoSummary `json:"repository_bias_summary"`

	// Scorecards are sorted by bias score, highest first.
	Scorecards []AuthorScorecard `json:"author_scorecards"`
}
