// Package terminology scans source text for non-inclusive terms with
// context-aware exception filtering to hold down false positives.
package terminology

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fairlens/fairlens/pkg/models"
)

type rule struct {
	term           string
	patterns       []*regexp.Regexp
	exceptions     []*regexp.Regexp
	severity       models.Severity
	recommendation string
}

var denylist = []rule{
	{
		term: "master",
		patterns: compile(
			`\bmaster\b`,
			`\bmaster\s*[-_]?(?:slave|primary|main)`,
		),
		exceptions: compile(
			`master'?s?\s+degree`,
			`master'?s?\s+thesis`,
			`master'?s?\s+program`,
			`master\s+of\s+`,
			`grand\s+master`,
			`master\s+key`,
		),
		severity:       models.SeverityHigh,
		recommendation: `Use "primary/secondary", "leader/follower", or "main/replica" instead`,
	},
	{
		term:           "slave",
		patterns:       compile(`\bslave\b`),
		severity:       models.SeverityHigh,
		recommendation: `Use "replica", "follower", or "secondary" instead`,
	},
	{
		term:           "whitelist",
		patterns:       compile(`\bwhitelist\b`, `\bwhite[-_]list\b`),
		severity:       models.SeverityMedium,
		recommendation: `Use "allowlist" or "permit list" instead`,
	},
	{
		term:           "blacklist",
		patterns:       compile(`\bblacklist\b`, `\bblack[-_]list\b`),
		severity:       models.SeverityMedium,
		recommendation: `Use "denylist" or "blocklist" instead`,
	},
	{
		term:           "sanity",
		patterns:       compile(`\bsanity\s+check\b`, `\bsanityCheck\b`, `\bsanity_check\b`),
		severity:       models.SeverityLow,
		recommendation: `Use "validity check", "coherence check", or "consistency check" instead`,
	},
	{
		term:     "dummy",
		patterns: compile(`\bdummy\b`),
		exceptions: compile(
			`dummy'?s?\s+guide`,
			`crash\s+dummy`,
		),
		severity:       models.SeverityLow,
		recommendation: `Use "placeholder", "sample", "test data", or "mock" instead`,
	},
	{
		term:           "cripple",
		patterns:       compile(`\bcrippled?\b`),
		severity:       models.SeverityHigh,
		recommendation: `Use "disable" or "degrade" instead`,
	},
	{
		term:           "retard",
		patterns:       compile(`\bretard(?:ed)?\b`),
		severity:       models.SeverityHigh,
		recommendation: `Use "delay", "slow", or "throttle" instead`,
	},
	{
		term:           "gypsy",
		patterns:       compile(`\bg[iy]psy\b`),
		severity:       models.SeverityHigh,
		recommendation: `Use "itinerant" or "nomadic" instead`,
	},
	{
		term:           "tribal",
		patterns:       compile(`\btribal\s+knowledge\b`),
		severity:       models.SeverityLow,
		recommendation: `Use "institutional knowledge" or "team knowledge" instead`,
	},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// contextWindow is how many characters around a match are examined for
// exception patterns.
const contextWindow = 20

// Scan checks the text line by line against the denylist. Matches whose
// surrounding context hits an exception pattern are suppressed and
// counted, not reported.
func Scan(text string) *models.TerminologyScan {
	var findings []models.TermFinding
	suppressed := 0

	lines := strings.Split(text, "\n")
	for lineNo, line := range lines {
		for _, r := range denylist {
			for _, pattern := range r.patterns {
				for _, loc := range pattern.FindAllStringIndex(line, -1) {
					if matchesException(r, line, loc[0], loc[1]) {
						suppressed++
						continue
					}
					findings = append(findings, models.TermFinding{
						Term:           r.term,
						Severity:       r.severity,
						Line:           lineNo + 1,
						Context:        strings.TrimSpace(line),
						Recommendation: r.recommendation,
					})
				}
			}
		}
	}

	bySeverity := map[models.Severity]int{
		models.SeverityHigh:   0,
		models.SeverityMedium: 0,
		models.SeverityLow:    0,
	}
	recommendationSet := make(map[string]struct{})
	for _, f := range findings {
		bySeverity[f.Severity]++
		recommendationSet[f.Recommendation] = struct{}{}
	}
	recommendations := make([]string, 0, len(recommendationSet))
	for rec := range recommendationSet {
		recommendations = append(recommendations, rec)
	}
	sort.Strings(recommendations)

	status := models.StatusPass
	if len(findings) > 0 {
		status = models.StatusFail
	}

	return &models.TerminologyScan{
		Status:          status,
		Findings:        findings,
		TruePositives:   len(findings),
		SuppressedCount: suppressed,
		BySeverity:      bySeverity,
		Recommendations: recommendations,
		Details: fmt.Sprintf(
			"Found %d non-inclusive terms (%d high, %d medium, %d low severity). %d matches suppressed by context exceptions.",
			len(findings),
			bySeverity[models.SeverityHigh],
			bySeverity[models.SeverityMedium],
			bySeverity[models.SeverityLow],
			suppressed),
	}
}

func matchesException(r rule, line string, start, end int) bool {
	if len(r.exceptions) == 0 {
		return false
	}
	from := start - contextWindow
	if from < 0 {
		from = 0
	}
	to := end + contextWindow
	if to > len(line) {
		to = len(line)
	}
	context := line[from:to]
	for _, exc := range r.exceptions {
		if exc.MatchString(context) {
			return true
		}
	}
	return false
}

// Alternatives returns replacement suggestions for a denylisted term.
func Alternatives(term string) []string {
	alternatives := map[string][]string{
		"master":    {"primary", "main", "leader", "controller"},
		"slave":     {"replica", "follower", "secondary", "worker"},
		"whitelist": {"allowlist", "permit list", "approved list"},
		"blacklist": {"denylist", "blocklist", "rejected list"},
		"sanity":    {"validity", "coherence", "consistency"},
		"dummy":     {"placeholder", "sample", "mock", "test data"},
		"cripple":   {"disable", "degrade", "limit"},
		"retard":    {"delay", "slow", "throttle"},
	}
	return alternatives[strings.ToLower(term)]
}
