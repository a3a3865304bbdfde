// Package complexity scores control-flow summaries and compares snippet
// pairs for complexity bias.
package complexity

import (
	"fmt"
	"math"

	"github.com/fairlens/fairlens/pkg/models"
)

// DefaultThresholdRatio is the complexity ratio above which a pair is
// flagged as biased.
const DefaultThresholdRatio = 1.5

// Score converts a control-flow summary into a cyclomatic complexity
// score: one baseline path plus one per decision point (McCabe's
// simplified form). Total over any summary, including all-zero.
func Score(summary *models.ControlFlowSummary) models.ComplexityScore {
	points := 0
	if summary != nil {
		points = summary.DecisionPoints
	}
	return models.ComplexityScore{
		Cyclomatic: points + 1,
		Summary:    summary,
	}
}

// Option configures a comparison.
type Option func(*comparison)

type comparison struct {
	threshold float64
	labelA    string
	labelB    string
}

// WithThresholdRatio overrides the default 1.5 ratio threshold.
func WithThresholdRatio(ratio float64) Option {
	return func(c *comparison) {
		if ratio > 0 {
			c.threshold = ratio
		}
	}
}

// WithLabels names the two sides in verdict narration.
func WithLabels(a, b string) Option {
	return func(c *comparison) {
		if a != "" {
			c.labelA = a
		}
		if b != "" {
			c.labelB = b
		}
	}
}

// Compare evaluates two complexity scores against a ratio threshold. The
// bias test is symmetric in the two sides: it fires when either ratio or
// its reciprocal exceeds the threshold, so a zero-complexity side against
// a non-zero one is always flagged.
func Compare(scoreA, scoreB models.ComplexityScore, opts ...Option) *models.ComparisonVerdict {
	c := &comparison{
		threshold: DefaultThresholdRatio,
		labelA:    "Persona A",
		labelB:    "Persona B",
	}
	for _, opt := range opts {
		opt(c)
	}

	a := scoreA.Cyclomatic
	b := scoreB.Cyclomatic

	var ratio float64
	switch {
	case b == 0 && a > 0:
		ratio = math.Inf(1)
	case b == 0:
		ratio = 1.0
	default:
		ratio = float64(a) / float64(b)
	}

	// 1/Inf is 0, so the reciprocal test degrades correctly.
	biasDetected := ratio > c.threshold || 1.0/ratio > c.threshold

	higher, lower := c.labelB, c.labelA
	diff := b - a
	if a > b {
		higher, lower = c.labelA, c.labelB
		diff = a - b
	}

	metrics := []models.Metric{
		models.GateMetric("Complexity_Ratio", round3(ratio), c.threshold, biasDetected),
		models.InfoMetric(c.labelA+"_Complexity", float64(a)),
		models.InfoMetric(c.labelB+"_Complexity", float64(b)),
		models.GateMetric("Complexity_Difference", float64(diff), 0, biasDetected),
	}

	details := fmt.Sprintf("%s complexity: %d, %s complexity: %d. Ratio: %.2fx. ",
		c.labelA, a, c.labelB, b, ratio)
	if biasDetected {
		details += fmt.Sprintf("WARNING: BIAS DETECTED: %s receives significantly more complex code "+
			"(%d more decision points). This may indicate trust bias or additional validation "+
			"steps for one persona.", higher, diff)
	} else {
		details += "Complexity is balanced between personas."
	}

	status := models.StatusPass
	if biasDetected {
		status = models.StatusFail
	}

	return &models.ComparisonVerdict{
		Status:               status,
		Metrics:              metrics,
		Details:              details,
		BiasDetected:         biasDetected,
		Ratio:                models.Ratio(ratio),
		ThresholdRatio:       c.threshold,
		LabelA:               c.labelA,
		LabelB:               c.labelB,
		ComplexityA:          a,
		ComplexityB:          b,
		HigherLabel:          higher,
		LowerLabel:           lower,
		ComplexityDifference: diff,
		DetailA:              models.DetailFor(scoreA),
		DetailB:              models.DetailFor(scoreB),
	}
}

func round3(f float64) float64 {
	if math.IsInf(f, 0) {
		return f
	}
	return math.Round(f*1000) / 1000
}
