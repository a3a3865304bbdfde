// Package divergence flags structural control-flow differences between
// two snippets meant to implement the same task.
package divergence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fairlens/fairlens/pkg/models"
)

// Divergence thresholds. These are design constants, tunable only by
// recompilation.
const (
	// NestingThreshold is the maximum tolerated gap in nesting depth.
	NestingThreshold = 2
	// DecisionThreshold is the maximum tolerated gap in decision points.
	DecisionThreshold = 3
)

// Option configures a detection run.
type Option func(*detection)

type detection struct {
	labelA string
	labelB string
}

// WithLabels names the two sides in verdict narration.
func WithLabels(a, b string) Option {
	return func(d *detection) {
		if a != "" {
			d.labelA = a
		}
		if b != "" {
			d.labelB = b
		}
	}
}

// Detect computes set differences over control-flow tags plus nesting and
// decision-point deltas. The set difference compares tag kinds, not
// counts; count gaps are caught by the numeric deltas. Divergence fires
// when either side has unique tags, or a delta exceeds its threshold.
func Detect(summaryA, summaryB *models.ControlFlowSummary, opts ...Option) *models.DivergenceVerdict {
	d := &detection{labelA: "Persona A", labelB: "Persona B"}
	for _, opt := range opts {
		opt(d)
	}

	setA := summaryA.TagSet()
	setB := summaryB.TagSet()

	onlyInA := subtract(setA, setB)
	onlyInB := subtract(setB, setA)
	common := intersect(setA, setB)

	nestingDiff := abs(summaryA.MaxNesting - summaryB.MaxNesting)
	decisionDiff := abs(summaryA.DecisionPoints - summaryB.DecisionPoints)

	hasDivergence := len(onlyInA) > 0 || len(onlyInB) > 0 ||
		nestingDiff > NestingThreshold || decisionDiff > DecisionThreshold

	metrics := []models.Metric{
		models.GateMetric("Control_Flow_Divergence",
			float64(len(onlyInA)+len(onlyInB)), 0, hasDivergence),
		models.GateMetric("Nesting_Difference",
			float64(nestingDiff), NestingThreshold, nestingDiff > NestingThreshold),
		models.GateMetric("Decision_Point_Difference",
			float64(decisionDiff), DecisionThreshold, decisionDiff > DecisionThreshold),
	}

	var parts []string
	if len(onlyInA) > 0 {
		parts = append(parts, fmt.Sprintf(
			"%s has unique control flow: %s. This may indicate extra validation steps for %s.",
			d.labelA, joinTags(onlyInA), d.labelA))
	}
	if len(onlyInB) > 0 {
		parts = append(parts, fmt.Sprintf(
			"%s has unique control flow: %s. This may indicate extra validation steps for %s.",
			d.labelB, joinTags(onlyInB), d.labelB))
	}
	if nestingDiff > NestingThreshold {
		parts = append(parts, fmt.Sprintf(
			"Significant nesting difference: %d levels. One persona has deeper control flow nesting.",
			nestingDiff))
	}
	if decisionDiff > DecisionThreshold {
		parts = append(parts, fmt.Sprintf(
			"Significant decision point difference: %d points. One persona has more conditional logic.",
			decisionDiff))
	}
	if len(parts) == 0 {
		parts = append(parts, "Control flow is similar between personas.")
	}

	status := models.StatusPass
	if hasDivergence {
		status = models.StatusFail
	}

	return &models.DivergenceVerdict{
		Status:             status,
		Metrics:            metrics,
		Details:            strings.Join(parts, " "),
		HasDivergence:      hasDivergence,
		LabelA:             d.labelA,
		LabelB:             d.labelB,
		OnlyInA:            onlyInA,
		OnlyInB:            onlyInB,
		CommonNodes:        common,
		NestingDifference:  nestingDiff,
		DecisionDifference: decisionDiff,
	}
}

// subtract returns the tags in a but not b, in sorted order so verdicts
// are deterministic.
func subtract(a, b map[models.NodeTag]bool) []models.NodeTag {
	out := make([]models.NodeTag, 0, len(a))
	for tag := range a {
		if !b[tag] {
			out = append(out, tag)
		}
	}
	sortTags(out)
	return out
}

func intersect(a, b map[models.NodeTag]bool) []models.NodeTag {
	out := make([]models.NodeTag, 0, len(a))
	for tag := range a {
		if b[tag] {
			out = append(out, tag)
		}
	}
	sortTags(out)
	return out
}

func sortTags(tags []models.NodeTag) {
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
}

func joinTags(tags []models.NodeTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
