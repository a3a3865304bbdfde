package divergence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/pkg/models"
)

func summaryWith(points, nesting int, tags ...models.NodeTag) *models.ControlFlowSummary {
	return &models.ControlFlowSummary{
		Language:         models.LangPython,
		Backend:          models.BackendTreeSitter,
		DecisionPoints:   points,
		MaxNesting:       nesting,
		ControlFlowNodes: tags,
	}
}

func TestDetectIdentical(t *testing.T) {
	s := summaryWith(3, 2, models.TagIf, models.TagFor, models.TagWhile)
	verdict := Detect(s, s)

	assert.Equal(t, models.StatusPass, verdict.Status)
	assert.False(t, verdict.HasDivergence)
	assert.Empty(t, verdict.OnlyInA)
	assert.Empty(t, verdict.OnlyInB)
	assert.Equal(t, 0, verdict.NestingDifference)
	assert.Equal(t, 0, verdict.DecisionDifference)
	assert.ElementsMatch(t,
		[]models.NodeTag{models.TagIf, models.TagFor, models.TagWhile},
		verdict.CommonNodes)
	assert.Contains(t, verdict.Details, "Control flow is similar")
}

func TestDetectUniqueTags(t *testing.T) {
	a := summaryWith(3, 1, models.TagIf, models.TagTry, models.TagExcept)
	b := summaryWith(1, 1, models.TagIf)
	verdict := Detect(a, b, WithLabels("applicant A", "applicant B"))

	assert.True(t, verdict.HasDivergence)
	assert.ElementsMatch(t, []models.NodeTag{models.TagTry, models.TagExcept}, verdict.OnlyInA)
	assert.Empty(t, verdict.OnlyInB)
	assert.Equal(t, []models.NodeTag{models.TagIf}, verdict.CommonNodes)
	assert.Contains(t, verdict.Details, "applicant A has unique control flow")
	assert.Contains(t, verdict.Details, "extra validation steps for applicant A")
}

func TestDetectContextManagerOnlyInA(t *testing.T) {
	// A with block carries no decision points, so the tag set difference
	// is the only signal that can fire.
	a := summaryWith(0, 1, models.TagWith)
	b := summaryWith(0, 0)
	verdict := Detect(a, b)

	assert.True(t, verdict.HasDivergence)
	assert.Equal(t, []models.NodeTag{models.TagWith}, verdict.OnlyInA)
	assert.Empty(t, verdict.OnlyInB)
	assert.Equal(t, 0, verdict.DecisionDifference)
}

func TestDetectNestingGap(t *testing.T) {
	// Same tag kinds on both sides; only the depth differs.
	a := summaryWith(2, 5, models.TagIf, models.TagFor)
	b := summaryWith(2, 1, models.TagIf, models.TagFor)
	verdict := Detect(a, b)

	assert.True(t, verdict.HasDivergence)
	assert.Empty(t, verdict.OnlyInA)
	assert.Empty(t, verdict.OnlyInB)
	assert.Equal(t, 4, verdict.NestingDifference)
	assert.Contains(t, verdict.Details, "Significant nesting difference: 4 levels")
}

func TestDetectDecisionGap(t *testing.T) {
	// Equal tag sets, unequal counts: caught by the numeric delta only.
	a := summaryWith(6, 1, models.TagIf, models.TagIf, models.TagIf, models.TagIf, models.TagIf, models.TagIf)
	b := summaryWith(1, 1, models.TagIf)
	verdict := Detect(a, b)

	assert.True(t, verdict.HasDivergence)
	assert.Empty(t, verdict.OnlyInA)
	assert.Equal(t, 5, verdict.DecisionDifference)
	assert.Contains(t, verdict.Details, "Significant decision point difference: 5 points")
}

func TestDetectThresholdBoundaries(t *testing.T) {
	// Deltas at exactly the thresholds do not fire.
	a := summaryWith(4, 3, models.TagIf)
	b := summaryWith(1, 1, models.TagIf)
	verdict := Detect(a, b)

	assert.Equal(t, 2, verdict.NestingDifference)
	assert.Equal(t, 3, verdict.DecisionDifference)
	assert.False(t, verdict.HasDivergence)
	assert.Equal(t, models.StatusPass, verdict.Status)
}

func TestDetectMetrics(t *testing.T) {
	a := summaryWith(2, 5, models.TagIf, models.TagCatch)
	b := summaryWith(2, 1, models.TagIf, models.TagWhile)
	verdict := Detect(a, b)

	require.Len(t, verdict.Metrics, 3)
	assert.Equal(t, "Control_Flow_Divergence", verdict.Metrics[0].Name)
	assert.Equal(t, models.Ratio(2), verdict.Metrics[0].Value)
	assert.Equal(t, models.ResultFail, verdict.Metrics[0].Result)

	assert.Equal(t, "Nesting_Difference", verdict.Metrics[1].Name)
	assert.Equal(t, models.ResultFail, verdict.Metrics[1].Result)

	assert.Equal(t, "Decision_Point_Difference", verdict.Metrics[2].Name)
	assert.Equal(t, models.ResultPass, verdict.Metrics[2].Result)
}

func TestDetectRegexSummaryTolerated(t *testing.T) {
	// Regex-derived summaries carry no node list; only the numeric deltas
	// can fire.
	a := &models.ControlFlowSummary{
		Language:       models.LangJavaScript,
		Backend:        models.BackendRegex,
		DecisionPoints: 8,
		MaxNesting:     2,
	}
	b := summaryWith(1, 1, models.TagIf)
	verdict := Detect(a, b)

	assert.True(t, verdict.HasDivergence)
	assert.Empty(t, verdict.OnlyInA)
	assert.Equal(t, []models.NodeTag{models.TagIf}, verdict.OnlyInB)
	assert.Equal(t, 7, verdict.DecisionDifference)
}
