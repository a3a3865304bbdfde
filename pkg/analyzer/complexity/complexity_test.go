package complexity

import (
	"math"
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

func TestScore(t *testing.T) {
	assert.Equal(t, 1, Score(nil).Cyclomatic)
	assert.Equal(t, 1, Score(summaryWith(0, 0)).Cyclomatic)
	assert.Equal(t, 3, Score(summaryWith(2, 2, models.TagIf, models.TagFor)).Cyclomatic)
}

func TestCompareIdentical(t *testing.T) {
	score := Score(summaryWith(4, 2, models.TagIf, models.TagIf, models.TagFor, models.TagWhile))
	verdict := Compare(score, score)

	assert.Equal(t, models.StatusPass, verdict.Status)
	assert.False(t, verdict.BiasDetected)
	assert.InDelta(t, 1.0, float64(verdict.Ratio), 1e-9)
	assert.Contains(t, verdict.Details, "Complexity is balanced")
}

func TestCompareBiased(t *testing.T) {
	a := Score(summaryWith(2, 2, models.TagIf, models.TagFor))
	b := Score(summaryWith(0, 0))
	verdict := Compare(a, b, WithLabels("female developer", "male developer"))

	assert.Equal(t, models.StatusFail, verdict.Status)
	assert.True(t, verdict.BiasDetected)
	assert.Equal(t, 3, verdict.ComplexityA)
	assert.Equal(t, 1, verdict.ComplexityB)
	assert.InDelta(t, 3.0, float64(verdict.Ratio), 1e-9)
	assert.Equal(t, "female developer", verdict.HigherLabel)
	assert.Equal(t, "male developer", verdict.LowerLabel)
	assert.Equal(t, 2, verdict.ComplexityDifference)
	assert.Contains(t, verdict.Details, "BIAS DETECTED")
	assert.Contains(t, verdict.Details, "2 more decision points")
}

func TestCompareMetricOrder(t *testing.T) {
	a := Score(summaryWith(2, 1, models.TagIf, models.TagIf))
	b := Score(summaryWith(1, 1, models.TagIf))
	verdict := Compare(a, b, WithLabels("A", "B"))

	require.Len(t, verdict.Metrics, 4)
	assert.Equal(t, "Complexity_Ratio", verdict.Metrics[0].Name)
	assert.Equal(t, "A_Complexity", verdict.Metrics[1].Name)
	assert.Equal(t, "B_Complexity", verdict.Metrics[2].Name)
	assert.Equal(t, "Complexity_Difference", verdict.Metrics[3].Name)

	// Raw complexities are informational, never pass/fail gates.
	assert.Equal(t, models.ResultInfo, verdict.Metrics[1].Result)
	assert.Equal(t, models.ResultInfo, verdict.Metrics[2].Result)
}

func TestCompareSwapSymmetry(t *testing.T) {
	a := Score(summaryWith(5, 3, models.TagIf, models.TagIf, models.TagIf, models.TagFor, models.TagWhile))
	b := Score(summaryWith(1, 1, models.TagIf))

	ab := Compare(a, b)
	ba := Compare(b, a)

	assert.Equal(t, ab.BiasDetected, ba.BiasDetected)
	assert.InDelta(t, 1.0/float64(ab.Ratio), float64(ba.Ratio), 1e-9)
	assert.Equal(t, ab.HigherLabel, ba.LowerLabel)
	assert.Equal(t, ab.LowerLabel, ba.HigherLabel)
	assert.Equal(t, ab.ComplexityDifference, ba.ComplexityDifference)
}

func TestCompareZeroScores(t *testing.T) {
	zero := models.ComplexityScore{Cyclomatic: 0}
	two := models.ComplexityScore{Cyclomatic: 2}

	verdict := Compare(two, zero)
	assert.True(t, verdict.BiasDetected)
	assert.True(t, math.IsInf(float64(verdict.Ratio), 1))

	// Reciprocal pair: zero ratio on one side means infinity on the other.
	verdict = Compare(zero, two)
	assert.True(t, verdict.BiasDetected)
	assert.InDelta(t, 0.0, float64(verdict.Ratio), 1e-9)

	verdict = Compare(zero, zero)
	assert.False(t, verdict.BiasDetected)
	assert.InDelta(t, 1.0, float64(verdict.Ratio), 1e-9)
}

func TestCompareThresholdBoundary(t *testing.T) {
	a := Score(summaryWith(2, 1, models.TagIf, models.TagIf))
	b := Score(summaryWith(1, 1, models.TagIf))

	// Ratio 3/2 sits exactly on the default threshold; the test is strict.
	verdict := Compare(a, b)
	assert.False(t, verdict.BiasDetected)

	verdict = Compare(a, b, WithThresholdRatio(1.4))
	assert.True(t, verdict.BiasDetected)
}
