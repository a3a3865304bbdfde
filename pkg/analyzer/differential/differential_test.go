package differential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/pkg/models"
)

const snippetWithBranches = `def process(x):
    if x > 0:
        for i in range(x):
            total = total + i
    return total
`

const snippetPlain = `def process(x):
    return x
`

func TestAnalyzeDetectsComplexityBias(t *testing.T) {
	report := Analyze(Request{
		CodeA:  snippetWithBranches,
		CodeB:  snippetPlain,
		LabelA: "Persona A",
		LabelB: "Persona B",
	})

	assert.Equal(t, models.StatusFail, report.Status)
	require.NotNil(t, report.Complexity)
	require.NotNil(t, report.Divergence)

	assert.Equal(t, 3, report.Complexity.ComplexityA)
	assert.Equal(t, 1, report.Complexity.ComplexityB)
	assert.InDelta(t, 3.0, float64(report.Complexity.Ratio), 1e-9)
	assert.True(t, report.Complexity.BiasDetected)
	assert.Equal(t, "Persona A", report.Complexity.HigherLabel)

	assert.True(t, report.Divergence.HasDivergence)
	assert.ElementsMatch(t,
		[]models.NodeTag{models.TagIf, models.TagFor},
		report.Divergence.OnlyInA)
}

func TestAnalyzeMetricOrdering(t *testing.T) {
	report := Analyze(Request{CodeA: snippetWithBranches, CodeB: snippetPlain})

	// Comparator metrics first, then divergence metrics.
	require.Len(t, report.Metrics, 7)
	names := make([]string, len(report.Metrics))
	for i, m := range report.Metrics {
		names[i] = m.Name
	}
	assert.Equal(t, []string{
		"Complexity_Ratio",
		"Persona A_Complexity",
		"Persona B_Complexity",
		"Complexity_Difference",
		"Control_Flow_Divergence",
		"Nesting_Difference",
		"Decision_Point_Difference",
	}, names)
}

func TestAnalyzeEmptySnippets(t *testing.T) {
	report := Analyze(Request{CodeA: "", CodeB: ""})

	assert.Equal(t, models.StatusPass, report.Status)
	require.NotNil(t, report.Complexity)
	assert.Equal(t, 1, report.Complexity.ComplexityA)
	assert.Equal(t, 1, report.Complexity.ComplexityB)
	assert.InDelta(t, 1.0, float64(report.Complexity.Ratio), 1e-9)
	assert.False(t, report.Complexity.BiasDetected)
	assert.False(t, report.Divergence.HasDivergence)
}

func TestAnalyzeSwapRoundTrip(t *testing.T) {
	fwd := Analyze(Request{CodeA: snippetWithBranches, CodeB: snippetPlain})
	rev := Analyze(Request{CodeA: snippetPlain, CodeB: snippetWithBranches})

	assert.Equal(t, fwd.Complexity.BiasDetected, rev.Complexity.BiasDetected)
	assert.Equal(t, fwd.Divergence.HasDivergence, rev.Divergence.HasDivergence)
	assert.Equal(t, fwd.Complexity.HigherLabel, rev.Complexity.LowerLabel)
	assert.Equal(t, fwd.Complexity.LowerLabel, rev.Complexity.HigherLabel)
	assert.InDelta(t,
		1.0/float64(fwd.Complexity.Ratio),
		float64(rev.Complexity.Ratio), 1e-9)
	assert.ElementsMatch(t, fwd.Divergence.OnlyInA, rev.Divergence.OnlyInB)
}

func TestAnalyzeParseFailure(t *testing.T) {
	report := Analyze(Request{
		CodeA:     "def broken(:\n    pass",
		CodeB:     snippetPlain,
		LanguageA: "python",
		LanguageB: "python",
	})

	assert.Equal(t, models.StatusError, report.Status)
	assert.NotEmpty(t, report.Error)
	assert.Nil(t, report.Complexity)
	assert.Nil(t, report.Divergence)

	// The side that parsed is still attached.
	assert.Nil(t, report.SummaryA)
	require.NotNil(t, report.SummaryB)
	assert.Equal(t, 0, report.SummaryB.DecisionPoints)
}

func TestAnalyzeCustomThreshold(t *testing.T) {
	// Complexity 3 vs 2: ratio 1.5 passes the default strict test but
	// fails a tighter one.
	codeB := "def f(x):\n    if x:\n        return 1\n    return 0\n"
	codeA := "def f(x):\n    if x and y:\n        return 1\n    return 0\n"

	report := Analyze(Request{CodeA: codeA, CodeB: codeB})
	assert.False(t, report.Complexity.BiasDetected)

	report = Analyze(Request{CodeA: codeA, CodeB: codeB, ThresholdRatio: 1.2})
	assert.True(t, report.Complexity.BiasDetected)
}

func TestCompareComplexityOnly(t *testing.T) {
	report := CompareComplexity(Request{CodeA: snippetWithBranches, CodeB: snippetPlain})

	assert.Equal(t, models.StatusFail, report.Status)
	require.NotNil(t, report.Complexity)
	assert.Nil(t, report.Divergence)
	assert.Len(t, report.Metrics, 4)
}

func TestDetectDivergenceOnly(t *testing.T) {
	report := DetectDivergence(Request{CodeA: snippetWithBranches, CodeB: snippetPlain})

	assert.Equal(t, models.StatusFail, report.Status)
	assert.Nil(t, report.Complexity)
	require.NotNil(t, report.Divergence)
	assert.Len(t, report.Metrics, 3)
}

func TestAnalyzeJavaScriptPair(t *testing.T) {
	codeA := `function login(user) {
  if (!user.verified) {
    try {
      challenge(user);
    } catch (e) {
      reject(e);
    }
  }
  return session(user);
}
`
	codeB := `function login(user) {
  return session(user);
}
`
	report := Analyze(Request{
		CodeA:     codeA,
		CodeB:     codeB,
		LanguageA: "javascript",
		LanguageB: "javascript",
	})

	assert.Equal(t, models.StatusFail, report.Status)
	assert.Contains(t, report.Divergence.OnlyInA, models.TagCatch)
	assert.Equal(t, "Persona A", report.Complexity.HigherLabel)
}
