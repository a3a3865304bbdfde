package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/pkg/models"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		hint string
		want models.Language
	}{
		{"python", models.LangPython},
		{"py", models.LangPython},
		{"Python", models.LangPython},
		{"javascript", models.LangJavaScript},
		{"js", models.LangJavaScript},
		{"typescript", models.LangTypeScript},
		{"ts", models.LangTypeScript},
		{"tsx", models.LangTypeScript},
		{"", models.LangUnknown},
		{"ruby", models.LangUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLanguage(tt.hint), "hint %q", tt.hint)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want models.Language
	}{
		{"python def", "def greet(name):\n    return name", models.LangPython},
		{"python import", "import os\nprint(os.getcwd())", models.LangPython},
		{"js function", "function greet(name) { return name; }", models.LangJavaScript},
		{"js const", "const x = 1;", models.LangJavaScript},
		{"python wins over js markers", "import os\nconst x = 1", models.LangPython},
		{"default is python", "x = 1", models.LangPython},
		{"empty defaults to python", "", models.LangPython},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.code))
		})
	}
}

func TestDetectLanguageFromPath(t *testing.T) {
	assert.Equal(t, models.LangPython, DetectLanguageFromPath("pkg/auth.py", ""))
	assert.Equal(t, models.LangJavaScript, DetectLanguageFromPath("app.mjs", ""))
	assert.Equal(t, models.LangTypeScript, DetectLanguageFromPath("view.tsx", ""))
	// Unknown extensions fall back to content sniffing.
	assert.Equal(t, models.LangJavaScript, DetectLanguageFromPath("snippet.txt", "const x = 1;"))
	assert.Equal(t, models.LangPython, DetectLanguageFromPath("snippet.txt", "def f(): pass"))
}

func TestParsePythonControlFlow(t *testing.T) {
	p := New()
	defer p.Close()

	code := `def process(x):
    if x > 0:
        for i in range(x):
            total = total + i
    return total
`
	summary, err := p.Parse(code, "python")
	require.NoError(t, err)

	assert.Equal(t, models.LangPython, summary.Language)
	assert.Equal(t, models.BackendTreeSitter, summary.Backend)
	assert.Equal(t, 2, summary.DecisionPoints)
	assert.Equal(t, 1, summary.FunctionCount)
	assert.Equal(t, 2, summary.MaxNesting)
	assert.Equal(t, []models.NodeTag{models.TagIf, models.TagFor}, summary.ControlFlowNodes)
}

func TestParsePythonNoControlFlow(t *testing.T) {
	p := New()
	defer p.Close()

	summary, err := p.Parse("def add(a, b):\n    return a + b\n", "python")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DecisionPoints)
	assert.Equal(t, 1, summary.FunctionCount)
	assert.Equal(t, 0, summary.MaxNesting)
	assert.Empty(t, summary.ControlFlowNodes)
}

func TestParsePythonWithBlock(t *testing.T) {
	p := New()
	defer p.Close()

	// Context managers are tagged and deepen nesting without adding a
	// decision point.
	code := `def f(x):
    with open(x) as fh:
        return fh.read()
`
	summary, err := p.Parse(code, "python")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DecisionPoints)
	assert.Equal(t, 1, summary.MaxNesting)
	assert.Equal(t, []models.NodeTag{models.TagWith}, summary.ControlFlowNodes)
}

func TestParsePythonBooleanChain(t *testing.T) {
	p := New()
	defer p.Close()

	// Two boolean operators add two anonymous decision points on top of
	// the if, so the node list stays shorter than the count.
	summary, err := p.Parse("if a and b or c:\n    pass\n", "python")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.DecisionPoints)
	assert.Equal(t, []models.NodeTag{models.TagIf}, summary.ControlFlowNodes)
}

func TestParsePythonComparatorChain(t *testing.T) {
	p := New()
	defer p.Close()

	// a < b < c carries three operands, one extra comparator.
	summary, err := p.Parse("if a < b < c:\n    pass\n", "python")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.DecisionPoints)
	assert.Equal(t, []models.NodeTag{models.TagIf}, summary.ControlFlowNodes)
}

func TestParsePythonTryExcept(t *testing.T) {
	p := New()
	defer p.Close()

	code := `try:
    risky()
except ValueError:
    pass
except KeyError:
    pass
`
	summary, err := p.Parse(code, "python")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.DecisionPoints)
	assert.Equal(t, 1, summary.MaxNesting)
	assert.Equal(t,
		[]models.NodeTag{models.TagTry, models.TagExcept, models.TagExcept},
		summary.ControlFlowNodes)
}

func TestParsePythonElif(t *testing.T) {
	p := New()
	defer p.Close()

	code := `if a:
    pass
elif b:
    pass
else:
    pass
`
	summary, err := p.Parse(code, "python")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.DecisionPoints)
	assert.Equal(t, []models.NodeTag{models.TagIf, models.TagIf}, summary.ControlFlowNodes)
}

func TestParsePythonSyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse("def broken(:\n    pass", "python")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParseFailure))
}

func TestParseJavaScriptControlFlow(t *testing.T) {
	p := New()
	defer p.Close()

	code := `function check(x) {
  if (x > 0) {
    for (let i = 0; i < x; i++) {
      process(i);
    }
  }
}
`
	summary, err := p.Parse(code, "javascript")
	require.NoError(t, err)

	assert.Equal(t, models.LangJavaScript, summary.Language)
	assert.Equal(t, models.BackendTreeSitter, summary.Backend)
	assert.Equal(t, 2, summary.DecisionPoints)
	assert.Equal(t, 1, summary.FunctionCount)
	assert.Equal(t, 2, summary.MaxNesting)
	assert.Equal(t, []models.NodeTag{models.TagIf, models.TagFor}, summary.ControlFlowNodes)
}

func TestParseJavaScriptSwitch(t *testing.T) {
	p := New()
	defer p.Close()

	code := `switch (x) {
  case 1:
    break;
  case 2:
    break;
  default:
    break;
}
`
	summary, err := p.Parse(code, "javascript")
	require.NoError(t, err)

	// Only explicit cases count; default adds nothing.
	assert.Equal(t, 2, summary.DecisionPoints)
	assert.Equal(t, []models.NodeTag{models.TagCase, models.TagCase}, summary.ControlFlowNodes)
}

func TestParseJavaScriptLogicalAndTernary(t *testing.T) {
	p := New()
	defer p.Close()

	summary, err := p.Parse("const y = a && b ? 1 : 2;\n", "javascript")
	require.NoError(t, err)

	// One logical operator plus one ternary, both anonymous.
	assert.Equal(t, 2, summary.DecisionPoints)
	assert.Empty(t, summary.ControlFlowNodes)
}

func TestParseJavaScriptDoWhile(t *testing.T) {
	p := New()
	defer p.Close()

	summary, err := p.Parse("do { x--; } while (x > 0);\n", "javascript")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DecisionPoints)
	assert.Equal(t, 1, summary.MaxNesting)
	assert.Equal(t, []models.NodeTag{models.TagDoWhile}, summary.ControlFlowNodes)
}

func TestParseJavaScriptTryCatch(t *testing.T) {
	p := New()
	defer p.Close()

	code := `try {
  risky();
} catch (e) {
  recover(e);
}
`
	summary, err := p.Parse(code, "javascript")
	require.NoError(t, err)

	assert.Equal(t, []models.NodeTag{models.TagCatch}, summary.ControlFlowNodes)
	assert.Equal(t, 1, summary.DecisionPoints)
}

func TestParseJavaScriptFallsBackToRegex(t *testing.T) {
	p := New()
	defer p.Close()

	// Unbalanced input fails the tree walk and chains to the regex
	// backend, which never fails.
	code := "function broken( { if (x) { while (y) {"
	summary, err := p.Parse(code, "javascript")
	require.NoError(t, err)

	assert.Equal(t, models.BackendRegex, summary.Backend)
	assert.Equal(t, 2, summary.DecisionPoints)
	assert.Equal(t, 1, summary.FunctionCount)
	assert.Empty(t, summary.ControlFlowNodes)
}

func TestParseEmptySnippet(t *testing.T) {
	p := New()
	defer p.Close()

	summary, err := p.Parse("", "")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DecisionPoints)
	assert.Equal(t, 0, summary.FunctionCount)
	assert.Equal(t, 0, summary.MaxNesting)
}

func TestRegexBackendCounts(t *testing.T) {
	code := `function handler(req) {
  if (req.ok && req.user) {
    return req.admin ? full() : partial();
  }
  while (retries > 0) { retries--; }
}
`
	summary := parseRegex(code, models.LangJavaScript)

	assert.Equal(t, models.BackendRegex, summary.Backend)
	// if(, while(, &&, ? from the ternary.
	assert.Equal(t, 4, summary.DecisionPoints)
	assert.Equal(t, 1, summary.FunctionCount)
	assert.Greater(t, summary.MaxNesting, 0)
}

func TestEstimateNesting(t *testing.T) {
	assert.Equal(t, 0, estimateNesting(""))
	assert.Equal(t, 2, estimateNesting("if (x) { f(y); }"))
	// Unbalanced closers never drive the depth negative.
	assert.Equal(t, 1, estimateNesting("}}} {"))
}
