package parser

import (
	"regexp"

	"github.com/fairlens/fairlens/pkg/models"
)

// The regex backend is intentionally approximate: it counts keyword
// patterns without parsing, and its nesting estimate scans brace, paren
// and bracket depth across the whole snippet, so object and array
// literals inflate the reported nesting. This is a known precision
// ceiling, tagged on the summary via BackendRegex so consumers can
// discount it.

var regexDecisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`if\s*\(`),
	regexp.MustCompile(`while\s*\(`),
	regexp.MustCompile(`for\s*\(`),
	regexp.MustCompile(`switch\s*\(`),
	regexp.MustCompile(`catch\s*\(`),
	regexp.MustCompile(`&&`),
	regexp.MustCompile(`\|\|`),
	regexp.MustCompile(`\?`),
}

var regexFunctionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`function\s+\w+`),
	regexp.MustCompile(`const\s+\w+\s*=\s*\([^)]*\)\s*=>`),
	regexp.MustCompile(`\w+\s*:\s*function`),
	regexp.MustCompile(`async\s+function`),
}

// parseRegex is the last-resort backend. It always succeeds and produces
// a summary with an empty control-flow node list.
func parseRegex(code string, lang models.Language) *models.ControlFlowSummary {
	decisions := 0
	for _, p := range regexDecisionPatterns {
		decisions += len(p.FindAllStringIndex(code, -1))
	}

	functions := 0
	for _, p := range regexFunctionPatterns {
		functions += len(p.FindAllStringIndex(code, -1))
	}

	return &models.ControlFlowSummary{
		Language:       lang,
		Backend:        models.BackendRegex,
		DecisionPoints: decisions,
		FunctionCount:  functions,
		MaxNesting:     estimateNesting(code),
	}
}

// estimateNesting reports the maximum bracket depth reached anywhere in
// the snippet, clamped at zero.
func estimateNesting(code string) int {
	maxDepth, depth := 0, 0
	for _, c := range code {
		switch c {
		case '{', '(', '[':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	return maxDepth
}
