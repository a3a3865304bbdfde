package codebias

import (
	"regexp"
	"strings"
)

// Extraction is regex-based on purpose: it runs on snippets in any
// language, including ones the tree backends do not parse.

var commentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`//(.+)`),
	regexp.MustCompile(`#(.+)`),
	regexp.MustCompile(`--(.+)`),
	regexp.MustCompile(`(?s)/\*(.+?)\*/`),
	regexp.MustCompile(`(?s)<!--(.+?)-->`),
}

var variablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:let|const|var)\s+([a-zA-Z_][a-zA-Z0-9_]*)`),
	regexp.MustCompile(`\b(?:val|var)\s+([a-zA-Z_][a-zA-Z0-9_]*)`),
	regexp.MustCompile(`\b(?:int|string|float|bool)\s+([a-zA-Z_][a-zA-Z0-9_]*)`),
	regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`),
}

var functionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bfunction\s+([a-zA-Z_][a-zA-Z0-9_]*)`),
	regexp.MustCompile(`\bdef\s+([a-zA-Z_][a-zA-Z0-9_]*)`),
	regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z0-9_]*)\s*=\s*function`),
}

var stringPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]*)"`),
	regexp.MustCompile(`'([^']*)'`),
	regexp.MustCompile("`([^`]*)`"),
}

func extractAll(patterns []*regexp.Regexp, code string) []string {
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(code, -1) {
			text := strings.TrimSpace(m[len(m)-1])
			if text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}

func extractComments(code string) []string  { return extractAll(commentPatterns, code) }
func extractVariables(code string) []string { return extractAll(variablePatterns, code) }
func extractFunctions(code string) []string { return extractAll(functionPatterns, code) }
func extractStrings(code string) []string   { return extractAll(stringPatterns, code) }
