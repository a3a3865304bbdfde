// Package parser normalizes source snippets into control-flow summaries.
//
// Two backends exist: a tree-walking backend built on tree-sitter for
// Python and JavaScript/TypeScript, and a regex backend that approximates
// decision-point counts when tree parsing fails. Backends are modeled as an
// ordered strategy chain per language family; the first strategy to produce
// a summary wins.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/fairlens/fairlens/pkg/models"
)

// ErrParseFailure indicates no backend could produce a summary for the
// requested or detected language.
var ErrParseFailure = errors.New("parse failure")

// Parser converts source snippets into control-flow summaries. A Parser is
// not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// New creates a parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

var (
	pythonSniff = regexp.MustCompile(`\bdef\s+\w+|\bimport\s+\w+|\bfrom\s+\w+`)
	jsSniff     = regexp.MustCompile(`\bfunction\s+\w+|\bconst\s+\w+\s*=|\blet\s+\w+\s*=`)
)

// NormalizeLanguage maps a free-form hint to a known language. Unrecognized
// hints map to LangUnknown, which triggers auto-detection.
func NormalizeLanguage(hint string) models.Language {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "python", "py":
		return models.LangPython
	case "javascript", "js":
		return models.LangJavaScript
	case "typescript", "ts", "tsx":
		return models.LangTypeScript
	default:
		return models.LangUnknown
	}
}

// DetectLanguage sniffs the language family from snippet syntax. Python
// markers win over JavaScript markers; the default family is Python.
func DetectLanguage(code string) models.Language {
	if pythonSniff.MatchString(code) {
		return models.LangPython
	}
	if jsSniff.MatchString(code) {
		return models.LangJavaScript
	}
	return models.LangPython
}

// DetectLanguageFromPath determines the language from a file extension,
// falling back to content sniffing for unknown extensions.
func DetectLanguageFromPath(path, code string) models.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return models.LangPython
	case ".js", ".mjs", ".cjs", ".jsx":
		return models.LangJavaScript
	case ".ts", ".tsx":
		return models.LangTypeScript
	default:
		return DetectLanguage(code)
	}
}

// Parse converts a snippet into a control-flow summary. An empty hint or an
// unrecognized one triggers language detection. The error, when non-nil,
// wraps ErrParseFailure.
func (p *Parser) Parse(code string, hint string) (*models.ControlFlowSummary, error) {
	lang := NormalizeLanguage(hint)
	if lang == models.LangUnknown {
		lang = DetectLanguage(code)
	}

	switch lang {
	case models.LangPython:
		return p.parsePython(code)
	default:
		// The JavaScript family chains to the regex backend when the
		// tree walk cannot produce a trustworthy summary.
		summary, err := p.parseJavaScript(code, lang)
		if err == nil {
			return summary, nil
		}
		return parseRegex(code, lang), nil
	}
}

// parseTree runs tree-sitter for the given grammar and returns the root.
func (p *Parser) parseTree(code string, lang *sitter.Language) (*sitter.Tree, error) {
	p.parser.SetLanguage(lang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, []byte(code))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return tree, nil
}

// parsePython walks a Python syntax tree. Malformed input is a hard parse
// failure: there is no approximate backend for the Python family.
func (p *Parser) parsePython(code string) (*models.ControlFlowSummary, error) {
	tree, err := p.parseTree(code, python.GetLanguage())
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: python snippet contains syntax errors", ErrParseFailure)
	}

	w := &pythonWalker{}
	w.walk(root, 0)

	return &models.ControlFlowSummary{
		Language:         models.LangPython,
		Backend:          models.BackendTreeSitter,
		DecisionPoints:   w.decisionPoints,
		FunctionCount:    w.functionCount,
		MaxNesting:       w.maxNesting,
		ControlFlowNodes: w.nodes,
	}, nil
}

// parseJavaScript walks a JavaScript or TypeScript syntax tree. Trees with
// syntax errors are rejected so the caller can chain to the regex backend.
func (p *Parser) parseJavaScript(code string, lang models.Language) (*models.ControlFlowSummary, error) {
	grammar := javascript.GetLanguage()
	if lang == models.LangTypeScript {
		grammar = typescript.GetLanguage()
	}

	tree, err := p.parseTree(code, grammar)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s snippet contains syntax errors", ErrParseFailure, lang)
	}

	w := &jsWalker{source: []byte(code)}
	w.walk(root, 0)

	return &models.ControlFlowSummary{
		Language:         lang,
		Backend:          models.BackendTreeSitter,
		DecisionPoints:   w.decisionPoints,
		FunctionCount:    w.functionCount,
		MaxNesting:       w.maxNesting,
		ControlFlowNodes: w.nodes,
	}, nil
}
