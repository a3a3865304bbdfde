package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/fairlens/fairlens/pkg/analyzer/counterfactual"
	"github.com/fairlens/fairlens/pkg/analyzer/differential"
	"github.com/fairlens/fairlens/pkg/analyzer/repobias"
	"github.com/fairlens/fairlens/pkg/analyzer/suite"
	"github.com/fairlens/fairlens/pkg/analyzer/terminology"
)

// EvaluateBiasInput audits one piece of text content.
type EvaluateBiasInput struct {
	Content             string   `json:"content" jsonschema:"The text content to audit."`
	ProtectedAttributes []string `json:"protected_attributes" jsonschema:"Attributes to audit: gender, race, age, disability."`
	Format              string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// EvaluateCodeBiasInput audits one source snippet.
type EvaluateCodeBiasInput struct {
	Code                string   `json:"code" jsonschema:"The source code to audit."`
	ProtectedAttributes []string `json:"protected_attributes" jsonschema:"Attributes to audit: gender, race, age, disability."`
	Format              string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// CompareCodeBiasInput compares two code snippets generated for
// different personas.
type CompareCodeBiasInput struct {
	CodeA     string `json:"code_a" jsonschema:"First code snippet."`
	CodeB     string `json:"code_b" jsonschema:"Second code snippet."`
	PersonaA  string `json:"persona_a,omitempty" jsonschema:"Label for the first snippet. Default Persona A."`
	PersonaB  string `json:"persona_b,omitempty" jsonschema:"Label for the second snippet. Default Persona B."`
	LanguageA string `json:"language_a,omitempty" jsonschema:"Language hint for the first snippet: python, javascript, or typescript. Auto-detected if empty."`
	LanguageB string `json:"language_b,omitempty" jsonschema:"Language hint for the second snippet."`
	Format    string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// ScanTerminologyInput scans text for non-inclusive terminology.
type ScanTerminologyInput struct {
	Content string `json:"content" jsonschema:"The text or code to scan."`
	Format  string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// GenerateCounterfactualsInput produces bias-reducing rewrites.
type GenerateCounterfactualsInput struct {
	Content        string `json:"content" jsonschema:"The text to rewrite."`
	SensitiveGroup string `json:"sensitive_group" jsonschema:"The group to generate counterfactuals for: gender or race."`
	Format         string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// EvaluateModelOutputsInput batch-audits model outputs.
type EvaluateModelOutputsInput struct {
	Outputs             []string `json:"outputs" jsonschema:"Model outputs to audit."`
	ProtectedAttributes []string `json:"protected_attributes" jsonschema:"Attributes to audit each output against."`
	ContentType         string   `json:"content_type,omitempty" jsonschema:"text (default) or code."`
	Detailed            bool     `json:"detailed,omitempty" jsonschema:"Attach per-output reports."`
	Format              string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// AnalyzeRepositoryBiasInput audits a git repository's history.
type AnalyzeRepositoryBiasInput struct {
	RepositoryPath      string   `json:"repository_path" jsonschema:"Path to the git repository."`
	ProtectedAttributes []string `json:"protected_attributes" jsonschema:"Attributes to audit commits against."`
	MaxCommits          int      `json:"max_commits,omitempty" jsonschema:"Commit limit. 0 analyzes the full history."`
	Format              string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// Helper functions

func formatOutput(data any, format string) (string, error) {
	if format == "json" {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toolResult(data any, format string) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func defaultAttributes(attrs []string) []string {
	if len(attrs) == 0 {
		return []string{"gender"}
	}
	return attrs
}

// Tool handlers

func (s *Server) handleEvaluateBias(ctx context.Context, req *mcp.CallToolRequest, input EvaluateBiasInput) (*mcp.CallToolResult, any, error) {
	if input.Content == "" {
		return toolError("content is required")
	}
	reports := s.auditAll(input.Content, defaultAttributes(input.ProtectedAttributes), suite.ContentText)
	return toolResult(reports, input.Format)
}

func (s *Server) handleEvaluateCodeBias(ctx context.Context, req *mcp.CallToolRequest, input EvaluateCodeBiasInput) (*mcp.CallToolResult, any, error) {
	if input.Code == "" {
		return toolError("code is required")
	}
	reports := s.auditAll(input.Code, defaultAttributes(input.ProtectedAttributes), suite.ContentCode)
	return toolResult(reports, input.Format)
}

func (s *Server) auditAll(content string, attributes []string, contentType string) any {
	if len(attributes) == 1 {
		return s.audit(content, attributes[0], contentType)
	}
	results := make([]any, 0, len(attributes))
	for _, attr := range attributes {
		results = append(results, s.audit(content, attr, contentType))
	}
	return results
}

func (s *Server) audit(content, attribute, contentType string) any {
	if contentType == suite.ContentCode {
		return s.code.Evaluate(content, attribute)
	}
	return s.text.Evaluate(content, attribute)
}

func (s *Server) handleCompareCodeBias(ctx context.Context, req *mcp.CallToolRequest, input CompareCodeBiasInput) (*mcp.CallToolResult, any, error) {
	if input.CodeA == "" || input.CodeB == "" {
		return toolError("both code_a and code_b are required")
	}
	report := differential.Analyze(differential.Request{
		CodeA:     input.CodeA,
		CodeB:     input.CodeB,
		LabelA:    input.PersonaA,
		LabelB:    input.PersonaB,
		LanguageA: input.LanguageA,
		LanguageB: input.LanguageB,
	})
	return toolResult(report, input.Format)
}

func (s *Server) handleScanTerminology(ctx context.Context, req *mcp.CallToolRequest, input ScanTerminologyInput) (*mcp.CallToolResult, any, error) {
	if input.Content == "" {
		return toolError("content is required")
	}
	return toolResult(terminology.Scan(input.Content), input.Format)
}

func (s *Server) handleGenerateCounterfactuals(ctx context.Context, req *mcp.CallToolRequest, input GenerateCounterfactualsInput) (*mcp.CallToolResult, any, error) {
	if input.Content == "" {
		return toolError("content is required")
	}
	if input.SensitiveGroup == "" {
		return toolError("sensitive_group is required")
	}
	return toolResult(counterfactual.Generate(input.Content, input.SensitiveGroup), input.Format)
}

func (s *Server) handleEvaluateModelOutputs(ctx context.Context, req *mcp.CallToolRequest, input EvaluateModelOutputsInput) (*mcp.CallToolResult, any, error) {
	report, err := s.evaluator.Evaluate(suite.Request{
		SuiteName:   "model_outputs",
		Outputs:     input.Outputs,
		Attributes:  defaultAttributes(input.ProtectedAttributes),
		ContentType: input.ContentType,
		Detailed:    input.Detailed,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report, input.Format)
}

func (s *Server) handleAnalyzeRepositoryBias(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeRepositoryBiasInput) (*mcp.CallToolResult, any, error) {
	if input.RepositoryPath == "" {
		return toolError("repository_path is required")
	}

	cfg := *s.cfg
	if input.MaxCommits > 0 {
		cfg.Repository.MaxCommits = input.MaxCommits
	}
	cfg.Repository.Progress = false

	analyzer := repobias.New(&cfg, s.repoOpts...)
	report, err := analyzer.Analyze(ctx, input.RepositoryPath, defaultAttributes(input.ProtectedAttributes))
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report, input.Format)
}
