// Package mcpserver exposes the bias audits as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fairlens/fairlens/pkg/analyzer/codebias"
	"github.com/fairlens/fairlens/pkg/analyzer/lexicon"
	"github.com/fairlens/fairlens/pkg/analyzer/repobias"
	"github.com/fairlens/fairlens/pkg/analyzer/suite"
	"github.com/fairlens/fairlens/pkg/config"
)

// Server wraps the MCP server and registers all fairlens audit tools.
type Server struct {
	server *mcp.Server

	cfg       *config.Config
	text      *lexicon.Auditor
	code      *codebias.Auditor
	evaluator *suite.Evaluator
	repoOpts  []repobias.Option
}

// Option customizes a Server.
type Option func(*Server)

// WithRepoOptions forwards options to the repository analyzer, for tests.
func WithRepoOptions(opts ...repobias.Option) Option {
	return func(s *Server) { s.repoOpts = opts }
}

// NewServer creates an MCP server with all fairlens tools registered.
func NewServer(version string, cfg *config.Config, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fairlens",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server:    server,
		cfg:       cfg,
		text:      lexicon.New(cfg),
		code:      codebias.New(cfg),
		evaluator: suite.New(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_bias",
		Description: describeEvaluateBias(),
	}, s.handleEvaluateBias)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_code_bias",
		Description: describeEvaluateCodeBias(),
	}, s.handleEvaluateCodeBias)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_code_bias",
		Description: describeCompareCodeBias(),
	}, s.handleCompareCodeBias)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_terminology",
		Description: describeScanTerminology(),
	}, s.handleScanTerminology)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_counterfactuals",
		Description: describeGenerateCounterfactuals(),
	}, s.handleGenerateCounterfactuals)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_model_outputs",
		Description: describeEvaluateModelOutputs(),
	}, s.handleEvaluateModelOutputs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_repository_bias",
		Description: describeAnalyzeRepositoryBias(),
	}, s.handleAnalyzeRepositoryBias)
}
