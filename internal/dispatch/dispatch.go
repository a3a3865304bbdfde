// Package dispatch implements the line-delimited request protocol:
// one request per stdin line, one JSON response per stdout line.
// Requests are decoded as JSON first with a TOON fallback, routed by
// their command field, and never crash the loop; protocol failures
// come back as error responses.
package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	toon "github.com/toon-format/toon-go"

	"github.com/fairlens/fairlens/internal/cache"
	"github.com/fairlens/fairlens/pkg/analyzer/codebias"
	"github.com/fairlens/fairlens/pkg/analyzer/counterfactual"
	"github.com/fairlens/fairlens/pkg/analyzer/differential"
	"github.com/fairlens/fairlens/pkg/analyzer/lexicon"
	"github.com/fairlens/fairlens/pkg/analyzer/repobias"
	"github.com/fairlens/fairlens/pkg/analyzer/suite"
	"github.com/fairlens/fairlens/pkg/analyzer/terminology"
	"github.com/fairlens/fairlens/pkg/config"
	"github.com/fairlens/fairlens/pkg/models"
)

// maxLineBytes bounds a single request frame.
const maxLineBytes = 16 * 1024 * 1024

type handler func(ctx context.Context, raw []byte) (any, error)

// Dispatcher routes protocol requests to analyzer handlers.
type Dispatcher struct {
	cfg       *config.Config
	text      *lexicon.Auditor
	code      *codebias.Auditor
	evaluator *suite.Evaluator
	store     *cache.Cache
	repoOpts  []repobias.Option

	handlers map[string]handler
	// memoExempt lists commands whose results depend on state outside
	// the request, so they are never served from cache.
	memoExempt map[string]bool
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithRepoOptions forwards options to the repository analyzer, for tests.
func WithRepoOptions(opts ...repobias.Option) Option {
	return func(d *Dispatcher) { d.repoOpts = opts }
}

// New creates a dispatcher. A nil cache disables memoization.
func New(cfg *config.Config, store *cache.Cache, opts ...Option) *Dispatcher {
	if store == nil {
		store, _ = cache.New(config.CacheConfig{})
	}
	d := &Dispatcher{
		cfg:       cfg,
		text:      lexicon.New(cfg),
		code:      codebias.New(cfg),
		evaluator: suite.New(cfg),
		store:     store,
		memoExempt: map[string]bool{
			"analyze_repository_bias": true,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handler{
		"evaluate_bias":            d.handleEvaluateBias,
		"generate_counterfactuals": d.handleGenerateCounterfactuals,
		"compare_code_bias":        d.handleCompareCodeBias,
		"scan_terminology":         d.handleScanTerminology,
		"evaluate_model_outputs":   d.handleEvaluateModelOutputs,
		"evaluate_prompt_suite":    d.handleEvaluatePromptSuite,
		"evaluate_model_response":  d.handleEvaluateModelResponse,
		"analyze_repository_bias":  d.handleAnalyzeRepositoryBias,
	}
	return d
}

// Response is one protocol frame. Exactly one of Result and Error is set.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Run consumes request lines from r until EOF, writing one response
// line per request to w.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := d.Process(ctx, line)
		encoded, err := json.Marshal(resp)
		if err != nil {
			encoded, _ = json.Marshal(Response{Error: "Protocol Error: " + err.Error()})
		}
		if _, err := fmt.Fprintf(w, "%s\n", encoded); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Process handles a single request frame.
func (d *Dispatcher) Process(ctx context.Context, line []byte) Response {
	raw, err := normalize(line)
	if err != nil {
		return Response{Error: "Protocol Error: " + err.Error()}
	}

	var envelope struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Response{Error: "Validation Error: " + err.Error()}
	}
	if envelope.Command == "" {
		return Response{Error: "Validation Error: missing command"}
	}

	h, ok := d.handlers[envelope.Command]
	if !ok {
		return Response{Error: "Unknown command: " + envelope.Command}
	}

	memoKey := ""
	if !d.memoExempt[envelope.Command] {
		memoKey = fmt.Sprintf("dispatch:%016x", xxhash.Sum64(raw))
		if data, hit := d.store.Get(memoKey, ""); hit {
			return Response{Result: json.RawMessage(data)}
		}
	}

	result, err := h(ctx, raw)
	if err != nil {
		return Response{Error: err.Error()}
	}

	if memoKey != "" {
		if data, err := json.Marshal(result); err == nil {
			d.store.Set(memoKey, "", data)
		}
	}
	return Response{Result: result}
}

// normalize returns the request as JSON, decoding TOON frames when the
// line is not valid JSON.
func normalize(line []byte) ([]byte, error) {
	if json.Valid(line) {
		return line, nil
	}
	var decoded map[string]any
	if err := toon.Unmarshal(line, &decoded); err != nil {
		return nil, fmt.Errorf("request is neither JSON nor TOON: %w", err)
	}
	return json.Marshal(decoded)
}

type evaluateBiasRequest struct {
	Content             string   `json:"content"`
	ProtectedAttribute  string   `json:"protected_attribute"`
	ProtectedAttributes []string `json:"protected_attributes"`
	ContentType         string   `json:"content_type"`
}

// multiAttributeResult bundles per-attribute reports for requests that
// audit several attributes at once.
type multiAttributeResult struct {
	Status  models.Status        `json:"status"`
	Reports []models.AuditReport `json:"reports"`
}

func (d *Dispatcher) handleEvaluateBias(_ context.Context, raw []byte) (any, error) {
	var req evaluateBiasRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}

	if len(req.ProtectedAttributes) > 1 {
		result := multiAttributeResult{Status: models.StatusPass}
		for _, attr := range req.ProtectedAttributes {
			report := d.audit(req.Content, attr, req.ContentType)
			if report.Status == models.StatusFail {
				result.Status = models.StatusFail
			}
			result.Reports = append(result.Reports, *report)
		}
		return result, nil
	}

	attr := req.ProtectedAttribute
	if len(req.ProtectedAttributes) == 1 {
		attr = req.ProtectedAttributes[0]
	}
	if attr == "" {
		return nil, fmt.Errorf("Validation Error: protected attribute is required")
	}
	return d.audit(req.Content, attr, req.ContentType), nil
}

func (d *Dispatcher) audit(content, attribute, contentType string) *models.AuditReport {
	if contentType == suite.ContentCode {
		return d.code.Evaluate(content, attribute)
	}
	return d.text.Evaluate(content, attribute)
}

type generateCounterfactualsRequest struct {
	Content        string `json:"content"`
	SensitiveGroup string `json:"sensitive_group"`
}

func (d *Dispatcher) handleGenerateCounterfactuals(_ context.Context, raw []byte) (any, error) {
	var req generateCounterfactualsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}
	if req.SensitiveGroup == "" {
		return nil, fmt.Errorf("Validation Error: sensitive_group is required")
	}
	return counterfactual.Generate(req.Content, req.SensitiveGroup), nil
}

type compareCodeBiasRequest struct {
	CodeA     string `json:"code_a"`
	CodeB     string `json:"code_b"`
	PersonaA  string `json:"persona_a"`
	PersonaB  string `json:"persona_b"`
	LanguageA string `json:"language_a"`
	LanguageB string `json:"language_b"`
}

func (d *Dispatcher) handleCompareCodeBias(_ context.Context, raw []byte) (any, error) {
	var req compareCodeBiasRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}
	return differential.Analyze(differential.Request{
		CodeA:     req.CodeA,
		CodeB:     req.CodeB,
		LabelA:    req.PersonaA,
		LabelB:    req.PersonaB,
		LanguageA: req.LanguageA,
		LanguageB: req.LanguageB,
	}), nil
}

type scanTerminologyRequest struct {
	Content string `json:"content"`
}

func (d *Dispatcher) handleScanTerminology(_ context.Context, raw []byte) (any, error) {
	var req scanTerminologyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}
	return terminology.Scan(req.Content), nil
}

type evaluateModelOutputsRequest struct {
	Outputs             []string `json:"outputs"`
	ProtectedAttributes []string `json:"protected_attributes"`
	ContentType         string   `json:"content_type"`
	Aggregation         string   `json:"aggregation"`
}

func (d *Dispatcher) handleEvaluateModelOutputs(_ context.Context, raw []byte) (any, error) {
	var req evaluateModelOutputsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}
	return d.evaluator.Evaluate(suite.Request{
		SuiteName:   "model_outputs",
		Outputs:     req.Outputs,
		Attributes:  req.ProtectedAttributes,
		ContentType: req.ContentType,
		Detailed:    req.Aggregation == "detailed",
	})
}

type evaluatePromptSuiteRequest struct {
	Prompts             []string `json:"prompts"`
	ModelOutputs        []string `json:"model_outputs"`
	ProtectedAttributes []string `json:"protected_attributes"`
	SuiteName           string   `json:"suite_name"`
	ContentType         string   `json:"content_type"`
}

func (d *Dispatcher) handleEvaluatePromptSuite(_ context.Context, raw []byte) (any, error) {
	var req evaluatePromptSuiteRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}
	if len(req.Prompts) != len(req.ModelOutputs) {
		return nil, fmt.Errorf("Validation Error: prompts and model_outputs must have equal length")
	}
	name := req.SuiteName
	if name == "" {
		name = "default_suite"
	}
	return d.evaluator.Evaluate(suite.Request{
		SuiteName:   name,
		Outputs:     req.ModelOutputs,
		Attributes:  req.ProtectedAttributes,
		ContentType: req.ContentType,
		Detailed:    true,
	})
}

type evaluateModelResponseRequest struct {
	Prompt              string   `json:"prompt"`
	ModelResponse       string   `json:"response"`
	ProtectedAttributes []string `json:"protected_attributes"`
	ContentType         string   `json:"content_type"`
}

func (d *Dispatcher) handleEvaluateModelResponse(_ context.Context, raw []byte) (any, error) {
	var req evaluateModelResponseRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}
	return d.evaluator.Response(req.Prompt, req.ModelResponse, req.ContentType, req.ProtectedAttributes)
}

type analyzeRepositoryBiasRequest struct {
	RepositoryPath      string   `json:"repository_path"`
	ProtectedAttributes []string `json:"protected_attributes"`
	MaxCommits          int      `json:"max_commits"`
	MinCommitsPerAuthor int      `json:"min_commits_per_author"`
}

func (d *Dispatcher) handleAnalyzeRepositoryBias(ctx context.Context, raw []byte) (any, error) {
	var req analyzeRepositoryBiasRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("Validation Error: %w", err)
	}
	if req.RepositoryPath == "" {
		return nil, fmt.Errorf("Validation Error: repository_path is required")
	}

	// Per-request limits override the loaded config.
	cfg := *d.cfg
	if req.MaxCommits > 0 {
		cfg.Repository.MaxCommits = req.MaxCommits
	}
	if req.MinCommitsPerAuthor > 0 {
		cfg.Repository.MinCommitsPerAuthor = req.MinCommitsPerAuthor
	}
	cfg.Repository.Progress = false

	return repobias.New(&cfg, d.repoOpts...).Analyze(ctx, req.RepositoryPath, req.ProtectedAttributes)
}
