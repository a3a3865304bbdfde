// Package differential runs the full snippet-pair pipeline: parse both
// sides, score them, and merge the complexity and divergence verdicts
// into one report.
package differential

import (
	"strings"

	"github.com/fairlens/fairlens/pkg/analyzer/complexity"
	"github.com/fairlens/fairlens/pkg/analyzer/divergence"
	"github.com/fairlens/fairlens/pkg/models"
	"github.com/fairlens/fairlens/pkg/parser"
)

// Request describes one snippet pair. Labels default to "Persona A" and
// "Persona B"; empty language hints trigger auto-detection; a zero
// ThresholdRatio uses the default.
type Request struct {
	CodeA string
	CodeB string

	LabelA string
	LabelB string

	LanguageA string
	LanguageB string

	ThresholdRatio float64
}

// CompareComplexity parses both sides and evaluates only the complexity
// ratio. A parse failure on either side produces an ERROR report carrying
// whichever summaries succeeded.
func CompareComplexity(req Request) *models.DifferentialReport {
	summaryA, summaryB, errReport := parsePair(req)
	if errReport != nil {
		return errReport
	}

	verdict := compare(summaryA, summaryB, req)
	return &models.DifferentialReport{
		Status:     verdict.Status,
		Metrics:    verdict.Metrics,
		Details:    verdict.Details,
		Complexity: verdict,
		SummaryA:   summaryA,
		SummaryB:   summaryB,
	}
}

// DetectDivergence parses both sides and evaluates only control-flow
// divergence.
func DetectDivergence(req Request) *models.DifferentialReport {
	summaryA, summaryB, errReport := parsePair(req)
	if errReport != nil {
		return errReport
	}

	verdict := divergence.Detect(summaryA, summaryB,
		divergence.WithLabels(req.LabelA, req.LabelB))
	return &models.DifferentialReport{
		Status:     verdict.Status,
		Metrics:    verdict.Metrics,
		Details:    verdict.Details,
		Divergence: verdict,
		SummaryA:   summaryA,
		SummaryB:   summaryB,
	}
}

// Analyze runs the complete differential analysis: complexity comparison
// and divergence detection over one parse of each side. The two verdicts
// are independent; the merged report fails when either does, and its
// metrics list the comparator's entries first for deterministic ordering.
func Analyze(req Request) *models.DifferentialReport {
	summaryA, summaryB, errReport := parsePair(req)
	if errReport != nil {
		return errReport
	}

	comparison := compare(summaryA, summaryB, req)
	diverged := divergence.Detect(summaryA, summaryB,
		divergence.WithLabels(req.LabelA, req.LabelB))

	status := models.StatusPass
	if comparison.BiasDetected || diverged.HasDivergence {
		status = models.StatusFail
	}

	metrics := make([]models.Metric, 0, len(comparison.Metrics)+len(diverged.Metrics))
	metrics = append(metrics, comparison.Metrics...)
	metrics = append(metrics, diverged.Metrics...)

	return &models.DifferentialReport{
		Status:     status,
		Metrics:    metrics,
		Details:    strings.TrimSpace(comparison.Details + " " + diverged.Details),
		Complexity: comparison,
		Divergence: diverged,
		SummaryA:   summaryA,
		SummaryB:   summaryB,
	}
}

// parsePair normalizes both snippets. On failure it returns an ERROR
// report with the partial summaries instead of crashing or substituting
// zero-valued ones.
func parsePair(req Request) (*models.ControlFlowSummary, *models.ControlFlowSummary, *models.DifferentialReport) {
	p := parser.New()
	defer p.Close()

	summaryA, errA := p.Parse(req.CodeA, req.LanguageA)
	summaryB, errB := p.Parse(req.CodeB, req.LanguageB)

	if errA != nil || errB != nil {
		return nil, nil, &models.DifferentialReport{
			Status:   models.StatusError,
			Error:    "failed to parse one or both code snippets",
			Details:  "Failed to parse one or both code snippets",
			SummaryA: summaryA,
			SummaryB: summaryB,
		}
	}
	return summaryA, summaryB, nil
}

func compare(summaryA, summaryB *models.ControlFlowSummary, req Request) *models.ComparisonVerdict {
	opts := []complexity.Option{complexity.WithLabels(req.LabelA, req.LabelB)}
	if req.ThresholdRatio > 0 {
		opts = append(opts, complexity.WithThresholdRatio(req.ThresholdRatio))
	}
	return complexity.Compare(complexity.Score(summaryA), complexity.Score(summaryB), opts...)
}
