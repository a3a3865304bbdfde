// Package suite batch-audits model outputs across protected attributes
// and aggregates the outcomes. Audits are stateless per call, so outputs
// are evaluated concurrently.
package suite

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"github.com/fairlens/fairlens/pkg/analyzer/codebias"
	"github.com/fairlens/fairlens/pkg/analyzer/lexicon"
	"github.com/fairlens/fairlens/pkg/config"
	"github.com/fairlens/fairlens/pkg/models"
)

// ContentType selects which audit channel handles an output.
const (
	ContentText = "text"
	ContentCode = "code"
)

// Request describes one suite run.
type Request struct {
	SuiteName   string
	Outputs     []string
	Attributes  []string
	ContentType string // text (default) or code
	// Detailed attaches per-output reports to the suite report.
	Detailed bool
}

// Evaluator runs suite audits. Safe for concurrent use.
type Evaluator struct {
	cfg  *config.Config
	text *lexicon.Auditor
	code *codebias.Auditor
}

// New creates an evaluator from a loaded config.
func New(cfg *config.Config) *Evaluator {
	return &Evaluator{
		cfg:  cfg,
		text: lexicon.New(cfg),
		code: codebias.New(cfg),
	}
}

// Evaluate audits every output against every requested attribute and
// aggregates fail rates and disparity statistics per attribute. The suite
// passes when the overall pass rate meets the configured minimum.
func (e *Evaluator) Evaluate(req Request) (*models.SuiteReport, error) {
	if len(req.Outputs) == 0 {
		return nil, fmt.Errorf("outputs list cannot be empty")
	}
	attributes := req.Attributes
	if len(attributes) == 0 {
		return nil, fmt.Errorf("protected attributes list cannot be empty")
	}

	results := make([]models.OutputResult, len(req.Outputs))

	p := pool.New().WithMaxGoroutines(runtime.NumCPU() * 2)
	for i, output := range req.Outputs {
		p.Go(func() {
			reports := make([]models.AuditReport, 0, len(attributes))
			status := models.StatusPass
			for _, attr := range attributes {
				report := e.audit(output, attr, req.ContentType)
				if report.Status == models.StatusFail {
					status = models.StatusFail
				}
				reports = append(reports, *report)
			}
			results[i] = models.OutputResult{Index: i, Status: status, Reports: reports}
		})
	}
	p.Wait()

	aggregates := aggregate(results, attributes)

	passed := 0
	for _, r := range results {
		if r.Status == models.StatusPass {
			passed++
		}
	}
	passRate := float64(passed) / float64(len(results)) * 100

	minRate := e.cfg.Thresholds.SuitePassRate
	metrics := []models.Metric{
		models.GateMetric("Overall_Pass_Rate", round2(passRate), minRate, passRate < minRate),
	}
	for _, agg := range aggregates {
		metrics = append(metrics,
			models.InfoMetric(attrMetricName(agg.Attribute)+"_Fail_Rate", round2(agg.FailRate)))
	}

	status := models.StatusPass
	if passRate < minRate {
		status = models.StatusFail
	}

	report := &models.SuiteReport{
		SuiteName:  req.SuiteName,
		Status:     status,
		Metrics:    metrics,
		Outputs:    len(req.Outputs),
		Aggregates: aggregates,
		Details: fmt.Sprintf(
			"Evaluated %d outputs across %d attributes: %d passed, %d failed (%.1f%% pass rate).",
			len(req.Outputs), len(attributes), passed, len(results)-passed, passRate),
	}
	if req.Detailed {
		report.PerOutput = results
	}
	return report, nil
}

// Response audits a single prompt/response exchange across attributes,
// surfacing the failed metrics as key issues.
func (e *Evaluator) Response(prompt, response, contentType string, attributes []string) (*models.ResponseReport, error) {
	if len(attributes) == 0 {
		return nil, fmt.Errorf("protected attributes list cannot be empty")
	}

	report := &models.ResponseReport{
		Status: models.StatusPass,
		Prompt: models.AuditSide{Characters: len(prompt)},
	}

	var issues []string
	for _, attr := range attributes {
		audited := e.audit(response, attr, contentType)
		report.Reports = append(report.Reports, *audited)
		if audited.Status != models.StatusFail {
			continue
		}
		report.Status = models.StatusFail
		report.Prompt.Flagged++
		for _, m := range audited.Metrics {
			if m.Result == models.ResultFail {
				issues = append(issues, fmt.Sprintf("%s: %s (value: %s)", attr, m.Name, m.Value))
				report.Metrics = append(report.Metrics, m)
			}
		}
	}

	// Top issues only; full metric lists live on the per-attribute reports.
	if len(issues) > 5 {
		issues = issues[:5]
	}
	if len(issues) > 0 {
		report.Details = "Key issues: " + strings.Join(issues, "; ")
	} else {
		report.Details = "No bias issues detected in response."
	}
	return report, nil
}

func (e *Evaluator) audit(content, attribute, contentType string) *models.AuditReport {
	if contentType == ContentCode {
		return e.code.Evaluate(content, attribute)
	}
	return e.text.Evaluate(content, attribute)
}

// aggregate folds per-output reports into per-attribute summaries using
// the primary (first) metric of each report as the disparity sample.
func aggregate(results []models.OutputResult, attributes []string) []models.AttributeAggregate {
	aggregates := make([]models.AttributeAggregate, 0, len(attributes))

	for ai, attr := range attributes {
		agg := models.AttributeAggregate{Attribute: attr, Status: models.StatusPass}
		var samples []float64

		for _, r := range results {
			if ai >= len(r.Reports) {
				continue
			}
			report := r.Reports[ai]
			agg.Outputs++
			if report.Status == models.StatusFail {
				agg.FailCount++
			}
			if len(report.Metrics) > 0 {
				v := float64(report.Metrics[0].Value)
				if !math.IsInf(v, 0) && !math.IsNaN(v) {
					samples = append(samples, v)
				}
			}
		}

		if agg.Outputs > 0 {
			agg.FailRate = float64(agg.FailCount) / float64(agg.Outputs) * 100
		}
		if len(samples) > 0 {
			agg.MeanDisparity = round3(stat.Mean(samples, nil))
		}
		if len(samples) > 1 {
			agg.StdDisparity = round3(stat.StdDev(samples, nil))
		}
		if agg.FailCount > 0 {
			agg.Status = models.StatusFail
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates
}

// attrMetricName capitalizes an attribute for metric naming, matching the
// Gender_/Race_ style of the audit metrics.
func attrMetricName(attr string) string {
	if attr == "" {
		return attr
	}
	return strings.ToUpper(attr[:1]) + attr[1:]
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
