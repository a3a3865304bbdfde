// Package codebias audits source code for bias in comments, identifier
// names, string literals, and hardcoded demographic assumptions. Every
// audit also runs the inclusive terminology scan.
package codebias

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/fairlens/fairlens/pkg/analyzer/terminology"
	"github.com/fairlens/fairlens/pkg/config"
	"github.com/fairlens/fairlens/pkg/models"
)

var hardcodedGenderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`gender\s*[=!]+\s*['"]male['"]`),
	regexp.MustCompile(`gender\s*[=!]+\s*['"]female['"]`),
	regexp.MustCompile(`sex\s*[=!]+\s*['"]m['"]`),
	regexp.MustCompile(`sex\s*[=!]+\s*['"]f['"]`),
}

var hardcodedRacePatterns = []*regexp.Regexp{
	regexp.MustCompile(`race\s*[=!]+\s*['"](?:white|black|asian|hispanic|native)['"]`),
	regexp.MustCompile(`ethnicity\s*[=!]+\s*['"](?:white|black|asian|hispanic|native)['"]`),
}

var hardcodedAgePatterns = []*regexp.Regexp{
	regexp.MustCompile(`age\s*[<>=]+\s*\d+`),
	regexp.MustCompile(`age\s*[=!]+\s*['"](?:young|old|senior|elderly)['"]`),
}

// Auditor runs the code-channel bias checks. Safe for concurrent use.
type Auditor struct {
	lex        config.Lexicon
	thresholds config.ThresholdConfig
}

// New creates an auditor from a loaded config.
func New(cfg *config.Config) *Auditor {
	return &Auditor{lex: cfg.Lexicon, thresholds: cfg.Thresholds}
}

// Evaluate audits code for the given protected attribute. The
// terminology scan always runs and contributes the leading metric.
func (a *Auditor) Evaluate(code, attribute string) *models.AuditReport {
	lower := strings.ToLower(code)
	comments := extractComments(code)
	variables := extractVariables(code)
	functions := extractFunctions(code)
	literals := extractStrings(code)

	scan := terminology.Scan(code)

	var attrReport *models.AuditReport
	switch strings.ToLower(strings.TrimSpace(attribute)) {
	case "gender":
		attrReport = a.genderBias(lower, comments, variables, functions, literals)
	case "race":
		attrReport = a.raceBias(lower, comments, variables, functions, literals)
	case "age":
		attrReport = a.ageBias(lower, comments, variables, functions, literals)
	case "disability":
		attrReport = a.disabilityBias(lower, comments, variables, functions, literals)
	default:
		attrReport = &models.AuditReport{
			Status:  models.StatusPass,
			Details: fmt.Sprintf("Code bias check for %s completed.", attribute),
		}
	}

	scanMetric := models.GateMetric("Inclusive_Terminology_Scan",
		float64(scan.TruePositives), 0, scan.TruePositives > 0)
	metrics := append([]models.Metric{scanMetric}, attrReport.Metrics...)

	status := models.StatusPass
	if attrReport.Status == models.StatusFail || scan.Status == models.StatusFail {
		status = models.StatusFail
	}

	return &models.AuditReport{
		Status:      status,
		Attribute:   attribute,
		Metrics:     metrics,
		Details:     strings.TrimSpace(scan.Details + " " + attrReport.Details),
		Terminology: scan,
	}
}

func (a *Auditor) genderBias(lower string, comments, variables, functions, literals []string) *models.AuditReport {
	female := a.lex.Gender.Female
	male := a.lex.Gender.Male

	commentText := strings.ToLower(strings.Join(comments, " "))
	femaleInComments := countTerms(female.All(), commentText)
	maleInComments := countTerms(male.All(), commentText)

	nameText := strings.ToLower(strings.Join(append(variables, functions...), " "))
	femaleInNames := countTerms(female.CodePatterns, nameText)
	maleInNames := countTerms(male.CodePatterns, nameText)

	stringText := strings.ToLower(strings.Join(literals, " "))
	femaleInStrings := countTerms(female.All(), stringText)
	maleInStrings := countTerms(male.All(), stringText)

	var metrics []models.Metric
	if femaleInComments+maleInComments > 0 {
		metrics = append(metrics, gateDisparity(
			"Comment_Gender_Bias", femaleInComments, maleInComments, a.thresholds.ChannelDisparity))
	}
	if femaleInNames+maleInNames > 0 {
		metrics = append(metrics, gateDisparity(
			"Naming_Gender_Bias", femaleInNames, maleInNames, a.thresholds.ChannelDisparity))
	}
	if femaleInStrings+maleInStrings > 0 {
		metrics = append(metrics, gateDisparity(
			"String_Literal_Gender_Bias", femaleInStrings, maleInStrings, a.thresholds.ChannelDisparity))
	}

	hardcoded := countMatches(hardcodedGenderPatterns, lower)
	if hardcoded > 0 {
		metrics = append(metrics,
			models.GateMetric("Hardcoded_Gender_Assumptions", float64(hardcoded), 0, true))
	}

	return &models.AuditReport{
		Status:  models.StatusFrom(metrics),
		Metrics: metrics,
		Details: fmt.Sprintf(
			"Code analysis: %d comments, %d variables, %d functions. "+
				"Found %d female references, %d male references. %d hardcoded gender assumptions.",
			len(comments), len(variables), len(functions),
			femaleInComments+femaleInNames, maleInComments+maleInNames, hardcoded),
	}
}

func (a *Auditor) raceBias(lower string, comments, variables, functions, literals []string) *models.AuditReport {
	allText := strings.ToLower(strings.Join(flatten(comments, variables, functions, literals), " "))

	stereotypes := countTerms(a.lex.Race.Stereotypes, allText)
	metrics := []models.Metric{gateCoverage(
		"Code_Racial_Stereotype_Score", stereotypes, len(a.lex.Race.Stereotypes), a.thresholds.StereotypeScore)}

	nameText := strings.ToLower(strings.Join(append(variables, functions...), " "))
	namePatterns := countTerms(a.lex.Race.CodePatterns, nameText)
	if namePatterns > 0 {
		metrics = append(metrics,
			models.GateMetric("Naming_Racial_Bias", float64(namePatterns), 0, true))
	}

	hardcoded := countMatches(hardcodedRacePatterns, lower)
	if hardcoded > 0 {
		metrics = append(metrics,
			models.GateMetric("Hardcoded_Race_Assumptions", float64(hardcoded), 0, true))
	}

	return &models.AuditReport{
		Status:  models.StatusFrom(metrics),
		Metrics: metrics,
		Details: fmt.Sprintf(
			"Found %d racial stereotypes, %d problematic name patterns, %d hardcoded race assumptions.",
			stereotypes, namePatterns, hardcoded),
	}
}

func (a *Auditor) ageBias(lower string, comments, variables, functions, literals []string) *models.AuditReport {
	allText := strings.ToLower(strings.Join(flatten(comments, variables, functions, literals), " "))

	young := countTerms(a.lex.Age.Young, allText)
	old := countTerms(a.lex.Age.Old, allText)
	ageist := countTerms(a.lex.Age.Ageist, allText)

	var metrics []models.Metric
	if young+old > 0 {
		metrics = append(metrics, gateDisparity(
			"Code_Age_Reference_Disparity", young, old, a.thresholds.ChannelDisparity))
	}
	if ageist > 0 {
		metrics = append(metrics,
			models.GateMetric("Code_Ageist_Language", float64(ageist), 0, true))
	}

	hardcoded := countMatches(hardcodedAgePatterns, lower)
	if hardcoded > 0 {
		metrics = append(metrics,
			models.GateMetric("Hardcoded_Age_Assumptions", float64(hardcoded), 0, true))
	}

	return &models.AuditReport{
		Status:  models.StatusFrom(metrics),
		Metrics: metrics,
		Details: fmt.Sprintf(
			"Found %d young-associated, %d old-associated, %d ageist terms, %d hardcoded age assumptions.",
			young, old, ageist, hardcoded),
	}
}

func (a *Auditor) disabilityBias(lower string, comments, variables, functions, literals []string) *models.AuditReport {
	allText := strings.ToLower(strings.Join(flatten(comments, variables, functions, literals), " "))

	ableist := countTerms(a.lex.Disability.AbleistLanguage, allText)
	assumptions := countTerms(a.lex.Disability.Assumptions, allText)

	metrics := []models.Metric{gateCoverage(
		"Code_Ableist_Language_Score", ableist, len(a.lex.Disability.AbleistLanguage), a.thresholds.StereotypeScore)}

	nameText := strings.ToLower(strings.Join(append(variables, functions...), " "))
	namePatterns := countTerms(a.lex.Disability.CodePatterns, nameText)
	if namePatterns > 0 {
		metrics = append(metrics,
			models.GateMetric("Naming_Disability_Bias", float64(namePatterns), 0, true))
	}

	return &models.AuditReport{
		Status:  models.StatusFrom(metrics),
		Metrics: metrics,
		Details: fmt.Sprintf(
			"Found %d ableist terms, %d assumption patterns, %d problematic name patterns.",
			ableist, assumptions, namePatterns),
	}
}

func flatten(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func countTerms(terms []string, lower string) int {
	n := 0
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			n++
		}
	}
	return n
}

func countMatches(patterns []*regexp.Regexp, lower string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(lower) {
			n++
		}
	}
	return n
}

func gateDisparity(name string, a, b int, threshold float64) models.Metric {
	disparity := math.Abs(float64(a-b)) / float64(a+b)
	disparity = math.Round(disparity*1000) / 1000
	return models.GateMetric(name, disparity, threshold, disparity > threshold)
}

func gateCoverage(name string, matched, total int, threshold float64) models.Metric {
	score := 0.0
	if total > 0 {
		score = float64(matched) / float64(total)
	}
	score = math.Round(score*1000) / 1000
	return models.GateMetric(name, score, threshold, score > threshold)
}
