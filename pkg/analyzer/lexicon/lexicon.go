// Package lexicon audits free text for stereotype bias against a single
// protected attribute using the configured vocabularies.
package lexicon

import (
	"fmt"
	"math"
	"strings"

	"github.com/fairlens/fairlens/pkg/config"
	"github.com/fairlens/fairlens/pkg/models"
)

// Attribute names accepted by Evaluate. Anything else falls through to a
// generic check that always passes.
const (
	AttrGender     = "gender"
	AttrRace       = "race"
	AttrAge        = "age"
	AttrDisability = "disability"
)

// Attributes lists the supported protected attributes in audit order.
func Attributes() []string {
	return []string{AttrGender, AttrRace, AttrAge, AttrDisability}
}

// Auditor scores text against the stereotype lexicons. Safe for
// concurrent use; the lexicon is read-only after construction.
type Auditor struct {
	lex        config.Lexicon
	thresholds config.ThresholdConfig
}

// New creates an auditor from a loaded config.
func New(cfg *config.Config) *Auditor {
	return &Auditor{lex: cfg.Lexicon, thresholds: cfg.Thresholds}
}

// Evaluate audits content for the given protected attribute.
func (a *Auditor) Evaluate(content, attribute string) *models.AuditReport {
	lower := strings.ToLower(content)

	switch strings.ToLower(strings.TrimSpace(attribute)) {
	case AttrGender:
		return a.evaluateGender(lower)
	case AttrRace:
		return a.evaluateRace(lower)
	case AttrAge:
		return a.evaluateAge(lower)
	case AttrDisability:
		return a.evaluateDisability(lower)
	default:
		return &models.AuditReport{
			Status:    models.StatusPass,
			Attribute: attribute,
			Metrics: []models.Metric{
				models.GateMetric("Generic_Bias_Check", 0, a.thresholds.StereotypeDisparity, false),
			},
			Details: fmt.Sprintf("Bias check for %s completed.", attribute),
		}
	}
}

func (a *Auditor) evaluateGender(lower string) *models.AuditReport {
	female := a.lex.Gender.Female
	male := a.lex.Gender.Male

	femaleOcc := countTerms(female.Occupations, lower)
	femaleTraits := countTerms(female.Traits, lower)
	femaleRoles := countTerms(female.Roles, lower)
	maleOcc := countTerms(male.Occupations, lower)
	maleTraits := countTerms(male.Traits, lower)
	maleRoles := countTerms(male.Roles, lower)

	totalFemale := femaleOcc + femaleTraits + femaleRoles
	totalMale := maleOcc + maleTraits + maleRoles

	metrics := []models.Metric{gateDisparity(
		"Gender_Stereotype_Disparity", totalFemale, totalMale, a.thresholds.StereotypeDisparity)}

	if femaleOcc+maleOcc > 0 {
		metrics = append(metrics, gateDisparity(
			"Occupational_Gender_Bias", femaleOcc, maleOcc, a.thresholds.CategoryDisparity))
	}
	if femaleTraits+maleTraits > 0 {
		metrics = append(metrics, gateDisparity(
			"Trait_Gender_Bias", femaleTraits, maleTraits, a.thresholds.CategoryDisparity))
	}

	return &models.AuditReport{
		Status:    models.StatusFrom(metrics),
		Attribute: AttrGender,
		Metrics:   metrics,
		Details: fmt.Sprintf(
			"Detected %d female-associated and %d male-associated stereotype terms. "+
				"Occupational: F=%d, M=%d. Trait: F=%d, M=%d.",
			totalFemale, totalMale, femaleOcc, maleOcc, femaleTraits, maleTraits),
	}
}

func (a *Auditor) evaluateRace(lower string) *models.AuditReport {
	stereotypes := matchTerms(a.lex.Race.Stereotypes, lower)
	microaggressions := matchTerms(a.lex.Race.Microaggressions, lower)

	metrics := []models.Metric{
		gateCoverage("Racial_Stereotype_Score",
			len(stereotypes), len(a.lex.Race.Stereotypes), a.thresholds.StereotypeScore),
		gateCoverage("Microaggression_Score",
			len(microaggressions), len(a.lex.Race.Microaggressions), a.thresholds.MicroaggressionScore),
	}

	details := "No obvious racial bias detected."
	if len(stereotypes) > 0 || len(microaggressions) > 0 {
		details = fmt.Sprintf("Found %d stereotype patterns, %d microaggressions.",
			len(stereotypes), len(microaggressions))
	}

	return &models.AuditReport{
		Status:    models.StatusFrom(metrics),
		Attribute: AttrRace,
		Metrics:   metrics,
		Details:   details,
	}
}

func (a *Auditor) evaluateAge(lower string) *models.AuditReport {
	young := countTerms(a.lex.Age.Young, lower)
	old := countTerms(a.lex.Age.Old, lower)
	ageist := countTerms(a.lex.Age.Ageist, lower)

	var metrics []models.Metric
	if young+old > 0 {
		metrics = append(metrics, gateDisparity(
			"Age_Reference_Disparity", young, old, a.thresholds.ChannelDisparity))
	}
	metrics = append(metrics,
		models.GateMetric("Ageist_Language_Score", float64(ageist), 0, ageist > 0))

	return &models.AuditReport{
		Status:    models.StatusFrom(metrics),
		Attribute: AttrAge,
		Metrics:   metrics,
		Details: fmt.Sprintf(
			"Found %d young-associated, %d old-associated, and %d ageist terms.",
			young, old, ageist),
	}
}

func (a *Auditor) evaluateDisability(lower string) *models.AuditReport {
	ableist := matchTerms(a.lex.Disability.AbleistLanguage, lower)
	assumptions := matchTerms(a.lex.Disability.Assumptions, lower)

	metrics := []models.Metric{
		gateCoverage("Ableist_Language_Score",
			len(ableist), len(a.lex.Disability.AbleistLanguage), a.thresholds.StereotypeScore),
	}

	return &models.AuditReport{
		Status:    models.StatusFrom(metrics),
		Attribute: AttrDisability,
		Metrics:   metrics,
		Details: fmt.Sprintf("Found %d ableist terms, %d assumption patterns.",
			len(ableist), len(assumptions)),
	}
}

// countTerms counts lexicon terms present in the text, one per distinct
// term regardless of repetition.
func countTerms(terms []string, lower string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

// matchTerms returns the lexicon terms present in the text.
func matchTerms(terms []string, lower string) []string {
	var found []string
	for _, term := range terms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

// gateDisparity builds a |a-b|/(a+b) balance metric; zero totals score
// zero rather than dividing.
func gateDisparity(name string, a, b int, threshold float64) models.Metric {
	disparity := 0.0
	if a+b > 0 {
		disparity = math.Abs(float64(a-b)) / float64(a+b)
	}
	disparity = round3(disparity)
	return models.GateMetric(name, disparity, threshold, disparity > threshold)
}

// gateCoverage builds a matched/total lexicon coverage metric.
func gateCoverage(name string, matched, total int, threshold float64) models.Metric {
	score := 0.0
	if total > 0 {
		score = float64(matched) / float64(total)
	}
	score = round3(score)
	return models.GateMetric(name, score, threshold, score > threshold)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
