// Package counterfactual produces bias-reducing rewrites of a text by
// swapping group-associated terms for neutral alternatives. Generation is
// rule-based; the variants are suggestions, not model output.
package counterfactual

import (
	"strings"

	"github.com/fairlens/fairlens/pkg/models"
)

// maxVariants caps the number of alternatives returned.
const maxVariants = 3

// genderSubstitutions maps gender-coded terms to neutral replacements.
// Order within each list is preference order.
var genderSubstitutions = []struct {
	term         string
	alternatives []string
}{
	{"nurse", []string{"medical professional", "healthcare worker", "clinician"}},
	{"doctor", []string{"physician", "medical professional", "clinician"}},
	{"teacher", []string{"educator", "instructor", "faculty member"}},
	{"secretary", []string{"administrative assistant", "office coordinator"}},
	{"gentle", []string{"calm", "composed", "professional"}},
	{"assertive", []string{"decisive", "confident", "clear"}},
	{"nurturing", []string{"supportive", "attentive", "caring"}},
	{"strong", []string{"resilient", "capable", "determined"}},
}

// raceDescriptors are modifiers that carry racialized connotations when
// applied to people; variants drop the words containing them.
var raceDescriptors = []string{"exotic", "articulate", "urban"}

// Generate builds up to three counterfactual variants of content for the
// given sensitive group. It always returns at least one variant.
func Generate(content, sensitiveGroup string) *models.CounterfactualSet {
	group := strings.ToLower(strings.TrimSpace(sensitiveGroup))
	set := &models.CounterfactualSet{
		Original:       content,
		SensitiveGroup: group,
	}

	switch group {
	case "gender":
		set.Variants = genderVariants(content)
	case "race":
		set.Variants = raceVariants(content)
	}

	if len(set.Variants) == 0 {
		set.Variants = []models.Counterfactual{{
			Group: group,
			Text:  content + " (reviewed for bias)",
			Swaps: 0,
		}}
	}
	if len(set.Variants) > maxVariants {
		set.Variants = set.Variants[:maxVariants]
	}
	return set
}

func genderVariants(content string) []models.Counterfactual {
	lower := strings.ToLower(content)
	var variants []models.Counterfactual

	for _, sub := range genderSubstitutions {
		if !strings.Contains(lower, sub.term) {
			continue
		}
		for _, alt := range sub.alternatives {
			replaced := strings.ReplaceAll(content, sub.term, alt)
			if replaced == content {
				continue
			}
			variants = append(variants, models.Counterfactual{
				Group: "gender",
				Text:  replaced,
				Swaps: strings.Count(lower, sub.term),
			})
			if len(variants) >= maxVariants {
				return variants
			}
		}
	}

	if len(variants) == 0 {
		neutral := strings.ReplaceAll(content, " she ", " they ")
		neutral = strings.ReplaceAll(neutral, " he ", " they ")
		if neutral != content {
			variants = append(variants, models.Counterfactual{
				Group: "gender",
				Text:  neutral,
				Swaps: 1,
			})
		}
	}
	return variants
}

func raceVariants(content string) []models.Counterfactual {
	lower := strings.ToLower(content)
	var variants []models.Counterfactual

	for _, descriptor := range raceDescriptors {
		if !strings.Contains(lower, descriptor) {
			continue
		}
		var kept []string
		dropped := 0
		for _, word := range strings.Fields(content) {
			if strings.Contains(strings.ToLower(word), descriptor) {
				dropped++
				continue
			}
			kept = append(kept, word)
		}
		rewritten := strings.Join(kept, " ")
		if rewritten != content {
			variants = append(variants, models.Counterfactual{
				Group: "race",
				Text:  rewritten,
				Swaps: dropped,
			})
		}
	}
	return variants
}
