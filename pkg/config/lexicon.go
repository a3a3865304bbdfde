package config

// Lexicon holds the stereotype and denylist vocabularies driving the
// text and code bias audits. All matching is done on lowercased content,
// so entries must be lowercase.
type Lexicon struct {
	Gender     GenderLexicon     `koanf:"gender" json:"gender"`
	Race       RaceLexicon       `koanf:"race" json:"race"`
	Age        AgeLexicon        `koanf:"age" json:"age"`
	Disability DisabilityLexicon `koanf:"disability" json:"disability"`
}

// GenderTerms is one side of the gender lexicon.
type GenderTerms struct {
	Occupations  []string `koanf:"occupations" json:"occupations"`
	Traits       []string `koanf:"traits" json:"traits"`
	Roles        []string `koanf:"roles" json:"roles"`
	CodePatterns []string `koanf:"code_patterns" json:"code_patterns"`
}

// All returns the occupation, trait and role terms flattened.
func (g GenderTerms) All() []string {
	out := make([]string, 0, len(g.Occupations)+len(g.Traits)+len(g.Roles))
	out = append(out, g.Occupations...)
	out = append(out, g.Traits...)
	out = append(out, g.Roles...)
	return out
}

type GenderLexicon struct {
	Female GenderTerms `koanf:"female" json:"female"`
	Male   GenderTerms `koanf:"male" json:"male"`
}

type RaceLexicon struct {
	Stereotypes      []string `koanf:"stereotypes" json:"stereotypes"`
	Microaggressions []string `koanf:"microaggressions" json:"microaggressions"`
	Assumptions      []string `koanf:"assumptions" json:"assumptions"`
	CodePatterns     []string `koanf:"code_patterns" json:"code_patterns"`
}

type AgeLexicon struct {
	Young        []string `koanf:"young" json:"young"`
	Old          []string `koanf:"old" json:"old"`
	Ageist       []string `koanf:"ageist" json:"ageist"`
	CodePatterns []string `koanf:"code_patterns" json:"code_patterns"`
}

type DisabilityLexicon struct {
	AbleistLanguage []string `koanf:"ableist_language" json:"ableist_language"`
	Assumptions     []string `koanf:"assumptions" json:"assumptions"`
	InspirationPorn []string `koanf:"inspiration_porn" json:"inspiration_porn"`
	CodePatterns    []string `koanf:"code_patterns" json:"code_patterns"`
}
