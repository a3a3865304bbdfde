package models

// AuditReport is the result of evaluating one piece of content against the
// stereotype lexicons for a single protected attribute.
type AuditReport struct {
	Status    Status   `json:"status"`
	Attribute string   `json:"attribute"`
	Metrics   []Metric `json:"metrics"`
	Details   string   `json:"details"`

	// Terminology carries scanner output when the content was audited as
	// code; nil for plain-text audits.
	Terminology *TerminologyScan `json:"inclusive_terminology,omitempty"`
}

// TermFinding is one non-inclusive term occurrence with its replacement
// guidance.
type TermFinding struct {
	Term           string   `json:"term"`
	Severity       Severity `json:"severity"`
	Line           int      `json:"line"`
	Context        string   `json:"context"`
	Recommendation string   `json:"recommendation"`
}

// TerminologyScan is the full inclusive-terminology scanner result.
type TerminologyScan struct {
	Status          Status           `json:"status"`
	Findings        []TermFinding    `json:"findings"`
	TruePositives   int              `json:"true_positives"`
	SuppressedCount int              `json:"suppressed_count"`
	BySeverity      map[Severity]int `json:"findings_by_severity"`
	Recommendations []string         `json:"recommendations"`
	Details         string           `json:"details"`
}

// Counterfactual is one generated variant of a text with group-associated
// terms swapped.
type Counterfactual struct {
	Group string `json:"group"`
	Text  string `json:"text"`
	Swaps int    `json:"swaps"`
}

// CounterfactualSet is the output of the counterfactual generator.
type CounterfactualSet struct {
	Original       string           `json:"original"`
	SensitiveGroup string           `json:"sensitive_group"`
	Variants       []Counterfactual `json:"counterfactuals"`
}
