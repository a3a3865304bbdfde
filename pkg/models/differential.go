package models

// ComparisonVerdict pairs two complexity scores against a ratio threshold.
// The bias test is symmetric: it fires whichever side is larger.
type ComparisonVerdict struct {
	Status         Status   `json:"status"`
	Metrics        []Metric `json:"metrics"`
	Details        string   `json:"details"`
	BiasDetected   bool     `json:"bias_detected"`
	Ratio          Ratio    `json:"ratio"`
	ThresholdRatio float64  `json:"threshold_ratio"`

	LabelA      string `json:"label_a"`
	LabelB      string `json:"label_b"`
	ComplexityA int    `json:"complexity_a"`
	ComplexityB int    `json:"complexity_b"`

	// HigherLabel names the side with greater (or equal) complexity;
	// informational, not a pass/fail criterion.
	HigherLabel          string `json:"higher_complexity"`
	LowerLabel           string `json:"lower_complexity"`
	ComplexityDifference int    `json:"complexity_difference"`

	DetailA SnippetDetail `json:"detail_a"`
	DetailB SnippetDetail `json:"detail_b"`
}

// DivergenceVerdict reports structural control-flow differences between
// two summaries: tag set differences plus nesting and decision deltas.
type DivergenceVerdict struct {
	Status        Status   `json:"status"`
	Metrics       []Metric `json:"metrics"`
	Details       string   `json:"details"`
	HasDivergence bool     `json:"divergence_detected"`

	LabelA string `json:"label_a"`
	LabelB string `json:"label_b"`

	OnlyInA     []NodeTag `json:"only_in_a"`
	OnlyInB     []NodeTag `json:"only_in_b"`
	CommonNodes []NodeTag `json:"common_nodes"`

	NestingDifference  int `json:"nesting_difference"`
	DecisionDifference int `json:"decision_difference"`
}

// DifferentialReport merges a comparison verdict and a divergence verdict
// for one pair of snippets. Status is FAIL when either sub-verdict signals
// an issue and ERROR when either side failed to parse; on ERROR whichever
// summaries were produced are still attached.
type DifferentialReport struct {
	Status  Status   `json:"status"`
	Metrics []Metric `json:"metrics"`
	Details string   `json:"details"`
	Error   string   `json:"error,omitempty"`

	Complexity *ComparisonVerdict `json:"complexity_analysis,omitempty"`
	Divergence *DivergenceVerdict `json:"divergence_analysis,omitempty"`

	// Partial summaries, populated even when the overall status is ERROR.
	SummaryA *ControlFlowSummary `json:"summary_a,omitempty"`
	SummaryB *ControlFlowSummary `json:"summary_b,omitempty"`
}
