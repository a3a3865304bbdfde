package models

// AttributeAggregate summarizes audit outcomes for one protected attribute
// across a batch of outputs.
type AttributeAggregate struct {
	Attribute     string  `json:"attribute"`
	Outputs       int     `json:"outputs"`
	FailCount     int     `json:"fail_count"`
	FailRate      float64 `json:"fail_rate"`
	MeanDisparity float64 `json:"mean_disparity"`
	StdDisparity  float64 `json:"std_disparity"`
	Status        Status  `json:"status"`
}

// OutputResult pairs one output with its per-attribute audit reports.
type OutputResult struct {
	Index   int           `json:"index"`
	Status  Status        `json:"status"`
	Reports []AuditReport `json:"reports"`
}

// SuiteReport aggregates audits of a batch of model outputs.
type SuiteReport struct {
	SuiteName  string               `json:"suite_name,omitempty"`
	Status     Status               `json:"status"`
	Metrics    []Metric             `json:"metrics"`
	Details    string               `json:"details"`
	Outputs    int                  `json:"outputs"`
	Aggregates []AttributeAggregate `json:"aggregates"`

	// PerOutput is populated only for detailed aggregation.
	PerOutput []OutputResult `json:"per_output,omitempty"`
}

// ResponseReport audits a single prompt/response exchange.
type ResponseReport struct {
	Status  Status        `json:"status"`
	Metrics []Metric      `json:"metrics"`
	Details string        `json:"details"`
	Prompt  AuditSide     `json:"prompt"`
	Reports []AuditReport `json:"response_reports"`
}

// AuditSide records how much of one side of an exchange was inspected.
type AuditSide struct {
	Characters int `json:"characters"`
	Flagged    int `json:"flagged_attributes"`
}
