package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Status is the overall outcome of an audit or comparison.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

// MetricResult classifies a single metric entry.
type MetricResult string

const (
	ResultPass MetricResult = "PASS"
	ResultFail MetricResult = "FAIL"
	// ResultInfo marks informational metrics that never affect the
	// overall status.
	ResultInfo MetricResult = "INFO"
)

// Severity ranks terminology findings.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Ratio is a float64 that survives JSON encoding when infinite. A
// zero-complexity denominator yields an infinite complexity ratio, which
// encoding/json rejects for plain float64 values.
type Ratio float64

// MarshalJSON encodes infinities and NaN as strings.
func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts both numeric values and the string forms produced
// by MarshalJSON.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Infinity"`:
		*r = Ratio(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*r = Ratio(math.Inf(-1))
		return nil
	case `"NaN"`:
		*r = Ratio(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

func (r Ratio) String() string {
	f := float64(r)
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Metric is a single named measurement with its pass/fail threshold.
// Result INFO marks values reported for context only.
type Metric struct {
	Name      string       `json:"name"`
	Value     Ratio        `json:"value"`
	Threshold float64      `json:"threshold"`
	Result    MetricResult `json:"result"`
}

// InfoMetric builds an informational metric entry.
func InfoMetric(name string, value float64) Metric {
	return Metric{Name: name, Value: Ratio(value), Result: ResultInfo}
}

// GateMetric builds a pass/fail metric entry.
func GateMetric(name string, value, threshold float64, failed bool) Metric {
	result := ResultPass
	if failed {
		result = ResultFail
	}
	return Metric{Name: name, Value: Ratio(value), Threshold: threshold, Result: result}
}

// FailedCount returns the number of FAIL metrics in the list.
func FailedCount(metrics []Metric) int {
	n := 0
	for _, m := range metrics {
		if m.Result == ResultFail {
			n++
		}
	}
	return n
}

// StatusFrom derives an overall status from a metric list: FAIL if any
// metric failed, PASS otherwise.
func StatusFrom(metrics []Metric) Status {
	if FailedCount(metrics) > 0 {
		return StatusFail
	}
	return StatusPass
}
