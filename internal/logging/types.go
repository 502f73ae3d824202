package logging

import "time"

// #region decision-entry
// DecisionEntry is a single row in the decision_log table: the eligibility
// outcome of one metric in one run.
type DecisionEntry struct {
	RunID      string
	MetricID   string
	Eligible   bool
	Confidence string
	Reason     string
	InputsJSON string
	CreatedAt  time.Time
}
// #endregion decision-entry

// #region decision-inputs
// DecisionInputs is serialized into decision_log.inputs_json so an audit can
// see which values and benchmark range a decision was made against.
type DecisionInputs struct {
	Observed          *float64 `json:"observed"`
	ExpectedLow       *float64 `json:"expected_low"`
	ExpectedTypical   *float64 `json:"expected_typical"`
	ExpectedHigh      *float64 `json:"expected_high"`
	BenchmarkCategory *string  `json:"benchmark_category"`
	VarianceCategory  string   `json:"variance_category"`
	Provenance        []string `json:"provenance"`
}
// #endregion decision-inputs
