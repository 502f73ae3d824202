package benchmark

import (
	"errors"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/gate"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/match"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/variance"
)

// #region errors

var (
	// ErrDivisionByZero is returned when a metric's denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNotNumeric is returned when a required field has no numeric value.
	ErrNotNumeric = errors.New("value is not numeric")
	// ErrNonFinite is returned when a computation yields NaN or infinity.
	ErrNonFinite = errors.New("result is not a finite number")
)

// #endregion errors

// #region unit

// Unit determines how a metric value is formatted.
type Unit string

const (
	UnitPercent  Unit = "percent"
	UnitCurrency Unit = "currency"
	UnitPer100   Unit = "per_100_employees"
)

// #endregion unit

// #region metric

// ComputeFunc derives a metric value from gated inputs. The returned strings
// are provenance entries describing the inputs used.
type ComputeFunc func(in gate.Inputs) (float64, []string, error)

// Metric is one entry of the registry.
type Metric struct {
	ID          string
	Label       string
	Unit        Unit
	Requirement gate.Requirement
	Compute     ComputeFunc
}

// #endregion metric

// #region size

// SizeBasis names the data the size tier came from.
type SizeBasis string

const (
	BasisRevenue   SizeBasis = "annual_revenue"
	BasisEmployees SizeBasis = "employee_count"
	BasisDefault   SizeBasis = "default"
)

// SizeAssessment is the size tier used for benchmark lookup.
type SizeAssessment struct {
	Tier       reference.SizeTier     `json:"tier"`
	Basis      SizeBasis              `json:"basis"`
	Confidence corpus.ConfidenceLevel `json:"confidence"`
	Note       string                 `json:"note,omitempty"`
}

// #endregion size

// #region comparison

// MetricComparison is one metric's observed value against its benchmark.
// Ineligible metrics carry no observed value and always a reason.
type MetricComparison struct {
	MetricID            string                 `json:"metric_id"`
	Label               string                 `json:"label"`
	Unit                Unit                   `json:"unit"`
	ExpectedLow         *float64               `json:"expected_low"`
	ExpectedTypical     *float64               `json:"expected_typical"`
	ExpectedHigh        *float64               `json:"expected_high"`
	Observed            *float64               `json:"observed"`
	ObservedFormatted   string                 `json:"observed_formatted"`
	VarianceCategory    variance.Category      `json:"variance_category"`
	GapPercent          *float64               `json:"gap_percent"`
	Implication         string                 `json:"implication"`
	Confidence          corpus.ConfidenceLevel `json:"confidence"`
	Eligible            bool                   `json:"eligible"`
	IneligibilityReason string                 `json:"ineligibility_reason"`
	Provenance          []string               `json:"provenance"`
	BenchmarkCategory   *string                `json:"benchmark_category"`
	BenchmarkSource     *string                `json:"benchmark_source"`
	BenchmarkYear       *int                   `json:"benchmark_year"`
}

// #endregion comparison

// #region report

// Summary holds counts derived from the comparison lists.
type Summary struct {
	EligibleMetricCount int `json:"eligible_metric_count"`
	TotalMetricCount    int `json:"total_metric_count"`
	SystemsFound        int `json:"systems_found"`
	SystemsPartial      int `json:"systems_partial"`
	SystemsNotFound     int `json:"systems_not_found"`
	StaffingWithin      int `json:"staffing_within_range"`
	StaffingUnder       int `json:"staffing_understaffed"`
	StaffingOver        int `json:"staffing_overstaffed"`
}

// Report is the benchmark comparison for one company. The engine keeps no
// reference to it after returning.
type Report struct {
	CompanyName       string                     `json:"company_name"`
	Industry          string                     `json:"industry"`
	IndustryLabel     string                     `json:"industry_label"`
	SubIndustry       *string                    `json:"sub_industry"`
	Size              SizeAssessment             `json:"size"`
	Metrics           []MetricComparison         `json:"metrics"`
	Systems           []match.SystemComparison   `json:"systems"`
	Staffing          []match.StaffingComparison `json:"staffing"`
	Summary           Summary                    `json:"summary"`
	OverallConfidence corpus.ConfidenceLevel     `json:"overall_confidence"`
	Deterministic     bool                       `json:"deterministic"`
	ReferenceVersion  string                     `json:"reference_version"`
	Warnings          []string                   `json:"warnings"`
}

// #endregion report
