package match

import (
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
)

// #region system-comparison

// SystemStatus is the outcome of the three-phase system search.
type SystemStatus string

const (
	StatusFound    SystemStatus = "found"
	StatusPartial  SystemStatus = "partial"
	StatusNotFound SystemStatus = "not_found"
)

// NotFoundDisclaimer is attached to every not_found system. Absence from the
// documents is never reported as absence of the capability.
const NotFoundDisclaimer = "Not found in the documents reviewed. This does not mean the capability is missing: " +
	"the function may be outsourced to a provider, may exist under a different name, " +
	"or may simply be undocumented."

// SystemComparison is the match result for one expected system.
type SystemComparison struct {
	Category            string       `json:"category"`
	Description         string       `json:"description"`
	ExpectedCriticality string       `json:"expected_criticality"`
	CandidateVendors    []string     `json:"candidate_vendors"`
	Status              SystemStatus `json:"status"`
	MatchedSystem       *string      `json:"matched_system"`
	MatchedVendor       *string      `json:"matched_vendor"`
	InventoryReference  *string      `json:"inventory_reference"`
	FactReference       *string      `json:"fact_reference"`
	Notes               string       `json:"notes"`
}

// #endregion system-comparison

// #region staffing-comparison

// StaffingVariance compares an observed count with the expected range.
type StaffingVariance string

const (
	WithinRange  StaffingVariance = "within_range"
	Understaffed StaffingVariance = "understaffed"
	Overstaffed  StaffingVariance = "overstaffed"
)

// StaffingComparison is the match result for one staffing expectation.
type StaffingComparison struct {
	Category           string           `json:"category"`
	ExpectedLabel      string           `json:"expected_label"`
	ExpectedRange      reference.Range  `json:"expected_range"`
	ExpectedRangeLabel string           `json:"expected_range_label"`
	ObservedCount      int              `json:"observed_count"`
	ObservedMembers    []string         `json:"observed_members"`
	Variance           StaffingVariance `json:"variance"`
	OutsourcedCoverage string           `json:"outsourced_coverage_note"`
	Notes              string           `json:"notes"`
}

// #endregion staffing-comparison
