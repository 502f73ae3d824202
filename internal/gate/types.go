package gate

import (
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
)

// #region rule-type
// RuleType enumerates the named extra-validation rules.
type RuleType string

const (
	RuleSameFiscalPeriod        RuleType = "same_fiscal_period"
	RuleNotEqualToTotal         RuleType = "not_equal_to_total"
	RuleInventoryPresent        RuleType = "inventory_present"
	RuleExternalServicesPresent RuleType = "external_services_present"
)

// Rule is one extra check run after presence and confidence pass.
// Fields are the rule's operands; Kind is used by inventory_present.
type Rule struct {
	Type   RuleType
	Fields []string
	Kind   string
}

// SameFiscalPeriod requires two monetary fields to cover the same period.
func SameFiscalPeriod(a, b string) *Rule {
	return &Rule{Type: RuleSameFiscalPeriod, Fields: []string{a, b}}
}

// NotEqualToTotal rejects a headcount that repeats the total verbatim.
func NotEqualToTotal(field, total string) *Rule {
	return &Rule{Type: RuleNotEqualToTotal, Fields: []string{field, total}}
}

// InventoryPresent requires at least one inventory item of kind.
func InventoryPresent(kind string) *Rule {
	return &Rule{Type: RuleInventoryPresent, Kind: kind}
}

// ExternalServicesPresent requires an external service with an FTE equivalent.
func ExternalServicesPresent() *Rule {
	return &Rule{Type: RuleExternalServicesPresent}
}

// #endregion rule-type

// #region requirement
// Requirement is what one metric needs before it may be computed.
type Requirement struct {
	Metric        string // display label used in messages
	Fields        []string
	MinConfidence corpus.ConfidenceLevel
	Rule          *Rule // nil when the metric has no extra rule
}

// Inputs is the read-only data the gate checks against.
type Inputs struct {
	Profile   corpus.Profile
	Inventory corpus.Inventory
	Org       corpus.OrgData
}

// #endregion requirement

// #region gate-config
// GateConfig holds gate policy.
type GateConfig struct {
	// AssumeMatchingPeriods passes same_fiscal_period when a period is not
	// recorded, leaving a note. When false an unknown period fails the rule.
	AssumeMatchingPeriods bool
	// FieldLabels maps profile field names to the words used in messages.
	FieldLabels map[string]string
}

// DefaultGateConfig returns the standard policy.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		AssumeMatchingPeriods: true,
		FieldLabels: map[string]string{
			corpus.FieldIndustry:       "industry",
			corpus.FieldSubIndustry:    "sub-industry",
			corpus.FieldAnnualRevenue:  "annual revenue",
			corpus.FieldEmployeeCount:  "employee count",
			corpus.FieldITHeadcount:    "IT headcount",
			corpus.FieldITBudget:       "IT budget",
			corpus.FieldSecurityBudget: "security budget",
		},
	}
}

// #endregion gate-config

// #region gate-decision
// Stage names the check that decided.
type Stage string

const (
	StagePresence   Stage = "presence"
	StageConfidence Stage = "confidence"
	StageRule       Stage = "rule"
	StagePassed     Stage = "passed"
)

// Decision is the output of the gate evaluation.
type Decision struct {
	Eligible   bool
	Stage      Stage
	Reason     string                 // empty when eligible
	Notes      []string               // provenance notes left by passing rules
	Confidence corpus.ConfidenceLevel // lowest confidence among the required fields
}

// #endregion gate-decision
