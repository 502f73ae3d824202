// Package gate decides whether a metric's inputs are good enough to compute
// and show. Checks run presence first, then the confidence floor, then the
// metric's extra rule, and stop at the first failure with a reason that names
// the data involved.
package gate

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
)

// #region gate
// Gate evaluates metric requirements against a company's inputs.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate runs the three checks in order and short-circuits on failure.
func (g *Gate) Evaluate(req Requirement, in Inputs) Decision {
	// --- Presence ---
	var missing []string
	levels := make([]corpus.ConfidenceLevel, 0, len(req.Fields))
	for _, name := range req.Fields {
		f, ok := in.Profile.Field(name)
		if !ok {
			missing = append(missing, g.label(name))
			continue
		}
		levels = append(levels, f.Confidence)
	}
	if len(missing) > 0 {
		return Decision{
			Stage: StagePresence,
			Reason: fmt.Sprintf("%s requires %s; not provided: %s",
				req.Metric, g.labels(req.Fields), strings.Join(missing, ", ")),
		}
	}
	lowest := corpus.MinConfidence(levels...)

	// --- Confidence floor ---
	for _, name := range req.Fields {
		f, _ := in.Profile.Field(name)
		if !f.Confidence.AtLeast(req.MinConfidence) {
			return Decision{
				Stage:      StageConfidence,
				Confidence: lowest,
				Reason: fmt.Sprintf("%s confidence is %s; %s requires at least %s",
					g.label(name), f.Confidence, req.Metric, req.MinConfidence),
			}
		}
	}

	// --- Extra rule ---
	var notes []string
	if req.Rule != nil {
		reason, note := g.checkRule(*req.Rule, in)
		if reason != "" {
			return Decision{
				Stage:      StageRule,
				Confidence: lowest,
				Reason:     fmt.Sprintf("%s: %s", req.Metric, reason),
			}
		}
		if note != "" {
			notes = append(notes, note)
		}
	}

	return Decision{
		Eligible:   true,
		Stage:      StagePassed,
		Notes:      notes,
		Confidence: lowest,
	}
}

// #endregion gate

// #region rules
// checkRule returns a failure reason, or an optional note when the rule passes.
func (g *Gate) checkRule(rule Rule, in Inputs) (reason, note string) {
	switch rule.Type {
	case RuleSameFiscalPeriod:
		return g.sameFiscalPeriod(rule, in.Profile)
	case RuleNotEqualToTotal:
		return g.notEqualToTotal(rule, in.Profile), ""
	case RuleInventoryPresent:
		if len(in.Inventory.OfKind(rule.Kind)) == 0 {
			return fmt.Sprintf("no inventory items of kind %q were recorded", rule.Kind), ""
		}
		return "", ""
	case RuleExternalServicesPresent:
		if _, ok := in.Org.OutsourcedFTE(); !ok {
			return "no external services with an FTE equivalent were recorded", ""
		}
		return "", ""
	}
	return fmt.Sprintf("unknown validation rule %q", rule.Type), ""
}

func (g *Gate) sameFiscalPeriod(rule Rule, p corpus.Profile) (reason, note string) {
	if len(rule.Fields) != 2 {
		return "same_fiscal_period needs two fields", ""
	}
	a, _ := p.Field(rule.Fields[0])
	b, _ := p.Field(rule.Fields[1])
	pa, pb := strings.TrimSpace(a.FiscalPeriod), strings.TrimSpace(b.FiscalPeriod)
	la, lb := g.label(rule.Fields[0]), g.label(rule.Fields[1])

	switch {
	case pa != "" && pb != "":
		if !strings.EqualFold(pa, pb) {
			return fmt.Sprintf("%s (%s) and %s (%s) cover different fiscal periods", la, pa, lb, pb), ""
		}
		return "", ""
	case pa == "" && pb == "":
		if !g.config.AssumeMatchingPeriods {
			return fmt.Sprintf("fiscal periods of %s and %s are not recorded", la, lb), ""
		}
		return "", fmt.Sprintf("fiscal periods of %s and %s not recorded; assumed to match", la, lb)
	default:
		known, knownLabel, unknownLabel := pa, la, lb
		if pa == "" {
			known, knownLabel, unknownLabel = pb, lb, la
		}
		if !g.config.AssumeMatchingPeriods {
			return fmt.Sprintf("fiscal period of %s is not recorded", unknownLabel), ""
		}
		return "", fmt.Sprintf("fiscal period of %s not recorded; assumed to match %s (%s)",
			unknownLabel, knownLabel, known)
	}
}

func (g *Gate) notEqualToTotal(rule Rule, p corpus.Profile) string {
	if len(rule.Fields) != 2 {
		return "not_equal_to_total needs two fields"
	}
	part, _ := p.Field(rule.Fields[0])
	total, ok := p.Field(rule.Fields[1])
	if !ok || part.Number == nil || total.Number == nil {
		return ""
	}
	if *part.Number == *total.Number {
		return fmt.Sprintf("%s (%s) equals the total %s verbatim, which indicates undifferentiated data",
			g.label(rule.Fields[0]), humanize.Commaf(*part.Number), g.label(rule.Fields[1]))
	}
	return ""
}

// #endregion rules

// #region helpers
func (g *Gate) label(field string) string {
	if l, ok := g.config.FieldLabels[field]; ok {
		return l
	}
	return strings.ReplaceAll(field, "_", " ")
}

func (g *Gate) labels(fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = g.label(f)
	}
	return strings.Join(out, " and ")
}

// #endregion helpers
