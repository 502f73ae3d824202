package benchmark

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/gate"
)

// #region registry

// Metrics returns the metric registry in report order.
func Metrics() []Metric {
	return []Metric{
		{
			ID:    "it_spend_pct_revenue",
			Label: "IT spend as % of revenue",
			Unit:  UnitPercent,
			Requirement: gate.Requirement{
				Fields:        []string{corpus.FieldITBudget, corpus.FieldAnnualRevenue},
				MinConfidence: corpus.ConfidenceMedium,
				Rule:          gate.SameFiscalPeriod(corpus.FieldITBudget, corpus.FieldAnnualRevenue),
			},
			Compute: ratio(corpus.FieldITBudget, corpus.FieldAnnualRevenue, 100),
		},
		{
			ID:    "it_spend_per_employee",
			Label: "IT spend per employee",
			Unit:  UnitCurrency,
			Requirement: gate.Requirement{
				Fields:        []string{corpus.FieldITBudget, corpus.FieldEmployeeCount},
				MinConfidence: corpus.ConfidenceMedium,
			},
			Compute: ratio(corpus.FieldITBudget, corpus.FieldEmployeeCount, 1),
		},
		{
			ID:    "it_staff_per_100_employees",
			Label: "IT staff per 100 employees",
			Unit:  UnitPer100,
			Requirement: gate.Requirement{
				Fields:        []string{corpus.FieldITHeadcount, corpus.FieldEmployeeCount},
				MinConfidence: corpus.ConfidenceMedium,
				Rule:          gate.NotEqualToTotal(corpus.FieldITHeadcount, corpus.FieldEmployeeCount),
			},
			Compute: ratio(corpus.FieldITHeadcount, corpus.FieldEmployeeCount, 100),
		},
		{
			ID:    "security_spend_pct_it",
			Label: "Security spend as % of IT spend",
			Unit:  UnitPercent,
			Requirement: gate.Requirement{
				Fields:        []string{corpus.FieldSecurityBudget, corpus.FieldITBudget},
				MinConfidence: corpus.ConfidenceMedium,
				Rule:          gate.SameFiscalPeriod(corpus.FieldSecurityBudget, corpus.FieldITBudget),
			},
			Compute: ratio(corpus.FieldSecurityBudget, corpus.FieldITBudget, 100),
		},
		{
			ID:    "revenue_per_employee",
			Label: "Revenue per employee",
			Unit:  UnitCurrency,
			Requirement: gate.Requirement{
				Fields:        []string{corpus.FieldAnnualRevenue, corpus.FieldEmployeeCount},
				MinConfidence: corpus.ConfidenceMedium,
			},
			Compute: ratio(corpus.FieldAnnualRevenue, corpus.FieldEmployeeCount, 1),
		},
		{
			ID:    "applications_per_100_employees",
			Label: "Applications per 100 employees",
			Unit:  UnitPer100,
			Requirement: gate.Requirement{
				Fields:        []string{corpus.FieldEmployeeCount},
				MinConfidence: corpus.ConfidenceLow,
				Rule:          gate.InventoryPresent(corpus.KindApplication),
			},
			Compute: applicationsPer100,
		},
		{
			ID:    "outsourced_fte_share",
			Label: "Outsourced share of IT FTEs",
			Unit:  UnitPercent,
			Requirement: gate.Requirement{
				Fields:        []string{corpus.FieldITHeadcount},
				MinConfidence: corpus.ConfidenceLow,
				Rule:          gate.ExternalServicesPresent(),
			},
			Compute: outsourcedShare,
		},
	}
}

// #endregion registry

// #region compute

// ratio returns num/den × scale.
func ratio(num, den string, scale float64) ComputeFunc {
	return func(in gate.Inputs) (float64, []string, error) {
		n, err := number(in.Profile, num)
		if err != nil {
			return 0, nil, err
		}
		d, err := number(in.Profile, den)
		if err != nil {
			return 0, nil, err
		}
		if d == 0 {
			return 0, nil, fmt.Errorf("%w: %s is 0", ErrDivisionByZero, fieldName(den))
		}
		return n / d * scale, []string{describe(in.Profile, num), describe(in.Profile, den)}, nil
	}
}

func applicationsPer100(in gate.Inputs) (float64, []string, error) {
	emp, err := number(in.Profile, corpus.FieldEmployeeCount)
	if err != nil {
		return 0, nil, err
	}
	if emp == 0 {
		return 0, nil, fmt.Errorf("%w: employee count is 0", ErrDivisionByZero)
	}
	apps := in.Inventory.OfKind(corpus.KindApplication)
	prov := []string{
		fmt.Sprintf("inventory: %d application(s)", len(apps)),
		describe(in.Profile, corpus.FieldEmployeeCount),
	}
	return float64(len(apps)) / emp * 100, prov, nil
}

func outsourcedShare(in gate.Inputs) (float64, []string, error) {
	internal, err := number(in.Profile, corpus.FieldITHeadcount)
	if err != nil {
		return 0, nil, err
	}
	outsourced, ok := in.Org.OutsourcedFTE()
	if !ok {
		return 0, nil, fmt.Errorf("no outsourced FTE recorded")
	}
	total := internal + outsourced
	if total == 0 {
		return 0, nil, fmt.Errorf("%w: internal plus outsourced FTE is 0", ErrDivisionByZero)
	}
	prov := []string{
		describe(in.Profile, corpus.FieldITHeadcount),
		fmt.Sprintf("external services: %s outsourced FTE", humanize.FormatFloat("#,###.##", outsourced)),
	}
	return outsourced / total * 100, prov, nil
}

// number returns the numeric value of a profile field.
func number(p corpus.Profile, field string) (float64, error) {
	f, ok := p.Field(field)
	if !ok || f.Number == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotNumeric, fieldName(field))
	}
	return *f.Number, nil
}

// describe renders one provenance entry for a profile field.
func describe(p corpus.Profile, field string) string {
	f, _ := p.Field(field)
	var b strings.Builder
	fmt.Fprintf(&b, "%s = ", field)
	if f.Number != nil {
		b.WriteString(humanize.FormatFloat("#,###.##", *f.Number))
	} else {
		b.WriteString(f.Value)
	}
	fmt.Fprintf(&b, " (%s, %s confidence", f.Provenance, f.Confidence)
	if f.FiscalPeriod != "" {
		fmt.Fprintf(&b, ", %s", f.FiscalPeriod)
	}
	if len(f.Sources) > 0 {
		fmt.Fprintf(&b, ", sources: %s", strings.Join(f.Sources, "; "))
	}
	b.WriteString(")")
	return b.String()
}

func fieldName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// #endregion compute

// #region format

// Format renders v for display according to unit.
func Format(v float64, unit Unit) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	switch unit {
	case UnitPercent:
		return humanize.FormatFloat("#,###.#", v) + "%"
	case UnitCurrency:
		return "$" + humanize.Comma(int64(math.Round(v)))
	case UnitPer100:
		return humanize.FormatFloat("#,###.##", v) + " per 100 employees"
	}
	return humanize.FormatFloat("#,###.##", v)
}

// #endregion format
