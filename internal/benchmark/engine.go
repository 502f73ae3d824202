// Package benchmark computes gated metrics, compares them with industry
// ranges and assembles the benchmark report.
package benchmark

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/classify"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/gate"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/match"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/variance"
)

// #region engine

// Engine builds benchmark reports. It holds only read-only reference data and
// may be shared by concurrent callers.
type Engine struct {
	reg     *reference.Registry
	gate    *gate.Gate
	metrics []Metric
}

// NewEngine creates an engine over the standard metric registry.
func NewEngine(reg *reference.Registry, g *gate.Gate) *Engine {
	return &Engine{reg: reg, gate: g, metrics: Metrics()}
}

// Input is everything one report is built from.
type Input struct {
	Snapshot       corpus.Snapshot
	Classification classify.Result
}

// Build assembles the report. It never fails: missing data shows up as
// ineligible metrics, not_found systems and warnings.
func (e *Engine) Build(in Input) Report {
	snap := in.Snapshot
	category := in.Classification.PrimaryCategory
	if !e.reg.IsCategory(category) {
		category = e.reg.FallbackCategory()
	}
	size := AssessSize(snap.Profile)

	rep := Report{
		CompanyName:      snap.Profile.CompanyName,
		Industry:         category,
		IndustryLabel:    e.reg.Label(category),
		SubIndustry:      in.Classification.SubCategory,
		Size:             size,
		Deterministic:    true,
		ReferenceVersion: e.reg.Version(),
		Warnings:         []string{},
	}
	if size.Note != "" {
		rep.Warnings = append(rep.Warnings, size.Note)
	}
	if in.Classification.Method == classify.MethodFallback {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"industry could not be determined; %s benchmarks and templates used", category))
	}

	gin := gate.Inputs{Profile: snap.Profile, Inventory: snap.Inventory, Org: snap.Org}
	rep.Metrics = make([]MetricComparison, 0, len(e.metrics))
	for _, m := range e.metrics {
		rep.Metrics = append(rep.Metrics, e.compare(m, gin, category, size))
	}

	tmpl := e.reg.Template(category)
	rep.Systems = match.MatchSystems(tmpl.Systems, snap.Inventory, snap.Facts)
	var staffWarnings []string
	rep.Staffing, staffWarnings = match.MatchStaffing(tmpl.Staffing, size.Tier, snap.Org)
	rep.Warnings = append(rep.Warnings, staffWarnings...)

	rep.Summary = summarize(rep)
	rep.OverallConfidence = OverallConfidence(rep.Metrics)
	return rep
}

// #endregion engine

// #region compare

// compare gates, computes and classifies one metric.
func (e *Engine) compare(m Metric, in gate.Inputs, category string, size SizeAssessment) MetricComparison {
	cmp := MetricComparison{
		MetricID:   m.ID,
		Label:      m.Label,
		Unit:       m.Unit,
		Provenance: []string{},
	}

	bench, benchCategory, fellBack := e.lookup(m.ID, category, size.Tier)
	if bench != nil {
		low, typ, high := bench.Low, bench.Typical, bench.High
		src, year, bc := bench.Source, bench.Year, benchCategory
		cmp.ExpectedLow, cmp.ExpectedTypical, cmp.ExpectedHigh = &low, &typ, &high
		cmp.BenchmarkSource, cmp.BenchmarkYear, cmp.BenchmarkCategory = &src, &year, &bc
	}

	req := m.Requirement
	req.Metric = m.Label
	decision := e.gate.Evaluate(req, in)
	if !decision.Eligible {
		return ineligible(cmp, decision.Reason)
	}

	value, prov, err := safeCompute(m.Compute, in)
	if err != nil {
		return ineligible(cmp, fmt.Sprintf("computation error: %v", err))
	}

	conf := corpus.MinConfidence(decision.Confidence, size.Confidence)
	cmp.Provenance = append(cmp.Provenance, prov...)
	cmp.Provenance = append(cmp.Provenance, decision.Notes...)
	cmp.Provenance = append(cmp.Provenance, fmt.Sprintf("size tier %s from %s", size.Tier, size.Basis))
	if fellBack {
		conf = conf.StepDown()
		cmp.Provenance = append(cmp.Provenance, fmt.Sprintf(
			"no %s range for %s; %s range used, confidence lowered one level", category, m.ID, benchCategory))
	}

	v := value
	cmp.Observed = &v
	cmp.ObservedFormatted = Format(v, m.Unit)
	cmp.Eligible = true
	cmp.Confidence = conf

	out := variance.Classify(cmp.Observed, cmp.ExpectedLow, cmp.ExpectedTypical, cmp.ExpectedHigh)
	cmp.VarianceCategory = out.Category
	cmp.GapPercent = out.GapPercent
	cmp.Implication = out.Implication
	return cmp
}

// lookup returns the category range, or the fallback category's range for
// the same tier.
func (e *Engine) lookup(metric, category string, tier reference.SizeTier) (*reference.BenchmarkRange, string, bool) {
	if b, ok := e.reg.Benchmark(metric, category, tier); ok {
		return &b, category, false
	}
	fallback := e.reg.FallbackCategory()
	if category != fallback {
		if b, ok := e.reg.Benchmark(metric, fallback, tier); ok {
			return &b, fallback, true
		}
	}
	return nil, "", false
}

func ineligible(cmp MetricComparison, reason string) MetricComparison {
	out := variance.Classify(nil, nil, nil, nil)
	cmp.Observed = nil
	cmp.ObservedFormatted = "n/a"
	cmp.VarianceCategory = out.Category
	cmp.GapPercent = nil
	cmp.Implication = out.Implication
	cmp.Confidence = corpus.ConfidenceLow
	cmp.Eligible = false
	cmp.IneligibilityReason = reason
	return cmp
}

// safeCompute converts panics and non-finite results into errors.
func safeCompute(fn ComputeFunc, in gate.Inputs) (value float64, prov []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, prov, err = 0, nil, fmt.Errorf("panic: %v", r)
		}
	}()
	value, prov, err = fn(in)
	if err != nil {
		return 0, nil, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, nil, ErrNonFinite
	}
	return value, prov, nil
}

// #endregion compare

// #region summary

func summarize(rep Report) Summary {
	s := Summary{TotalMetricCount: len(rep.Metrics)}
	for _, m := range rep.Metrics {
		if m.Eligible {
			s.EligibleMetricCount++
		}
	}
	for _, sys := range rep.Systems {
		switch sys.Status {
		case match.StatusFound:
			s.SystemsFound++
		case match.StatusPartial:
			s.SystemsPartial++
		case match.StatusNotFound:
			s.SystemsNotFound++
		}
	}
	for _, st := range rep.Staffing {
		switch st.Variance {
		case match.WithinRange:
			s.StaffingWithin++
		case match.Understaffed:
			s.StaffingUnder++
		case match.Overstaffed:
			s.StaffingOver++
		}
	}
	return s
}

// OverallConfidence is the most common confidence among eligible metrics,
// ties going to the lower level. With no eligible metric it is low.
func OverallConfidence(metrics []MetricComparison) corpus.ConfidenceLevel {
	counts := make(map[corpus.ConfidenceLevel]int)
	for _, m := range metrics {
		if m.Eligible {
			counts[m.Confidence]++
		}
	}
	if len(counts) == 0 {
		return corpus.ConfidenceLow
	}
	best, bestCount := corpus.ConfidenceHigh+1, 0
	for _, level := range []corpus.ConfidenceLevel{
		corpus.ConfidenceNone, corpus.ConfidenceLow, corpus.ConfidenceMedium, corpus.ConfidenceHigh,
	} {
		if counts[level] > bestCount {
			best, bestCount = level, counts[level]
		}
	}
	return best
}

// #endregion summary
