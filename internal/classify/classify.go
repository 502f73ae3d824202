// Package classify turns evidence signals into a single industry
// classification with deterministic tie-breaks.
package classify

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/signals"
)

// #region classifier

// Classifier runs the collectors over a snapshot and resolves the result.
type Classifier struct {
	reg        *reference.Registry
	collectors []signals.Collector
	config     Config
}

// NewClassifier creates a classifier using the standard collector set.
func NewClassifier(reg *reference.Registry, config Config) *Classifier {
	return &Classifier{
		reg:        reg,
		collectors: signals.Collectors(reg, signals.DefaultConfig()),
		config:     config,
	}
}

// Classify collects every signal from snap and resolves the classification.
func (c *Classifier) Classify(snap corpus.Snapshot) Result {
	return c.FromSignals(snap, signals.CollectAll(c.collectors, snap))
}

// FromSignals resolves a classification from already collected signals.
// snap supplies the profile and text used for warnings and sub-category checks.
func (c *Classifier) FromSignals(snap corpus.Snapshot, sigs []signals.EvidenceSignal) Result {
	sigs = append([]signals.EvidenceSignal(nil), sigs...)
	signals.Sort(sigs)

	res := Result{
		SubCategoryMethod:   SubNone,
		SecondaryCategories: []string{},
		TopEvidence:         topEvidence(sigs, c.config.MaxTopEvidence),
		ScoreBreakdown:      map[signals.Kind]float64{},
		Warnings:            c.declarationWarnings(snap.Profile),
		TaxonomyVersion:     c.reg.Version(),
	}
	scores := Aggregate(sigs)
	res.CategoryScores = scores

	// No evidence at all.
	if len(sigs) == 0 {
		res.PrimaryCategory = c.reg.FallbackCategory()
		res.PrimaryLabel = c.reg.Label(res.PrimaryCategory)
		res.Confidence = c.config.FallbackConfidence
		res.Method = MethodFallback
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"no signals detected; defaulted to %s", res.PrimaryCategory))
		return res
	}

	if declared, ok := userSignal(sigs); ok {
		c.resolveUserSpecified(&res, declared, sigs)
	} else {
		c.resolveEvidence(&res, scores)
	}

	res.PrimaryLabel = c.reg.Label(res.PrimaryCategory)
	for _, row := range scores {
		if row.Category == res.PrimaryCategory {
			for k, v := range row.ByKind {
				res.ScoreBreakdown[k] = v
			}
		}
	}
	c.resolveSubCategory(&res, snap, sigs)
	return res
}

// #endregion classifier

// #region aggregate

// Aggregate sums confidence × weight per category and ranks the rows by score
// desc, then signal count desc, then category key asc.
func Aggregate(sigs []signals.EvidenceSignal) []CategoryScore {
	rows := make(map[string]*CategoryScore)
	var keys []string
	for _, s := range sigs {
		row, ok := rows[s.Category]
		if !ok {
			row = &CategoryScore{Category: s.Category, ByKind: map[signals.Kind]float64{}}
			rows[s.Category] = row
			keys = append(keys, s.Category)
		}
		row.Score += s.Contribution()
		row.SignalCount++
		row.ByKind[s.Kind] += s.Contribution()
	}

	out := make([]CategoryScore, 0, len(keys))
	for _, k := range keys {
		row := rows[k]
		row.Score = round(row.Score)
		for kind, v := range row.ByKind {
			row.ByKind[kind] = round(v)
		}
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SignalCount != b.SignalCount {
			return a.SignalCount > b.SignalCount
		}
		return a.Category < b.Category
	})
	return out
}

// #endregion aggregate

// #region tie-break

// resolveEvidence picks the top-scoring category, keeps near-ties as
// secondaries and flags them.
func (c *Classifier) resolveEvidence(res *Result, scores []CategoryScore) {
	top := scores[0]
	res.PrimaryCategory = top.Category
	res.Method = MethodEvidence
	res.Confidence = round(math.Min(1.0, top.Score/c.config.PracticalMaxScore))
	res.SecondaryCategories = c.secondaries(scores, top.Category, top.Score)

	if len(scores) > 1 {
		second := scores[1]
		if top.Score-second.Score < c.config.CloseScoreRatio*top.Score {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"close scores: %s (%.2f) and %s (%.2f) are within %.0f%%; both retained",
				top.Category, top.Score, second.Category, second.Score, c.config.CloseScoreRatio*100))
		}
	}
}

// resolveUserSpecified forces the declared category to primary and records any
// disagreement with the evidence-only winner.
func (c *Classifier) resolveUserSpecified(res *Result, declared signals.EvidenceSignal, sigs []signals.EvidenceSignal) {
	res.PrimaryCategory = declared.Category
	res.Method = MethodUserSpecified
	res.Confidence = declared.Confidence

	var evidence []signals.EvidenceSignal
	for _, s := range sigs {
		if s.Kind != signals.KindUserDeclared {
			evidence = append(evidence, s)
		}
	}
	ranked := Aggregate(evidence)
	if len(ranked) == 0 {
		return
	}
	top := ranked[0]
	res.SecondaryCategories = c.secondaries(ranked, declared.Category, top.Score)
	if top.Category != declared.Category {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"declared industry %s conflicts with document evidence favoring %s (score %.2f); declared value kept",
			declared.Category, top.Category, top.Score))
	}
}

// secondaries returns categories scoring above SecondaryRatio of topScore,
// in ranking order, excluding primary.
func (c *Classifier) secondaries(scores []CategoryScore, primary string, topScore float64) []string {
	out := []string{}
	for _, row := range scores {
		if row.Category == primary {
			continue
		}
		if row.Score > c.config.SecondaryRatio*topScore {
			out = append(out, row.Category)
		}
	}
	return out
}

func userSignal(sigs []signals.EvidenceSignal) (signals.EvidenceSignal, bool) {
	for _, s := range sigs {
		if s.Kind == signals.KindUserDeclared {
			return s, true
		}
	}
	return signals.EvidenceSignal{}, false
}

// declarationWarnings flags declared values the taxonomy does not know.
func (c *Classifier) declarationWarnings(p corpus.Profile) []string {
	warnings := []string{}
	industry, hasIndustry := p.Field(corpus.FieldIndustry)
	industryKey := ""
	if hasIndustry {
		if key, ok := c.reg.FindCategory(industry.Value); ok {
			industryKey = key
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"declared industry %q is not in the taxonomy; ignored", industry.Value))
		}
	}
	if sub, ok := p.Field(corpus.FieldSubIndustry); ok {
		if _, _, found := c.reg.FindSubCategory(industryKey, sub.Value); !found {
			warnings = append(warnings, fmt.Sprintf(
				"declared sub-industry %q is not in the taxonomy; ignored", sub.Value))
		}
	}
	return warnings
}

// #endregion tie-break

// #region evidence

// topEvidence returns the n strongest signals by contribution.
func topEvidence(sigs []signals.EvidenceSignal, n int) []signals.EvidenceSignal {
	ranked := append([]signals.EvidenceSignal(nil), sigs...)
	// Input is already in kind-rank order, which breaks contribution ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Contribution() > ranked[j].Contribution()
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []signals.EvidenceSignal{}
	}
	return ranked
}

func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// #endregion evidence
