package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/signals"
)

// #region sub-candidate

type subCandidate struct {
	key         string
	score       float64
	signalCount int
	confidence  float64 // sum over signals
}

func (s subCandidate) averageConfidence() float64 {
	if s.signalCount == 0 {
		return 0
	}
	return s.confidence / float64(s.signalCount)
}

// #endregion sub-candidate

// #region resolve

// resolveSubCategory narrows the primary category. A declared sub-industry
// wins outright; otherwise candidates are scored and run down the ladder.
func (c *Classifier) resolveSubCategory(res *Result, snap corpus.Snapshot, sigs []signals.EvidenceSignal) {
	cat, ok := c.reg.Category(res.PrimaryCategory)
	if !ok || len(cat.SubCategories) == 0 {
		return
	}

	if res.Method == MethodUserSpecified {
		for _, s := range sigs {
			if s.Kind == signals.KindUserDeclared && s.SubCategory != "" {
				c.setSubCategory(res, cat, s.SubCategory, SubUserSpecified)
				return
			}
		}
	}

	cands := c.scoreSubCategories(cat, snap, sigs)
	if len(cands) == 0 {
		return
	}
	if len(cands) == 1 {
		c.setSubCategory(res, cat, cands[0].key, SubSingleCandidate)
		return
	}

	first, second := cands[0], cands[1]
	if first.score > second.score*(1+c.config.DominanceRatio) {
		c.setSubCategory(res, cat, first.key, SubDominantScore)
		return
	}
	if first.signalCount != second.signalCount {
		winner := first
		if second.signalCount > first.signalCount {
			winner = second
		}
		c.setSubCategory(res, cat, winner.key, SubSignalCount)
		return
	}
	if a, b := first.averageConfidence(), second.averageConfidence(); a != b {
		winner := first
		if b > a {
			winner = second
		}
		c.setSubCategory(res, cat, winner.key, SubAverageConfidence)
		return
	}

	res.SubCategoryMethod = SubIndeterminate
	res.Warnings = append(res.Warnings, fmt.Sprintf(
		"sub-category indeterminate between %s and %s; reporting %s only",
		first.key, second.key, cat.Label))
}

func (c *Classifier) setSubCategory(res *Result, cat reference.Category, key string, method SubCategoryMethod) {
	sub, ok := cat.SubCategory(key)
	if !ok {
		return
	}
	k := sub.Key
	res.SubCategory = &k
	res.SubCategoryLabel = sub.Label
	res.SubCategoryMethod = method
}

// #endregion resolve

// #region scoring

// scoreSubCategories returns candidates with a nonzero score, ranked by score
// desc then key asc.
func (c *Classifier) scoreSubCategories(cat reference.Category, snap corpus.Snapshot, sigs []signals.EvidenceSignal) []subCandidate {
	byKey := make(map[string]*subCandidate, len(cat.SubCategories))
	for _, sub := range cat.SubCategories {
		byKey[sub.Key] = &subCandidate{key: sub.Key}
	}

	for _, s := range sigs {
		if s.Category != cat.Key || s.SubCategory == "" {
			continue
		}
		cand, ok := byKey[s.SubCategory]
		if !ok {
			continue
		}
		cand.score += s.Contribution()
		cand.signalCount++
		cand.confidence += s.Confidence
	}

	factTexts := make([]string, 0, len(snap.Facts))
	for _, f := range corpus.SortFacts(snap.Facts) {
		factTexts = append(factTexts, f.SearchText())
	}
	appTexts := append([]string(nil), factTexts...)
	for _, it := range snap.Inventory.Sorted() {
		appTexts = append(appTexts, strings.ToLower(it.Name))
	}

	for _, sub := range cat.SubCategories {
		cand := byKey[sub.Key]
		for _, phrase := range sub.IndicatorPhrases {
			if anyMatch(phrase, factTexts) {
				cand.score += c.config.IndicatorPhraseWeight
			}
		}
		for _, app := range sub.ApplicationIndicators {
			if anyMatch(app, appTexts) {
				cand.score += c.config.ApplicationIndicatorWeight
			}
		}
	}

	var out []subCandidate
	for _, sub := range cat.SubCategories {
		cand := byKey[sub.Key]
		cand.score = round(cand.score)
		if cand.score > 0 {
			out = append(out, *cand)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].key < out[j].key
	})
	return out
}

func anyMatch(term reference.Term, texts []string) bool {
	for _, t := range texts {
		if term.Match.In(t) {
			return true
		}
	}
	return false
}

// #endregion scoring
