package classify

import (
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/signals"
)

// #region method

// Method records how the primary category was chosen.
type Method string

const (
	MethodEvidence      Method = "evidence_aggregation"
	MethodUserSpecified Method = "user_specified"
	MethodFallback      Method = "fallback"
)

// SubCategoryMethod records which rung of the sub-category ladder decided.
type SubCategoryMethod string

const (
	SubNone              SubCategoryMethod = "none"
	SubUserSpecified     SubCategoryMethod = "user_specified"
	SubSingleCandidate   SubCategoryMethod = "single_candidate"
	SubDominantScore     SubCategoryMethod = "dominant_score"
	SubSignalCount       SubCategoryMethod = "signal_count"
	SubAverageConfidence SubCategoryMethod = "average_confidence"
	SubIndeterminate     SubCategoryMethod = "indeterminate"
)

// #endregion method

// #region config

// Config holds the aggregation and tie-break constants.
type Config struct {
	PracticalMaxScore          float64 // score at which confidence saturates
	FallbackConfidence         float64 // confidence when nothing was found
	CloseScoreRatio            float64 // top two within this fraction of the top -> warning
	SecondaryRatio             float64 // categories above this fraction of the top are secondary
	MaxTopEvidence             int
	IndicatorPhraseWeight      float64 // per matched sub-category indicator phrase
	ApplicationIndicatorWeight float64 // per matched sub-category application indicator
	DominanceRatio             float64 // sub-category lead needed to win outright
}

// DefaultConfig returns the standard constants. A score of 8 corresponds to
// several corroborating signal kinds, e.g. two regulatory keywords plus two
// vertical applications each seen in three documents.
func DefaultConfig() Config {
	return Config{
		PracticalMaxScore:          8.0,
		FallbackConfidence:         0.3,
		CloseScoreRatio:            0.10,
		SecondaryRatio:             0.5,
		MaxTopEvidence:             10,
		IndicatorPhraseWeight:      0.2,
		ApplicationIndicatorWeight: 0.5,
		DominanceRatio:             0.5,
	}
}

// #endregion config

// #region category-score

// CategoryScore is one row of the aggregated score table.
type CategoryScore struct {
	Category    string                   `json:"category"`
	Score       float64                  `json:"score"`
	SignalCount int                      `json:"signal_count"`
	ByKind      map[signals.Kind]float64 `json:"by_kind"`
}

// #endregion category-score

// #region result

// Result is the classification of one snapshot. It is built once and never
// modified; a later run produces a new Result.
type Result struct {
	PrimaryCategory     string                   `json:"primary_category"`
	PrimaryLabel        string                   `json:"primary_label"`
	SubCategory         *string                  `json:"sub_category"`
	SubCategoryLabel    string                   `json:"sub_category_label,omitempty"`
	SubCategoryMethod   SubCategoryMethod        `json:"sub_category_method"`
	SecondaryCategories []string                 `json:"secondary_categories"`
	Confidence          float64                  `json:"confidence"`
	TopEvidence         []signals.EvidenceSignal `json:"top_evidence"`
	Method              Method                   `json:"method"`
	ScoreBreakdown      map[signals.Kind]float64 `json:"score_breakdown"`
	CategoryScores      []CategoryScore          `json:"category_scores"`
	Warnings            []string                 `json:"warnings"`
	TaxonomyVersion     string                   `json:"taxonomy_version"`
}

// Label returns the sub-category label when resolved, else the primary label.
func (r Result) Label() string {
	if r.SubCategory != nil && r.SubCategoryLabel != "" {
		return r.SubCategoryLabel
	}
	return r.PrimaryLabel
}

// #endregion result
