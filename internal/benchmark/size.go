package benchmark

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
)

// #region thresholds

// Upper bounds (exclusive) for small, midsize and large. Anything at or above
// the last bound is enterprise.
var (
	revenueBounds  = [3]float64{50_000_000, 500_000_000, 5_000_000_000}
	employeeBounds = [3]float64{100, 1_000, 10_000}
)

func tierFor(v float64, bounds [3]float64) reference.SizeTier {
	switch {
	case v < bounds[0]:
		return reference.TierSmall
	case v < bounds[1]:
		return reference.TierMidsize
	case v < bounds[2]:
		return reference.TierLarge
	default:
		return reference.TierEnterprise
	}
}

// #endregion thresholds

// #region assess

// AssessSize picks the size tier from annual revenue when known. Employee
// count is the fallback and costs one confidence level, since headcount
// tracks revenue only loosely. With neither, the small tier is assumed at low
// confidence.
func AssessSize(p corpus.Profile) SizeAssessment {
	if f, ok := p.Field(corpus.FieldAnnualRevenue); ok && f.Number != nil && *f.Number > 0 {
		return SizeAssessment{
			Tier:       tierFor(*f.Number, revenueBounds),
			Basis:      BasisRevenue,
			Confidence: f.Confidence,
		}
	}
	if f, ok := p.Field(corpus.FieldEmployeeCount); ok && f.Number != nil && *f.Number > 0 {
		return SizeAssessment{
			Tier:       tierFor(*f.Number, employeeBounds),
			Basis:      BasisEmployees,
			Confidence: f.Confidence.StepDown(),
			Note: fmt.Sprintf("size tier derived from %s employees because annual revenue is unknown; confidence lowered one level",
				humanize.Comma(int64(*f.Number))),
		}
	}
	return SizeAssessment{
		Tier:       reference.TierSmall,
		Basis:      BasisDefault,
		Confidence: corpus.ConfidenceLow,
		Note:       "neither annual revenue nor employee count is known; small tier assumed",
	}
}

// #endregion assess
