// Package variance maps an observed value and an expected range onto one of
// eight fixed categories with templated explanatory text.
package variance

import (
	"fmt"
	"math"
)

// WellThresholdPercent is the gap beyond which below/above becomes well below/above.
const WellThresholdPercent = 30.0

// gapEpsilon absorbs float noise when a gap lands exactly on the threshold
// (1.8/6 is 30.000000000000004%).
const gapEpsilon = 1e-9

// #region classify

// Classify compares observed against [low, high] with typical splitting the
// in-range half. Nil or non-finite observed is insufficient data; any nil
// or non-finite bound means there is no benchmark.
func Classify(observed, low, typical, high *float64) Outcome {
	if observed == nil || math.IsNaN(*observed) || math.IsInf(*observed, 0) {
		return outcome(InsufficientData, nil)
	}
	if !finite(low) || !finite(typical) || !finite(high) {
		return outcome(NoBenchmark, nil)
	}

	v := *observed
	switch {
	case v < *low:
		raw := gapPercent(*low-v, *low)
		gap := roundGap(raw)
		if beyondWell(raw) {
			return outcome(WellBelowRange, &gap)
		}
		return outcome(BelowRange, &gap)
	case v > *high:
		raw := gapPercent(v-*high, *high)
		gap := roundGap(raw)
		if beyondWell(raw) {
			return outcome(WellAboveRange, &gap)
		}
		return outcome(AboveRange, &gap)
	case v <= *typical:
		return outcome(WithinRangeLow, nil)
	default:
		return outcome(WithinRangeHigh, nil)
	}
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// gapPercent is diff/base in percent, unrounded. A non-positive base cannot
// express a relative gap, so it counts as a full 100%.
func gapPercent(diff, base float64) float64 {
	if base <= 0 {
		return 100
	}
	return diff / base * 100
}

// beyondWell compares the unrounded gap; rounding is for display only.
func beyondWell(raw float64) bool {
	return raw > WellThresholdPercent+gapEpsilon
}

func roundGap(raw float64) float64 {
	return math.Round(raw*100) / 100
}

// #endregion classify

// #region implication

func outcome(c Category, gap *float64) Outcome {
	return Outcome{Category: c, GapPercent: gap, Implication: Implication(c, gap)}
}

// Implication renders the fixed template for c. It is never empty.
func Implication(c Category, gap *float64) string {
	g := 0.0
	if gap != nil {
		g = *gap
	}
	switch c {
	case InsufficientData:
		return "Not enough reliable data to compute this metric; no comparison is made."
	case NoBenchmark:
		return "No benchmark range is available for this industry and size; the value is shown without comparison."
	case WellBelowRange:
		return fmt.Sprintf("%.1f%% below the low end of the expected range. A gap this large often points to under-investment or to spend recorded elsewhere.", g)
	case BelowRange:
		return fmt.Sprintf("%.1f%% below the low end of the expected range.", g)
	case WithinRangeLow:
		return "Within the expected range, at or below the typical value."
	case WithinRangeHigh:
		return "Within the expected range, above the typical value."
	case AboveRange:
		return fmt.Sprintf("%.1f%% above the high end of the expected range.", g)
	case WellAboveRange:
		return fmt.Sprintf("%.1f%% above the high end of the expected range. A gap this large may reflect a one-time project, a growth phase or over-investment.", g)
	}
	return fmt.Sprintf("Unrecognized variance category %q.", string(c))
}

// #endregion implication
