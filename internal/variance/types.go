package variance

// #region category

// Category is one of the eight fixed variance labels.
type Category string

const (
	InsufficientData Category = "insufficient_data"
	NoBenchmark      Category = "no_benchmark"
	WellBelowRange   Category = "well_below_range"
	BelowRange       Category = "below_range"
	WithinRangeLow   Category = "within_range_low"
	WithinRangeHigh  Category = "within_range_high"
	AboveRange       Category = "above_range"
	WellAboveRange   Category = "well_above_range"
)

// Categories lists every category from lowest to highest, with the two
// non-comparable outcomes first.
func Categories() []Category {
	return []Category{
		InsufficientData, NoBenchmark,
		WellBelowRange, BelowRange, WithinRangeLow, WithinRangeHigh, AboveRange, WellAboveRange,
	}
}

// Comparable reports whether the category came from an actual comparison.
func (c Category) Comparable() bool {
	return c != InsufficientData && c != NoBenchmark
}

// #endregion category

// #region outcome

// Outcome is the result of classifying one observation.
type Outcome struct {
	Category    Category `json:"category"`
	GapPercent  *float64 `json:"gap_percent"`
	Implication string   `json:"implication"`
}

// #endregion outcome
