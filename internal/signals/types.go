package signals

import (
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
)

// #region kind

// Kind identifies the evidence type a collector produces.
type Kind string

const (
	KindUserDeclared        Kind = "user_declared"
	KindRegulatory          Kind = "regulatory_keyword"
	KindVerticalApplication Kind = "vertical_application"
	KindTriggerPhrase       Kind = "trigger_phrase"
	KindVendor              Kind = "vendor"
	KindRole                Kind = "role"
)

// Kinds lists every kind in rank order, most reliable first.
func Kinds() []Kind {
	return []Kind{
		KindUserDeclared,
		KindRegulatory,
		KindVerticalApplication,
		KindTriggerPhrase,
		KindVendor,
		KindRole,
	}
}

// Rank returns the a-priori reliability rank (1 = most reliable).
func (k Kind) Rank() int {
	for i, kind := range Kinds() {
		if kind == k {
			return i + 1
		}
	}
	return len(Kinds()) + 1
}

// BaseConfidence returns the fixed confidence of the kind.
func (k Kind) BaseConfidence() float64 {
	switch k {
	case KindUserDeclared:
		return 1.0
	case KindRegulatory:
		return 0.9
	case KindVerticalApplication:
		return 0.85
	case KindTriggerPhrase:
		return 0.7
	case KindVendor:
		return 0.6
	case KindRole:
		return 0.5
	}
	return 0
}

// #endregion kind

// #region provenance

// Provenance names where a signal's evidence came from.
type Provenance string

const (
	FromUser         Provenance = "user"
	FromDocument     Provenance = "document"
	FromInventory    Provenance = "inventory"
	FromOrganization Provenance = "organization"
	FromMixed        Provenance = "mixed"
)

// #endregion provenance

// #region evidence-signal

// EvidenceSignal is one piece of evidence pointing at a category.
// Values are never modified after a collector returns them.
type EvidenceSignal struct {
	Category    string     `json:"category"`
	SubCategory string     `json:"sub_category,omitempty"`
	Kind        Kind       `json:"kind"`
	Confidence  float64    `json:"confidence"`
	Weight      float64    `json:"weight"`
	Provenance  Provenance `json:"provenance"`
	Description string     `json:"description"`
	Sources     []string   `json:"sources,omitempty"`
}

// Contribution is the signal's share of its category score.
func (s EvidenceSignal) Contribution() float64 {
	return s.Confidence * s.Weight
}

// #endregion evidence-signal

// #region collector

// Collector scans a snapshot for one kind of evidence.
type Collector interface {
	Kind() Kind
	Collect(snap corpus.Snapshot) []EvidenceSignal
}

// #endregion collector

// #region config

// Config holds the weighting knobs shared by the collectors.
type Config struct {
	OccurrenceStep            float64 // weight added per extra distinct source
	MaxWeight                 float64 // cap on occurrence-scaled weight
	TriggerMinHits            int     // trigger phrases ignored below this per-category hit count
	TriggerFrequencyStep      float64 // weight multiplier added per hit above TriggerMinHits
	UserWeight                float64 // weight of a user-declared value
	UnconfirmedUserConfidence float64 // confidence of a declared value nobody confirmed
}

// DefaultConfig returns the standard weighting.
func DefaultConfig() Config {
	return Config{
		OccurrenceStep:            0.3,
		MaxWeight:                 3.0,
		TriggerMinHits:            3,
		TriggerFrequencyStep:      0.1,
		UserWeight:                10.0,
		UnconfirmedUserConfidence: 0.95,
	}
}

// #endregion config
