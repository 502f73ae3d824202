package reference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/textmatch"
)

// #region size-tier

// SizeTier buckets companies for benchmark lookup.
type SizeTier string

const (
	TierSmall      SizeTier = "small"
	TierMidsize    SizeTier = "midsize"
	TierLarge      SizeTier = "large"
	TierEnterprise SizeTier = "enterprise"
)

// Tiers lists every size tier, smallest first.
func Tiers() []SizeTier {
	return []SizeTier{TierSmall, TierMidsize, TierLarge, TierEnterprise}
}

// ErrUnknownTier is returned for a tier name outside Tiers.
var ErrUnknownTier = errors.New("unknown size tier")

// ParseTier resolves a tier name case-insensitively.
func ParseTier(name string) (SizeTier, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	for _, t := range Tiers() {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// #endregion size-tier

// #region yaml-documents

// taxonomyDoc is the YAML layout of taxonomy.yaml.
type taxonomyDoc struct {
	Version          string        `yaml:"version" validate:"required"`
	FallbackCategory string        `yaml:"fallback_category" validate:"required"`
	Categories       []categoryDoc `yaml:"categories" validate:"required,min=1,dive"`
}

type categoryDoc struct {
	Key                  string           `yaml:"key" validate:"required"`
	Label                string           `yaml:"label" validate:"required"`
	RegulatoryKeywords   []indicatorDoc   `yaml:"regulatory_keywords" validate:"dive"`
	VerticalApplications []applicationDoc `yaml:"vertical_applications" validate:"dive"`
	TriggerPhrases       []string         `yaml:"trigger_phrases" validate:"dive,required"`
	Vendors              []string         `yaml:"vendors" validate:"dive,required"`
	Roles                []string         `yaml:"roles" validate:"dive,required"`
	SubCategories        []subCategoryDoc `yaml:"sub_categories" validate:"dive"`
}

type indicatorDoc struct {
	Term        string `yaml:"term" validate:"required"`
	SubCategory string `yaml:"sub_category"`
}

type applicationDoc struct {
	Name        string `yaml:"name" validate:"required"`
	Vendor      string `yaml:"vendor"`
	SubCategory string `yaml:"sub_category"`
}

type subCategoryDoc struct {
	Key                   string   `yaml:"key" validate:"required"`
	Label                 string   `yaml:"label" validate:"required"`
	IndicatorPhrases      []string `yaml:"indicator_phrases" validate:"dive,required"`
	ApplicationIndicators []string `yaml:"application_indicators" validate:"dive,required"`
}

// benchmarksDoc is the YAML layout of benchmarks.yaml.
type benchmarksDoc struct {
	Version    string         `yaml:"version" validate:"required"`
	Benchmarks []benchmarkDoc `yaml:"benchmarks" validate:"required,min=1,dive"`
}

type benchmarkDoc struct {
	Metric   string                 `yaml:"metric" validate:"required"`
	Category string                 `yaml:"category" validate:"required"`
	Source   string                 `yaml:"source" validate:"required"`
	Year     int                    `yaml:"year" validate:"gte=1990,lte=2100"`
	Tiers    map[string]rangeDocRow `yaml:"tiers" validate:"required,min=1,dive,keys,oneof=small midsize large enterprise,endkeys"`
}

type rangeDocRow struct {
	Low     float64 `yaml:"low" validate:"gte=0"`
	Typical float64 `yaml:"typical" validate:"gtefield=Low"`
	High    float64 `yaml:"high" validate:"gtefield=Typical"`
}

// templatesDoc is the YAML layout of templates.yaml.
type templatesDoc struct {
	Version   string        `yaml:"version" validate:"required"`
	Templates []templateDoc `yaml:"templates" validate:"required,min=1,dive"`
}

type templateDoc struct {
	Category string        `yaml:"category" validate:"required"`
	Systems  []systemDoc   `yaml:"systems" validate:"dive"`
	Staffing []staffingDoc `yaml:"staffing" validate:"dive"`
}

type systemDoc struct {
	Category    string   `yaml:"category" validate:"required"`
	Description string   `yaml:"description" validate:"required"`
	Criticality string   `yaml:"criticality" validate:"oneof=critical high medium low"`
	Vendors     []string `yaml:"vendors" validate:"dive,required"`
	Aliases     []string `yaml:"aliases" validate:"dive,required"`
}

type staffingDoc struct {
	Category           string            `yaml:"category" validate:"required"`
	Label              string            `yaml:"label" validate:"required"`
	Ranges             map[string]string `yaml:"ranges" validate:"required,min=1,dive,keys,oneof=small midsize large enterprise,endkeys,required"`
	OutsourcedKeywords []string          `yaml:"outsourced_keywords" validate:"dive,required"`
}

// #endregion yaml-documents

// #region compiled

// Term is one compiled indicator. SubCategory is empty when the indicator
// only points at the broad category.
type Term struct {
	Text        string
	SubCategory string
	Match       textmatch.Matcher
}

// Application is a vertical application indicator.
type Application struct {
	Name        string
	Vendor      string
	SubCategory string
	Match       textmatch.Matcher
}

// SubCategory is a compiled sub-category definition.
type SubCategory struct {
	Key                   string
	Label                 string
	IndicatorPhrases      []Term
	ApplicationIndicators []Term
}

// Category is a compiled taxonomy entry. Treat it as read-only.
type Category struct {
	Key                  string
	Label                string
	Regulatory           []Term
	VerticalApplications []Application
	TriggerPhrases       []Term
	Vendors              []Term
	Roles                []Term
	SubCategories        []SubCategory
}

// SubCategory returns the sub-category with key.
func (c Category) SubCategory(key string) (SubCategory, bool) {
	for _, s := range c.SubCategories {
		if s.Key == key {
			return s, true
		}
	}
	return SubCategory{}, false
}

// BenchmarkRange is one expected range with its citation.
type BenchmarkRange struct {
	Metric   string   `json:"metric"`
	Category string   `json:"category"`
	Tier     SizeTier `json:"tier"`
	Low      float64  `json:"low"`
	Typical  float64  `json:"typical"`
	High     float64  `json:"high"`
	Source   string   `json:"source"`
	Year     int      `json:"year"`
}

// ExpectedSystem is a system a company of the category is expected to run.
type ExpectedSystem struct {
	Category    string
	Description string
	Criticality string
	Vendors     []string
	Aliases     []string
}

// StaffingExpectation is an expected headcount per size tier for a role category.
type StaffingExpectation struct {
	Category           string
	Label              string
	Ranges             map[SizeTier]Range
	RangeLabels        map[SizeTier]string
	OutsourcedKeywords []string
}

// Template is the merged expectation set for one category.
type Template struct {
	Category string
	Systems  []ExpectedSystem
	Staffing []StaffingExpectation
}

// #endregion compiled
