package reference

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryLoads(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "general_business", reg.FallbackCategory())
	assert.True(t, reg.IsCategory("healthcare"))
	assert.False(t, reg.IsCategory("aerospace"))
	assert.NotEmpty(t, reg.Version())

	cats := reg.Categories()
	for i := 1; i < len(cats); i++ {
		assert.Less(t, cats[i-1].Key, cats[i].Key, "categories must be key-ordered")
	}

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, reg, again)
}

func TestFindCategoryAndSubCategory(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	key, ok := reg.FindCategory("Financial Services")
	require.True(t, ok)
	assert.Equal(t, "financial_services", key)

	key, ok = reg.FindCategory("financial-services")
	require.True(t, ok)
	assert.Equal(t, "financial_services", key)

	_, ok = reg.FindCategory("space mining")
	assert.False(t, ok)

	cat, sub, ok := reg.FindSubCategory("", "Dental Practice")
	require.True(t, ok)
	assert.Equal(t, "healthcare", cat)
	assert.Equal(t, "dental", sub)

	_, _, ok = reg.FindSubCategory("legal", "dental")
	assert.False(t, ok)
}

func TestTriggerPhraseOwners(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"financial_services", "healthcare"}, reg.TriggerPhraseOwners("claims"))
	assert.Equal(t, []string{"healthcare"}, reg.TriggerPhraseOwners("Patients"))
	assert.Empty(t, reg.TriggerPhraseOwners("unknown phrase"))
}

func TestBenchmarkLookup(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	b, ok := reg.Benchmark("it_spend_pct_revenue", "healthcare", TierMidsize)
	require.True(t, ok)
	assert.Equal(t, 3.0, b.Low)
	assert.Equal(t, 4.2, b.Typical)
	assert.Equal(t, 6.0, b.High)
	assert.Equal(t, 2024, b.Year)

	_, ok = reg.Benchmark("it_spend_pct_revenue", "retail", TierMidsize)
	assert.False(t, ok, "retail has no category-specific entry")

	_, ok = reg.Benchmark("it_spend_pct_revenue", "general_business", TierEnterprise)
	assert.True(t, ok)
}

func TestTemplateInheritance(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	general := reg.Template("general_business")
	health := reg.Template("healthcare")
	assert.Greater(t, len(health.Systems), len(general.Systems))
	assert.Equal(t, general.Systems[0].Category, health.Systems[0].Category)

	var security, informatics *StaffingExpectation
	for i := range health.Staffing {
		switch health.Staffing[i].Category {
		case "security":
			security = &health.Staffing[i]
		case "clinical_informatics":
			informatics = &health.Staffing[i]
		}
	}
	require.NotNil(t, security)
	require.NotNil(t, informatics)
	assert.Equal(t, "3-6", security.RangeLabels[TierLarge], "healthcare overrides general security range")

	retail := reg.Template("retail")
	assert.Len(t, retail.Staffing, len(general.Staffing))

	unknown := reg.Template("aerospace")
	assert.Equal(t, "general_business", unknown.Category)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		min     int
		max     *int
		wantErr bool
	}{
		{"2-3", 2, intPtr(3), false},
		{"2+", 2, nil, false},
		{"2", 2, intPtr(2), false},
		{" 0-1 ", 0, intPtr(1), false},
		{"3-2", 0, nil, true},
		{"two", 0, nil, true},
		{"", 0, nil, true},
		{"-1", 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRange))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.min, got.Min)
			assert.Equal(t, tt.max, got.Max)
		})
	}
}

func TestRangeContainsAndString(t *testing.T) {
	r, _ := ParseRange("2-4")
	assert.True(t, r.Contains(2))
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(5))
	assert.Equal(t, "2-4", r.String())

	open, _ := ParseRange("5+")
	assert.True(t, open.Contains(500))
	assert.Equal(t, "5+", open.String())

	exact, _ := ParseRange("1")
	assert.Equal(t, "1", exact.String())
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		got, err := ParseTier(" " + strings.ToUpper(string(tier)) + " ")
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}
	_, err := ParseTier("mid-size")
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestLoadRejectsInvalidTables(t *testing.T) {
	base := fstest.MapFS{
		"taxonomy.yaml": {Data: []byte(`version: "t"
fallback_category: general_business
categories:
  - key: general_business
    label: General Business
`)},
		"benchmarks.yaml": {Data: []byte(`version: "t"
benchmarks:
  - metric: m
    category: general_business
    source: s
    year: 2024
    tiers:
      small: {low: 1, typical: 2, high: 3}
`)},
		"templates.yaml": {Data: []byte(`version: "t"
templates:
  - category: general_business
    staffing:
      - category: it_support
        label: Support
        ranges: {small: "1-2"}
`)},
	}
	_, err := Load(base)
	require.NoError(t, err)

	badRange := cloneFS(base)
	badRange["templates.yaml"] = &fstest.MapFile{Data: []byte(`version: "t"
templates:
  - category: general_business
    staffing:
      - category: it_support
        label: Support
        ranges: {small: "lots"}
`)}
	_, err = Load(badRange)
	assert.ErrorIs(t, err, ErrInvalidRange)

	badBench := cloneFS(base)
	badBench["benchmarks.yaml"] = &fstest.MapFile{Data: []byte(`version: "t"
benchmarks:
  - metric: m
    category: nowhere
    source: s
    year: 2024
    tiers:
      small: {low: 1, typical: 2, high: 3}
`)}
	_, err = Load(badBench)
	assert.ErrorContains(t, err, "unknown category")

	badBenchTier := cloneFS(base)
	badBenchTier["benchmarks.yaml"] = &fstest.MapFile{Data: []byte(`version: "t"
benchmarks:
  - metric: m
    category: general_business
    source: s
    year: 2024
    tiers:
      huge: {low: 1, typical: 2, high: 3}
`)}
	_, err = Load(badBenchTier)
	assert.ErrorIs(t, err, ErrUnknownTier)

	badStaffTier := cloneFS(base)
	badStaffTier["templates.yaml"] = &fstest.MapFile{Data: []byte(`version: "t"
templates:
  - category: general_business
    staffing:
      - category: it_support
        label: Support
        ranges: {tiny: "1-2"}
`)}
	_, err = Load(badStaffTier)
	assert.ErrorIs(t, err, ErrUnknownTier)

	noFallback := cloneFS(base)
	noFallback["taxonomy.yaml"] = &fstest.MapFile{Data: []byte(`version: "t"
fallback_category: general_business
categories:
  - key: retail
    label: Retail
`)}
	_, err = Load(noFallback)
	assert.ErrorContains(t, err, "fallback category")

	missing := cloneFS(base)
	delete(missing, "benchmarks.yaml")
	_, err = Load(missing)
	assert.ErrorContains(t, err, "read benchmarks.yaml")
}

func cloneFS(src fstest.MapFS) fstest.MapFS {
	out := make(fstest.MapFS, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func intPtr(n int) *int { return &n }
