// Package reference holds the static industry taxonomy, benchmark ranges and
// expectation templates. Tables are loaded once into an immutable Registry.
package reference

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/textmatch"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	taxonomyFile   = "taxonomy.yaml"
	benchmarksFile = "benchmarks.yaml"
	templatesFile  = "templates.yaml"
)

// #region registry

type benchmarkKey struct {
	metric   string
	category string
	tier     SizeTier
}

// Registry is the compiled, read-only reference set. Values returned from its
// accessors share slices with the registry and must not be modified.
type Registry struct {
	version       string
	fallback      string
	order         []string
	categories    map[string]Category
	triggerOwners map[string][]string
	benchmarks    map[benchmarkKey]BenchmarkRange
	templates     map[string]Template
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the registry compiled from the embedded tables. It is built
// on first use and shared afterwards.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			defaultErr = fmt.Errorf("embedded reference data: %w", err)
			return
		}
		defaultReg, defaultErr = Load(sub)
	})
	return defaultReg, defaultErr
}

// LoadDir compiles the tables found in dir.
func LoadDir(dir string) (*Registry, error) {
	return Load(os.DirFS(dir))
}

// Load reads, validates and compiles the three reference tables from fsys.
func Load(fsys fs.FS) (*Registry, error) {
	var tax taxonomyDoc
	if err := readYAML(fsys, taxonomyFile, &tax); err != nil {
		return nil, err
	}
	var bench benchmarksDoc
	if err := readYAML(fsys, benchmarksFile, &bench); err != nil {
		return nil, err
	}
	var tmpl templatesDoc
	if err := readYAML(fsys, templatesFile, &tmpl); err != nil {
		return nil, err
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	for name, doc := range map[string]interface{}{taxonomyFile: &tax, benchmarksFile: &bench, templatesFile: &tmpl} {
		if err := v.Struct(doc); err != nil {
			return nil, fmt.Errorf("validate %s: %w", name, err)
		}
	}

	reg := &Registry{
		version:       tax.Version,
		fallback:      tax.FallbackCategory,
		categories:    make(map[string]Category, len(tax.Categories)),
		triggerOwners: make(map[string][]string),
		benchmarks:    make(map[benchmarkKey]BenchmarkRange),
		templates:     make(map[string]Template, len(tmpl.Templates)),
	}
	if err := reg.compileTaxonomy(tax); err != nil {
		return nil, fmt.Errorf("compile %s: %w", taxonomyFile, err)
	}
	if err := reg.compileBenchmarks(bench); err != nil {
		return nil, fmt.Errorf("compile %s: %w", benchmarksFile, err)
	}
	if err := reg.compileTemplates(tmpl); err != nil {
		return nil, fmt.Errorf("compile %s: %w", templatesFile, err)
	}
	return reg, nil
}

func readYAML(fsys fs.FS, name string, out interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}

// #endregion registry

// #region compile

func (r *Registry) compileTaxonomy(doc taxonomyDoc) error {
	for _, cd := range doc.Categories {
		if _, dup := r.categories[cd.Key]; dup {
			return fmt.Errorf("duplicate category %q", cd.Key)
		}
		subs := make(map[string]bool, len(cd.SubCategories))
		cat := Category{Key: cd.Key, Label: cd.Label}
		for _, sd := range cd.SubCategories {
			if subs[sd.Key] {
				return fmt.Errorf("category %s: duplicate sub-category %q", cd.Key, sd.Key)
			}
			subs[sd.Key] = true
			cat.SubCategories = append(cat.SubCategories, SubCategory{
				Key:                   sd.Key,
				Label:                 sd.Label,
				IndicatorPhrases:      terms(sd.IndicatorPhrases, ""),
				ApplicationIndicators: terms(sd.ApplicationIndicators, sd.Key),
			})
		}
		checkSub := func(sub string) error {
			if sub != "" && !subs[sub] {
				return fmt.Errorf("category %s: unknown sub-category %q", cd.Key, sub)
			}
			return nil
		}
		for _, ind := range cd.RegulatoryKeywords {
			if err := checkSub(ind.SubCategory); err != nil {
				return err
			}
			cat.Regulatory = append(cat.Regulatory, Term{Text: ind.Term, SubCategory: ind.SubCategory, Match: textmatch.Compile(ind.Term)})
		}
		for _, app := range cd.VerticalApplications {
			if err := checkSub(app.SubCategory); err != nil {
				return err
			}
			cat.VerticalApplications = append(cat.VerticalApplications, Application{
				Name:        app.Name,
				Vendor:      app.Vendor,
				SubCategory: app.SubCategory,
				Match:       textmatch.Compile(app.Name),
			})
		}
		cat.TriggerPhrases = terms(cd.TriggerPhrases, "")
		cat.Vendors = terms(cd.Vendors, "")
		cat.Roles = terms(cd.Roles, "")

		for _, p := range cat.TriggerPhrases {
			key := p.Match.Term()
			r.triggerOwners[key] = append(r.triggerOwners[key], cd.Key)
		}
		r.categories[cd.Key] = cat
		r.order = append(r.order, cd.Key)
	}
	if _, ok := r.categories[r.fallback]; !ok {
		return fmt.Errorf("fallback category %q is not defined", r.fallback)
	}
	sort.Strings(r.order)
	for k := range r.triggerOwners {
		sort.Strings(r.triggerOwners[k])
	}
	return nil
}

func terms(list []string, sub string) []Term {
	out := make([]Term, 0, len(list))
	for _, t := range list {
		out = append(out, Term{Text: t, SubCategory: sub, Match: textmatch.Compile(t)})
	}
	return out
}

func (r *Registry) compileBenchmarks(doc benchmarksDoc) error {
	for _, bd := range doc.Benchmarks {
		if !r.IsCategory(bd.Category) {
			return fmt.Errorf("benchmark %s: unknown category %q", bd.Metric, bd.Category)
		}
		for tierName, row := range bd.Tiers {
			tier, err := ParseTier(tierName)
			if err != nil {
				return fmt.Errorf("benchmark %s/%s: %w", bd.Metric, bd.Category, err)
			}
			key := benchmarkKey{metric: bd.Metric, category: bd.Category, tier: tier}
			if _, dup := r.benchmarks[key]; dup {
				return fmt.Errorf("duplicate benchmark %s/%s/%s", bd.Metric, bd.Category, tierName)
			}
			if row.Low > row.Typical || row.Typical > row.High {
				return fmt.Errorf("benchmark %s/%s/%s: bounds out of order", bd.Metric, bd.Category, tierName)
			}
			r.benchmarks[key] = BenchmarkRange{
				Metric:   bd.Metric,
				Category: bd.Category,
				Tier:     tier,
				Low:      row.Low,
				Typical:  row.Typical,
				High:     row.High,
				Source:   bd.Source,
				Year:     bd.Year,
			}
		}
	}
	return nil
}

func (r *Registry) compileTemplates(doc templatesDoc) error {
	raw := make(map[string]templateDoc, len(doc.Templates))
	for _, td := range doc.Templates {
		if !r.IsCategory(td.Category) {
			return fmt.Errorf("template: unknown category %q", td.Category)
		}
		if _, dup := raw[td.Category]; dup {
			return fmt.Errorf("duplicate template for %q", td.Category)
		}
		raw[td.Category] = td
	}
	base, ok := raw[r.fallback]
	if !ok {
		return fmt.Errorf("no template for fallback category %q", r.fallback)
	}
	baseSystems := systems(base.Systems)
	baseStaffing, err := staffing(base.Staffing)
	if err != nil {
		return fmt.Errorf("template %s: %w", r.fallback, err)
	}
	r.templates[r.fallback] = Template{Category: r.fallback, Systems: baseSystems, Staffing: baseStaffing}

	for cat, td := range raw {
		if cat == r.fallback {
			continue
		}
		own, err := staffing(td.Staffing)
		if err != nil {
			return fmt.Errorf("template %s: %w", cat, err)
		}
		merged := make([]StaffingExpectation, 0, len(baseStaffing)+len(own))
		overrides := make(map[string]StaffingExpectation, len(own))
		for _, s := range own {
			overrides[s.Category] = s
		}
		for _, s := range baseStaffing {
			if o, ok := overrides[s.Category]; ok {
				merged = append(merged, o)
				delete(overrides, s.Category)
				continue
			}
			merged = append(merged, s)
		}
		for _, s := range own {
			if _, pending := overrides[s.Category]; pending {
				merged = append(merged, s)
			}
		}
		sys := append(append([]ExpectedSystem{}, baseSystems...), systems(td.Systems)...)
		r.templates[cat] = Template{Category: cat, Systems: sys, Staffing: merged}
	}
	return nil
}

func systems(docs []systemDoc) []ExpectedSystem {
	out := make([]ExpectedSystem, 0, len(docs))
	for _, d := range docs {
		out = append(out, ExpectedSystem{
			Category:    d.Category,
			Description: d.Description,
			Criticality: d.Criticality,
			Vendors:     d.Vendors,
			Aliases:     d.Aliases,
		})
	}
	return out
}

func staffing(docs []staffingDoc) ([]StaffingExpectation, error) {
	out := make([]StaffingExpectation, 0, len(docs))
	for _, d := range docs {
		exp := StaffingExpectation{
			Category:           d.Category,
			Label:              d.Label,
			Ranges:             make(map[SizeTier]Range, len(d.Ranges)),
			RangeLabels:        make(map[SizeTier]string, len(d.Ranges)),
			OutsourcedKeywords: d.OutsourcedKeywords,
		}
		for name, s := range d.Ranges {
			tier, err := ParseTier(name)
			if err != nil {
				return nil, fmt.Errorf("staffing %s: %w", d.Category, err)
			}
			rg, err := ParseRange(s)
			if err != nil {
				return nil, fmt.Errorf("staffing %s/%s: %w", d.Category, tier, err)
			}
			exp.Ranges[tier] = rg
			exp.RangeLabels[tier] = strings.TrimSpace(s)
		}
		out = append(out, exp)
	}
	return out, nil
}

// #endregion compile

// #region accessors

// Version returns the taxonomy version string.
func (r *Registry) Version() string { return r.version }

// FallbackCategory returns the category used when no evidence exists.
func (r *Registry) FallbackCategory() string { return r.fallback }

// IsCategory reports whether key is in the closed taxonomy.
func (r *Registry) IsCategory(key string) bool {
	_, ok := r.categories[key]
	return ok
}

// Category returns the compiled category for key.
func (r *Registry) Category(key string) (Category, bool) {
	c, ok := r.categories[key]
	return c, ok
}

// Categories returns every category in key order.
func (r *Registry) Categories() []Category {
	out := make([]Category, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.categories[k])
	}
	return out
}

// Label returns the display label for key, or key itself when unknown.
func (r *Registry) Label(key string) string {
	if c, ok := r.categories[key]; ok {
		return c.Label
	}
	return key
}

// FindCategory resolves a free-form value against category keys and labels,
// case-insensitively.
func (r *Registry) FindCategory(value string) (string, bool) {
	norm := normalizeKey(value)
	if norm == "" {
		return "", false
	}
	for _, k := range r.order {
		c := r.categories[k]
		if normalizeKey(c.Key) == norm || normalizeKey(c.Label) == norm {
			return k, true
		}
	}
	return "", false
}

// FindSubCategory resolves a free-form value to (category, sub-category).
// When category is non-empty only that category is searched.
func (r *Registry) FindSubCategory(category, value string) (string, string, bool) {
	norm := normalizeKey(value)
	if norm == "" {
		return "", "", false
	}
	for _, k := range r.order {
		if category != "" && k != category {
			continue
		}
		for _, s := range r.categories[k].SubCategories {
			if normalizeKey(s.Key) == norm || normalizeKey(s.Label) == norm {
				return k, s.Key, true
			}
		}
	}
	return "", "", false
}

// TriggerPhraseOwners returns the categories listing phrase as a trigger.
func (r *Registry) TriggerPhraseOwners(phrase string) []string {
	return r.triggerOwners[strings.ToLower(strings.TrimSpace(phrase))]
}

// Benchmark looks up the expected range for (metric, category, tier).
func (r *Registry) Benchmark(metric, category string, tier SizeTier) (BenchmarkRange, bool) {
	b, ok := r.benchmarks[benchmarkKey{metric: metric, category: category, tier: tier}]
	return b, ok
}

// Template returns the expectation template for category, falling back to the
// general template for categories without one.
func (r *Registry) Template(category string) Template {
	if t, ok := r.templates[category]; ok {
		return t
	}
	return r.templates[r.fallback]
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ", "&", "and", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// #endregion accessors
