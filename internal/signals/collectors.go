package signals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
)

// #region collect-all

// Collectors returns the six collectors in rank order.
func Collectors(reg *reference.Registry, cfg Config) []Collector {
	return []Collector{
		userDeclared{reg: reg, cfg: cfg},
		regulatory{reg: reg, cfg: cfg},
		verticalApplication{reg: reg, cfg: cfg},
		triggerPhrase{reg: reg, cfg: cfg},
		vendor{reg: reg, cfg: cfg},
		role{reg: reg, cfg: cfg},
	}
}

// CollectAll runs collectors in the given order and returns every signal,
// sorted by kind rank, category, sub-category and description.
func CollectAll(collectors []Collector, snap corpus.Snapshot) []EvidenceSignal {
	var out []EvidenceSignal
	for _, c := range collectors {
		out = append(out, c.Collect(snap)...)
	}
	Sort(out)
	return out
}

// Sort orders signals deterministically in place.
func Sort(sigs []EvidenceSignal) {
	sort.SliceStable(sigs, func(i, j int) bool {
		a, b := sigs[i], sigs[j]
		if a.Kind.Rank() != b.Kind.Rank() {
			return a.Kind.Rank() < b.Kind.Rank()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SubCategory != b.SubCategory {
			return a.SubCategory < b.SubCategory
		}
		return a.Description < b.Description
	})
}

// #endregion collect-all

// #region occurrence-tally

// source is one searchable piece of the snapshot.
type source struct {
	ref        string
	provenance Provenance
	text       string
}

func factSources(facts []corpus.Fact) []source {
	out := make([]source, 0, len(facts))
	for _, f := range corpus.SortFacts(facts) {
		out = append(out, source{ref: "fact:" + f.ID, provenance: FromDocument, text: f.SearchText()})
	}
	return out
}

func inventorySources(inv corpus.Inventory) []source {
	items := inv.Sorted()
	out := make([]source, 0, len(items))
	for _, it := range items {
		out = append(out, source{ref: "inventory:" + it.ID, provenance: FromInventory, text: it.SearchText()})
	}
	return out
}

// hit accumulates distinct sources for one (category, indicator) pair.
type hit struct {
	category    string
	subCategory string
	indicator   string
	sources     map[string]bool
	provenance  map[Provenance]bool
}

type tally struct {
	order []string
	hits  map[string]*hit
}

func newTally() *tally {
	return &tally{hits: make(map[string]*hit)}
}

func (t *tally) add(category, sub, indicator string, src source) {
	key := category + "\x00" + indicator
	h, ok := t.hits[key]
	if !ok {
		h = &hit{
			category:    category,
			subCategory: sub,
			indicator:   indicator,
			sources:     make(map[string]bool),
			provenance:  make(map[Provenance]bool),
		}
		t.hits[key] = h
		t.order = append(t.order, key)
	}
	h.sources[src.ref] = true
	h.provenance[src.provenance] = true
}

// signals converts the tally into one signal per (category, indicator) with
// weight scaled by the number of distinct sources.
func (t *tally) signals(kind Kind, cfg Config, describe func(h *hit) string) []EvidenceSignal {
	out := make([]EvidenceSignal, 0, len(t.order))
	for _, key := range t.order {
		h := t.hits[key]
		refs := sortedKeys(h.sources)
		out = append(out, EvidenceSignal{
			Category:    h.category,
			SubCategory: h.subCategory,
			Kind:        kind,
			Confidence:  kind.BaseConfidence(),
			Weight:      occurrenceWeight(len(refs), cfg),
			Provenance:  mergeProvenance(h.provenance),
			Description: describe(h),
			Sources:     refs,
		})
	}
	return out
}

// occurrenceWeight scales 1.0 by OccurrenceStep per extra source, capped.
func occurrenceWeight(occurrences int, cfg Config) float64 {
	if occurrences < 1 {
		return 0
	}
	w := 1.0 + cfg.OccurrenceStep*float64(occurrences-1)
	return round(math.Min(w, cfg.MaxWeight))
}

func mergeProvenance(set map[Provenance]bool) Provenance {
	if len(set) == 1 {
		for p := range set {
			return p
		}
	}
	return FromMixed
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// round trims float noise so repeated sums stay byte-identical in output.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// #endregion occurrence-tally

// #region user-declared

type userDeclared struct {
	reg *reference.Registry
	cfg Config
}

func (userDeclared) Kind() Kind { return KindUserDeclared }

// Collect resolves the declared industry and sub-industry against the
// taxonomy. Unrecognized values produce no signal.
func (c userDeclared) Collect(snap corpus.Snapshot) []EvidenceSignal {
	var category, sub string
	var field corpus.ProfileField
	subOnly := false
	if industry, ok := snap.Profile.Field(corpus.FieldIndustry); ok {
		if cat, found := c.reg.FindCategory(industry.Value); found {
			category, field = cat, industry
		}
	}
	subField, hasSub := snap.Profile.Field(corpus.FieldSubIndustry)
	if hasSub {
		if cat, s, found := c.reg.FindSubCategory(category, subField.Value); found {
			if category == "" {
				field, subOnly = subField, true
			}
			category, sub = cat, s
		}
	}
	if category == "" {
		return nil
	}

	conf := c.cfg.UnconfirmedUserConfidence
	if field.Provenance.UserAsserted() {
		conf = KindUserDeclared.BaseConfidence()
	}
	var desc string
	switch {
	case sub == "":
		desc = fmt.Sprintf("declared industry %q", field.Value)
	case subOnly:
		desc = fmt.Sprintf("declared sub-industry %q", subField.Value)
	default:
		desc = fmt.Sprintf("declared industry %q, sub-industry %q", field.Value, subField.Value)
	}
	return []EvidenceSignal{{
		Category:    category,
		SubCategory: sub,
		Kind:        KindUserDeclared,
		Confidence:  conf,
		Weight:      c.cfg.UserWeight,
		Provenance:  FromUser,
		Description: desc,
		Sources:     append([]string(nil), field.Sources...),
	}}
}

// #endregion user-declared

// #region regulatory

type regulatory struct {
	reg *reference.Registry
	cfg Config
}

func (regulatory) Kind() Kind { return KindRegulatory }

func (c regulatory) Collect(snap corpus.Snapshot) []EvidenceSignal {
	t := newTally()
	srcs := append(factSources(snap.Facts), inventorySources(snap.Inventory)...)
	for _, cat := range c.reg.Categories() {
		for _, term := range cat.Regulatory {
			for _, src := range srcs {
				if term.Match.In(src.text) {
					t.add(cat.Key, term.SubCategory, term.Text, src)
				}
			}
		}
	}
	return t.signals(KindRegulatory, c.cfg, func(h *hit) string {
		return fmt.Sprintf("regulatory keyword %q in %d source(s)", h.indicator, len(h.sources))
	})
}

// #endregion regulatory

// #region vertical-application

type verticalApplication struct {
	reg *reference.Registry
	cfg Config
}

func (verticalApplication) Kind() Kind { return KindVerticalApplication }

// Collect matches application names against inventory names and fact text.
// Inventory descriptions are ignored so "integrates with X" does not count.
func (c verticalApplication) Collect(snap corpus.Snapshot) []EvidenceSignal {
	t := newTally()
	var srcs []source
	for _, it := range snap.Inventory.Sorted() {
		srcs = append(srcs, source{
			ref:        "inventory:" + it.ID,
			provenance: FromInventory,
			text:       strings.ToLower(it.Name),
		})
	}
	srcs = append(srcs, factSources(snap.Facts)...)
	for _, cat := range c.reg.Categories() {
		for _, app := range cat.VerticalApplications {
			for _, src := range srcs {
				if app.Match.In(src.text) {
					t.add(cat.Key, app.SubCategory, app.Name, src)
				}
			}
		}
	}
	return t.signals(KindVerticalApplication, c.cfg, func(h *hit) string {
		return fmt.Sprintf("vertical application %q found in %d source(s)", h.indicator, len(h.sources))
	})
}

// #endregion vertical-application

// #region trigger-phrase

type triggerPhrase struct {
	reg *reference.Registry
	cfg Config
}

func (triggerPhrase) Kind() Kind { return KindTriggerPhrase }

// Collect counts distinct (phrase, fact) hits per category and emits a single
// signal once the count reaches TriggerMinHits. Weight grows with hits above
// the threshold and shrinks when the matched phrases are shared with other
// categories.
func (c triggerPhrase) Collect(snap corpus.Snapshot) []EvidenceSignal {
	srcs := factSources(snap.Facts)
	var out []EvidenceSignal
	for _, cat := range c.reg.Categories() {
		hits := 0
		refs := make(map[string]bool)
		var matched []string
		var uniqueness float64
		for _, phrase := range cat.TriggerPhrases {
			phraseHits := 0
			for _, src := range srcs {
				if phrase.Match.In(src.text) {
					phraseHits++
					refs[src.ref] = true
				}
			}
			if phraseHits == 0 {
				continue
			}
			hits += phraseHits
			matched = append(matched, phrase.Match.Term())
			owners := len(c.reg.TriggerPhraseOwners(phrase.Match.Term()))
			if owners < 1 {
				owners = 1
			}
			uniqueness += 1.0 / float64(owners)
		}
		if hits < c.cfg.TriggerMinHits {
			continue
		}
		uniqueness /= float64(len(matched))
		frequency := 1.0 + c.cfg.TriggerFrequencyStep*float64(hits-c.cfg.TriggerMinHits)
		out = append(out, EvidenceSignal{
			Category:    cat.Key,
			Kind:        KindTriggerPhrase,
			Confidence:  KindTriggerPhrase.BaseConfidence(),
			Weight:      round(math.Min(uniqueness*frequency, c.cfg.MaxWeight)),
			Provenance:  FromDocument,
			Description: fmt.Sprintf("%d trigger-phrase hits: %s", hits, strings.Join(matched, ", ")),
			Sources:     sortedKeys(refs),
		})
	}
	return out
}

// #endregion trigger-phrase

// #region vendor

type vendor struct {
	reg *reference.Registry
	cfg Config
}

func (vendor) Kind() Kind { return KindVendor }

func (c vendor) Collect(snap corpus.Snapshot) []EvidenceSignal {
	t := newTally()
	var srcs []source
	for _, it := range snap.Inventory.Sorted() {
		srcs = append(srcs, source{
			ref:        "inventory:" + it.ID,
			provenance: FromInventory,
			text:       strings.ToLower(it.Vendor + " \n " + it.Name),
		})
	}
	srcs = append(srcs, factSources(snap.Facts)...)
	for _, svc := range sortedServices(snap.Org.ExternalServices) {
		srcs = append(srcs, source{
			ref:        "service:" + svc.VendorName,
			provenance: FromOrganization,
			text:       strings.ToLower(svc.VendorName),
		})
	}
	for _, cat := range c.reg.Categories() {
		for _, v := range cat.Vendors {
			for _, src := range srcs {
				if v.Match.In(src.text) {
					t.add(cat.Key, "", v.Text, src)
				}
			}
		}
	}
	return t.signals(KindVendor, c.cfg, func(h *hit) string {
		return fmt.Sprintf("vendor %q referenced in %d source(s)", h.indicator, len(h.sources))
	})
}

func sortedServices(svcs []corpus.ExternalService) []corpus.ExternalService {
	out := append([]corpus.ExternalService(nil), svcs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].VendorName < out[j].VendorName })
	return out
}

// #endregion vendor

// #region role

type role struct {
	reg *reference.Registry
	cfg Config
}

func (role) Kind() Kind { return KindRole }

// Collect matches role indicators against staff titles and role categories,
// plus organization-domain facts.
func (c role) Collect(snap corpus.Snapshot) []EvidenceSignal {
	t := newTally()
	staff := append([]corpus.StaffMember(nil), snap.Org.Staff...)
	sort.SliceStable(staff, func(i, j int) bool { return staff[i].Name < staff[j].Name })
	var srcs []source
	for _, m := range staff {
		srcs = append(srcs, source{
			ref:        "staff:" + m.Name,
			provenance: FromOrganization,
			text:       strings.ToLower(m.Title + " \n " + strings.ReplaceAll(m.RoleCategory, "_", " ")),
		})
	}
	srcs = append(srcs, factSources(organizationFacts(snap.Facts))...)
	for _, cat := range c.reg.Categories() {
		for _, r := range cat.Roles {
			for _, src := range srcs {
				if r.Match.In(src.text) {
					t.add(cat.Key, "", r.Text, src)
				}
			}
		}
	}
	return t.signals(KindRole, c.cfg, func(h *hit) string {
		return fmt.Sprintf("role %q held by %d record(s)", h.indicator, len(h.sources))
	})
}

func organizationFacts(facts []corpus.Fact) []corpus.Fact {
	var out []corpus.Fact
	for _, f := range facts {
		if strings.EqualFold(f.Domain, "organization") {
			out = append(out, f)
		}
	}
	return out
}

// #endregion role
