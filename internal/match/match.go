// Package match compares expected systems and staffing against what the
// inventory, facts and organization data actually show.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/textmatch"
)

// #region systems

// MatchSystems runs the inventory, fact and not-found phases for each
// expected system, in template order.
func MatchSystems(expected []reference.ExpectedSystem, inv corpus.Inventory, facts []corpus.Fact) []SystemComparison {
	items := inv.Sorted()
	sortedFacts := corpus.SortFacts(facts)
	out := make([]SystemComparison, 0, len(expected))
	for _, sys := range expected {
		out = append(out, matchSystem(sys, items, sortedFacts))
	}
	return out
}

func matchSystem(sys reference.ExpectedSystem, items []corpus.InventoryItem, facts []corpus.Fact) SystemComparison {
	cmp := SystemComparison{
		Category:            sys.Category,
		Description:         sys.Description,
		ExpectedCriticality: sys.Criticality,
		CandidateVendors:    append([]string{}, sys.Vendors...),
	}
	vendors := textmatch.NewSet(sys.Vendors...)
	aliases := textmatch.NewSet(sys.Aliases...)

	// Phase 1: inventory. Vendor terms beat aliases.
	for _, it := range items {
		if hits := vendors.Matches(strings.ToLower(it.Name + " \n " + it.Vendor)); len(hits) > 0 {
			return found(cmp, it, vendorName(it, sys.Vendors, hits[0]))
		}
	}
	for _, it := range items {
		if aliases.Any(strings.ToLower(it.Category + " \n " + it.Name + " \n " + it.Description)) {
			return found(cmp, it, it.Vendor)
		}
	}

	// Phase 2: fact mentions, strongest fact wins.
	var best *corpus.Fact
	var bestVendor string
	for i := range facts {
		f := &facts[i]
		text := f.SearchText()
		hits := vendors.Matches(text)
		if len(hits) == 0 && !aliases.Any(text) {
			continue
		}
		if best == nil || f.Confidence > best.Confidence {
			best = f
			bestVendor = ""
			if len(hits) > 0 {
				bestVendor = original(sys.Vendors, hits[0])
			}
		}
	}
	if best != nil {
		cmp.Status = StatusPartial
		ref := best.ID
		cmp.FactReference = &ref
		if bestVendor != "" {
			v := bestVendor
			cmp.MatchedVendor = &v
			cmp.MatchedSystem = &v
		}
		src := ""
		if best.SourceDocument != "" {
			src = fmt.Sprintf(" (%s)", best.SourceDocument)
		}
		cmp.Notes = fmt.Sprintf("Mentioned in fact %s%s but not recorded in the inventory; confirm it is in use.", best.ID, src)
		return cmp
	}

	// Phase 3: never assert absence.
	cmp.Status = StatusNotFound
	cmp.Notes = NotFoundDisclaimer
	return cmp
}

func found(cmp SystemComparison, it corpus.InventoryItem, vendor string) SystemComparison {
	cmp.Status = StatusFound
	name, ref := it.Name, it.ID
	cmp.MatchedSystem = &name
	cmp.InventoryReference = &ref
	if vendor != "" {
		v := vendor
		cmp.MatchedVendor = &v
	}
	cmp.Notes = fmt.Sprintf("Found in inventory as %q.", it.Name)
	return cmp
}

// vendorName prefers the vendor recorded on the item over the template term.
func vendorName(it corpus.InventoryItem, terms []string, hit string) string {
	if strings.TrimSpace(it.Vendor) != "" {
		return it.Vendor
	}
	return original(terms, hit)
}

// original returns the template spelling of a normalized term.
func original(terms []string, norm string) string {
	for _, t := range terms {
		if strings.EqualFold(strings.Join(strings.Fields(t), " "), norm) {
			return t
		}
	}
	return norm
}

// #endregion systems

// #region staffing

// MatchStaffing counts staff per role category against each expectation's
// range for tier. External services matching the outsourced keywords are
// noted but never added to the count. Expectations with no range for tier
// produce no row; each one is named in the returned warnings instead.
func MatchStaffing(expected []reference.StaffingExpectation, tier reference.SizeTier, org corpus.OrgData) ([]StaffingComparison, []string) {
	members := make(map[string][]string)
	for _, m := range org.Staff {
		key := roleKey(m.RoleCategory)
		if key == "" {
			continue
		}
		members[key] = append(members[key], m.Name)
	}
	services := append([]corpus.ExternalService(nil), org.ExternalServices...)
	sort.SliceStable(services, func(i, j int) bool { return services[i].VendorName < services[j].VendorName })

	out := make([]StaffingComparison, 0, len(expected))
	var warnings []string
	for _, exp := range expected {
		rg, ok := exp.Ranges[tier]
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"staffing %s not compared: no expected range for size tier %s", exp.Category, tier))
			continue
		}
		label := exp.RangeLabels[tier]
		if label == "" {
			label = rg.String()
		}
		names := append([]string{}, members[roleKey(exp.Category)]...)
		sort.Strings(names)

		cmp := StaffingComparison{
			Category:           exp.Category,
			ExpectedLabel:      exp.Label,
			ExpectedRange:      rg,
			ExpectedRangeLabel: label,
			ObservedCount:      len(names),
			ObservedMembers:    names,
			Variance:           staffingVariance(len(names), rg),
			OutsourcedCoverage: coverageNote(exp, services),
		}
		cmp.Notes = staffingNotes(cmp)
		out = append(out, cmp)
	}
	return out, warnings
}

func staffingVariance(n int, rg reference.Range) StaffingVariance {
	switch {
	case rg.Contains(n):
		return WithinRange
	case n < rg.Min:
		return Understaffed
	default:
		return Overstaffed
	}
}

func coverageNote(exp reference.StaffingExpectation, services []corpus.ExternalService) string {
	keywords := textmatch.NewSet(exp.OutsourcedKeywords...)
	var parts []string
	for _, svc := range services {
		hits := keywords.Matches(strings.ToLower(svc.VendorName + " \n " + svc.Description))
		if len(hits) == 0 {
			continue
		}
		part := fmt.Sprintf("%s (%s", svc.VendorName, strings.Join(hits, ", "))
		if svc.FTEEquivalent != nil {
			part += fmt.Sprintf("; %.1f FTE", *svc.FTEEquivalent)
		}
		parts = append(parts, part+")")
	}
	if len(parts) == 0 {
		return ""
	}
	return "External coverage: " + strings.Join(parts, "; ")
}

func staffingNotes(cmp StaffingComparison) string {
	base := fmt.Sprintf("%d observed against an expected %s.", cmp.ObservedCount, cmp.ExpectedRangeLabel)
	switch {
	case cmp.Variance == Understaffed && cmp.OutsourcedCoverage != "":
		return base + " Below range internally; the external coverage noted may fill part of the gap."
	case cmp.Variance == Understaffed:
		return base + " Below range; no external coverage was identified in the documents reviewed."
	case cmp.Variance == Overstaffed:
		return base + " Above range; roles may be broader than the category label suggests."
	}
	return base
}

func roleKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

// #endregion staffing
