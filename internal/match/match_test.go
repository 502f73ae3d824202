package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
)

func backupSystem() reference.ExpectedSystem {
	return reference.ExpectedSystem{
		Category:    "backup",
		Description: "Backup and disaster recovery",
		Criticality: "critical",
		Vendors:     []string{"Veeam", "Datto"},
		Aliases:     []string{"backup", "disaster recovery"},
	}
}

func TestMatchSystemsInventoryVendor(t *testing.T) {
	inv := corpus.Inventory{Items: []corpus.InventoryItem{
		{ID: "i2", Name: "Nightly job", Category: "backup"},
		{ID: "i9", Name: "Veeam Backup & Replication", Vendor: "Veeam Software"},
	}}
	got := MatchSystems([]reference.ExpectedSystem{backupSystem()}, inv, nil)
	require.Len(t, got, 1)
	c := got[0]
	assert.Equal(t, StatusFound, c.Status)
	require.NotNil(t, c.InventoryReference)
	assert.Equal(t, "i9", *c.InventoryReference, "vendor match beats alias match")
	require.NotNil(t, c.MatchedVendor)
	assert.Equal(t, "Veeam Software", *c.MatchedVendor)
}

func TestMatchSystemsInventoryAlias(t *testing.T) {
	inv := corpus.Inventory{Items: []corpus.InventoryItem{
		{ID: "i2", Name: "Offsite vault", Category: "Backup", Vendor: "Iron Mountain"},
	}}
	got := MatchSystems([]reference.ExpectedSystem{backupSystem()}, inv, nil)
	assert.Equal(t, StatusFound, got[0].Status)
	assert.Equal(t, "Offsite vault", *got[0].MatchedSystem)
	assert.Equal(t, "Iron Mountain", *got[0].MatchedVendor)
}

func TestMatchSystemsFactPartial(t *testing.T) {
	facts := []corpus.Fact{
		{ID: "f3", Text: "Datto appliance in the server room", Confidence: 0.6},
		{ID: "f1", Text: "Backups go to Datto cloud", Confidence: 0.9, SourceDocument: "it-review.pdf"},
		{ID: "f2", Text: "disaster recovery plan is outdated", Confidence: 0.9},
	}
	got := MatchSystems([]reference.ExpectedSystem{backupSystem()}, corpus.Inventory{}, facts)
	c := got[0]
	assert.Equal(t, StatusPartial, c.Status)
	require.NotNil(t, c.FactReference)
	assert.Equal(t, "f1", *c.FactReference, "highest confidence, ties by ID")
	require.NotNil(t, c.MatchedVendor)
	assert.Equal(t, "Datto", *c.MatchedVendor)
	assert.Contains(t, c.Notes, "it-review.pdf")
	assert.Nil(t, c.InventoryReference)
}

func TestMatchSystemsNotFoundDisclaimer(t *testing.T) {
	facts := []corpus.Fact{{ID: "f1", Text: "Printers are leased"}}
	got := MatchSystems([]reference.ExpectedSystem{backupSystem()}, corpus.Inventory{}, facts)
	c := got[0]
	assert.Equal(t, StatusNotFound, c.Status)
	assert.Nil(t, c.MatchedSystem)
	for _, part := range []string{"outsourced", "different name", "undocumented"} {
		assert.Contains(t, c.Notes, part)
	}
}

func TestMatchSystemsWordBoundaries(t *testing.T) {
	sys := reference.ExpectedSystem{Category: "ehr", Vendors: []string{"Epic"}, Aliases: []string{"ehr"}}
	inv := corpus.Inventory{Items: []corpus.InventoryItem{{ID: "1", Name: "Epicenter scheduling"}}}
	got := MatchSystems([]reference.ExpectedSystem{sys}, inv, nil)
	assert.Equal(t, StatusNotFound, got[0].Status)
}

func TestMatchStaffing(t *testing.T) {
	reg, err := reference.Default()
	require.NoError(t, err)
	tmpl := reg.Template("general_business")

	fte := 2.0
	org := corpus.OrgData{
		Staff: []corpus.StaffMember{
			{Name: "Zed", RoleCategory: "it_support"},
			{Name: "Amy", RoleCategory: "IT Support"},
			{Name: "Lee", RoleCategory: "security"},
			{Name: "Kim", RoleCategory: "security"},
			{Name: "Sam", RoleCategory: "security"},
			{Name: "Pat", RoleCategory: "finance"},
		},
		ExternalServices: []corpus.ExternalService{
			{VendorName: "Acme MSP", Description: "24x7 help desk", FTEEquivalent: &fte},
		},
	}
	got, warnings := MatchStaffing(tmpl.Staffing, reference.TierMidsize, org)
	require.Len(t, got, len(tmpl.Staffing))
	assert.Empty(t, warnings)

	byCat := make(map[string]StaffingComparison)
	for _, c := range got {
		byCat[c.Category] = c
	}

	support := byCat["it_support"]
	assert.Equal(t, 2, support.ObservedCount)
	assert.Equal(t, []string{"Amy", "Zed"}, support.ObservedMembers)
	assert.Equal(t, WithinRange, support.Variance)
	assert.Contains(t, support.OutsourcedCoverage, "Acme MSP")

	security := byCat["security"]
	assert.Equal(t, Overstaffed, security.Variance)
	assert.Equal(t, "1-2", security.ExpectedRangeLabel)

	infra := byCat["infrastructure"]
	assert.Equal(t, Understaffed, infra.Variance)
	assert.Equal(t, 0, infra.ObservedCount)
	assert.Empty(t, infra.OutsourcedCoverage)
	assert.Contains(t, infra.Notes, "no external coverage")
}

func TestMatchStaffingCoverageDoesNotOffsetCount(t *testing.T) {
	exp := []reference.StaffingExpectation{{
		Category:           "security",
		Label:              "Information security",
		Ranges:             map[reference.SizeTier]reference.Range{reference.TierLarge: {Min: 2}},
		OutsourcedKeywords: []string{"mdr"},
	}}
	fte := 3.0
	org := corpus.OrgData{ExternalServices: []corpus.ExternalService{
		{VendorName: "Arctic", Description: "MDR service", FTEEquivalent: &fte},
	}}
	got, _ := MatchStaffing(exp, reference.TierLarge, org)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].ObservedCount)
	assert.Equal(t, Understaffed, got[0].Variance)
	assert.Equal(t, "2+", got[0].ExpectedRangeLabel, "no source label, rendered from the range")
	assert.Contains(t, got[0].OutsourcedCoverage, "3.0 FTE")
	assert.Contains(t, got[0].Notes, "may fill part of the gap")
}

func TestMatchStaffingMissingTierRangeIsReported(t *testing.T) {
	five := 5
	exp := []reference.StaffingExpectation{
		{
			Category:    "security",
			Label:       "Information security",
			Ranges:      map[reference.SizeTier]reference.Range{reference.TierLarge: {Min: 2}},
			RangeLabels: map[reference.SizeTier]string{reference.TierLarge: "2+"},
		},
		{
			Category:    "it_support",
			Label:       "Support",
			Ranges:      map[reference.SizeTier]reference.Range{reference.TierSmall: {Min: 5, Max: &five}},
			RangeLabels: map[reference.SizeTier]string{reference.TierSmall: "5-5"},
		},
	}
	org := corpus.OrgData{Staff: []corpus.StaffMember{
		{Name: "Ann", RoleCategory: "it_support"},
		{Name: "Bo", RoleCategory: "it_support"},
		{Name: "Cy", RoleCategory: "it_support"},
		{Name: "Di", RoleCategory: "it_support"},
		{Name: "Ed", RoleCategory: "it_support"},
	}}

	got, warnings := MatchStaffing(exp, reference.TierSmall, org)
	require.Len(t, got, 1)
	assert.Equal(t, "it_support", got[0].Category)
	assert.Equal(t, "5-5", got[0].ExpectedRangeLabel, "source notation kept")
	assert.Equal(t, WithinRange, got[0].Variance, "upper bound is inclusive")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "security")
	assert.Contains(t, warnings[0], "small")
}

func TestStaffingVarianceBounds(t *testing.T) {
	two := 2
	closed := reference.Range{Min: 1, Max: &two}
	assert.Equal(t, Understaffed, staffingVariance(0, closed))
	assert.Equal(t, WithinRange, staffingVariance(1, closed))
	assert.Equal(t, WithinRange, staffingVariance(2, closed))
	assert.Equal(t, Overstaffed, staffingVariance(3, closed))
	assert.Equal(t, WithinRange, staffingVariance(40, reference.Range{Min: 3}))
}
