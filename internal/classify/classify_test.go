package classify

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/signals"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	reg, err := reference.Default()
	if err != nil {
		t.Fatalf("load reference: %v", err)
	}
	return NewClassifier(reg, DefaultConfig())
}

func sig(category, sub string, kind signals.Kind, conf, weight float64) signals.EvidenceSignal {
	return signals.EvidenceSignal{
		Category:    category,
		SubCategory: sub,
		Kind:        kind,
		Confidence:  conf,
		Weight:      weight,
		Provenance:  signals.FromDocument,
		Description: "test " + string(kind) + " " + category + " " + sub,
	}
}

func hasWarning(res Result, parts ...string) bool {
	for _, w := range res.Warnings {
		all := true
		for _, p := range parts {
			if !strings.Contains(w, p) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func declared(value string, prov corpus.ProvenanceKind) corpus.Profile {
	return corpus.Profile{Fields: map[string]corpus.ProfileField{
		corpus.FieldIndustry: {Value: value, Provenance: prov, Confidence: corpus.ConfidenceHigh},
	}}
}

// #region aggregate-tests

func TestAggregateRanking(t *testing.T) {
	sigs := []signals.EvidenceSignal{
		sig("retail", "", signals.KindVendor, 1.0, 2.0),
		sig("legal", "", signals.KindVendor, 1.0, 1.0),
		sig("legal", "", signals.KindRole, 1.0, 1.0),
		sig("education", "", signals.KindVendor, 1.0, 2.0),
		sig("healthcare", "", signals.KindRegulatory, 0.9, 3.0),
	}
	rows := Aggregate(sigs)
	var got []string
	for _, r := range rows {
		got = append(got, r.Category)
	}
	// healthcare 2.7; legal 2.0 with two signals; education and retail tie on
	// score and count so key order decides.
	want := []string{"healthcare", "legal", "education", "retail"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranking: got %v, want %v", got, want)
	}
	if rows[1].ByKind[signals.KindRole] != 1.0 {
		t.Errorf("by-kind breakdown: %v", rows[1].ByKind)
	}
}

// #endregion aggregate-tests

// #region tie-break-tests

func TestCloseScoresKeepBoth(t *testing.T) {
	c := newTestClassifier(t)
	res := c.FromSignals(corpus.Snapshot{}, []signals.EvidenceSignal{
		sig("healthcare", "", signals.KindRegulatory, 1.0, 10.0),
		sig("legal", "", signals.KindRegulatory, 1.0, 9.3),
	})
	if res.PrimaryCategory != "healthcare" {
		t.Fatalf("primary: got %s", res.PrimaryCategory)
	}
	if !reflect.DeepEqual(res.SecondaryCategories, []string{"legal"}) {
		t.Fatalf("secondaries: got %v", res.SecondaryCategories)
	}
	if !hasWarning(res, "close scores", "healthcare", "legal") {
		t.Fatalf("expected close-score warning, got %v", res.Warnings)
	}
	if res.Confidence != 1.0 {
		t.Errorf("confidence should saturate, got %v", res.Confidence)
	}
}

func TestClearWinnerNoCloseWarning(t *testing.T) {
	c := newTestClassifier(t)
	res := c.FromSignals(corpus.Snapshot{}, []signals.EvidenceSignal{
		sig("healthcare", "", signals.KindRegulatory, 1.0, 4.0),
		sig("legal", "", signals.KindRegulatory, 1.0, 2.5),
		sig("retail", "", signals.KindRegulatory, 1.0, 1.0),
	})
	if !reflect.DeepEqual(res.SecondaryCategories, []string{"legal"}) {
		t.Fatalf("secondaries: got %v", res.SecondaryCategories)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res.Confidence != 0.5 {
		t.Errorf("confidence: got %v, want 0.5", res.Confidence)
	}
}

func TestEmptyCorpusFallsBack(t *testing.T) {
	c := newTestClassifier(t)
	res := c.Classify(corpus.Snapshot{})
	if res.PrimaryCategory != "general_business" {
		t.Fatalf("primary: got %q", res.PrimaryCategory)
	}
	if res.Confidence != 0.3 {
		t.Fatalf("confidence: got %v", res.Confidence)
	}
	if res.Method != MethodFallback {
		t.Fatalf("method: got %s", res.Method)
	}
	if !hasWarning(res, "no signals detected") {
		t.Fatalf("warnings: %v", res.Warnings)
	}
	if res.SubCategory != nil {
		t.Fatalf("sub-category should be nil")
	}
}

func TestUserOverrideWithConflict(t *testing.T) {
	c := newTestClassifier(t)
	facts := []corpus.Fact{
		{ID: "f1", Text: "Epic and Cerner interfaces"},
		{ID: "f2", Text: "HIPAA audit; Epic upgrade"},
		{ID: "f3", Text: "HITECH breach notification"},
	}
	tests := []struct {
		name string
		prov corpus.ProvenanceKind
		conf float64
	}{
		{"confirmed", corpus.ProvenanceUserConfirmed, 1.0},
		{"unconfirmed", corpus.ProvenanceExtracted, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(corpus.Snapshot{Profile: declared("Legal", tt.prov), Facts: facts})
			if res.PrimaryCategory != "legal" {
				t.Fatalf("primary: got %s", res.PrimaryCategory)
			}
			if res.Method != MethodUserSpecified {
				t.Fatalf("method: got %s", res.Method)
			}
			if res.Confidence != tt.conf {
				t.Fatalf("confidence: got %v, want %v", res.Confidence, tt.conf)
			}
			if !hasWarning(res, "legal", "healthcare") {
				t.Fatalf("expected conflict warning naming both, got %v", res.Warnings)
			}
			if len(res.SecondaryCategories) == 0 || res.SecondaryCategories[0] != "healthcare" {
				t.Errorf("evidence winner should be secondary, got %v", res.SecondaryCategories)
			}
		})
	}
}

func TestUserOverrideAgreeingEvidence(t *testing.T) {
	c := newTestClassifier(t)
	res := c.Classify(corpus.Snapshot{
		Profile: declared("healthcare", corpus.ProvenanceUserProvided),
		Facts:   []corpus.Fact{{ID: "f1", Text: "HIPAA policy"}},
	})
	if res.PrimaryCategory != "healthcare" || len(res.Warnings) != 0 {
		t.Fatalf("got %s with warnings %v", res.PrimaryCategory, res.Warnings)
	}
}

func TestUnrecognizedDeclaredIndustryWarns(t *testing.T) {
	c := newTestClassifier(t)
	res := c.Classify(corpus.Snapshot{Profile: declared("Asteroid Mining", corpus.ProvenanceUserProvided)})
	if res.PrimaryCategory != "general_business" {
		t.Fatalf("primary: got %s", res.PrimaryCategory)
	}
	if !hasWarning(res, "Asteroid Mining", "not in the taxonomy") {
		t.Fatalf("warnings: %v", res.Warnings)
	}
	if !hasWarning(res, "no signals detected") {
		t.Fatalf("warnings: %v", res.Warnings)
	}
}

// #endregion tie-break-tests

// #region scenario-tests

func TestEndToEndScenario(t *testing.T) {
	c := newTestClassifier(t)
	res := c.Classify(corpus.Snapshot{Facts: []corpus.Fact{
		{ID: "f1", Text: "Epic and Cerner interfaces"},
		{ID: "f2", Text: "Epic to Cerner migration"},
		{ID: "f3", Text: "HIPAA training completed"},
	}})
	if res.PrimaryCategory != "healthcare" {
		t.Fatalf("primary: got %s", res.PrimaryCategory)
	}
	if len(res.SecondaryCategories) != 0 {
		t.Fatalf("secondaries: got %v", res.SecondaryCategories)
	}
	want := math.Min(1.0, (0.85*1.3*2+0.9*1.0)/8.0)
	if math.Abs(res.Confidence-want) > 1e-6 {
		t.Fatalf("confidence: got %v, want %v", res.Confidence, want)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("warnings: %v", res.Warnings)
	}
	if res.SubCategory == nil || *res.SubCategory != "hospital" {
		t.Fatalf("sub-category: got %v", res.SubCategory)
	}
	if res.Method != MethodEvidence {
		t.Errorf("method: got %s", res.Method)
	}
	if len(res.TopEvidence) != 3 {
		t.Errorf("top evidence: got %d", len(res.TopEvidence))
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier(t)
	snap := corpus.Snapshot{
		Profile: declared("financial services", corpus.ProvenanceExtracted),
		Facts: []corpus.Fact{
			{ID: "b", Text: "NCUA exam; members and loans; Symitar core"},
			{ID: "a", Text: "claims and patients; HIPAA"},
			{ID: "c", Text: "members deposits loans portfolio"},
		},
		Inventory: corpus.Inventory{Items: []corpus.InventoryItem{{ID: "1", Name: "Symitar Episys"}}},
	}
	first := c.Classify(snap)
	for i := 0; i < 3; i++ {
		if got := c.Classify(snap); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, got, first)
		}
	}
	if !c.reg.IsCategory(first.PrimaryCategory) {
		t.Fatalf("primary %q not in taxonomy", first.PrimaryCategory)
	}
}

func TestTopEvidenceBounded(t *testing.T) {
	c := newTestClassifier(t)
	var sigs []signals.EvidenceSignal
	for i := 0; i < 15; i++ {
		sigs = append(sigs, sig("retail", "", signals.KindVendor, 0.6, float64(i%3)+1))
	}
	res := c.FromSignals(corpus.Snapshot{}, sigs)
	if len(res.TopEvidence) != 10 {
		t.Fatalf("top evidence: got %d", len(res.TopEvidence))
	}
	for i := 1; i < len(res.TopEvidence); i++ {
		if res.TopEvidence[i-1].Contribution() < res.TopEvidence[i].Contribution() {
			t.Fatalf("top evidence not ranked at %d", i)
		}
	}
}

// #endregion scenario-tests

// #region sub-category-tests

func TestSubCategoryLadder(t *testing.T) {
	base := sig("healthcare", "", signals.KindRegulatory, 0.9, 3.0)
	tests := []struct {
		name       string
		sigs       []signals.EvidenceSignal
		wantSub    string
		wantMethod SubCategoryMethod
	}{
		{
			name:       "single",
			sigs:       []signals.EvidenceSignal{sig("healthcare", "dental", signals.KindVerticalApplication, 0.85, 1.0)},
			wantSub:    "dental",
			wantMethod: SubSingleCandidate,
		},
		{
			name: "dominant",
			sigs: []signals.EvidenceSignal{
				sig("healthcare", "hospital", signals.KindRegulatory, 1.0, 2.0),
				sig("healthcare", "dental", signals.KindRegulatory, 1.0, 1.0),
			},
			wantSub:    "hospital",
			wantMethod: SubDominantScore,
		},
		{
			name: "signal-count",
			sigs: []signals.EvidenceSignal{
				sig("healthcare", "hospital", signals.KindRegulatory, 0.6, 1.0),
				sig("healthcare", "hospital", signals.KindVendor, 0.6, 1.0),
				sig("healthcare", "dental", signals.KindRegulatory, 1.0, 1.0),
			},
			wantSub:    "hospital",
			wantMethod: SubSignalCount,
		},
		{
			name: "average-confidence",
			sigs: []signals.EvidenceSignal{
				sig("healthcare", "hospital", signals.KindRegulatory, 0.9, 1.0),
				sig("healthcare", "dental", signals.KindVendor, 0.6, 1.5),
			},
			wantSub:    "hospital",
			wantMethod: SubAverageConfidence,
		},
		{
			name: "indeterminate",
			sigs: []signals.EvidenceSignal{
				sig("healthcare", "hospital", signals.KindRegulatory, 0.9, 1.0),
				sig("healthcare", "dental", signals.KindRegulatory, 0.9, 1.0),
			},
			wantMethod: SubIndeterminate,
		},
	}
	c := newTestClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.FromSignals(corpus.Snapshot{}, append([]signals.EvidenceSignal{base}, tt.sigs...))
			if res.PrimaryCategory != "healthcare" {
				t.Fatalf("primary: got %s", res.PrimaryCategory)
			}
			if res.SubCategoryMethod != tt.wantMethod {
				t.Fatalf("method: got %s, want %s", res.SubCategoryMethod, tt.wantMethod)
			}
			if tt.wantSub == "" {
				if res.SubCategory != nil {
					t.Fatalf("expected nil sub-category, got %s", *res.SubCategory)
				}
				if !hasWarning(res, "indeterminate") {
					t.Fatalf("expected indeterminate warning, got %v", res.Warnings)
				}
				if res.Label() != "Healthcare" {
					t.Errorf("label: got %s", res.Label())
				}
				return
			}
			if res.SubCategory == nil || *res.SubCategory != tt.wantSub {
				t.Fatalf("sub-category: got %v, want %s", res.SubCategory, tt.wantSub)
			}
		})
	}
}

func TestSubCategoryFromIndicators(t *testing.T) {
	c := newTestClassifier(t)
	snap := corpus.Snapshot{
		Facts: []corpus.Fact{{ID: "f1", Text: "Orthodontic and dental hygiene schedule"}},
		Inventory: corpus.Inventory{Items: []corpus.InventoryItem{
			{ID: "i1", Name: "Eaglesoft"},
		}},
	}
	res := c.FromSignals(snap, []signals.EvidenceSignal{sig("healthcare", "", signals.KindRegulatory, 0.9, 2.0)})
	if res.SubCategory == nil || *res.SubCategory != "dental" {
		t.Fatalf("sub-category: got %v", res.SubCategory)
	}
	if res.SubCategoryLabel != "Dental Practice" {
		t.Errorf("label: got %s", res.SubCategoryLabel)
	}
}

func TestDeclaredSubIndustryWins(t *testing.T) {
	c := newTestClassifier(t)
	profile := declared("healthcare", corpus.ProvenanceUserProvided)
	profile.Fields[corpus.FieldSubIndustry] = corpus.ProfileField{Value: "Dental", Provenance: corpus.ProvenanceUserProvided}
	res := c.Classify(corpus.Snapshot{
		Profile: profile,
		Facts:   []corpus.Fact{{ID: "f1", Text: "Cerner inpatient emergency department"}},
	})
	if res.SubCategory == nil || *res.SubCategory != "dental" || res.SubCategoryMethod != SubUserSpecified {
		t.Fatalf("got %v via %s", res.SubCategory, res.SubCategoryMethod)
	}
}

// #endregion sub-category-tests
