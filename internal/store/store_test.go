package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/benchmark"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/classify"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(company, category string) Run {
	rev := 120_000_000.0
	obs := 4.5
	sub := "hospital"
	return Run{
		Snapshot: corpus.Snapshot{
			Profile: corpus.Profile{
				CompanyName: company,
				Fields: map[string]corpus.ProfileField{
					corpus.FieldAnnualRevenue: {Number: &rev, Confidence: corpus.ConfidenceHigh},
				},
			},
			Facts: []corpus.Fact{{ID: "f1", Text: "Epic EHR", Confidence: 0.9}},
		},
		Classification: classify.Result{
			PrimaryCategory: category,
			SubCategory:     &sub,
			Method:          classify.MethodEvidence,
			Confidence:      0.6,
		},
		Report: benchmark.Report{
			CompanyName:       company,
			Industry:          category,
			OverallConfidence: corpus.ConfidenceMedium,
			Metrics: []benchmark.MetricComparison{
				{MetricID: "it_spend_pct_revenue", Eligible: true, Observed: &obs, Confidence: corpus.ConfidenceMedium},
			},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := tempDB(t)

	saved, err := s.Save(sampleRun("Acme Clinic", "healthcare"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.RunID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if saved.Company != "Acme Clinic" {
		t.Errorf("expected company from report, got %q", saved.Company)
	}
	if len(saved.SnapshotHash) != 64 {
		t.Errorf("expected sha256 hash, got %q", saved.SnapshotHash)
	}

	got, err := s.Get(saved.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Classification.PrimaryCategory != "healthcare" {
		t.Errorf("expected healthcare, got %s", got.Classification.PrimaryCategory)
	}
	if got.Classification.SubCategory == nil || *got.Classification.SubCategory != "hospital" {
		t.Errorf("sub-category lost in round trip: %v", got.Classification.SubCategory)
	}
	if got.Report.OverallConfidence != corpus.ConfidenceMedium {
		t.Errorf("expected medium, got %s", got.Report.OverallConfidence)
	}
	if len(got.Report.Metrics) != 1 || got.Report.Metrics[0].Observed == nil || *got.Report.Metrics[0].Observed != 4.5 {
		t.Errorf("metric lost in round trip: %+v", got.Report.Metrics)
	}
	if got.SnapshotHash != saved.SnapshotHash {
		t.Errorf("hash mismatch")
	}
	if !got.Current() {
		t.Error("single run should be current")
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be parsed")
	}
}

func TestSaveSupersedesPreviousRun(t *testing.T) {
	s := tempDB(t)

	first, err := s.Save(sampleRun("Acme Clinic", "healthcare"))
	if err != nil {
		t.Fatalf("Save first: %v", err)
	}
	other, err := s.Save(sampleRun("Globex", "manufacturing"))
	if err != nil {
		t.Fatalf("Save other: %v", err)
	}
	second := sampleRun("Acme Clinic", "healthcare")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	second, err = s.Save(second)
	if err != nil {
		t.Fatalf("Save second: %v", err)
	}

	old, err := s.Get(first.RunID)
	if err != nil {
		t.Fatalf("Get first: %v", err)
	}
	if old.SupersededBy != second.RunID {
		t.Errorf("expected first run superseded by %s, got %q", second.RunID, old.SupersededBy)
	}
	if old.Classification.PrimaryCategory != "healthcare" {
		t.Error("superseded run content must not change")
	}

	latest, err := s.Latest("Acme Clinic")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.RunID != second.RunID {
		t.Errorf("expected latest %s, got %s", second.RunID, latest.RunID)
	}

	g, err := s.Get(other.RunID)
	if err != nil {
		t.Fatalf("Get other: %v", err)
	}
	if !g.Current() {
		t.Error("another company's run must not be superseded")
	}

	runs, err := s.List("Acme Clinic", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != second.RunID || runs[1].RunID != first.RunID {
		t.Fatalf("unexpected list order: %+v", runs)
	}

	all, err := s.List("", 10)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs, got %d", len(all))
	}
}

func TestRunNotFound(t *testing.T) {
	s := tempDB(t)

	if _, err := s.Get("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := s.Latest("nobody"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	runs, err := s.List("nobody", 5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	saved, err := s.Save(sampleRun("Initech", "general_business"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Latest("Initech"); err != nil {
		t.Fatalf("Latest: %v", err)
	}

	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM analysis_runs WHERE run_id = ?`, saved.RunID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}
