package replay

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
)

// #region harness-tests

func findCheck(t *testing.T, checks []Check, name string) Check {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}

func TestReplay_ReportsMismatches(t *testing.T) {
	p := newTestPipeline(t)
	sub := "clinic"
	f := Fixture{
		Description: "wrong expectations",
		Snapshot: corpus.Snapshot{Facts: []corpus.Fact{
			{ID: "f1", Text: "Epic and Cerner interfaces"},
			{ID: "f2", Text: "Epic to Cerner migration"},
			{ID: "f3", Text: "HIPAA training completed"},
		}},
		Expected: Expected{
			PrimaryCategory: "legal",
			SubCategory:     &sub,
			Method:          "user_specified",
			EligibleMetrics: []string{"it_spend_pct_revenue"},
			SystemStatus:    map[string]string{"ehr": "found", "warp_drive": "found"},
			WarningsContain: []string{"no such warning"},
		},
	}

	checks, summary := Replay(p, f, 0)
	if summary.Runs != 1 {
		t.Errorf("runs below 1 should be raised to 1, got %d", summary.Runs)
	}
	if summary.OK() {
		t.Fatal("expected failures")
	}
	if !summary.Deterministic {
		t.Error("a single run is trivially deterministic")
	}

	for _, name := range []string{
		"primary_category", "sub_category", "method", "eligible_metrics",
		"system_status:ehr", "system_status:warp_drive", "warning:no such warning",
	} {
		if c := findCheck(t, checks, name); c.Pass || c.Detail == "" {
			t.Errorf("%s: expected failing check with detail, got %+v", name, c)
		}
	}
	if c := findCheck(t, checks, "system_status:warp_drive"); !strings.Contains(c.Detail, "<absent>") {
		t.Errorf("unexpected detail: %s", c.Detail)
	}
	if c := findCheck(t, checks, "snapshot_unchanged"); !c.Pass {
		t.Error("snapshot must not change")
	}
	if summary.Passed+summary.Failed != summary.Checks {
		t.Errorf("summary counts inconsistent: %+v", summary)
	}
}

func TestReplay_UncheckedFieldsAreSkipped(t *testing.T) {
	p := newTestPipeline(t)
	checks, summary := Replay(p, Fixture{Expected: Expected{PrimaryCategory: "general_business"}}, 2)
	if !summary.OK() {
		t.Fatalf("unexpected failures:\n%s", failures(checks))
	}
	// determinism, snapshot_unchanged, primary_category, eligible_metrics
	if len(checks) != 4 {
		t.Errorf("expected 4 checks, got %d: %+v", len(checks), checks)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxDiff+10)
	if got := truncate(long); len(got) != maxDiff+len("\n...") {
		t.Errorf("unexpected length %d", len(got))
	}
	if truncate("short") != "short" {
		t.Error("short strings must be kept")
	}
}

// #endregion harness-tests
