package replay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/pipeline"
)

// #region types

// Check is one named pass/fail comparison.
type Check struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
}

// Summary provides aggregate stats from a replay.
type Summary struct {
	Description   string `json:"description"`
	Runs          int    `json:"runs"`
	Checks        int    `json:"checks"`
	Passed        int    `json:"passed"`
	Failed        int    `json:"failed"`
	Deterministic bool   `json:"deterministic"`
}

// OK reports whether every check passed.
func (s Summary) OK() bool { return s.Failed == 0 }

// maxDiff bounds the diff text kept in a failed determinism check.
const maxDiff = 2000

// #endregion types

// #region replay

// Replay analyzes the fixture's snapshot runs times (at least once), checks
// that every run equals the first and that the snapshot was left untouched,
// then compares the first run with the fixture's expectations.
func Replay(p *pipeline.Pipeline, f Fixture, runs int) ([]Check, Summary) {
	if runs < 1 {
		runs = 1
	}
	before, _ := f.Snapshot.Hash()

	results := make([]pipeline.Result, runs)
	for i := range results {
		results[i] = p.Analyze(f.Snapshot)
	}

	var checks []Check
	det := Check{Name: "determinism", Pass: true}
	for i := 1; i < runs; i++ {
		if diff := cmp.Diff(results[0], results[i]); diff != "" {
			det.Pass = false
			det.Detail = fmt.Sprintf("run %d differs from run 1 (-first +later):\n%s", i+1, truncate(diff))
			break
		}
	}
	checks = append(checks, det)

	after, _ := f.Snapshot.Hash()
	checks = append(checks, Check{
		Name:   "snapshot_unchanged",
		Pass:   before == after,
		Detail: detailIf(before != after, "snapshot hash changed during analysis"),
	})

	checks = append(checks, expectations(f.Expected, results[0])...)

	s := Summary{Description: f.Description, Runs: runs, Checks: len(checks), Deterministic: det.Pass}
	for _, c := range checks {
		if c.Pass {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return checks, s
}

// #endregion replay

// #region expectations

func expectations(exp Expected, res pipeline.Result) []Check {
	cls := res.Classification
	checks := []Check{equal("primary_category", exp.PrimaryCategory, cls.PrimaryCategory)}

	if exp.SubCategory != nil {
		got := "<none>"
		if cls.SubCategory != nil {
			got = *cls.SubCategory
		}
		checks = append(checks, equal("sub_category", *exp.SubCategory, got))
	}
	if exp.SecondaryCategories != nil {
		diff := cmp.Diff(exp.SecondaryCategories, cls.SecondaryCategories, cmpopts.EquateEmpty())
		checks = append(checks, Check{Name: "secondary_categories", Pass: diff == "", Detail: detailIf(diff != "", diff)})
	}
	if exp.Method != "" {
		checks = append(checks, equal("method", exp.Method, string(cls.Method)))
	}

	want := append([]string(nil), exp.EligibleMetrics...)
	sort.Strings(want)
	got := eligibleMetrics(res)
	diff := cmp.Diff(want, got, cmpopts.EquateEmpty())
	checks = append(checks, Check{Name: "eligible_metrics", Pass: diff == "", Detail: detailIf(diff != "", diff)})

	status := make(map[string]string, len(res.Report.Systems))
	for _, s := range res.Report.Systems {
		status[s.Category] = string(s.Status)
	}
	categories := make([]string, 0, len(exp.SystemStatus))
	for c := range exp.SystemStatus {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		actual, ok := status[c]
		if !ok {
			actual = "<absent>"
		}
		checks = append(checks, equal("system_status:"+c, exp.SystemStatus[c], actual))
	}

	warnings := append(append([]string(nil), cls.Warnings...), res.Report.Warnings...)
	for _, w := range exp.WarningsContain {
		c := Check{Name: "warning:" + w}
		for _, have := range warnings {
			if strings.Contains(have, w) {
				c.Pass = true
				break
			}
		}
		if !c.Pass {
			c.Detail = fmt.Sprintf("no warning contains %q; got %q", w, warnings)
		}
		checks = append(checks, c)
	}
	return checks
}

func eligibleMetrics(res pipeline.Result) []string {
	var ids []string
	for _, m := range res.Report.Metrics {
		if m.Eligible {
			ids = append(ids, m.MetricID)
		}
	}
	sort.Strings(ids)
	return ids
}

func equal(name, want, got string) Check {
	c := Check{Name: name, Pass: want == got}
	if !c.Pass {
		c.Detail = fmt.Sprintf("expected %q, got %q", want, got)
	}
	return c
}

func detailIf(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}

func truncate(s string) string {
	if len(s) <= maxDiff {
		return s
	}
	return s[:maxDiff] + "\n..."
}

// #endregion expectations
