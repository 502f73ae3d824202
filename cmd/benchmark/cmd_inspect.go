package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/logging"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/store"
)

// #region inspect

func newInspectCmd(a *app) *cobra.Command {
	var (
		company string
		last    int
		runID   string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored runs or show one run's report and decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if runID != "" {
				return runDetailMode(cmd.OutOrStdout(), s, runID, jsonOut)
			}
			return runListMode(cmd.OutOrStdout(), s, company, last, jsonOut)
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "only runs for this company")
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent runs")
	cmd.Flags().StringVar(&runID, "run", "", "show single run detail")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion inspect

// #region list-mode

type listRow struct {
	RunID      string `json:"run_id"`
	Company    string `json:"company"`
	Category   string `json:"primary_category"`
	Method     string `json:"method"`
	Confidence string `json:"overall_confidence"`
	Eligible   string `json:"eligible_metrics"`
	Current    bool   `json:"current"`
	CreatedAt  string `json:"created_at"`
}

func runListMode(w io.Writer, s *store.Store, company string, last int, jsonOut bool) error {
	runs, err := s.List(company, last)
	if err != nil {
		return err
	}
	rows := make([]listRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, listRow{
			RunID:      r.RunID,
			Company:    r.Company,
			Category:   r.Classification.PrimaryCategory,
			Method:     string(r.Classification.Method),
			Confidence: r.Report.OverallConfidence.String(),
			Eligible:   fmt.Sprintf("%d/%d", r.Report.Summary.EligibleMetricCount, r.Report.Summary.TotalMetricCount),
			Current:    r.Current(),
			CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	if jsonOut {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no runs found")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-24s  %-20s  %-20s  %-6s  %-8s  %-7s  %s\n",
		"Run", "Company", "Category", "Method", "Conf", "Eligible", "Current", "Age")
	for i, r := range rows {
		current := ""
		if r.Current {
			current = "yes"
		}
		fmt.Fprintf(w, "%-8s  %-24s  %-20s  %-20s  %-6s  %-8s  %-7s  %s\n",
			shortID(r.RunID), clip(r.Company, 24), r.Category, r.Method, r.Confidence, r.Eligible,
			current, humanize.Time(runs[i].CreatedAt))
	}
	return nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Run       store.Run               `json:"run"`
	Decisions []logging.DecisionEntry `json:"decisions"`
}

func runDetailMode(w io.Writer, s *store.Store, runID string, jsonOut bool) error {
	run, err := s.Get(runID)
	if err != nil {
		return err
	}
	decisions, err := logging.Decisions(s.DB(), run.RunID)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(w, detailOutput{Run: run, Decisions: decisions})
	}

	cls, rep := run.Classification, run.Report
	fmt.Fprintf(w, "Run:        %s\n", run.RunID)
	fmt.Fprintf(w, "Company:    %s\n", run.Company)
	fmt.Fprintf(w, "Created:    %s (%s)\n", run.CreatedAt.Format("2006-01-02T15:04:05Z"), humanize.Time(run.CreatedAt))
	if !run.Current() {
		fmt.Fprintf(w, "Superseded: by %s\n", run.SupersededBy)
	}
	fmt.Fprintf(w, "Industry:   %s (%s, confidence %.2f)\n", cls.Label(), cls.Method, cls.Confidence)
	fmt.Fprintf(w, "Size:       %s from %s\n", rep.Size.Tier, rep.Size.Basis)
	fmt.Fprintf(w, "Overall:    %s confidence\n", rep.OverallConfidence)

	fmt.Fprintf(w, "\nMetrics:\n")
	for _, m := range rep.Metrics {
		if m.Eligible {
			fmt.Fprintf(w, "  %-32s  %-28s  %-18s  %s\n", m.Label, m.ObservedFormatted, m.VarianceCategory, m.Confidence)
		} else {
			fmt.Fprintf(w, "  %-32s  n/a  %s\n", m.Label, m.IneligibilityReason)
		}
	}
	fmt.Fprintf(w, "\nSystems:\n")
	for _, sys := range rep.Systems {
		fmt.Fprintf(w, "  %-22s  %s\n", sys.Category, sys.Status)
	}
	fmt.Fprintf(w, "\nStaffing:\n")
	for _, st := range rep.Staffing {
		fmt.Fprintf(w, "  %-22s  %d observed, expected %s  %s\n", st.Category, st.ObservedCount, st.ExpectedRangeLabel, st.Variance)
	}

	warnings := append(append([]string(nil), cls.Warnings...), rep.Warnings...)
	if len(warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, wn := range warnings {
			fmt.Fprintf(w, "  - %s\n", wn)
		}
	}
	fmt.Fprintf(w, "\n%d logged decisions\n", len(decisions))
	return nil
}

// #endregion detail-mode
