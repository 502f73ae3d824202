package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/replay"
)

// #region replay

func newReplayCmd(a *app) *cobra.Command {
	var (
		dir     string
		runs    int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "replay [fixture.json]...",
		Short: "Replay fixtures and check determinism and expected outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var fixtures []*replay.Fixture
			if dir != "" {
				loaded, err := replay.LoadDir(dir)
				if err != nil {
					return err
				}
				fixtures = append(fixtures, loaded...)
			}
			for _, p := range args {
				f, err := replay.LoadFixture(p)
				if err != nil {
					return err
				}
				fixtures = append(fixtures, f)
			}
			if len(fixtures) == 0 {
				return fmt.Errorf("no fixtures: pass fixture files or --dir")
			}

			type outcome struct {
				Summary replay.Summary `json:"summary"`
				Checks  []replay.Check `json:"checks"`
			}
			var outcomes []outcome
			failed := 0
			for _, f := range fixtures {
				checks, summary := replay.Replay(a.pipe, *f, runs)
				outcomes = append(outcomes, outcome{Summary: summary, Checks: checks})
				if !summary.OK() {
					failed++
				}
			}

			if jsonOut {
				if err := printJSON(cmd.OutOrStdout(), outcomes); err != nil {
					return err
				}
			} else {
				for _, o := range outcomes {
					printChecks(cmd.OutOrStdout(), o.Summary, o.Checks)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d fixtures failed", failed, len(fixtures))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "replay every *.json fixture in this directory")
	cmd.Flags().IntVar(&runs, "runs", 3, "analyses per fixture for the determinism check")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

func printChecks(w io.Writer, s replay.Summary, checks []replay.Check) {
	status := "PASS"
	if !s.OK() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s  %s  (%d/%d checks, %d runs)\n", status, s.Description, s.Passed, s.Checks, s.Runs)
	for _, c := range checks {
		mark := "ok"
		if !c.Pass {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  %-4s  %s\n", mark, c.Name)
		if !c.Pass && c.Detail != "" {
			fmt.Fprintf(w, "        %s\n", c.Detail)
		}
	}
}

// #endregion replay
