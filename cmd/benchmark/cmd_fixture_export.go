package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/pipeline"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/replay"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/store"
)

// #region fixture-export

func newFixtureExportCmd(a *app) *cobra.Command {
	var (
		runID       string
		company     string
		outPath     string
		description string
	)
	cmd := &cobra.Command{
		Use:   "fixture-export",
		Short: "Turn a stored run into a replay fixture",
		Long: `Writes a fixture whose expectations are exactly what the stored run produced.
Select the run with --run, or with --company for that company's current run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (runID == "") == (company == "") {
				return fmt.Errorf("pass exactly one of --run or --company")
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var run store.Run
			if runID != "" {
				run, err = s.Get(runID)
			} else {
				run, err = s.Latest(company)
			}
			if err != nil {
				return err
			}

			if description == "" {
				description = fmt.Sprintf("%s run %s", run.Company, shortID(run.RunID))
			}
			f := replay.FromResult(description, run.Snapshot, pipeline.Result{
				Classification: run.Classification,
				Report:         run.Report,
			})
			if outPath == "" {
				return printJSON(cmd.OutOrStdout(), f)
			}
			if err := replay.WriteFixture(outPath, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote fixture %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run ID to export")
	cmd.Flags().StringVar(&company, "company", "", "export this company's current run")
	cmd.Flags().StringVar(&outPath, "out", "", "output fixture JSON path (default stdout)")
	cmd.Flags().StringVar(&description, "description", "", "fixture description")
	return cmd
}

// #endregion fixture-export
