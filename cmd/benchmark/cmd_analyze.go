package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/classify"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/logging"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/pipeline"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/store"
)

// #region classify

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <snapshot.json>...",
		Short: "Infer the industry of each snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := loadSnapshots(args)
			if err != nil {
				return err
			}
			out := make([]classify.Result, 0, len(snaps))
			for _, s := range snaps {
				out = append(out, a.pipe.Classify(s))
			}
			if len(out) == 1 {
				return printJSON(cmd.OutOrStdout(), out[0])
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

// #endregion classify

// #region report

func newReportCmd(a *app) *cobra.Command {
	var (
		save   bool
		entity string
	)
	cmd := &cobra.Command{
		Use:   "report <snapshot.json>...",
		Short: "Classify each snapshot and build its benchmark report",
		Long: `Snapshots are analyzed concurrently (see concurrency in the config); output
keeps argument order. With --save the runs are stored in the run store, each
superseding the company's previous run. With --entity only inventory items
belonging to that entity are considered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := loadSnapshots(args)
			if err != nil {
				return err
			}
			snaps = scopeToEntity(snaps, entity)
			results, err := a.pipe.AnalyzeBatch(cmd.Context(), snaps, a.cfg.Concurrency)
			if err != nil {
				return err
			}

			if save {
				s, err := a.openStore()
				if err != nil {
					return err
				}
				defer s.Close()
				for i, res := range results {
					if err := a.persist(s, snaps[i], res); err != nil {
						return err
					}
				}
			}

			if len(results) == 1 {
				return printJSON(cmd.OutOrStdout(), results[0])
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the runs in the run store")
	cmd.Flags().StringVar(&entity, "entity", "", "only use inventory items of this entity")
	return cmd
}

func (a *app) persist(s *store.Store, snap corpus.Snapshot, res pipeline.Result) error {
	company := snap.Profile.CompanyName
	run, err := s.Save(store.Run{
		Company:        company,
		Snapshot:       snap,
		Classification: res.Classification,
		Report:         res.Report,
	})
	if err != nil {
		return fmt.Errorf("save run for %q: %w", company, err)
	}
	if err := logging.LogReport(s.DB(), run.RunID, res.Report); err != nil {
		return err
	}
	a.logger.Info("run saved", zap.String("run_id", run.RunID), zap.String("company", run.Company))
	return nil
}

// #endregion report
