// Command benchmark classifies companies from discovery snapshots and compares
// them with industry benchmarks.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/config"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/logging"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/pipeline"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/store"
)

// #region main

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion main

// #region app

// app carries the flags and the collaborators built from them.
type app struct {
	configPath  string
	dbPath      string
	logLevel    string
	jsonLogs    bool
	metricsFile string

	cfg     config.Config
	logger  *zap.Logger
	metrics *prometheus.Registry
	pipe    *pipeline.Pipeline
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "benchmark",
		Short: "Industry classification and benchmark comparison",
		Long: `benchmark reads company snapshots (profile, facts, inventory, org data) as
JSON, infers the industry from the evidence they contain and compares the
company's IT metrics, systems and staffing with industry reference ranges.

Every result is a pure function of the snapshot and the reference tables.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	pf.StringVar(&a.dbPath, "db", "", "SQLite run store path (default $"+config.EnvDB+")")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&a.jsonLogs, "json-logs", false, "write logs as JSON")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus text-format metrics here on exit")

	root.AddCommand(
		newClassifyCmd(a),
		newReportCmd(a),
		newReplayCmd(a),
		newInspectCmd(a),
		newFixtureExportCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, a.jsonLogs || cfg.LogJSON)
	if err != nil {
		return err
	}
	a.logger = logger

	reg, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("load reference tables: %w", err)
	}
	a.metrics = prometheus.NewRegistry()
	opts := cfg.PipelineOptions()
	opts.Logger = logger
	opts.Metrics = pipeline.NewMetrics(a.metrics)
	a.pipe = pipeline.New(reg, opts)

	logger.Debug("configured",
		zap.String("reference_version", reg.Version()),
		zap.String("db", cfg.DBPath),
		zap.Int("concurrency", cfg.Concurrency),
	)
	return nil
}

func (a *app) teardown() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.metricsFile != "" && a.metrics != nil {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.metrics); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// openStore opens the configured run store.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.DBPath == "" {
		return nil, fmt.Errorf("no run store configured; pass --db or set %s", config.EnvDB)
	}
	s, err := store.NewStore(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	return s, nil
}

// #endregion app
