// Package pipeline runs classification and report assembly for one company
// or for a batch of independent companies.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/benchmark"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/classify"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/gate"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
)

// #region options

// Options configures a pipeline. Logger and Metrics may be nil.
type Options struct {
	Classify classify.Config
	Gate     gate.GateConfig
	Logger   *zap.Logger
	Metrics  *Metrics
}

// DefaultOptions returns the standard constants with logging disabled.
func DefaultOptions() Options {
	return Options{
		Classify: classify.DefaultConfig(),
		Gate:     gate.DefaultGateConfig(),
		Logger:   zap.NewNop(),
	}
}

// #endregion options

// #region pipeline

// Pipeline wires the classifier into the report engine. It holds no
// per-company state, so one pipeline serves concurrent analyses.
type Pipeline struct {
	classifier *classify.Classifier
	engine     *benchmark.Engine
	logger     *zap.Logger
	metrics    *Metrics
}

// Result is the output of one analysis.
type Result struct {
	Classification classify.Result  `json:"classification"`
	Report         benchmark.Report `json:"report"`
}

// New creates a pipeline over reg.
func New(reg *reference.Registry, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		classifier: classify.NewClassifier(reg, opts.Classify),
		engine:     benchmark.NewEngine(reg, gate.NewGate(opts.Gate)),
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Classify runs only the classification stage.
func (p *Pipeline) Classify(snap corpus.Snapshot) classify.Result {
	return p.classifier.Classify(snap)
}

// Analyze classifies snap and builds its benchmark report.
func (p *Pipeline) Analyze(snap corpus.Snapshot) Result {
	start := time.Now()
	cls := p.classifier.Classify(snap)
	rep := p.engine.Build(benchmark.Input{Snapshot: snap, Classification: cls})
	res := Result{Classification: cls, Report: rep}
	elapsed := time.Since(start)

	p.metrics.observe(res, elapsed.Seconds())
	p.logger.Info("analysis complete",
		zap.String("company", snap.Profile.CompanyName),
		zap.String("category", cls.PrimaryCategory),
		zap.String("method", string(cls.Method)),
		zap.Float64("confidence", cls.Confidence),
		zap.Int("eligible_metrics", rep.Summary.EligibleMetricCount),
		zap.Stringer("overall_confidence", rep.OverallConfidence),
		zap.Int("warnings", len(cls.Warnings)+len(rep.Warnings)),
		zap.Duration("elapsed", elapsed),
	)
	for _, w := range cls.Warnings {
		p.logger.Debug("classification warning", zap.String("company", snap.Profile.CompanyName), zap.String("warning", w))
	}
	return res
}

// #endregion pipeline

// #region batch

// AnalyzeBatch analyzes independent snapshots concurrently, at most limit at
// a time (limit <= 0 means one per snapshot). Results keep input order. The
// only error is ctx's, when it ends before every snapshot was started.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, snaps []corpus.Snapshot, limit int) ([]Result, error) {
	results := make([]Result, len(snaps))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, snap := range snaps {
		i, snap := i, snap
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Analyze(snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}
	p.logger.Info("batch complete", zap.Int("companies", len(snaps)), zap.Int("limit", limit))
	return results, nil
}

// #endregion batch
