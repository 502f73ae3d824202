// Package config loads engine settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/classify"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/gate"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/pipeline"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/reference"
)

// Environment variables read by Load.
const (
	EnvConfigPath   = "BENCHMARK_CONFIG"
	EnvDB           = "BENCHMARK_DB"
	EnvReferenceDir = "BENCHMARK_REFERENCE_DIR"
	EnvLogLevel     = "BENCHMARK_LOG_LEVEL"
	EnvConcurrency  = "BENCHMARK_CONCURRENCY"
)

var validate = validator.New()

// #region config

// Config is the full engine configuration.
type Config struct {
	DBPath                string         `yaml:"db_path"`
	ReferenceDir          string         `yaml:"reference_dir"` // empty uses the embedded tables
	LogLevel              string         `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogJSON               bool           `yaml:"log_json"`
	Concurrency           int            `yaml:"concurrency" validate:"gte=1,lte=256"`
	AssumeMatchingPeriods bool           `yaml:"assume_matching_periods"`
	Classification        Classification `yaml:"classification"`
}

// Classification overrides the aggregation constants.
type Classification struct {
	PracticalMaxScore  float64 `yaml:"practical_max_score" validate:"gt=0"`
	FallbackConfidence float64 `yaml:"fallback_confidence" validate:"gte=0,lte=1"`
	CloseScoreRatio    float64 `yaml:"close_score_ratio" validate:"gte=0,lte=1"`
	SecondaryRatio     float64 `yaml:"secondary_ratio" validate:"gte=0,lte=1"`
	MaxTopEvidence     int     `yaml:"max_top_evidence" validate:"gte=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	c := classify.DefaultConfig()
	return Config{
		DBPath:                "",
		LogLevel:              "info",
		Concurrency:           4,
		AssumeMatchingPeriods: gate.DefaultGateConfig().AssumeMatchingPeriods,
		Classification: Classification{
			PracticalMaxScore:  c.PracticalMaxScore,
			FallbackConfidence: c.FallbackConfidence,
			CloseScoreRatio:    c.CloseScoreRatio,
			SecondaryRatio:     c.SecondaryRatio,
			MaxTopEvidence:     c.MaxTopEvidence,
		},
	}
}

// #endregion config

// #region load

// Load reads path (or $BENCHMARK_CONFIG when path is empty) over the
// defaults, applies environment overrides and validates the result. A
// missing file is not an error when no path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	envOverride(&cfg.DBPath, EnvDB)
	envOverride(&cfg.ReferenceDir, EnvReferenceDir)
	envOverride(&cfg.LogLevel, EnvLogLevel)
	if err := envOverrideInt(&cfg.Concurrency, EnvConcurrency); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

// #endregion load

// #region wiring

// ClassifyConfig merges the overrides into the classifier constants.
func (c Config) ClassifyConfig() classify.Config {
	out := classify.DefaultConfig()
	out.PracticalMaxScore = c.Classification.PracticalMaxScore
	out.FallbackConfidence = c.Classification.FallbackConfidence
	out.CloseScoreRatio = c.Classification.CloseScoreRatio
	out.SecondaryRatio = c.Classification.SecondaryRatio
	out.MaxTopEvidence = c.Classification.MaxTopEvidence
	return out
}

// GateConfig returns the gate settings.
func (c Config) GateConfig() gate.GateConfig {
	out := gate.DefaultGateConfig()
	out.AssumeMatchingPeriods = c.AssumeMatchingPeriods
	return out
}

// PipelineOptions returns pipeline options without logger or metrics.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Classify = c.ClassifyConfig()
	opts.Gate = c.GateConfig()
	return opts
}

// Registry loads the reference tables from ReferenceDir, or the embedded
// tables when it is empty.
func (c Config) Registry() (*reference.Registry, error) {
	if c.ReferenceDir == "" {
		return reference.Default()
	}
	return reference.LoadDir(c.ReferenceDir)
}

// #endregion wiring
