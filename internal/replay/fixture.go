package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/pipeline"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one company
// snapshot and what its analysis is expected to produce.
type Fixture struct {
	Description string          `json:"description"`
	Snapshot    corpus.Snapshot `json:"snapshot"`
	Expected    Expected        `json:"expected"`
}

// Expected lists the outcomes a fixture pins down. Absent fields are not
// checked, except EligibleMetrics, which is always compared. An empty
// secondary_categories list expects none.
type Expected struct {
	PrimaryCategory     string            `json:"primary_category"`
	SubCategory         *string           `json:"sub_category,omitempty"`
	SecondaryCategories []string          `json:"secondary_categories"`
	Method              string            `json:"method,omitempty"`
	EligibleMetrics     []string          `json:"eligible_metrics"`
	SystemStatus        map[string]string `json:"system_status,omitempty"`
	WarningsContain     []string          `json:"warnings_contain,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// LoadDir loads every *.json fixture in dir, in file name order.
func LoadDir(dir string) ([]*Fixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob fixtures: %w", err)
	}
	sort.Strings(paths)
	fixtures := make([]*Fixture, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFixture(p)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// FromResult captures a past analysis as a fixture whose expectations are
// exactly what that analysis produced.
func FromResult(description string, snap corpus.Snapshot, res pipeline.Result) Fixture {
	exp := Expected{
		PrimaryCategory:     res.Classification.PrimaryCategory,
		SubCategory:         res.Classification.SubCategory,
		SecondaryCategories: res.Classification.SecondaryCategories,
		Method:              string(res.Classification.Method),
		EligibleMetrics:     eligibleMetrics(res),
		SystemStatus:        map[string]string{},
	}
	for _, s := range res.Report.Systems {
		exp.SystemStatus[s.Category] = string(s.Status)
	}
	exp.WarningsContain = append(exp.WarningsContain, res.Classification.Warnings...)
	exp.WarningsContain = append(exp.WarningsContain, res.Report.Warnings...)
	return Fixture{Description: description, Snapshot: snap, Expected: exp}
}

// #endregion fixture-loader
