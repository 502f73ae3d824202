package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/benchmark"
)

// #region log-decision
// LogDecision writes one entry to the decision_log table.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	eligible := 0
	if entry.Eligible {
		eligible = 1
	}
	_, err := db.Exec(
		`INSERT INTO decision_log (run_id, metric_id, eligible, confidence, reason, inputs_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.MetricID,
		eligible,
		entry.Confidence,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.InputsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}
// #endregion log-decision

// #region log-report
// LogReport records the eligibility decision of every metric in rep.
func LogReport(db *sql.DB, runID string, rep benchmark.Report) error {
	now := time.Now().UTC()
	for _, m := range rep.Metrics {
		inputs, err := json.Marshal(DecisionInputs{
			Observed:          m.Observed,
			ExpectedLow:       m.ExpectedLow,
			ExpectedTypical:   m.ExpectedTypical,
			ExpectedHigh:      m.ExpectedHigh,
			BenchmarkCategory: m.BenchmarkCategory,
			VarianceCategory:  string(m.VarianceCategory),
			Provenance:        m.Provenance,
		})
		if err != nil {
			return fmt.Errorf("marshal inputs for %s: %w", m.MetricID, err)
		}
		err = LogDecision(db, DecisionEntry{
			RunID:      runID,
			MetricID:   m.MetricID,
			Eligible:   m.Eligible,
			Confidence: m.Confidence.String(),
			Reason:     m.IneligibilityReason,
			InputsJSON: string(inputs),
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
// #endregion log-report

// #region read-decisions
// Decisions returns the logged decisions of a run in insertion order.
func Decisions(db *sql.DB, runID string) ([]DecisionEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, metric_id, eligible, confidence, reason, inputs_json, created_at
		 FROM decision_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var eligible int
		var reason, inputs sql.NullString
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.MetricID, &eligible, &e.Confidence, &reason, &inputs, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.Eligible = eligible == 1
		e.Reason = reason.String
		e.InputsJSON = inputs.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion read-decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
