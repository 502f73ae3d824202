package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id              TEXT PRIMARY KEY,
	company             TEXT NOT NULL,
	snapshot_hash       TEXT NOT NULL,
	snapshot_json       TEXT NOT NULL,
	classification_json TEXT NOT NULL,
	report_json         TEXT NOT NULL,
	primary_category    TEXT NOT NULL,
	overall_confidence  TEXT NOT NULL,
	superseded_by       TEXT,
	created_at          TEXT NOT NULL,
	FOREIGN KEY (superseded_by) REFERENCES analysis_runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_company ON analysis_runs(company, created_at);

CREATE TABLE IF NOT EXISTS decision_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	metric_id     TEXT NOT NULL,
	eligible      INTEGER NOT NULL,
	confidence    TEXT NOT NULL,
	reason        TEXT,
	inputs_json   TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id)
);
`
// #endregion schema

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store keeps analysis runs in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations. ":memory:" gives a
// private database held on a single connection.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region save
// Save stores a new run and marks the company's previous current run as
// superseded by it. RunID and CreatedAt are assigned when empty.
func (s *Store) Save(run Run) (Run, error) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Company == "" {
		run.Company = run.Report.CompanyName
	}
	if run.SnapshotHash == "" {
		h, err := run.Snapshot.Hash()
		if err != nil {
			return Run{}, err
		}
		run.SnapshotHash = h
	}
	run.SupersededBy = ""

	snapJSON, err := json.Marshal(run.Snapshot)
	if err != nil {
		return Run{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	clsJSON, err := json.Marshal(run.Classification)
	if err != nil {
		return Run{}, fmt.Errorf("marshal classification: %w", err)
	}
	repJSON, err := json.Marshal(run.Report)
	if err != nil {
		return Run{}, fmt.Errorf("marshal report: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var previous sql.NullString
	err = tx.QueryRow(
		`SELECT run_id FROM analysis_runs
		 WHERE company = ? AND superseded_by IS NULL
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, run.Company,
	).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("find current run: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO analysis_runs (run_id, company, snapshot_hash, snapshot_json, classification_json,
		 report_json, primary_category, overall_confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Company, run.SnapshotHash, string(snapJSON), string(clsJSON), string(repJSON),
		run.Classification.PrimaryCategory, run.Report.OverallConfidence.String(),
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	if previous.Valid {
		_, err = tx.Exec(
			`UPDATE analysis_runs SET superseded_by = ? WHERE run_id = ?`, run.RunID, previous.String,
		)
		if err != nil {
			return Run{}, fmt.Errorf("supersede %s: %w", previous.String, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}
// #endregion save

// #region get
const runColumns = `run_id, company, snapshot_hash, snapshot_json, classification_json, report_json, superseded_by, created_at`

// Get retrieves a run by ID.
func (s *Store) Get(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// Latest returns the company's current run.
func (s *Store) Latest(company string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT `+runColumns+` FROM analysis_runs
		 WHERE company = ? AND superseded_by IS NULL
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, company,
	)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("latest run for %q: %w", company, err)
	}
	return run, nil
}
// #endregion get

// #region list
// List returns the most recent runs, newest first. An empty company lists
// every company.
func (s *Store) List(company string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		rows *sql.Rows
		err  error
	)
	if company == "" {
		rows, err = s.db.Query(
			`SELECT `+runColumns+` FROM analysis_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(
			`SELECT `+runColumns+` FROM analysis_runs WHERE company = ?
			 ORDER BY created_at DESC, rowid DESC LIMIT ?`, company, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
// #endregion list

// #region scan
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var snapJSON, clsJSON, repJSON, createdStr string
	var superseded sql.NullString

	err := sc.Scan(&run.RunID, &run.Company, &run.SnapshotHash, &snapJSON, &clsJSON, &repJSON,
		&superseded, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, err
	}
	if superseded.Valid {
		run.SupersededBy = superseded.String
	}
	if err := json.Unmarshal([]byte(snapJSON), &run.Snapshot); err != nil {
		return Run{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(clsJSON), &run.Classification); err != nil {
		return Run{}, fmt.Errorf("unmarshal classification: %w", err)
	}
	if err := json.Unmarshal([]byte(repJSON), &run.Report); err != nil {
		return Run{}, fmt.Errorf("unmarshal report: %w", err)
	}
	run.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return run, nil
}
// #endregion scan
