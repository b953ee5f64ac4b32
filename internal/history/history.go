// Package history persists a record of each pipeline run, plus its
// per-sample audit rows, to a local DuckDB database for later querying.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/broadinstitute/psp-dry/internal/psp"
)

// Store wraps a DuckDB connection holding the run-history schema.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the DuckDB database at path and
// ensures the run-history schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS run_id_seq;
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY DEFAULT nextval('run_id_seq'),
			input_path VARCHAR,
			assay VARCHAR,
			provenance_code VARCHAR,
			sample_frac_cutoff DOUBLE,
			probe_frac_cutoff DOUBLE,
			probe_sd_cutoff DOUBLE,
			ran_at VARCHAR
		);
		CREATE TABLE IF NOT EXISTS audit_rows (
			run_id INTEGER,
			plate_name VARCHAR,
			well_name VARCHAR,
			optimization_offset DOUBLE,
			survived_outlier BOOLEAN,
			survived_coverage BOOLEAN
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate history schema: %w", err)
	}
	return nil
}

// RunRecord summarizes one pipeline invocation, stored alongside its
// audit rows.
type RunRecord struct {
	InputPath         string
	Assay             psp.AssayType
	ProvenanceCode    string
	SampleFracCutoff  float64
	ProbeFracCutoff   float64
	ProbeSDCutoff     float64
	RanAt             string
}

// RecordRun inserts a run summary and its audit rows in one transaction.
func (s *Store) RecordRun(r RunRecord, audit []psp.AuditRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO runs (input_path, assay, provenance_code, sample_frac_cutoff, probe_frac_cutoff, probe_sd_cutoff, ran_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, r.InputPath, r.Assay.String(), r.ProvenanceCode, r.SampleFracCutoff, r.ProbeFracCutoff, r.ProbeSDCutoff, r.RanAt)

	var runID int64
	if err := row.Scan(&runID); err != nil {
		return 0, fmt.Errorf("insert run record: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO audit_rows (run_id, plate_name, well_name, optimization_offset, survived_outlier, survived_coverage)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range audit {
		offset := sql.NullFloat64{Valid: !psp.IsMissing(a.Offset), Float64: a.Offset}
		if _, err := stmt.Exec(runID, a.PlateName, a.WellName, offset, a.SurvivedOutlier, a.SurvivedCoverage); err != nil {
			return 0, fmt.Errorf("insert audit row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history transaction: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT input_path, assay, provenance_code, sample_frac_cutoff, probe_frac_cutoff, probe_sd_cutoff, ran_at
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var assay string
		if err := rows.Scan(&r.InputPath, &assay, &r.ProvenanceCode, &r.SampleFracCutoff, &r.ProbeFracCutoff, &r.ProbeSDCutoff, &r.RanAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if assay == psp.AssayP100.String() {
			r.Assay = psp.AssayP100
		} else if assay == psp.AssayGCP.String() {
			r.Assay = psp.AssayGCP
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
