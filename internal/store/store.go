// Package store persists window results and regions in DuckDB so runs
// are queryable after the fact and exportable without recomputation.
// Tables are append-only and keyed by a caller-chosen run id.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding analysis results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		created TIMESTAMP,
		treatment VARCHAR,
		control VARCHAR,
		alpha DOUBLE,
		min_lfc DOUBLE
	)`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS window_results (
		run_id VARCHAR,
		chrom VARCHAR,
		window_id VARCHAR,
		win_start BIGINT,
		win_end BIGINT,
		strand VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		gene_type VARCHAR,
		gene_region VARCHAR,
		base_mean DOUBLE,
		log2fc DOUBLE,
		stat DOUBLE,
		pvalue DOUBLE,
		pvalue_onesided DOUBLE,
		overlap_count INTEGER,
		pvalue_corrected DOUBLE,
		padj DOUBLE,
		significant BOOLEAN,
		PRIMARY KEY (run_id, window_id)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS regions (
		run_id VARCHAR,
		chrom VARCHAR,
		win_start BIGINT,
		win_end BIGINT,
		strand VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		gene_type VARCHAR,
		n_windows INTEGER,
		padj_min DOUBLE,
		padj_max DOUBLE,
		padj_mean DOUBLE,
		log2fc_min DOUBLE,
		log2fc_max DOUBLE
	)`)
	return err
}

// BeginRun records run metadata. Reusing a run id is an error; runs
// are append-only.
func (s *Store) BeginRun(runID, treatment, control string, alpha, minLFC float64) error {
	_, err := s.db.Exec(`INSERT INTO runs (run_id, created, treatment, control, alpha, min_lfc)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), treatment, control, alpha, minLFC)
	if err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	return nil
}

// ListRuns returns every stored run id, oldest first.
func (s *Store) ListRuns() ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id FROM runs ORDER BY created`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
