// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the results tables this package reads. The layout
// matches databases written by pyani, so reports can be produced directly
// from an existing analysis database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id INTEGER PRIMARY KEY,
		method TEXT,
		cmdline TEXT,
		date DATETIME,
		status TEXT,
		name TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS genomes (
		genome_id INTEGER PRIMARY KEY,
		genome_hash TEXT,
		path TEXT,
		length INTEGER,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS runs_genomes (
		run_id INTEGER REFERENCES runs(run_id),
		genome_id INTEGER REFERENCES genomes(genome_id),
		PRIMARY KEY (run_id, genome_id)
	)`,
	`CREATE TABLE IF NOT EXISTS labels (
		label_id INTEGER PRIMARY KEY,
		genome_id INTEGER REFERENCES genomes(genome_id),
		run_id INTEGER REFERENCES runs(run_id),
		label TEXT,
		class_label TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS comparisons (
		comparison_id INTEGER PRIMARY KEY,
		query_id INTEGER NOT NULL REFERENCES genomes(genome_id),
		subject_id INTEGER NOT NULL REFERENCES genomes(genome_id),
		aln_length INTEGER,
		sim_errs INTEGER,
		identity FLOAT,
		cov_query FLOAT,
		cov_subject FLOAT,
		program TEXT,
		version TEXT,
		fragsize INTEGER,
		maxmatch BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS runs_comparisons (
		run_id INTEGER REFERENCES runs(run_id),
		comparison_id INTEGER REFERENCES comparisons(comparison_id),
		PRIMARY KEY (run_id, comparison_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_comparisons_run ON runs_comparisons(run_id)`,
}

// InitSchema creates the results tables on a writable connection. The
// report path never calls it; it exists for fixture databases.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
