// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store reads runs, genomes, and pairwise comparison results from a
// SQLite results database. Connections are opened read-only; the package
// never modifies the database it reports on.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/ani-report/internal/sqlitedriver"
	"github.com/pdiddy/ani-report/pkg/types"
)

// dateLayouts are the timestamp encodings found in results databases.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Store is a read-only handle on a results database.
type Store struct {
	db *sql.DB
}

// Open opens the database at path read-only. It fails if the file does not
// exist rather than creating an empty database.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db, err := sql.Open(sqlitedriver.DriverName, readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// readOnlyDSN returns a read-only SQLite URI for path. Characters with a
// meaning in URIs, such as '?' and '#', are percent-encoded.
func readOnlyDSN(path string) string {
	u := url.URL{Scheme: "file", Path: path, OmitHost: true, RawQuery: "mode=ro"}
	return u.String()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Runs lists every run ordered by run ID.
func (s *Store) Runs(ctx context.Context) ([]types.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, name, method, date, cmdline, status FROM runs ORDER BY run_id`)
	if err != nil {
		return nil, &types.QueryError{Op: "listing runs", Err: err}
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, &types.QueryError{Op: "listing runs", Err: err}
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Op: "listing runs", Err: err}
	}
	return runs, nil
}

// Run returns a single run. It returns a *types.NotFoundError when no run
// has the given ID.
func (s *Store) Run(ctx context.Context, runID int64) (types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, name, method, date, cmdline, status FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Run{}, &types.NotFoundError{Kind: "run", ID: runID}
		}
		return types.Run{}, &types.QueryError{Op: fmt.Sprintf("looking up run %d", runID), Err: err}
	}
	return r, nil
}

// Genomes lists every genome ordered by genome ID.
func (s *Store) Genomes(ctx context.Context) ([]types.Genome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT genome_id, description, path, genome_hash, length FROM genomes ORDER BY genome_id`)
	if err != nil {
		return nil, &types.QueryError{Op: "listing genomes", Err: err}
	}
	defer rows.Close()

	var genomes []types.Genome
	for rows.Next() {
		var (
			g                types.Genome
			desc, path, hash sql.NullString
			length           sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &desc, &path, &hash, &length); err != nil {
			return nil, &types.QueryError{Op: "listing genomes", Err: err}
		}
		g.Description = desc.String
		g.Path = path.String
		g.Hash = hash.String
		g.Length = length.Int64
		genomes = append(genomes, g)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Op: "listing genomes", Err: err}
	}
	return genomes, nil
}

const associationQuery = `SELECT r.run_id, r.name, r.method, r.date,
		g.genome_id, g.description, g.path, g.genome_hash,
		l.label, l.class_label
	FROM runs_genomes rg
	JOIN runs r ON r.run_id = rg.run_id
	JOIN genomes g ON g.genome_id = rg.genome_id
	LEFT JOIN labels l ON l.run_id = rg.run_id AND l.genome_id = rg.genome_id`

// RunGenomeAssociations lists the genomes used by each run, ordered by run
// then genome.
func (s *Store) RunGenomeAssociations(ctx context.Context) ([]types.Association, error) {
	return s.associations(ctx, "listing run genomes", associationQuery+` ORDER BY r.run_id, g.genome_id`)
}

// GenomeRunAssociations lists the runs each genome took part in, ordered by
// genome then run.
func (s *Store) GenomeRunAssociations(ctx context.Context) ([]types.Association, error) {
	return s.associations(ctx, "listing genome runs", associationQuery+` ORDER BY g.genome_id, r.run_id`)
}

func (s *Store) associations(ctx context.Context, op, query string) ([]types.Association, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &types.QueryError{Op: op, Err: err}
	}
	defer rows.Close()

	var out []types.Association
	for rows.Next() {
		var (
			a                                types.Association
			name, method, date               sql.NullString
			desc, path, hash, label, classLb sql.NullString
		)
		if err := rows.Scan(
			&a.Run.ID, &name, &method, &date,
			&a.Genome.ID, &desc, &path, &hash,
			&label, &classLb,
		); err != nil {
			return nil, &types.QueryError{Op: op, Err: err}
		}
		a.Run.Name = name.String
		a.Run.Method = method.String
		a.Run.Date = parseDate(date)
		a.Genome.Description = desc.String
		a.Genome.Path = path.String
		a.Genome.Hash = hash.String
		a.Label = label.String
		a.ClassLabel = classLb.String
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Op: op, Err: err}
	}
	return out, nil
}

// Comparisons returns the flat comparison rows for a run, ordered by
// comparison ID.
func (s *Store) Comparisons(ctx context.Context, runID int64) ([]types.Comparison, error) {
	op := fmt.Sprintf("listing comparisons for run %d", runID)
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.comparison_id, c.query_id, q.description, c.subject_id, sg.description,
			c.identity, c.cov_query, c.cov_subject, c.aln_length, c.sim_errs,
			c.program, c.version, c.fragsize, c.maxmatch
		FROM comparisons c
		JOIN runs_comparisons rc ON rc.comparison_id = c.comparison_id
		JOIN genomes q ON q.genome_id = c.query_id
		JOIN genomes sg ON sg.genome_id = c.subject_id
		WHERE rc.run_id = ?
		ORDER BY c.comparison_id`, runID)
	if err != nil {
		return nil, &types.QueryError{Op: op, Err: err}
	}
	defer rows.Close()

	var out []types.Comparison
	for rows.Next() {
		var (
			c                            types.Comparison
			qDesc, sDesc, prog, ver      sql.NullString
			identity, covQ, covS         sql.NullFloat64
			alnLength, simErrs, fragsize sql.NullInt64
			maxmatch                     sql.NullBool
		)
		if err := rows.Scan(
			&c.ID, &c.QueryID, &qDesc, &c.SubjectID, &sDesc,
			&identity, &covQ, &covS, &alnLength, &simErrs,
			&prog, &ver, &fragsize, &maxmatch,
		); err != nil {
			return nil, &types.QueryError{Op: op, Err: err}
		}
		c.QueryDescription = qDesc.String
		c.SubjectDescription = sDesc.String
		c.Identity = nullFloat(identity)
		c.QueryCoverage = nullFloat(covQ)
		c.SubjectCoverage = nullFloat(covS)
		c.AlnLength = nullInt(alnLength)
		c.SimErrors = nullInt(simErrs)
		c.Program = prog.String
		c.Version = ver.String
		c.FragSize = nullInt(fragsize)
		if maxmatch.Valid {
			c.MaxMatch = &maxmatch.Bool
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Op: op, Err: err}
	}
	return out, nil
}

// ComparisonRecords returns the directed comparison records for a run,
// ordered by query then subject genome. An empty slice means the run has no
// results; the caller decides whether that is an error.
func (s *Store) ComparisonRecords(ctx context.Context, runID int64) ([]types.ComparisonRecord, error) {
	op := fmt.Sprintf("loading comparison records for run %d", runID)
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.query_id, c.subject_id, c.identity, c.cov_query, c.aln_length, c.sim_errs
		FROM comparisons c
		JOIN runs_comparisons rc ON rc.comparison_id = c.comparison_id
		WHERE rc.run_id = ?
		ORDER BY c.query_id, c.subject_id`, runID)
	if err != nil {
		return nil, &types.QueryError{Op: op, Err: err}
	}
	defer rows.Close()

	var out []types.ComparisonRecord
	for rows.Next() {
		rec := types.ComparisonRecord{RunID: runID}
		var (
			identity, coverage sql.NullFloat64
			alnLength, simErrs sql.NullInt64
		)
		if err := rows.Scan(&rec.QueryID, &rec.SubjectID, &identity, &coverage, &alnLength, &simErrs); err != nil {
			return nil, &types.QueryError{Op: op, Err: err}
		}
		rec.Identity = nullFloat(identity)
		rec.Coverage = nullFloat(coverage)
		rec.AlnLength = nullInt(alnLength)
		rec.SimErrors = nullInt(simErrs)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.QueryError{Op: op, Err: err}
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (types.Run, error) {
	var (
		r                                  types.Run
		name, method, date, cmdline, state sql.NullString
	)
	if err := row.Scan(&r.ID, &name, &method, &date, &cmdline, &state); err != nil {
		return types.Run{}, err
	}
	r.Name = name.String
	r.Method = method.String
	r.Date = parseDate(date)
	r.Cmdline = cmdline.String
	r.Status = state.String
	return r, nil
}

// parseDate decodes a stored timestamp. Unparseable or NULL values yield the
// zero time.
func parseDate(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	s := strings.TrimSpace(v.String)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// nullFloat maps NULL metrics to NaN so they stay distinguishable from zero.
func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// nullInt maps NULL counts to nil.
func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
