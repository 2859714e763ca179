// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ani-report/internal/sqlitedriver"
	"github.com/pdiddy/ani-report/pkg/types"
)

// --- test helpers ---

// fixtureDB writes a small results database and returns its path.
// Run 1 compares genomes 10 and 11 (one forward record); run 2 compares
// 10, 11 and 12 and carries a NULL coverage and NULL alignment counts.
func fixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")
	writeFixture(t, path)
	return path
}

func writeFixture(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open(sqlitedriver.DriverName, path)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, db))

	stmts := []string{
		`INSERT INTO runs (run_id, method, cmdline, date, status, name) VALUES
			(1, 'ANIm', 'pyani anim in out', '2024-03-01 10:15:00.000000', 'complete', 'first'),
			(2, 'ANIb', 'pyani anib in out', '2024-03-02T08:00:00Z', 'complete', 'second')`,
		`INSERT INTO genomes (genome_id, genome_hash, path, length, description) VALUES
			(10, 'aaa', 'g/10.fna', 5000, 'E. coli K-12'),
			(11, 'bbb', 'g/11.fna', 5100, 'E. coli O157'),
			(12, 'ccc', 'g/12.fna', 4900, 'S. enterica')`,
		`INSERT INTO runs_genomes (run_id, genome_id) VALUES
			(1, 10), (1, 11), (2, 10), (2, 11), (2, 12)`,
		`INSERT INTO labels (genome_id, run_id, label, class_label) VALUES
			(10, 1, 'K12', 'ecoli'), (11, 1, 'O157', 'ecoli')`,
		`INSERT INTO comparisons (comparison_id, query_id, subject_id, aln_length, sim_errs,
			identity, cov_query, cov_subject, program, version, fragsize, maxmatch) VALUES
			(1, 10, 11, 500, 3, 0.97, 0.88, 0.86, 'nucmer', '3.1', NULL, 0),
			(2, 10, 12, 400, 9, 0.81, NULL, 0.70, 'blastn', '2.9', 1020, NULL),
			(3, 11, 12, NULL, NULL, 0.82, 0.71, 0.69, 'blastn', '2.9', 1020, NULL)`,
		`INSERT INTO runs_comparisons (run_id, comparison_id) VALUES (1, 1), (2, 1), (2, 2), (2, 3)`,
	}
	for _, stmt := range stmts {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
}

func int64Ptr(v int64) *int64 { return &v }

func openFixture(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fixtureDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// --- open tests ---

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening database")
}

func TestReadOnlyDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/results.db", "file:/data/results.db?mode=ro"},
		{"results.db", "file:results.db?mode=ro"},
		{"/data/run?1#a.db", "file:/data/run%3F1%23a.db?mode=ro"},
		{"/data/my results.db", "file:/data/my%20results.db?mode=ro"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, readOnlyDSN(tt.path))
		})
	}
}

func TestOpenPathWithURIMetacharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "batch#2")
	require.NoError(t, os.Mkdir(dir, 0o755))
	plain := filepath.Join(dir, "results.db")
	writeFixture(t, plain)
	path := filepath.Join(dir, "run?1.db")
	require.NoError(t, os.Rename(plain, path))

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpenIsReadOnly(t *testing.T) {
	s := openFixture(t)
	_, err := s.db.Exec(`DELETE FROM runs`)
	assert.Error(t, err)
}

// --- query tests ---

func TestRuns(t *testing.T) {
	s := openFixture(t)

	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, int64(1), runs[0].ID)
	assert.Equal(t, "first", runs[0].Name)
	assert.Equal(t, "ANIm", runs[0].Method)
	assert.Equal(t, "pyani anim in out", runs[0].Cmdline)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), runs[0].Date.UTC())
	assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), runs[1].Date.UTC())
}

func TestRun(t *testing.T) {
	s := openFixture(t)

	run, err := s.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "second", run.Name)

	_, err = s.Run(context.Background(), 99)
	var nf *types.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, int64(99), nf.ID)
	assert.Equal(t, "run", nf.Kind)
}

func TestGenomes(t *testing.T) {
	s := openFixture(t)

	genomes, err := s.Genomes(context.Background())
	require.NoError(t, err)
	require.Len(t, genomes, 3)
	assert.Equal(t, types.Genome{
		ID: 10, Description: "E. coli K-12", Path: "g/10.fna", Hash: "aaa", Length: 5000,
	}, genomes[0])
}

func TestAssociationOrdering(t *testing.T) {
	s := openFixture(t)
	ctx := context.Background()

	byRun, err := s.RunGenomeAssociations(ctx)
	require.NoError(t, err)
	require.Len(t, byRun, 5)
	var got [][2]int64
	for _, a := range byRun {
		got = append(got, [2]int64{a.Run.ID, a.Genome.ID})
	}
	assert.Equal(t, [][2]int64{{1, 10}, {1, 11}, {2, 10}, {2, 11}, {2, 12}}, got)
	assert.Equal(t, "K12", byRun[0].Label)
	assert.Equal(t, "ecoli", byRun[0].ClassLabel)
	assert.Empty(t, byRun[2].Label, "run 2 has no labels")

	byGenome, err := s.GenomeRunAssociations(ctx)
	require.NoError(t, err)
	got = got[:0]
	for _, a := range byGenome {
		got = append(got, [2]int64{a.Genome.ID, a.Run.ID})
	}
	assert.Equal(t, [][2]int64{{10, 1}, {10, 2}, {11, 1}, {11, 2}, {12, 2}}, got)
}

func TestComparisons(t *testing.T) {
	s := openFixture(t)

	rows, err := s.Comparisons(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "E. coli K-12", first.QueryDescription)
	require.NotNil(t, first.AlnLength)
	assert.Equal(t, int64(500), *first.AlnLength)
	require.NotNil(t, first.SimErrors)
	assert.Equal(t, int64(3), *first.SimErrors)
	assert.Equal(t, "E. coli O157", first.SubjectDescription)
	assert.Nil(t, first.FragSize)
	require.NotNil(t, first.MaxMatch)
	assert.False(t, *first.MaxMatch)

	second := rows[1]
	assert.True(t, math.IsNaN(second.QueryCoverage), "NULL coverage must read as NaN")
	require.NotNil(t, second.FragSize)
	assert.Equal(t, int64(1020), *second.FragSize)
	assert.Nil(t, second.MaxMatch)

	third := rows[2]
	assert.Nil(t, third.AlnLength, "NULL alignment length must read as nil")
	assert.Nil(t, third.SimErrors, "NULL similarity errors must read as nil")
	assert.Equal(t, 0.82, third.Identity)
}

func TestComparisonRecords(t *testing.T) {
	s := openFixture(t)
	ctx := context.Background()

	recs, err := s.ComparisonRecords(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []types.ComparisonRecord{{
		RunID: 1, QueryID: 10, SubjectID: 11,
		Identity: 0.97, Coverage: 0.88, AlnLength: int64Ptr(500), SimErrors: int64Ptr(3),
	}}, recs)

	recs, err = s.ComparisonRecords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.True(t, math.IsNaN(recs[1].Coverage))
	assert.Equal(t, int64(11), recs[2].QueryID)
	assert.Nil(t, recs[2].AlnLength)
	assert.Nil(t, recs[2].SimErrors)

	recs, err = s.ComparisonRecords(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestQueryErrorWrapsCause(t *testing.T) {
	s := openFixture(t)
	require.NoError(t, s.Close())

	_, err := s.Runs(context.Background())
	var qe *types.QueryError
	require.True(t, errors.As(err, &qe), "got %v", err)
	assert.Equal(t, "listing runs", qe.Op)
	assert.NotNil(t, errors.Unwrap(err))
}
