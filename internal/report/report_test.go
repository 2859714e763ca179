// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/ani-report/internal/export"
	"github.com/pdiddy/ani-report/pkg/types"
)

// --- fake source ---

type fakeSource struct {
	runs        []types.Run
	genomes     []types.Genome
	byRun       []types.Association
	byGenome    []types.Association
	comparisons map[int64][]types.Comparison
	records     map[int64][]types.ComparisonRecord
	err         error
}

func (f *fakeSource) Runs(context.Context) ([]types.Run, error) {
	return f.runs, f.err
}

func (f *fakeSource) Run(_ context.Context, id int64) (types.Run, error) {
	if f.err != nil {
		return types.Run{}, f.err
	}
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return types.Run{}, &types.NotFoundError{Kind: "run", ID: id}
}

func (f *fakeSource) Genomes(context.Context) ([]types.Genome, error) {
	return f.genomes, f.err
}

func (f *fakeSource) RunGenomeAssociations(context.Context) ([]types.Association, error) {
	return f.byRun, f.err
}

func (f *fakeSource) GenomeRunAssociations(context.Context) ([]types.Association, error) {
	return f.byGenome, f.err
}

func (f *fakeSource) Comparisons(_ context.Context, id int64) ([]types.Comparison, error) {
	return f.comparisons[id], f.err
}

func (f *fakeSource) ComparisonRecords(_ context.Context, id int64) ([]types.ComparisonRecord, error) {
	return f.records[id], f.err
}

func newSource() *fakeSource {
	date := time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)
	run1 := types.Run{ID: 1, Name: "first", Method: "ANIm", Date: date, Cmdline: "pyani anim a b"}
	run2 := types.Run{ID: 2, Name: "second", Method: "ANIb", Date: date, Cmdline: "pyani anib a b"}
	g10 := types.Genome{ID: 10, Description: "E. coli", Path: "g/10.fna", Hash: "abc", Length: 5000}
	g11 := types.Genome{ID: 11, Description: "S. enterica", Path: "g/11.fna", Hash: "def", Length: 4800}
	frag, aln, simErrs := int64(1020), int64(500), int64(3)

	return &fakeSource{
		runs:    []types.Run{run1, run2},
		genomes: []types.Genome{g10, g11},
		byRun: []types.Association{
			{Run: run1, Genome: g10, Label: "Ec", ClassLabel: "Escherichia"},
			{Run: run1, Genome: g11, Label: "Se", ClassLabel: "Salmonella"},
		},
		byGenome: []types.Association{
			{Run: run1, Genome: g10, Label: "Ec", ClassLabel: "Escherichia"},
			{Run: run2, Genome: g10},
		},
		comparisons: map[int64][]types.Comparison{
			1: {{
				ID: 5, QueryID: 10, QueryDescription: "E. coli", SubjectID: 11, SubjectDescription: "S. enterica",
				Identity: 0.97, QueryCoverage: 0.88, SubjectCoverage: 0.9, AlnLength: &aln, SimErrors: &simErrs,
				Program: "nucmer", Version: "4.0", FragSize: &frag,
			}, {
				ID: 6, QueryID: 11, QueryDescription: "S. enterica", SubjectID: 10, SubjectDescription: "E. coli",
				Identity: 0.96, QueryCoverage: math.NaN(), SubjectCoverage: 0.85,
				Program: "nucmer", Version: "4.0",
			}},
		},
		records: map[int64][]types.ComparisonRecord{
			1: {{RunID: 1, QueryID: 10, SubjectID: 11, Identity: 0.97, Coverage: 0.88, AlnLength: &aln, SimErrors: &simErrs}},
		},
	}
}

func newReporter(t *testing.T, src Source, formats ...string) (*Reporter, string) {
	t.Helper()
	dir := t.TempDir()
	return New(src, export.New(nil), Config{OutDir: dir, Formats: formats}), dir
}

func readTab(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = '\t'
	recs, err := r.ReadAll()
	require.NoError(t, err)
	return recs
}

// --- flat tables ---

func TestRuns(t *testing.T) {
	r, dir := newReporter(t, newSource())
	require.NoError(t, r.Runs(context.Background()))

	recs := readTab(t, filepath.Join(dir, "runs.tab"))
	require.Len(t, recs, 3)
	assert.Equal(t, runColumns, recs[0])
	assert.Equal(t, []string{"1", "first", "ANIm", "2024-03-01T10:15:00Z", "pyani anim a b"}, recs[1])
}

func TestGenomes(t *testing.T) {
	r, dir := newReporter(t, newSource(), "excel")
	require.NoError(t, r.Genomes(context.Background()))

	recs := readTab(t, filepath.Join(dir, "genomes.tab"))
	assert.Equal(t, genomeColumns, recs[0])
	assert.Equal(t, []string{"11", "S. enterica", "g/11.fna", "def", "4800"}, recs[2])
	assert.FileExists(t, filepath.Join(dir, "genomes.xlsx"))
}

func TestAssociations(t *testing.T) {
	r, dir := newReporter(t, newSource())
	ctx := context.Background()
	require.NoError(t, r.RunsGenomes(ctx))
	require.NoError(t, r.GenomesRuns(ctx))

	byRun := readTab(t, filepath.Join(dir, "runs_genomes.tab"))
	assert.Equal(t, runGenomeColumns, byRun[0])
	assert.Equal(t, []string{"1", "first", "ANIm", "2024-03-01T10:15:00Z", "10", "E. coli", "g/10.fna", "abc", "Ec", "Escherichia"}, byRun[1])

	byGenome := readTab(t, filepath.Join(dir, "genomes_runs.tab"))
	assert.Equal(t, genomeRunColumns, byGenome[0])
	assert.Equal(t, []string{"10", "E. coli", "g/10.fna", "abc", "", "", "2", "second", "ANIb", "2024-03-01T10:15:00Z"}, byGenome[2])
}

func TestSourceErrorPropagates(t *testing.T) {
	cause := &types.QueryError{Op: "listing runs", Err: errors.New("database is locked")}
	r, dir := newReporter(t, &fakeSource{err: cause})

	err := r.Runs(context.Background())
	var qe *types.QueryError
	require.True(t, errors.As(err, &qe))
	assert.NoFileExists(t, filepath.Join(dir, "runs.tab"))
}

// --- per-run actions ---

func TestRunResults(t *testing.T) {
	r, dir := newReporter(t, newSource())

	err := r.RunResults(context.Background(), []int64{1, 9})
	var nf *types.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, int64(9), nf.ID)
	assert.Contains(t, err.Error(), "run 9")

	recs := readTab(t, filepath.Join(dir, "results_1.tab"))
	require.Len(t, recs, 3)
	assert.Equal(t, comparisonColumns, recs[0])
	assert.Equal(t, []string{"5", "10", "E. coli", "11", "S. enterica", "0.97", "0.88", "0.9", "500", "3", "nucmer", "4.0", "1020", ""}, recs[1])
	assert.Equal(t, []string{"6", "11", "S. enterica", "10", "E. coli", "0.96", "NaN", "0.85", "", "", "nucmer", "4.0", "", ""}, recs[2],
		"unrecorded counts are empty cells")
	assert.NoFileExists(t, filepath.Join(dir, "results_9.tab"))
}

func TestRunMatrices(t *testing.T) {
	r, dir := newReporter(t, newSource(), "html")
	require.NoError(t, r.RunMatrices(context.Background(), []int64{1}))

	for _, metric := range []string{"identity", "coverage", "aln_lengths", "sim_errors", "hadamard"} {
		for _, ext := range []string{"tab", "html"} {
			assert.FileExists(t, filepath.Join(dir, "matrix_"+metric+"_1."+ext))
		}
	}

	assert.Equal(t, [][]string{
		{"", "10", "11"},
		{"10", "NaN", "0.97"},
		{"11", "0.97", "NaN"},
	}, readTab(t, filepath.Join(dir, "matrix_identity_1.tab")))

	assert.Equal(t, [][]string{
		{"", "10", "11"},
		{"10", "NaN", "0.88"},
		{"11", "NaN", "NaN"},
	}, readTab(t, filepath.Join(dir, "matrix_coverage_1.tab")))

	identity, err := os.ReadFile(filepath.Join(dir, "matrix_identity_1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(identity), `class="highlight"`)

	lengths, err := os.ReadFile(filepath.Join(dir, "matrix_aln_lengths_1.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(lengths), `class="highlight"`)
}

func TestRunMatricesIsolatesRuns(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dir := t.TempDir()
	r := New(newSource(), export.New(nil), Config{OutDir: dir, Logger: zap.New(core)})

	err := r.RunMatrices(context.Background(), []int64{2, 1})
	var nf *types.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, int64(2), nf.ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), "_2.tab"), e.Name())
	}
	assert.FileExists(t, filepath.Join(dir, "matrix_hadamard_1.tab"))

	failed := logs.FilterMessage("run matrices failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(2), failed[0].ContextMap()["run"])

	built := logs.FilterMessage("built result matrices").All()
	require.Len(t, built, 1)
	assert.Equal(t, int64(1), built[0].ContextMap()["run"])
	assert.Equal(t, int64(2), built[0].ContextMap()["genomes"])
}

// --- run IDs ---

func TestParseRunIDs(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{"1", []int64{1}, false},
		{"1, 2,3", []int64{1, 2, 3}, false},
		{" 3 ,,1,3 ", []int64{3, 1}, false},
		{"", nil, false},
		{"1,two", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRunIDs(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
