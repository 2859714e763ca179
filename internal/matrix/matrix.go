// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package matrix assembles square all-pairs result matrices from the sparse,
// directed comparison records of a run.
//
// Every matrix for a run shares one GenomeIndex, so cell (i, j) refers to
// the same genome pair in all of them. Unpopulated cells hold NaN, never
// zero. Identity, alignment length, and similarity errors are treated as
// symmetric: a record for (query, subject) also fills (subject, query).
// Coverage is relative to the query genome and is only written in the
// direction it was measured. The Hadamard matrix is the cellwise product of
// identity and coverage, so it is missing wherever coverage is.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/pdiddy/ani-report/pkg/types"
)

// Metric names, as used in output file names.
const (
	Identity   = "identity"
	Coverage   = "coverage"
	AlnLengths = "aln_lengths"
	SimErrors  = "sim_errors"
	Hadamard   = "hadamard"
)

// Metrics lists the metric names in their canonical output order.
var Metrics = []string{Identity, Coverage, AlnLengths, SimErrors, Hadamard}

// metric describes how one matrix is filled from a record.
type metric struct {
	name      string
	symmetric bool
	value     func(types.ComparisonRecord) float64
}

// recordMetrics are the metrics read directly from records. Hadamard is
// derived afterwards.
var recordMetrics = []metric{
	{Identity, true, func(r types.ComparisonRecord) float64 { return r.Identity }},
	{Coverage, false, func(r types.ComparisonRecord) float64 { return r.Coverage }},
	{AlnLengths, true, func(r types.ComparisonRecord) float64 { return count(r.AlnLength) }},
	{SimErrors, true, func(r types.ComparisonRecord) float64 { return count(r.SimErrors) }},
}

// count converts an optional count to a cell value; nil is missing.
func count(v *int64) float64 {
	if v == nil {
		return math.NaN()
	}
	return float64(*v)
}

// GenomeIndex is the ascending list of distinct genome IDs in a run. It
// fixes the row and column order of every matrix built for that run.
type GenomeIndex []int64

// NewGenomeIndex returns the sorted union of query and subject IDs.
func NewGenomeIndex(records []types.ComparisonRecord) GenomeIndex {
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		seen[r.QueryID] = struct{}{}
		seen[r.SubjectID] = struct{}{}
	}
	idx := make(GenomeIndex, 0, len(seen))
	for id := range seen {
		idx = append(idx, id)
	}
	slices.Sort(idx)
	return idx
}

// Position returns the row/column of genome id.
func (g GenomeIndex) Position(id int64) (int, bool) {
	return slices.BinarySearch(g, id)
}

// Labels returns the IDs formatted as strings.
func (g GenomeIndex) Labels() []string {
	out := make([]string, len(g))
	for i, id := range g {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

// Matrix is a square matrix of one metric, indexed by genome ID.
type Matrix struct {
	Metric string
	Index  GenomeIndex
	Values [][]float64
}

// newMatrix allocates an n x n matrix filled with NaN.
func newMatrix(name string, index GenomeIndex) *Matrix {
	n := len(index)
	values := make([][]float64, n)
	for i := range values {
		row := make([]float64, n)
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	return &Matrix{Metric: name, Index: index, Values: values}
}

// Len returns the matrix dimension.
func (m *Matrix) Len() int {
	return len(m.Index)
}

// Table renders the matrix with genome IDs as row labels and column headers.
func (m *Matrix) Table() *types.Table {
	labels := m.Index.Labels()
	t := &types.Table{
		Columns: labels,
		Index:   labels,
		Rows:    make([][]any, len(m.Values)),
	}
	for i, row := range m.Values {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		t.Rows[i] = cells
	}
	return t
}

// Matrices maps metric name to matrix for one run.
type Matrices map[string]*Matrix

// Index returns the genome index shared by the matrices.
func (ms Matrices) Index() GenomeIndex {
	for _, m := range ms {
		return m.Index
	}
	return nil
}

// RecordSource supplies the comparison records of a run.
type RecordSource interface {
	ComparisonRecords(ctx context.Context, runID int64) ([]types.ComparisonRecord, error)
}

// Builder builds matrices for runs read from a RecordSource.
type Builder struct {
	src RecordSource
}

// NewBuilder returns a Builder reading from src.
func NewBuilder(src RecordSource) *Builder {
	return &Builder{src: src}
}

// BuildMatrices loads the run's comparison records and assembles one matrix
// per metric. It fails with *types.NotFoundError when the run has no
// records, and with *types.QueryError when the source fails.
func (b *Builder) BuildMatrices(ctx context.Context, runID int64) (Matrices, error) {
	records, err := b.src.ComparisonRecords(ctx, runID)
	if err != nil {
		return nil, asQueryError(err, runID)
	}
	if len(records) == 0 {
		return nil, &types.NotFoundError{Kind: "run", ID: runID}
	}
	return Assemble(NewGenomeIndex(records), records)
}

// Assemble builds the metric matrices for records over index. It fails with
// *types.DataIntegrityError if a record names a genome absent from index.
//
// Each record first fills its forward cell. Mirrored cells of symmetric
// metrics are filled only where no record supplied the forward value, so
// when both directions were persisted each cell keeps its own measurement.
func Assemble(index GenomeIndex, records []types.ComparisonRecord) (Matrices, error) {
	type cell struct{ i, j int }
	cells := make([]cell, len(records))
	for k, r := range records {
		i, ok := index.Position(r.QueryID)
		if !ok {
			return nil, &types.DataIntegrityError{RunID: r.RunID, GenomeID: r.QueryID, Detail: "is a query genome but not in the genome index"}
		}
		j, ok := index.Position(r.SubjectID)
		if !ok {
			return nil, &types.DataIntegrityError{RunID: r.RunID, GenomeID: r.SubjectID, Detail: "is a subject genome but not in the genome index"}
		}
		cells[k] = cell{i, j}
	}

	ms := make(Matrices, len(Metrics))
	for _, mt := range recordMetrics {
		m := newMatrix(mt.name, index)
		if mt.symmetric {
			for k, r := range records {
				m.Values[cells[k].j][cells[k].i] = mt.value(r)
			}
		}
		for k, r := range records {
			m.Values[cells[k].i][cells[k].j] = mt.value(r)
		}
		ms[mt.name] = m
	}
	ms[Hadamard] = product(Hadamard, ms[Identity], ms[Coverage])
	return ms, nil
}

// product returns the elementwise product of a and b. A NaN operand yields
// NaN.
func product(name string, a, b *Matrix) *Matrix {
	out := newMatrix(name, a.Index)
	for i := range a.Values {
		for j := range a.Values[i] {
			x, y := a.Values[i][j], b.Values[i][j]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			out.Values[i][j] = x * y
		}
	}
	return out
}

func asQueryError(err error, runID int64) error {
	var qe *types.QueryError
	var nf *types.NotFoundError
	if errors.As(err, &qe) || errors.As(err, &nf) {
		return err
	}
	return &types.QueryError{Op: fmt.Sprintf("loading comparison records for run %d", runID), Err: err}
}
