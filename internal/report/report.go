// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns results-database contents into exported tables.
//
// Each action reads one kind of data from a Source and writes it through an
// export.Exporter under the output directory:
//
//	runs                          every run
//	genomes                       every genome
//	runs_genomes                  run/genome associations, by run
//	genomes_runs                  run/genome associations, by genome
//	results_<run>                 the comparison dump of one run
//	matrix_<metric>_<run>         one all-pairs matrix per metric
package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/ani-report/internal/export"
	"github.com/pdiddy/ani-report/internal/matrix"
	"github.com/pdiddy/ani-report/pkg/types"
)

// Output stems, relative to the output directory.
const (
	RunsStem        = "runs"
	GenomesStem     = "genomes"
	RunsGenomesStem = "runs_genomes"
	GenomesRunsStem = "genomes_runs"
	ResultsStem     = "results"
	MatrixStem      = "matrix"
)

// HighlightThreshold is the colour threshold for identity and coverage
// matrices.
const HighlightThreshold = 0.95

var (
	runColumns = []string{"run ID", "name", "method", "date run", "command-line"}

	genomeColumns = []string{"genome ID", "description", "path", "MD5 hash", "genome length"}

	runGenomeColumns = []string{
		"run ID", "run name", "method", "date run",
		"genome ID", "genome description", "genome path", "genome hash",
		"genome label", "genome class",
	}

	genomeRunColumns = []string{
		"genome ID", "genome description", "genome path", "genome hash",
		"genome label", "genome class",
		"run ID", "run name", "method", "date run",
	}

	comparisonColumns = []string{
		"Comparison ID", "Query ID", "Query description",
		"Subject ID", "Subject description",
		"% identity", "% query coverage", "% subject coverage",
		"alignment length", "similarity errors",
		"program", "version", "fragment size", "maxmatch",
	}
)

// matrixStyles gives the export options for each metric's matrix.
var matrixStyles = map[string]export.Options{
	matrix.Identity: {ShowIndex: true, ColourThreshold: export.Threshold(HighlightThreshold)},
	matrix.Coverage: {ShowIndex: true, ColourThreshold: export.Threshold(HighlightThreshold)},
}

// Source is the read side of the results database.
type Source interface {
	Runs(ctx context.Context) ([]types.Run, error)
	Run(ctx context.Context, runID int64) (types.Run, error)
	Genomes(ctx context.Context) ([]types.Genome, error)
	RunGenomeAssociations(ctx context.Context) ([]types.Association, error)
	GenomeRunAssociations(ctx context.Context) ([]types.Association, error)
	Comparisons(ctx context.Context, runID int64) ([]types.Comparison, error)
	matrix.RecordSource
}

// Reporter runs report actions against one Source.
type Reporter struct {
	src     Source
	builder *matrix.Builder
	exp     *export.Exporter
	outDir  string
	formats []string
	log     *zap.Logger
}

// Config configures a Reporter.
type Config struct {
	// OutDir receives every output file. It must already exist.
	OutDir string

	// Formats are the requested format tokens. The tab format is always
	// written in addition.
	Formats []string

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// New returns a Reporter reading from src and writing through exp.
func New(src Source, exp *export.Exporter, cfg Config) *Reporter {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{
		src:     src,
		builder: matrix.NewBuilder(src),
		exp:     exp,
		outDir:  cfg.OutDir,
		formats: cfg.Formats,
		log:     log,
	}
}

// Runs writes the table of all runs.
func (r *Reporter) Runs(ctx context.Context) error {
	stem := r.stem(RunsStem)
	r.log.Info("writing runs table", zap.String("stem", stem))

	runs, err := r.src.Runs(ctx)
	if err != nil {
		return err
	}
	t := types.NewTable(runColumns...)
	for _, run := range runs {
		if err := t.Append(run.ID, run.Name, run.Method, run.Date, run.Cmdline); err != nil {
			return err
		}
	}
	return r.exp.Export(t, stem, r.formats, export.Options{})
}

// Genomes writes the table of all genomes.
func (r *Reporter) Genomes(ctx context.Context) error {
	stem := r.stem(GenomesStem)
	r.log.Info("writing genomes table", zap.String("stem", stem))

	genomes, err := r.src.Genomes(ctx)
	if err != nil {
		return err
	}
	t := types.NewTable(genomeColumns...)
	for _, g := range genomes {
		if err := t.Append(g.ID, g.Description, g.Path, g.Hash, g.Length); err != nil {
			return err
		}
	}
	return r.exp.Export(t, stem, r.formats, export.Options{})
}

// RunsGenomes writes every run with the genomes it used, ordered by run
// then genome.
func (r *Reporter) RunsGenomes(ctx context.Context) error {
	stem := r.stem(RunsGenomesStem)
	r.log.Info("writing runs with associated genomes", zap.String("stem", stem))

	assocs, err := r.src.RunGenomeAssociations(ctx)
	if err != nil {
		return err
	}
	t := types.NewTable(runGenomeColumns...)
	for _, a := range assocs {
		if err := t.Append(
			a.Run.ID, a.Run.Name, a.Run.Method, a.Run.Date,
			a.Genome.ID, a.Genome.Description, a.Genome.Path, a.Genome.Hash,
			a.Label, a.ClassLabel,
		); err != nil {
			return err
		}
	}
	return r.exp.Export(t, stem, r.formats, export.Options{})
}

// GenomesRuns writes every genome with the runs it took part in, ordered by
// genome then run.
func (r *Reporter) GenomesRuns(ctx context.Context) error {
	stem := r.stem(GenomesRunsStem)
	r.log.Info("writing genomes with associated runs", zap.String("stem", stem))

	assocs, err := r.src.GenomeRunAssociations(ctx)
	if err != nil {
		return err
	}
	t := types.NewTable(genomeRunColumns...)
	for _, a := range assocs {
		if err := t.Append(
			a.Genome.ID, a.Genome.Description, a.Genome.Path, a.Genome.Hash,
			a.Label, a.ClassLabel,
			a.Run.ID, a.Run.Name, a.Run.Method, a.Run.Date,
		); err != nil {
			return err
		}
	}
	return r.exp.Export(t, stem, r.formats, export.Options{})
}

// RunResults writes the comparison dump of each run. A failing run is
// logged and skipped; the errors of all failed runs are returned joined.
func (r *Reporter) RunResults(ctx context.Context, runIDs []int64) error {
	r.log.Info("writing results tables", zap.Int64s("runs", runIDs))

	var errs []error
	for _, id := range runIDs {
		if err := r.runResults(ctx, id); err != nil {
			r.log.Error("run results failed", zap.Int64("run", id), zap.Error(err))
			errs = append(errs, fmt.Errorf("run %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Reporter) runResults(ctx context.Context, runID int64) error {
	run, err := r.src.Run(ctx, runID)
	if err != nil {
		return err
	}
	r.log.Info("collecting run results", zap.Int64("run", run.ID), zap.String("name", run.Name))

	comps, err := r.src.Comparisons(ctx, runID)
	if err != nil {
		return err
	}
	t := types.NewTable(comparisonColumns...)
	for _, c := range comps {
		if err := t.Append(
			c.ID, c.QueryID, c.QueryDescription, c.SubjectID, c.SubjectDescription,
			c.Identity, c.QueryCoverage, c.SubjectCoverage, optional(c.AlnLength), optional(c.SimErrors),
			c.Program, c.Version, optional(c.FragSize), optional(c.MaxMatch),
		); err != nil {
			return err
		}
	}
	return r.exp.Export(t, r.runStem(ResultsStem, runID), r.formats, export.Options{})
}

// RunMatrices writes one matrix per metric for each run. A run whose
// matrices cannot be built writes none of them; other runs continue.
func (r *Reporter) RunMatrices(ctx context.Context, runIDs []int64) error {
	r.log.Info("writing result matrices", zap.Int64s("runs", runIDs))

	var errs []error
	for _, id := range runIDs {
		if err := r.runMatrices(ctx, id); err != nil {
			r.log.Error("run matrices failed", zap.Int64("run", id), zap.Error(err))
			errs = append(errs, fmt.Errorf("run %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Reporter) runMatrices(ctx context.Context, runID int64) error {
	r.log.Info("extracting comparison results", zap.Int64("run", runID))

	ms, err := r.builder.BuildMatrices(ctx, runID)
	if err != nil {
		return err
	}
	r.log.Info("built result matrices", zap.Int64("run", runID), zap.Int("genomes", len(ms.Index())))

	var errs []error
	for _, name := range matrix.Metrics {
		opts, ok := matrixStyles[name]
		if !ok {
			opts = export.Options{ShowIndex: true}
		}
		stem := r.runStem(MatrixStem+"_"+name, runID)
		r.log.Debug("writing matrix", zap.String("metric", name), zap.String("stem", stem))
		if err := r.exp.Export(ms[name].Table(), stem, r.formats, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// optional dereferences v for a table cell; nil stays an empty cell.
func optional[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r *Reporter) stem(name string) string {
	return filepath.Join(r.outDir, name)
}

func (r *Reporter) runStem(prefix string, runID int64) string {
	return r.stem(prefix + "_" + strconv.FormatInt(runID, 10))
}

// ParseRunIDs parses a comma-separated list of run IDs. Blank entries are
// ignored and duplicates keep their first position.
func ParseRunIDs(s string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid run ID %q: %w", tok, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
