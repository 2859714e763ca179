// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ani-report/internal/export"
	"github.com/pdiddy/ani-report/internal/report"
	"github.com/pdiddy/ani-report/internal/store"
	"github.com/pdiddy/ani-report/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write reports from a results database",
	Long: `Report writes one or more reports from the results database into the
output directory. Select reports with the action flags; they run in the
order runs, genomes, runs-genomes, genomes-runs, run-results, run-matrices.

A failing report is logged and the remaining reports still run. The command
exits non-zero if any report failed.

Output formats are given as a comma-separated list (e.g. --formats
excel,html). Tab-separated text is always written.`,
	Example: `  ani-report report --dbpath .pyani/pyanidb --outdir out --runs --genomes
  ani-report report --run-matrices 1,2 --formats excel,html`,
	RunE: runReport,
}

func init() {
	addReportFlags(reportCmd)

	f := reportCmd.Flags()
	_ = viper.BindPFlag("dbpath", f.Lookup("dbpath"))
	_ = viper.BindPFlag("outdir", f.Lookup("outdir"))
	_ = viper.BindPFlag("formats", f.Lookup("formats"))

	rootCmd.AddCommand(reportCmd)
}

func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("dbpath", defaultDBPath, "path to the results database")
	f.StringP("outdir", "o", defaultOutDir, "directory for report files")
	f.String("formats", "", "comma-separated output formats in addition to tab (see 'ani-report formats')")

	f.Bool("runs", false, "report all runs")
	f.Bool("genomes", false, "report all genomes")
	f.Bool("runs-genomes", false, "report the genomes used in each run")
	f.Bool("genomes-runs", false, "report the runs each genome took part in")
	f.String("run-results", "", "comma-separated run IDs to write comparison results for")
	f.String("run-matrices", "", "comma-separated run IDs to write result matrices for")
}

// action is one selected report.
type action struct {
	name string
	run  func(ctx context.Context, r *report.Reporter) error
}

// selectActions returns the reports chosen by flags, in execution order.
func selectActions(cmd *cobra.Command) ([]action, error) {
	var actions []action
	for _, flag := range []struct {
		name string
		run  func(*report.Reporter, context.Context) error
	}{
		{"runs", (*report.Reporter).Runs},
		{"genomes", (*report.Reporter).Genomes},
		{"runs-genomes", (*report.Reporter).RunsGenomes},
		{"genomes-runs", (*report.Reporter).GenomesRuns},
	} {
		if on, _ := cmd.Flags().GetBool(flag.name); on {
			run := flag.run
			actions = append(actions, action{flag.name, func(ctx context.Context, r *report.Reporter) error {
				return run(r, ctx)
			}})
		}
	}

	for _, flag := range []struct {
		name string
		run  func(*report.Reporter, context.Context, []int64) error
	}{
		{"run-results", (*report.Reporter).RunResults},
		{"run-matrices", (*report.Reporter).RunMatrices},
	} {
		raw, _ := cmd.Flags().GetString(flag.name)
		if raw == "" {
			continue
		}
		ids, err := report.ParseRunIDs(raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flag.name, err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("--%s: no run IDs given", flag.name)
		}
		run := flag.run
		actions = append(actions, action{flag.name, func(ctx context.Context, r *report.Reporter) error {
			return run(r, ctx, ids)
		}})
	}

	if len(actions) == 0 {
		return nil, errors.New("no report selected; use one or more of --runs, --genomes, --runs-genomes, --genomes-runs, --run-results, --run-matrices")
	}
	return actions, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	actions, err := selectActions(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	return executeReport(cmd.Context(), cfg, actions, cmd.OutOrStdout())
}

// executeReport validates the configuration, opens the database, and runs
// each action in turn. Invalid formats and an unreadable database stop
// everything; a failing action does not stop the others.
func executeReport(ctx context.Context, cfg types.ReportConfig, actions []action, w io.Writer) error {
	exp := export.New(logger)
	targets, err := exp.Targets(cfg.OutDir, cfg.Formats)
	if err != nil {
		return err
	}
	formats := make([]string, len(targets))
	for i, t := range targets {
		formats[i] = t.Format
	}
	logger.Info("creating output", zap.Strings("formats", formats))

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", cfg.OutDir, err)
	}

	logger.Info("using database", zap.String("path", cfg.DBPath))
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	r := report.New(st, exp, report.Config{
		OutDir:  cfg.OutDir,
		Formats: cfg.Formats,
		Logger:  logger,
	})

	failed := 0
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.run(ctx, r); err != nil {
			failed++
			logger.Error("report failed", zap.String("report", a.name), zap.Error(err))
			fmt.Fprintf(w, "failed: %s: %v\n", a.name, err)
			continue
		}
		fmt.Fprintf(w, "wrote: %s\n", a.name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d report(s) failed", failed, len(actions))
	}
	return nil
}
