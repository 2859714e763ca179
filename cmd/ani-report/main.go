// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ani-report CLI, which exports
// runs, genomes, comparison results, and all-pairs result matrices from a
// pyani results database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ani-report/internal/logging"
	"github.com/pdiddy/ani-report/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from configuration before any command runs.
var logger = zap.NewNop()

// Configuration defaults.
const (
	defaultDBPath    = ".pyani/pyanidb"
	defaultOutDir    = "."
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// rootCmd is the base command for the ani-report CLI.
var rootCmd = &cobra.Command{
	Use:   "ani-report",
	Short: "Report on average nucleotide identity results",
	Long: `ani-report reads a pyani results database and writes reports on its
contents: the runs and genomes it holds, which genomes took part in which
runs, the comparison results of a run, and square all-pairs matrices of
identity, coverage, alignment length, similarity errors, and their
Hadamard product.

Every report is written as tab-separated text, and optionally as Excel,
HTML, YAML, or Parquet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lc := logging.DefaultConfig()
		lc.Format = viper.GetString("log.format")
		lc.Level = viper.GetString("log.level")
		log, err := logging.NewLogger(lc)
		if err != nil {
			return err
		}
		logger = log
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ani-report.yaml or ~/.config/ani-report/ani-report.yaml)")
	rootCmd.PersistentFlags().String("log-level", defaultLogLevel, "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("log-format", defaultLogFormat, "log format: text or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	setDefaults(viper.GetViper())
}

// setDefaults registers every configuration key so environment variables
// reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dbpath", defaultDBPath)
	v.SetDefault("outdir", defaultOutDir)
	v.SetDefault("formats", []string{})
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configure(viper.GetViper(), cfgFile)

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && (cfgFile != "" || !errors.As(err, &notFound)) {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		os.Exit(1)
	}
}

// configure points v at the config file and environment.
func configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ani-report")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ani-report"))
		}
	}

	v.SetEnvPrefix("ANI_REPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// loadConfig resolves the report settings from v.
func loadConfig(v *viper.Viper) (types.ReportConfig, error) {
	var cfg types.ReportConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
