// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects the encoder: json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// ReportConfig holds settings for the report command.
type ReportConfig struct {
	// DBPath is the path to the SQLite results database.
	DBPath string `json:"dbpath" yaml:"dbpath" mapstructure:"dbpath"`

	// OutDir is the directory that receives report files.
	OutDir string `json:"outdir" yaml:"outdir" mapstructure:"outdir"`

	// Formats lists requested output formats. Plain tab-separated text is
	// always written in addition to these.
	Formats []string `json:"formats" yaml:"formats" mapstructure:"formats"`

	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`
}
