// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Run is one execution of a genome-comparison method.
type Run struct {
	// ID is the stable run identifier assigned by the results database.
	ID int64 `json:"run_id" yaml:"run_id"`

	// Name is the user-supplied run name.
	Name string `json:"name" yaml:"name"`

	// Method names the comparison method (e.g. "ANIm", "ANIb").
	Method string `json:"method" yaml:"method"`

	// Date is when the run was started.
	Date time.Time `json:"date" yaml:"date"`

	// Cmdline is the command line that launched the run.
	Cmdline string `json:"cmdline" yaml:"cmdline"`

	// Status is the last recorded run status (e.g. "started", "complete").
	Status string `json:"status" yaml:"status"`
}

// Genome describes one input genome known to the results database.
type Genome struct {
	ID          int64  `json:"genome_id" yaml:"genome_id"`
	Description string `json:"description" yaml:"description"`
	Path        string `json:"path" yaml:"path"`
	Hash        string `json:"hash" yaml:"hash"`
	Length      int64  `json:"length" yaml:"length"`
}

// Association links a genome to a run it took part in, with the label and
// class label the genome carried in that run.
type Association struct {
	Run        Run    `json:"run" yaml:"run"`
	Genome     Genome `json:"genome" yaml:"genome"`
	Label      string `json:"label" yaml:"label"`
	ClassLabel string `json:"class_label" yaml:"class_label"`
}

// Comparison is one flat row of a run's comparison dump, with genome
// descriptions and tool settings alongside the metrics.
type Comparison struct {
	ID                 int64   `json:"comparison_id" yaml:"comparison_id"`
	QueryID            int64   `json:"query_id" yaml:"query_id"`
	QueryDescription   string  `json:"query_description" yaml:"query_description"`
	SubjectID          int64   `json:"subject_id" yaml:"subject_id"`
	SubjectDescription string  `json:"subject_description" yaml:"subject_description"`
	Identity           float64 `json:"identity" yaml:"identity"`
	QueryCoverage      float64 `json:"cov_query" yaml:"cov_query"`
	SubjectCoverage    float64 `json:"cov_subject" yaml:"cov_subject"`
	AlnLength          *int64  `json:"aln_length,omitempty" yaml:"aln_length,omitempty"`
	SimErrors          *int64  `json:"sim_errors,omitempty" yaml:"sim_errors,omitempty"`
	Program            string  `json:"program" yaml:"program"`
	Version            string  `json:"version" yaml:"version"`
	FragSize           *int64  `json:"fragsize,omitempty" yaml:"fragsize,omitempty"`
	MaxMatch           *bool   `json:"maxmatch,omitempty" yaml:"maxmatch,omitempty"`
}

// ComparisonRecord is one directed pairwise result within a run. Coverage is
// relative to the query genome, so the record for (a, b) says nothing about
// the coverage of b by a. Unrecorded metrics are NaN or nil.
type ComparisonRecord struct {
	RunID     int64
	QueryID   int64
	SubjectID int64
	Identity  float64
	Coverage  float64
	AlnLength *int64
	SimErrors *int64
}
