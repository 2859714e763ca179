// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes tabular results to files in one or more formats.
//
// Each format is a Format registered under a token ("tab", "excel", ...).
// Export writes one file per requested format, all sharing a path stem and
// differing by extension. Plain tab-separated text is always written.
// Formats are attempted independently: one failing format does not stop
// the others, and nothing already written is removed.
package export

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/ani-report/pkg/types"
)

// DefaultFormat is written for every export, requested or not.
const DefaultFormat = "tab"

// Options control how a table is rendered.
type Options struct {
	// ShowIndex writes the row labels as a leading column.
	ShowIndex bool

	// ColourThreshold, when set, highlights numeric cells at or above the
	// value in formats that support styling. Other formats ignore it.
	ColourThreshold *float64

	// Title is used by formats that carry a document title. Export fills it
	// from the file stem when empty.
	Title string
}

// Threshold returns a pointer to v, for use as Options.ColourThreshold.
func Threshold(v float64) *float64 {
	return &v
}

// WriteFunc renders t to w.
type WriteFunc func(w io.Writer, t *types.Table, opts Options) error

// Format is one output encoding.
type Format struct {
	// Name is the token callers request the format by.
	Name string

	// Ext is the file extension, without the dot.
	Ext string

	Write WriteFunc
}

// Target is one file to be written: a format and its full path.
type Target struct {
	Format string
	Path   string
}

// Exporter writes tables using its registered formats.
type Exporter struct {
	formats map[string]Format
	log     *zap.Logger
}

// New returns an Exporter with the built-in formats registered. A nil
// logger disables logging.
func New(log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{formats: make(map[string]Format), log: log}
	for _, f := range builtinFormats() {
		e.Register(f)
	}
	return e
}

func builtinFormats() []Format {
	return []Format{
		{Name: "tab", Ext: "tab", Write: writeTab},
		{Name: "excel", Ext: "xlsx", Write: writeExcel},
		{Name: "html", Ext: "html", Write: writeHTML},
		{Name: "yaml", Ext: "yaml", Write: writeYAML},
		{Name: "parquet", Ext: "parquet", Write: writeParquet},
	}
}

// Register adds or replaces a format.
func (e *Exporter) Register(f Format) {
	e.formats[f.Name] = f
}

// Formats returns the registered format tokens, sorted.
func (e *Exporter) Formats() []string {
	names := make([]string, 0, len(e.formats))
	for name := range e.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the format registered under name.
func (e *Exporter) Lookup(name string) (Format, bool) {
	f, ok := e.formats[name]
	return f, ok
}

// Targets resolves requested format tokens into output files under stem.
// Entries may themselves be comma-separated lists. The default format comes
// first, followed by the requested formats in order with duplicates removed.
// Any unknown token fails the whole call with *types.UnsupportedFormatError.
func (e *Exporter) Targets(stem string, formats []string) ([]Target, error) {
	names := []string{DefaultFormat}
	for _, entry := range formats {
		for _, tok := range strings.Split(entry, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" || slices.Contains(names, tok) {
				continue
			}
			names = append(names, tok)
		}
	}

	targets := make([]Target, 0, len(names))
	for _, name := range names {
		f, ok := e.formats[name]
		if !ok {
			return nil, &types.UnsupportedFormatError{Format: name}
		}
		targets = append(targets, Target{Format: name, Path: stem + "." + f.Ext})
	}
	return targets, nil
}

// Export writes t once per format to stem.<ext>. Unknown formats are
// rejected before any file is written. Write failures are collected per
// format as *types.WriteError and returned joined after every format has
// been attempted.
func (e *Exporter) Export(t *types.Table, stem string, formats []string, opts Options) error {
	targets, err := e.Targets(stem, formats)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = filepath.Base(stem)
	}

	var errs []error
	for _, tg := range targets {
		if err := e.write(t, tg, opts); err != nil {
			e.log.Error("export failed",
				zap.String("format", tg.Format),
				zap.String("path", tg.Path),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		e.log.Info("wrote table",
			zap.String("format", tg.Format),
			zap.String("path", tg.Path),
			zap.Int("rows", t.Len()))
	}
	return errors.Join(errs...)
}

func (e *Exporter) write(t *types.Table, tg Target, opts Options) error {
	wrap := func(err error) error {
		return &types.WriteError{Format: tg.Format, Path: tg.Path, Err: err}
	}

	f, err := os.Create(tg.Path)
	if err != nil {
		return wrap(err)
	}
	bw := bufio.NewWriter(f)
	if err := e.formats[tg.Format].Write(bw, t, opts); err != nil {
		f.Close()
		return wrap(err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return wrap(err)
	}
	if err := f.Close(); err != nil {
		return wrap(err)
	}
	return nil
}

// header returns the header row, with the index column first when shown.
func header(t *types.Table, opts Options) []string {
	if !opts.ShowIndex {
		return t.Columns
	}
	return append([]string{t.IndexName}, t.Columns...)
}
