//go:build mage

// Package main contains Mage build targets for ani-report developer tooling.
package main

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/ani-report/internal/sqlitedriver"
	"github.com/pdiddy/ani-report/internal/store"
)

const (
	binDir     = "bin"
	binName    = "ani-report"
	cmdPkg     = "./cmd/ani-report"
	sampleName = "sample.pyanidb"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// NoCgo runs the unit tests against the pure-Go SQLite driver.
func NoCgo() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "0"}, "go", "test", "./...")
}

// Sample writes a small results database to bin/ for trying the CLI:
//
//	mage sample && bin/ani-report report --dbpath bin/sample.pyanidb --run-matrices 1
func Sample() error {
	mg.Deps(Build)

	path := filepath.Join(binDir, sampleName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	db, err := sql.Open(sqlitedriver.DriverName, path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.InitSchema(ctx, db); err != nil {
		return err
	}
	for _, stmt := range sampleRows {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("loading sample data: %w", err)
		}
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// sampleRows is one ANIm run over three genomes with forward comparisons
// only, plus one self-comparison.
var sampleRows = []string{
	`INSERT INTO runs (run_id, method, cmdline, date, status, name) VALUES
		(1, 'ANIm', 'pyani anim genomes/ out/', '2026-01-15 09:30:00', 'complete', 'sample')`,
	`INSERT INTO genomes (genome_id, genome_hash, path, length, description) VALUES
		(1, 'b1a0e5', 'genomes/ecoli_k12.fna', 4641652, 'Escherichia coli K-12 MG1655'),
		(2, 'c77f21', 'genomes/ecoli_o157.fna', 5498578, 'Escherichia coli O157:H7 Sakai'),
		(3, '09d3aa', 'genomes/senterica_lt2.fna', 4857450, 'Salmonella enterica LT2')`,
	`INSERT INTO runs_genomes (run_id, genome_id) VALUES (1, 1), (1, 2), (1, 3)`,
	`INSERT INTO labels (genome_id, run_id, label, class_label) VALUES
		(1, 1, 'K-12', 'Escherichia'), (2, 1, 'O157', 'Escherichia'), (3, 1, 'LT2', 'Salmonella')`,
	`INSERT INTO comparisons (comparison_id, query_id, subject_id, aln_length, sim_errs,
		identity, cov_query, cov_subject, program, version, maxmatch) VALUES
		(1, 1, 2, 4102311, 49227, 0.988, 0.884, 0.746, 'nucmer', '3.1', 0),
		(2, 1, 3, 1598420, 300503, 0.812, 0.344, 0.329, 'nucmer', '3.1', 0),
		(3, 2, 3, 1611002, 304479, 0.811, 0.293, 0.332, 'nucmer', '3.1', 0),
		(4, 1, 1, 4641652, 0, 1.0, 1.0, 1.0, 'nucmer', '3.1', 0)`,
	`INSERT INTO runs_comparisons (run_id, comparison_id) VALUES (1, 1), (1, 2), (1, 3), (1, 4)`,
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports whether a directory is outside the project's own sources.
func skipDir(name string) bool {
	return name == binDir || name == "vendor" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// countGoLines counts non-blank lines in production and test Go files.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

func nonBlankLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}

// countDocWords counts words in the top-level Markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
