// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the ani-report
// packages: results-database rows, in-memory tables, configuration, and
// the error types callers match with errors.As.
package types
