// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sqlitedriver registers a SQLite database/sql driver under the name
// "sqlite3". Builds with cgo use mattn/go-sqlite3; builds without cgo fall
// back to the pure-Go modernc.org/sqlite driver.
//
// Import this package for its side effects only:
//
//	import _ "github.com/pdiddy/ani-report/internal/sqlitedriver"
package sqlitedriver

// DriverName is the database/sql driver name registered by this package.
const DriverName = "sqlite3"
