// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !cgo

package sqlitedriver

import (
	"database/sql"

	"modernc.org/sqlite"
)

func init() {
	sql.Register(DriverName, &sqlite.Driver{})
}

// Backend names the driver implementation compiled into this binary.
const Backend = "modernc.org/sqlite"
