// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build cgo

package sqlitedriver

import (
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
)

// Backend names the driver implementation compiled into this binary.
const Backend = "mattn/go-sqlite3"
