// Package migrations embeds the cache SQLite schema.
package migrations

import "embed"

// FS holds the cache migrations.
//
//go:embed *.sql
var FS embed.FS
