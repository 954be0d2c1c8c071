// Package migrations embeds the goose SQL migrations of the database schema.
package migrations

import "embed"

// FS holds the migration files at its root.
//go:embed *.sql
var FS embed.FS
