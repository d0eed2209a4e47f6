// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds the migration files applied by sql-migrate.
//
//go:embed *.sql
var FS embed.FS
