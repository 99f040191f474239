// Package migrations embeds the SQL schema so the binary can migrate without
// the source tree.
package migrations

import "embed"

// FS holds the up and down migration files
//
//go:embed *.sql
var FS embed.FS
