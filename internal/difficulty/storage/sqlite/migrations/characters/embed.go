package characters

import "embed"

// FS contains embedded SQLite migrations for the character state tables.
//
//go:embed *.sql
var FS embed.FS
