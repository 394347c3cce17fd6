package world

import "embed"

// FS contains embedded SQLite migrations for the world tuning tables.
//
//go:embed *.sql
var FS embed.FS
