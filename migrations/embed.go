package migrations

import "embed"

// FS holds the numbered up/down SQL files applied by internal/migrate.
//
//go:embed *.sql
var FS embed.FS
