package migrations

import "embed"

// FS holds the schema migrations applied by `snagaudit migrate`.
//
//go:embed *.sql
var FS embed.FS
