package migrations

import "embed"

// Files holds the goose migrations for sessions, viewers and their logins.
//
//go:embed *.sql
var Files embed.FS
