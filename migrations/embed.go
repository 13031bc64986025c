// Package migrations embeds the SQL schema migrations so the server and the
// migrate command can run them without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
