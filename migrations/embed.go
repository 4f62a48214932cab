// Package migrations embeds the goose SQL migrations so the server and the
// integration tests apply the same schema without touching the filesystem.
package migrations

import "embed"

// FS holds every *.sql migration, applied in filename order.
//
//go:embed *.sql
var FS embed.FS
