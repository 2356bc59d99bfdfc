// Package migrations embeds the snapshot store schema so a doppel binary
// can bootstrap any database it points at without external files.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
