// Package migrations embeds the SQL schema migrations and registers
// them with the database package.
package migrations

import (
	"embed"

	"github.com/vealive/veahome-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
