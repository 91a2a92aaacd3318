package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema changes, registered by the dated files in this package.
var Migrations = migrate.NewMigrations()
