package postgres

import "embed"

// Migrations holds the embedded goose migration files for the session
// mirror schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the path of the migration files inside Migrations.
const MigrationsDir = "migrations"
