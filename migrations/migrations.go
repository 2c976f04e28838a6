// Package migrations embeds the goose SQL migrations.
package migrations

import (
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Up applies every pending migration to the database behind dsn.
func Up(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return up(sqlDB)
}

// Version reports the currently applied migration version.
func Version(dsn string) (int64, error) {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return 0, err
	}
	defer func() { _ = sqlDB.Close() }()
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(sqlDB)
}

func up(sqlDB *sql.DB) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(sqlDB, ".")
}
