// Package migrate применяет схемные миграции через goose из встроенных файлов.
package migrate

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedMigrations embed.FS

func configureGoose() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetTableName("schema_migrations")
	return goose.SetDialect("postgres")
}

// Up накатывает все недостающие миграции.
func Up(ctx context.Context, dsn string) error {
	if err := configureGoose(); err != nil {
		return err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.UpContext(ctx, db, "migrations")
}

// Down откатывает последнюю миграцию.
func Down(ctx context.Context, dsn string) error {
	if err := configureGoose(); err != nil {
		return err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.DownContext(ctx, db, "migrations")
}
