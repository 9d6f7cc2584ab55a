// Package storage bootstraps the client's local SQLite database: the durable
// key-value store holding the two session tokens. Migrations are embedded
// and applied with goose on open.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/ovolkov/pawhub/internal/client/migrations"
	"github.com/ovolkov/pawhub/internal/client/repositories/tokens"
)

type Repositories struct {
	Tokens tokens.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local store at dsn and applies
// pending migrations. The returned DB is shared by all repositories.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	repos := &Repositories{
		Tokens: tokens.NewSQLiteRepository(db),
	}
	return db, repos, nil
}
