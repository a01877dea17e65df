// Package storage opens the client's local SQLite database and wires up the
// repositories backed by it. The database is the durable half of the
// offline-first design: the outbox of pending submissions and the cached
// reference-data snapshots both live here and survive process restarts.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rgoncalves/fieldsync/internal/client/migrations"
	"github.com/rgoncalves/fieldsync/internal/client/repositories/cache"
	"github.com/rgoncalves/fieldsync/internal/client/repositories/outbox"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repositories groups the repositories sharing one database handle.
type Repositories struct {
	Outbox outbox.Repository
	Cache  cache.Repository
	DB     *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if necessary) the SQLite database at dsn,
// migrates it and returns ready-to-use repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Repositories{
		Outbox: outbox.NewSQLiteRepository(db),
		Cache:  cache.NewSQLiteRepository(db),
		DB:     db,
	}, nil
}
