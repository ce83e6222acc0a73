package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator runs goose migrations over the shared pgx pool.
type Migrator struct {
	db             *sql.DB
	migrationsPath string
}

func NewMigrator(pool *pgxpool.Pool, migrationsPath string) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	// goose wants *sql.DB, so borrow one from the pool's config
	db := stdlib.OpenDBFromPool(pool)
	return &Migrator{db: db, migrationsPath: migrationsPath}, nil
}

// Run applies all pending migrations.
func (m *Migrator) Run(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, m.migrationsPath); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the migrator's connection; the pool itself stays open.
func (m *Migrator) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
