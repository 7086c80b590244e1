package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// ErrDirtySchema is returned when an earlier migration of the schema failed halfway.
// It needs a manual fix before the service can start.
var ErrDirtySchema = errors.New("schema is dirty")

type migrator struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewDatabaseMigrator(db *sqlx.DB, logger *slog.Logger) *migrator {
	return &migrator{db: db, logger: logger}
}

// schemaMigration runs the embedded migrations against schemaName over conn.
// conn must stay open while the returned instance is in use.
func schemaMigration(ctx context.Context, conn *sql.Conn, schemaName string) (*migrate.Migrate, error) {
	quoted := pq.QuoteIdentifier(schemaName)
	if _, err := conn.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoted); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "SET search_path TO "+quoted); err != nil {
		return nil, fmt.Errorf("failed to set search path: %w", err)
	}

	source, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		DatabaseName: DB_NAME,
		SchemaName:   schemaName,
	})
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return instance, nil
}

// Migrate creates the schema if needed and runs all pending migrations in it
func (m *migrator) Migrate(ctx context.Context, schemaName string) error {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migrate: failed to connect to db: %w", err)
	}
	defer conn.Close()

	instance, err := schemaMigration(ctx, conn, schemaName)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer instance.Close()

	logger := m.logger.With("schema", schemaName)

	from, dirty, err := instance.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.InfoContext(ctx, "Migrating fresh schema")
	case err != nil:
		return fmt.Errorf("migrate: failed to read version: %w", err)
	case dirty:
		return fmt.Errorf("migrate: %w at version %d", ErrDirtySchema, from)
	default:
		logger.InfoContext(ctx, "Migrating schema", "fromVersion", from)
	}

	err = instance.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.InfoContext(ctx, "Schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate: failed to migrate: %w", err)
	}

	to, _, err := instance.Version()
	if err != nil {
		return fmt.Errorf("migrate: failed to read version after migrating: %w", err)
	}
	logger.InfoContext(ctx, "Migrated schema", "toVersion", to)
	return nil
}
