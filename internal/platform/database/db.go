// Package database opens a *sql.DB for one of the supported dialects.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DB wraps the database connection with dialect support.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor resolves a backend name.
func DialectFor(backend string) (Dialect, error) {
	switch strings.ToLower(backend) {
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", backend)
	}
}

// Open connects, pings and configures the pool, then ensures the document
// table exists.
func Open(ctx context.Context, backend string, cfg DialectConfig) (*DB, error) {
	dialect, err := DialectFor(backend)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := dialect.ConfigureConnection(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}
	if _, err := db.ExecContext(ctx, dialect.CreateDocumentsTableQuery()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}
