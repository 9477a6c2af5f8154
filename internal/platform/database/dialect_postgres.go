package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *PostgresDialect) CreateDocumentsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS family_documents (
			slot TEXT PRIMARY KEY,
			family_id TEXT NOT NULL,
			body JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`
}

func (d *PostgresDialect) UpsertDocumentQuery() string {
	return d.RewriteQuery(`
		INSERT INTO family_documents (slot, family_id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			family_id = EXCLUDED.family_id,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`)
}

func (d *PostgresDialect) LockClause() string { return " FOR UPDATE" }
