package database

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDialect implements Dialect for SQLite through the pure-Go
// modernc.org/sqlite driver.
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	return config.Path
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// One writer at a time; WAL lets readers proceed alongside it.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return err
	}
	return nil
}

func (d *SQLiteDialect) CreateDocumentsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS family_documents (
			slot TEXT PRIMARY KEY,
			family_id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
}

func (d *SQLiteDialect) UpsertDocumentQuery() string {
	return `
		INSERT INTO family_documents (slot, family_id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			family_id = excluded.family_id,
			body = excluded.body,
			updated_at = excluded.updated_at
	`
}

func (d *SQLiteDialect) LockClause() string { return "" }
