package database

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) Name() string       { return "mysql" }
func (d *MySQLDialect) DriverName() string { return "mysql" }

// DSN expects a go-sql-driver DSN; parseTime is required to scan DATETIME
// columns into time.Time.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if _, err := db.Exec("SET time_zone = '+00:00';"); err != nil {
		return err
	}
	return nil
}

func (d *MySQLDialect) CreateDocumentsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS family_documents (
			slot VARCHAR(64) PRIMARY KEY,
			family_id VARCHAR(255) NOT NULL,
			body LONGTEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL
		);
	`
}

func (d *MySQLDialect) UpsertDocumentQuery() string {
	return "INSERT INTO family_documents (slot, family_id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE family_id = VALUES(family_id), body = VALUES(body), updated_at = VALUES(updated_at)"
}

func (d *MySQLDialect) LockClause() string { return " FOR UPDATE" }
