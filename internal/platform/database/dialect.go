package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect isolates the SQL differences between the supported databases.
type Dialect interface {
	// Name is the canonical backend name ("postgres", "mysql", "sqlite").
	Name() string

	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN returns the data source name for the connection.
	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders when the driver needs another syntax.
	RewriteQuery(query string) string

	// ConfigureConnection applies pool settings and session pragmas.
	ConfigureConnection(db *sql.DB) error

	// CreateDocumentsTableQuery creates the single-row document table.
	CreateDocumentsTableQuery() string

	// UpsertDocumentQuery writes (slot, family_id, body, created_at, updated_at).
	UpsertDocumentQuery() string

	// LockClause is appended to the read inside a commit transaction.
	LockClause() string
}

// DialectConfig holds configuration for database connection.
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders.
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
