package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"pcps/internal/family/models"
	"pcps/internal/platform/database"
)

// documentSlot is the primary key of the single document row.
const documentSlot = "current"

// SQLStore persists the document as JSON in one row of family_documents.
// Postgres and MySQL lock the row inside the commit transaction; the
// in-process mutex serializes writers from this process on every dialect.
type SQLStore struct {
	db  *database.DB
	mu  sync.Mutex
	now func() time.Time
}

func NewSQL(db *database.DB, opts ...Option) *SQLStore {
	o := buildOptions(opts)
	return &SQLStore{db: db, now: o.now}
}

func (s *SQLStore) selectQuery(lock bool) string {
	q := "SELECT body FROM family_documents WHERE slot = ?"
	if lock {
		q += s.db.Dialect.LockClause()
	}
	return s.db.Dialect.RewriteQuery(q)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) read(ctx context.Context, q queryer, lock bool) (*models.Document, error) {
	var body []byte
	err := q.QueryRowContext(ctx, s.selectQuery(lock), documentSlot).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc models.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (s *SQLStore) Load(ctx context.Context) (*models.Document, error) {
	return s.read(ctx, s.db, false)
}

func (s *SQLStore) Commit(ctx context.Context, doc *models.Document) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	prev, err := s.read(ctx, tx, true)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	next, err := stamp(prev, doc, s.now())
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	created, _ := next.CreatedAt.Get()
	updated, _ := next.UpdatedAt.Get()

	if _, err := tx.ExecContext(ctx, s.db.Dialect.UpsertDocumentQuery(),
		documentSlot, next.FamilyID, string(body), created, updated); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit document: %w", err)
	}
	return next.Clone(), nil
}
