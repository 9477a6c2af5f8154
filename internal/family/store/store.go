// Package store holds the single authoritative family document.
//
// Every backend follows the same contract: Load returns a deep copy or
// sentinel.ErrNotFound, and Commit replaces the whole document under a
// single-writer lock, stamping updated_at so it strictly increases across
// commits.
package store

import (
	"fmt"
	"time"

	"pcps/internal/family/models"
	"pcps/pkg/field"
	"pcps/pkg/platform/sentinel"
)

// ErrNotFound is returned when no document has been committed yet.
var ErrNotFound = sentinel.ErrNotFound

// timestampResolution keeps stamps representable in every backend.
const timestampResolution = time.Microsecond

// stamp returns the copy of doc that a commit over prev will store.
func stamp(prev, doc *models.Document, now time.Time) (*models.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if prev != nil && prev.FamilyID != doc.FamilyID {
		return nil, fmt.Errorf("family id %q cannot replace %q: %w", doc.FamilyID, prev.FamilyID, sentinel.ErrConflict)
	}

	next := doc.Clone()
	updated := now.UTC().Truncate(timestampResolution)

	if prev != nil {
		if last, ok := prev.UpdatedAt.Get(); ok && !updated.After(last) {
			updated = last.Add(timestampResolution)
		}
		next.CreatedAt = prev.CreatedAt
	}
	if _, ok := next.CreatedAt.Get(); !ok {
		next.CreatedAt = field.Value(updated)
	}
	next.UpdatedAt = field.Value(updated)
	return next, nil
}
