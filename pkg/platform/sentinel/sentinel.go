package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: no document has been committed yet, or the target id is unknown
//   - ErrConflict: the write contradicts stored state (family id change, duplicate target id)
//   - ErrUnavailable: the backing store or broker cannot be reached
//
// For validation errors use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
