package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is().
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failed")
	ErrEnrichment  = errors.New("enrichment failed")
)

// ValidationError indicates bad user input (empty required field,
// non-positive value). It is raised before any state mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PersistenceError indicates the backing store was unreachable or rejected
// the operation. Optimistic callers roll back on it; non-optimistic callers
// surface it with no state change.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error        { return e.Err }
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// EnrichmentError indicates a secondary display-data lookup failed.
// Non-fatal: the record is degraded (association left nil), never the
// whole operation.
type EnrichmentError struct {
	Resource string
	ID       string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich %s %s: %v", e.Resource, e.ID, e.Err)
}

func (e *EnrichmentError) Unwrap() error        { return e.Err }
func (e *EnrichmentError) Is(target error) bool { return target == ErrEnrichment }
