package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a blank task text or template name is submitted.
	ErrEmptyInput = errors.New("input is required")

	// ErrReadOnlyCategory is returned for add/filter operations on the reporting category.
	ErrReadOnlyCategory = errors.New("category does not accept this operation")
)

// DuplicateTaskError indicates a sibling with the same text already exists.
// ParentID is empty for root tasks.
type DuplicateTaskError struct {
	Text     string
	ParentID string
}

func (e DuplicateTaskError) Error() string {
	if e.ParentID == "" {
		return fmt.Sprintf("task %q already exists", e.Text)
	}
	return fmt.Sprintf("subtask %q already exists under %s", e.Text, e.ParentID)
}

// NotFoundError indicates an operation referenced an id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "task"
	}
	return fmt.Sprintf("%s %s not found", kind, e.ID)
}

// AmbiguousIDError is returned when an id prefix matches more than one task.
type AmbiguousIDError struct {
	Prefix  string
	Matches int
}

func (e AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %q matches %d tasks", e.Prefix, e.Matches)
}

// DuplicateNameError indicates a template with the same name already exists.
type DuplicateNameError struct {
	Name string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("template %q already exists", e.Name)
}

// AdapterError wraps a failed call to an external collaborator
// (persistence, suggestion or analysis).
type AdapterError struct {
	Op  string
	Err error
}

func (e AdapterError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e AdapterError) Unwrap() error { return e.Err }

// MalformedDataError describes persisted data that failed shape validation.
// It is only ever logged; loading substitutes defaults.
type MalformedDataError struct {
	Key string
	Err error
}

func (e MalformedDataError) Error() string {
	return fmt.Sprintf("malformed persisted data at %q: %v", e.Key, e.Err)
}

func (e MalformedDataError) Unwrap() error { return e.Err }
