// Package apperr defines the typed errors the service layer returns so
// handlers can map outcomes to HTTP statuses without string matching.
// Anything not covered here is treated as an unexpected system failure and
// handled once, at the recovery boundary.
package apperr

import (
	"fmt"
	"strings"
)

// ValidationError carries every intake rule the request violated, in the
// order the rules are defined.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, " ")
}

// NotFoundError means the referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictError covers duplicate client identity fields and lost
// optimistic-concurrency races; the caller should retry with fresh state or
// different identity values.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// IllegalTransitionError reports a workflow rule violation together with the
// submission's current status and the transitions still open to it.
type IllegalTransitionError struct {
	Current   string
	Requested string
	Allowed   []string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.Current, e.Requested)
}
