package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrCategoryNotSelected     = errors.New("customer category is not selected")
	ErrSubmissionInProgress    = errors.New("order submission already in progress")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrIdempotencyKeyConflict  = errors.New("idempotency key reused for a different order")
)

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Fields returns field names in a stable order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}

	msgs := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields.Fields() {
		msgs = append(msgs, field+": "+e.Fields[field])
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// PersistenceError reports a failed or unreachable order store. The cart is
// kept intact so the same order can be retried.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "order submission failed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
