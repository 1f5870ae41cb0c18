package landscaping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrNotFound is returned when a post or image does not exist, or when a
	// public lookup hits a draft.
	ErrNotFound = errors.New("not found")
	// ErrSlugTaken is returned when a create or update collides with another
	// post's slug.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrUnauthorized is returned by the auth gate.
	ErrUnauthorized = errors.New("unauthorized")
)

// blankField is the message for a required field left empty.
const blankField = "cannot be blank"

// ValidationError reports input rejected before any store mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// missingFields reports whether any field was rejected for being blank.
func (e *ValidationError) missingFields() bool {
	for _, msg := range e.Fields {
		if msg == blankField {
			return true
		}
	}
	return false
}

// newValidationError converts ozzo validation errors into a ValidationError.
// Internal errors from validation rules are returned unchanged.
func newValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		var ierr validation.InternalError
		if errors.As(err, &ierr) {
			return ierr
		}
		return &ValidationError{Fields: map[string]string{"input": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for k, v := range verrs {
		fields[k] = v.Error()
	}
	return &ValidationError{Fields: fields}
}

// fieldError builds a single-field ValidationError.
func fieldError(field, format string, args ...any) error {
	return &ValidationError{Fields: map[string]string{field: fmt.Sprintf(format, args...)}}
}
