// Package services defines the business logic for contact-form submissions
// and review summaries. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrCapacityExceeded is returned when a client's store already holds the
	// maximum number of submissions. The form is not persisted.
	ErrCapacityExceeded = errors.New("submission limit reached")

	// ErrSubmissionNotFound indicates that no submission with the requested id
	// exists in the client's store.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrUnknownField is returned by single-field validation for a field name
	// the form does not have.
	ErrUnknownField = errors.New("unknown form field")
)

// ValidationErrors maps a form field name to the message shown next to it.
// An empty (or nil) map means the input is valid.
type ValidationErrors map[string]string

// Error implements error with a stable, field-sorted rendering.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "valid"
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Valid reports whether no field failed.
func (v ValidationErrors) Valid() bool { return len(v) == 0 }
