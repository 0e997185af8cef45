// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errors defines the coded failure taxonomy for the question pipeline.
// Every failure that can reach the answer service carries a Kind so the
// formatter can collapse it to a fixed user-facing message while the full
// detail goes to the operator log.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindValidation marks a rejected input (empty or whitespace-only
	// message). Raised at the boundary, before classification.
	KindValidation Kind = "VALIDATION"

	// KindRetrieval marks a corpus index failure (unreachable database,
	// malformed query).
	KindRetrieval Kind = "RETRIEVAL"

	// KindUpstream marks a non-success status from the completion service.
	KindUpstream Kind = "UPSTREAM"

	// KindMalformedResponse marks a success status whose body lacks the
	// expected completion text.
	KindMalformedResponse Kind = "MALFORMED_RESPONSE"

	// KindTimeout marks an upstream call that exceeded its bound.
	KindTimeout Kind = "TIMEOUT"
)

// Error is a pipeline failure with a kind and operator-facing detail.
// Detail may contain upstream response bodies; it must never be shown to
// the end user.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a pipeline error with the given kind and detail.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap annotates err with a kind and detail. Returns nil if err is nil.
func Wrap(kind Kind, detail string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed. Errors outside
// the taxonomy report the empty Kind.
func KindOf(err error) Kind {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsValidation reports whether err is a boundary validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
