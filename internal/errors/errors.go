// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so callers can branch on the category of a failure
// (an expired session versus a server outage) without parsing error strings.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Unauthorized indicates the backend rejected the credentials (HTTP 401).
	Unauthorized Kind = "unauthorized"
	// BadStatus indicates any other non-success HTTP status.
	BadStatus Kind = "bad_status"
	// RenewalFailed indicates the refresh token could not be exchanged.
	RenewalFailed Kind = "renewal_failed"
	// IdentityFailed indicates the user-info lookup failed.
	IdentityFailed Kind = "identity_failed"
	// InvalidResponse indicates a response body the client could not use.
	InvalidResponse Kind = "invalid_response"
	// StoreUnavailable indicates the credential store could not be opened.
	StoreUnavailable Kind = "store_unavailable"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is matches any *E of the same kind, so errors.Is(err, New(Unauthorized, ""))
// works regardless of message.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WithStatus builds an HTTP status error of the given kind.
func WithStatus(kind Kind, status int, msg string) *E {
	return &E{Kind: kind, Status: status, Message: msg}
}

// KindOf returns the kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
