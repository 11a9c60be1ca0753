package domain

import "errors"

var (
	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation error")
	// ErrConflict indicates a uniqueness constraint would be violated.
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor does not own the target resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates missing or wrong credentials.
	ErrUnauthenticated = errors.New("authentication failed")
)

// Error is a typed outcome with a human-readable message. Kind is one of the
// sentinels above, so errors.Is(err, ErrNotFound) matches.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Fields: fields}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: ErrUnauthenticated, Message: msg}
}
