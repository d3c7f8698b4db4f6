package league

import (
	"errors"
	"fmt"
)

// ErrorKind is a machine-readable classification surfaced to clients.
type ErrorKind string

const (
	// KindInvalidID means an identifier string is malformed.
	KindInvalidID ErrorKind = "invalid_id"
	// KindInvalidReference means a referenced entity does not exist.
	KindInvalidReference ErrorKind = "invalid_reference"
	// KindConstraintViolation means a domain rule was violated.
	KindConstraintViolation ErrorKind = "constraint_violation"
	// KindNotFound means a well-formed id resolved to nothing.
	KindNotFound ErrorKind = "not_found"
)

// Error is a domain error with a client-facing kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf extracts the domain kind from err, or "" for unexpected errors
// (store failures and the like), which callers treat as internal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func invalidID(what string) error {
	return &Error{Kind: KindInvalidID, Message: fmt.Sprintf("invalid %s id format", what)}
}

func invalidReference(msg string) error {
	return &Error{Kind: KindInvalidReference, Message: msg}
}

func constraint(format string, args ...any) error {
	return &Error{Kind: KindConstraintViolation, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}
