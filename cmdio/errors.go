package cmdio

import (
	"errors"
	"fmt"
)

var (
	// ErrTransportNil indicates that a nil Transport was provided.
	ErrTransportNil = errors.New("cmdio: transport is nil")

	// ErrSessionClosed indicates that an operation was attempted on a closed session.
	ErrSessionClosed = errors.New("cmdio: session closed")

	// ErrEmptyReply indicates that a query produced no data before the
	// transport's read timeout elapsed.
	ErrEmptyReply = errors.New("cmdio: empty reply")

	// ErrNotQueryable indicates that the attribute has no query verb.
	ErrNotQueryable = errors.New("cmdio: attribute is not queryable")

	// ErrNotSettable indicates that the attribute has no set verb.
	ErrNotSettable = errors.New("cmdio: attribute is not settable")
)

// ValidationError reports a value outside an attribute's domain.
// It is raised before any bytes are written to the transport; the device and
// the cache are left unchanged, and the caller may retry with a corrected value.
type ValidationError struct {
	Attribute string  // attribute name
	Value     float64 // rejected value
	Domain    string  // human-readable domain description
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cmdio: %s value %v out of domain %s", e.Attribute, e.Value, e.Domain)
}

// ParseError reports a reply line that could not be decoded with the
// attribute's decode rule.
type ParseError struct {
	Raw  string // trimmed reply line
	Rule DecodeRule
	Err  error // underlying strconv error, if any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cmdio: cannot decode reply %q as %s: %v", e.Raw, e.Rule, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CommunicationError reports a transport-level failure: a write or read error,
// a timeout, or a malformed/empty reply. The hardware state is unknown and the
// cache is left untouched.
type CommunicationError struct {
	Op  string // failing operation, e.g. "query TEMP?"
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("cmdio: %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// commErr wraps err as a *CommunicationError for the given operation.
func commErr(op string, err error) error {
	return &CommunicationError{Op: op, Err: err}
}
