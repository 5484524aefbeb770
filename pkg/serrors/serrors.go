// Package serrors attaches semantic kinds to errors so that the services can
// say what went wrong (not found, conflict, rate limited, ...) and the HTTP
// layer and job workers can react without string matching.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a kind sentinel. name is also the error code sent to API
// clients, so keep it upper snake case.
func NewKind(name string) Kind { return kind{s: name} }

var (
	ErrNotFound     = NewKind("NOT_FOUND")
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrForbidden means the caller is known but its role is too low.
	ErrForbidden  = NewKind("FORBIDDEN")
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrConflict covers taken slugs, stale versions and illegal workflow
	// transitions.
	ErrConflict = NewKind("CONFLICT")
	ErrInternal = NewKind("INTERNAL")
	ErrTimeout  = NewKind("TIMEOUT")
	// ErrUnavailable means a dependency (CMS, cache, database) is down.
	ErrUnavailable = NewKind("UNAVAILABLE")
	ErrRateLimited = NewKind("RATE_LIMITED")
)

// Error carries a kind, an optional cause and an optional message meant for
// the caller. errors.Is and errors.As match both the kind and the cause.
//
// The error string is "<msg>: <cause>", or whichever of the two is set, or
// the kind name when neither is.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With creates an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap creates an error of kind k with a cause and a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates an error carrying nothing but its kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}

	return (e.kind != nil && errors.Is(e.kind, target)) || (e.err != nil && errors.Is(e.err, target))
}

func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}

	return (e.kind != nil && errors.As(e.kind, target)) || (e.err != nil && errors.As(e.err, target))
}

func (e *Error) Kind() Kind { return e.kind }

// Message returns the message given to With or Wrap, without the cause.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, which may be nil.
func (e *Error) Cause() error { return e.err }

// KindOf returns the first kind found in err's chain, or nil when err carries
// none.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}

// MessageOf returns the message of the outermost *Error in err's chain that
// has one, or "".
func MessageOf(err error) string {
	for err != nil {
		var se *Error
		if !errors.As(err, &se) {
			return ""
		}
		if se.msg != "" {
			return se.msg
		}
		err = se.err
	}

	return ""
}

// Temporary reports whether err is of a kind worth retrying later: a
// timeout, an unavailable dependency or a rate limit.
func Temporary(err error) bool {
	switch KindOf(err) {
	case ErrTimeout, ErrUnavailable, ErrRateLimited:
		return true
	default:
		return false
	}
}
