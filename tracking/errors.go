package tracking

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies errors returned by this package so that callers can decide how to present them.
type Kind int

const (
	// ValidationError means input was missing or malformed.
	ValidationError Kind = iota + 1
	// DuplicateKey means a unique constraint would be violated.
	DuplicateKey
	// NotFound means the requested row does not exist.
	NotFound
	// SourceUnavailable means the source engine could not be reached or queried.
	SourceUnavailable
	// TrackingStoreUnavailable means the tracking store could not be reached or queried.
	TrackingStoreUnavailable
	// InvalidColumn means a field update named a column that may not be updated.
	InvalidColumn
)

var kindNames = map[Kind]string{
	ValidationError:          "ValidationError",
	DuplicateKey:             "DuplicateKey",
	NotFound:                 "NotFound",
	SourceUnavailable:        "SourceUnavailable",
	TrackingStoreUnavailable: "TrackingStoreUnavailable",
	InvalidColumn:            "InvalidColumn",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by all Store operations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause supports errors.Cause() from github.com/pkg/errors.
func (e *Error) Cause() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind returns true if err, or any error it wraps, is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the Kind of the first *Error found in the chain of err, or 0 if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
