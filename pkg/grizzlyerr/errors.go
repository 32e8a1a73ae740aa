// Package grizzlyerr defines the stable error taxonomy shared by every
// Grizzly component, so callers can dispatch on Kind instead of string
// matching, the way the SQL engine and CLI sitting above Grizzly are
// expected to.
package grizzlyerr

import (
	"errors"
	"fmt"
)

// Kind is a stable, loggable error classification. Values never change
// meaning once assigned; new kinds are only ever appended.
type Kind string

const (
	TypeMismatch              Kind = "TypeMismatch"
	VectorDimensionMismatch   Kind = "VectorDimensionMismatch"
	IndexOutOfBounds          Kind = "IndexOutOfBounds"
	ColumnNotFound            Kind = "ColumnNotFound"
	TableNotFound             Kind = "TableNotFound"
	ModelNotFound             Kind = "ModelNotFound"
	ScheduleNotFound          Kind = "ScheduleNotFound"
	IndexNotFound             Kind = "IndexNotFound"
	IndexAlreadyExists        Kind = "IndexAlreadyExists"
	DuplicateTable            Kind = "DuplicateTable"
	CircularDependency        Kind = "CircularDependency"
	InvalidFileFormat         Kind = "InvalidFileFormat"
	UnsupportedVersion        Kind = "UnsupportedVersion"
	IncompleteRead            Kind = "IncompleteRead"
	InvalidDictionaryIndex    Kind = "InvalidDictionaryIndex"
	UnsupportedOperation      Kind = "UnsupportedOperation"
	EmptyColumn               Kind = "EmptyColumn"
	NoChanges                 Kind = "NoChanges"
	SnapshotMismatch          Kind = "SnapshotMismatch"
	SnapshotOutOfDate         Kind = "SnapshotOutOfDate"
	SchemaMismatch            Kind = "SchemaMismatch"
	CustomTypeNotSupported    Kind = "CustomTypeNotSupported"
	ExceptionTypeNotSupported Kind = "ExceptionTypeNotSupported"
	QueryTimeout              Kind = "QueryTimeout"
	InternalError             Kind = "InternalError"
)

// Error is the concrete error type returned across the Grizzly boundary.
// It carries a stable Kind for callers to switch on, an optional file
// offset for format errors, and a wrapped cause.
type Error struct {
	Kind   Kind
	Msg    string
	Offset int64 // -1 when not applicable
	Cause  error
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (offset=%d): %v", e.Kind, e.Msg, e.Offset, e.Cause)
		}
		return fmt.Sprintf("%s: %s (offset=%d)", e.Kind, e.Msg, e.Offset)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, grizzlyerr.New(Kind, "")) style kind checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: -1}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Offset: -1}
}

// Wrap constructs an Error with a wrapped cause.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: -1, Cause: cause}
}

// WrapAt constructs a file-format Error carrying the offending byte offset.
func WrapAt(kind Kind, offset int64, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: offset, Cause: cause}
}

// Sentinel returns a bare marker of the given kind, suitable for
// errors.Is(err, grizzlyerr.Sentinel(kind)).
func Sentinel(kind Kind) error {
	return &Error{Kind: kind, Offset: -1}
}

// KindOf classifies err against the Grizzly taxonomy, returning
// InternalError if err is not (or does not wrap) a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalError
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, Sentinel(kind))
}
