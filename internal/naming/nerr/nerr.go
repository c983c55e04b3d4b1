// Package nerr defines the error taxonomy shared by every naming-service
// component and the HTTP mapping that turns it into the wire format of §6/§7.
package nerr

import (
	"errors"
	"fmt"
)

// Kind is one of the five error kinds the naming service ever returns.
type Kind int

const (
	// InvalidArgument covers a malformed path, a missing field, or an
	// unlock of a lock that was never held.
	InvalidArgument Kind = iota
	// NotFound covers a path absent from the namespace or the global file set.
	NotFound
	// IllegalState covers a duplicate Storage Node registration.
	IllegalState
	// IndexOutOfBounds covers an out-of-range storage read/write.
	IndexOutOfBounds
	// IOError covers a disk failure on a Storage Node.
	IOError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgumentException"
	case NotFound:
		return "FileNotFoundException"
	case IllegalState:
		return "IllegalStateException"
	case IndexOutOfBounds:
		return "IndexOutOfBoundsException"
	case IOError:
		return "IOException"
	default:
		return "UnknownException"
	}
}

// Error is a typed error carrying an exception kind and human-readable detail.
// It wraps errors.Is-compatible sentinels so callers can test the kind with
// errors.Is(err, nerr.NotFound) style checks via the Is/As methods below.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Detail)
}

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, nerr.New(nerr.NotFound, "")) and errors.Is(err, nerr.ErrNotFound)
// both work regardless of Detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error of the given kind with a formatted detail message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Sentinel values for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, nerr.ErrNotFound).
var (
	ErrInvalidArgument  = &Error{Kind: InvalidArgument}
	ErrNotFound         = &Error{Kind: NotFound}
	ErrIllegalState     = &Error{Kind: IllegalState}
	ErrIndexOutOfBounds = &Error{Kind: IndexOutOfBounds}
	ErrIOError          = &Error{Kind: IOError}
)

// KindOf extracts the Kind from err, returning ok=false if err is not (or
// does not wrap) an *nerr.Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
