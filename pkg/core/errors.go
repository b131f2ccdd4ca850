package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures at the request boundary.
type ErrorKind int

// Error kinds. The zero value is KindUnexpected.
const (
	KindUnexpected ErrorKind = iota
	KindNotFound
	KindInvalidArgument
	KindOperationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindOperationFailed:
		return "OperationFailed"
	default:
		return "Unexpected"
	}
}

// Error is a classified engine error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels (ErrNotFound etc.) so callers can use errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrOperationFailed = &Error{Kind: KindOperationFailed}
	ErrUnexpected      = &Error{Kind: KindUnexpected}
)

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf builds an InvalidArgument error.
func InvalidArgumentf(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// OperationFailedf builds an OperationFailed error.
func OperationFailedf(format string, args ...any) error {
	return &Error{Kind: KindOperationFailed, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with a message prefix.
func Wrap(kind ErrorKind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are KindUnexpected.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
