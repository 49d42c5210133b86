package ledger

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every expected failure of the ledger.
type ErrorKind string

const (
	ValidationError    ErrorKind = "VALIDATION"
	NotFoundError      ErrorKind = "NOT_FOUND"
	StockExceededError ErrorKind = "STOCK_EXCEEDED"
	StorageError       ErrorKind = "STORAGE"
	PartialFailure     ErrorKind = "PARTIAL_FAILURE"
)

type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the ErrorKind carried by err, StorageError for foreign errors.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return StorageError
}

// Result is returned by every ledger operation instead of a bare error.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Err     *Error `json:"error,omitempty"`
}

func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}

// Unwrap converts the result into Go's value, error pair.
func (r Result[T]) Unwrap() (T, error) {
	if !r.Success {
		var zero T
		return zero, r.Err
	}
	return r.Data, nil
}

// Is reports whether the result failed with the given kind.
func (r Result[T]) Is(kind ErrorKind) bool {
	return !r.Success && r.Err != nil && r.Err.Kind == kind
}

// classify maps a store error onto the ledger taxonomy.
func classify(err error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	var le *Error
	if errors.As(err, &le) {
		return &Error{Kind: le.Kind, Message: msg + ": " + le.Message, Err: err}
	}
	kind := StorageError
	switch {
	case errors.Is(err, ErrNotFound):
		kind = NotFoundError
	case errors.Is(err, ErrInsufficientStock):
		kind = StockExceededError
	}
	return &Error{Kind: kind, Message: msg + ": " + err.Error(), Err: err}
}
