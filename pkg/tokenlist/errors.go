package tokenlist

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every *Error wraps exactly one of them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream failure")
)

// Error is a list service failure with the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
	Kind    error
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func invalidInput(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Kind: ErrInvalidInput}
}

func notFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg, Kind: ErrNotFound}
}

func upstream(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Kind: ErrUpstream, Err: err}
}

// StatusOf maps an error to an HTTP status. Unknown errors are 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
