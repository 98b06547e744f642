package ledger

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrNoEndpoints is returned when the client is built without access nodes.
	ErrNoEndpoints = errors.New("no access node endpoints configured")
)

// ErrorClass represents a classification of access node errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx errors, including failed script executions.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents responses that could not be decoded.
	ErrorClassDecode ErrorClass = "decode"
)

// AccessError is an access node failure with its classification.
type AccessError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("access node %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("access node %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *AccessError) Unwrap() error {
	return e.Err
}

// classOf returns the class of err. Unclassified errors count as network errors.
func classOf(err error) ErrorClass {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.ErrorClass
	}
	return ErrorClassNetwork
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient, ErrorClassDecode:
		// Script errors are deterministic for a sealed block
		return false
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
