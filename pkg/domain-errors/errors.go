// Package domainerrors carries coded errors across layer boundaries.
//
// Services return these so transports can map a failure to a response without
// string matching. Codes are stable identifiers; messages are for humans.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"

	// Triage taxonomy.
	CodeInvalidCaseState  Code = "invalid_case_state"
	CodeRetrieval         Code = "retrieval_error"
	CodeInvalidTransition Code = "invalid_transition"
	CodeCancelled         Code = "cancelled"
)

// Error is a coded error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// CodeOf returns the code of the outermost coded error in err's chain.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// Retryable reports whether the caller may retry the operation unchanged.
// Store failures and cancellations are transient; everything else is terminal.
func Retryable(err error) bool {
	return HasCode(err, CodeRetrieval) || HasCode(err, CodeCancelled)
}
