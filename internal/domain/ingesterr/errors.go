// Package ingesterr defines the error taxonomy shared by every ingestion stage.
//
// Parse, validation and duplicate failures are recovered locally and turned
// into counters; storage and invariant failures halt a load.
package ingesterr

import (
	"errors"
	"fmt"
	"strings"
)

// Code standardizes failure semantics across loaders.
type Code string

const (
	CodeParse              Code = "parse"
	CodeValidation         Code = "validation"
	CodeDuplicate          Code = "duplicate"
	CodeInvariantViolation Code = "invariant_violation"
	CodeStorage            Code = "storage"
	CodeConfig             Code = "config"
	CodeNotFound           Code = "not_found"
)

// Error is the canonical ingestion error wrapper.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an error with explicit code + operation.
func NewError(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code Code) bool {
	var ingErr *Error
	if !errors.As(err, &ingErr) {
		return false
	}
	return ingErr.Code == code
}

// CodeOf extracts the code when available.
func CodeOf(err error) Code {
	var ingErr *Error
	if !errors.As(err, &ingErr) {
		return ""
	}
	return ingErr.Code
}

// Fatal reports whether err must stop a load.
func Fatal(err error) bool {
	switch CodeOf(err) {
	case CodeStorage, CodeInvariantViolation, CodeConfig:
		return true
	case "":
		return err != nil
	default:
		return false
	}
}
