// Package errors defines the typed errors surfaced by the formulation
// pipeline. All of them carry enough identifiers for a planner to act on
// the offending input row without re-running the pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Error is a generic coded error for failures that do not warrant their own
// type. It wraps an underlying cause when one exists.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// DataShapeError reports a structural problem in an input table: a missing
// required field, a non-unique identifier, or a malformed numeric value.
// These fail fast, before any derived set is built.
type DataShapeError struct {
	Table  string // "sections", "rooms", "buildings"
	Field  string
	ID     string // offending row identifier, when known
	Detail string
}

func (e *DataShapeError) Error() string {
	msg := fmt.Sprintf("%s data: %s", e.Table, e.Detail)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.ID != "" {
		msg += fmt.Sprintf(" (row %s)", e.ID)
	}
	return msg
}

// ConfigurationError reports an inconsistent assembler configuration, such
// as an objective list that mixes lexicographic priorities with weighted-sum
// weights, or a bound referencing an unknown expression kind.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "model configuration: " + e.Detail
}

// InfeasibleEligibilityError reports a single section left with zero
// eligible rooms under a full-assignment requirement. The assembler emits
// one per section so planners can relax inputs surgically.
type InfeasibleEligibilityError struct {
	Section string
	Reason  string
}

func (e *InfeasibleEligibilityError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("section %s has no eligible room", e.Section)
	}
	return fmt.Sprintf("section %s has no eligible room: %s", e.Section, e.Reason)
}

// AsDataShape reports whether err is (or wraps) a DataShapeError.
func AsDataShape(err error) (*DataShapeError, bool) {
	var e *DataShapeError
	ok := errors.As(err, &e)
	return e, ok
}

// AsConfiguration reports whether err is (or wraps) a ConfigurationError.
func AsConfiguration(err error) (*ConfigurationError, bool) {
	var e *ConfigurationError
	ok := errors.As(err, &e)
	return e, ok
}
