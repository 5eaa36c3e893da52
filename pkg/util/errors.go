// Package util provides logging, error types and small string/IP helpers
// shared by the gns3lab packages.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure taxonomy
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnresolved       = errors.New("unresolved reference")
	ErrExternalProcess  = errors.New("external process failed")
)

// ResolutionError is returned when a logical name (appliance, instance,
// interface index) does not correlate to an object returned by the controller.
type ResolutionError struct {
	Kind    string // "appliance", "node", "endpoint", "interface"
	Name    string
	Details string
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("cannot resolve %s %q", e.Kind, e.Name)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return ErrUnresolved
}

// NewResolutionError creates a new resolution error
func NewResolutionError(kind, name, details string) *ResolutionError {
	return &ResolutionError{
		Kind:    kind,
		Name:    name,
		Details: details,
	}
}

// ProcessError wraps a failed external command run on behalf of an instance.
type ProcessError struct {
	Command  string
	Instance string
	Err      error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Command, e.Instance, e.Err)
}

// Is lets errors.Is match ErrExternalProcess while Unwrap exposes the
// underlying *exec.ExitError.
func (e *ProcessError) Is(target error) bool {
	return target == ErrExternalProcess
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
