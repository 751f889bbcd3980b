package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Services wrap these via the constructors below so
// handlers can map them to transport status codes with errors.Is.

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrPrecondition indicates the environment is in a state that forbids the
// operation (closed period, blocked account, entry not in required status).
var ErrPrecondition = errors.New("failed precondition")

// ErrForbidden indicates the actor lacks a required role.
var ErrForbidden = errors.New("permission denied")

// ErrConflict indicates concurrent modification or idempotency contention.
var ErrConflict = errors.New("conflict")

// ErrUnavailable indicates a transient fault; the caller may retry with backoff.
var ErrUnavailable = errors.New("unavailable")

// ErrInternal indicates an invariant violation detected at runtime.
var ErrInternal = errors.New("internal error")

// AppError carries a stable machine-readable code alongside the error kind.
type AppError struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is reports whether the error matches the wrapped kind, so
// errors.Is(err, apperrors.ErrValidation) works on constructed errors.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// CodeOf extracts the machine code from err, or "" if it carries none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// NewValidation builds an InvalidArgument-class error.
func NewValidation(code, message string) *AppError {
	return &AppError{Kind: ErrValidation, Code: code, Message: message}
}

// NewPrecondition builds a FailedPrecondition-class error.
func NewPrecondition(code, message string) *AppError {
	return &AppError{Kind: ErrPrecondition, Code: code, Message: message}
}

// NewForbidden builds a PermissionDenied-class error.
func NewForbidden(code, message string) *AppError {
	return &AppError{Kind: ErrForbidden, Code: code, Message: message}
}

// NewConflict builds a Conflict-class error.
func NewConflict(code, message string) *AppError {
	return &AppError{Kind: ErrConflict, Code: code, Message: message}
}

// NewNotFound builds a NotFound-class error.
func NewNotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Code: "not_found", Message: message}
}

// NewUnavailable builds a transient error; callers retry with backoff.
func NewUnavailable(code, message string, err error) *AppError {
	return &AppError{Kind: ErrUnavailable, Code: code, Message: message, Err: err}
}

// NewInternal wraps an unexpected failure.
func NewInternal(message string, err error) *AppError {
	return &AppError{Kind: ErrInternal, Code: "internal", Message: message, Err: err}
}
