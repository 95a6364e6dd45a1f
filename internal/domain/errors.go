package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the service.
type ErrorKind int

const (
	// KindStore marks a persistence failure.
	KindStore ErrorKind = iota
	// KindValidation marks missing or malformed caller input.
	KindValidation
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "store"
	}
}

var (
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameRequired is returned when a blank username reaches the user directory.
	ErrUsernameRequired = errors.New("username is required")
)

// AppError carries a kind alongside the user-facing message and the underlying cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationError wraps a user-correctable input problem.
func ValidationError(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Err: err}
}

// NotFoundError wraps a missing-entity failure.
func NotFoundError(message string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Err: err}
}

// StoreError wraps a driver or connection failure.
func StoreError(message string, err error) *AppError {
	return &AppError{Kind: KindStore, Message: message, Err: err}
}

// KindOf reports the kind of err. Errors that are not an *AppError are treated as store failures.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
