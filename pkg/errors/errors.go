package errors

import (
	goerrors "errors"
	"fmt"
)

// New returns an error with the given message.
func New(message string) error {
	return goerrors.New(message)
}

// ContextError annotates an error with the operation that the caller was
// performing when the error occurred.
type ContextError struct {
	Context string
	Err     error
}

func (err ContextError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Err)
}

// WithContext wraps err with a short description of the failed operation.
func WithContext(err error, context string) error {
	return ContextError{Context: context, Err: err}
}

// RootCause unwraps nested ContextErrors and returns the innermost error.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(ContextError)
		if !ok {
			return err
		}
		err = ctxErr.Err
	}
}

// FriendlyError is an error whose message is meant to be shown to the user
// as-is, without any log decoration or error chain.
type FriendlyError struct {
	Message string
}

func (err FriendlyError) Error() string {
	return err.Message
}

// FriendlyMessage returns the message to print to the user.
func (err FriendlyError) FriendlyMessage() string {
	return err.Message
}

// NewFriendlyError creates a FriendlyError with the given format string.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{Message: fmt.Sprintf(format, args...)}
}

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}
