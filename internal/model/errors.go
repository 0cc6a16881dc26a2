package model

import (
	"errors"
	"fmt"
	"time"

	goerrors "github.com/go-errors/errors"
)

// HTTPError wraps an HTTP status code so the client can tell rate limiting apart
// from other failures.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies failures surfaced to the user.
type ErrorKind string

const (
	KindAuthentication     ErrorKind = "authentication"
	KindRateLimit          ErrorKind = "rate_limit"
	KindNetwork            ErrorKind = "network"
	KindEmptyInput         ErrorKind = "empty_input"
	KindStorage            ErrorKind = "storage"
	KindSettingsIncomplete ErrorKind = "settings_incomplete"
	KindInvalidInput       ErrorKind = "invalid_input"
)

// RateLimitMessage is shown once both the preferred and the fallback model
// have been rate limited.
const RateLimitMessage = `Rate Limit Exceeded
It looks like you've used the service a lot in a short amount of time! To help with the costs of cloud compute and AI APIs, we've set usage limits.

Please consider supporting the project to help us increase these limits.
Thank you for your understanding!`

// Error is a classified failure. Message is user-facing; Err keeps the cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error and captures the caller's stack.
func NewError(kind ErrorKind, message string, err error) *Error {
	var stack []byte
	if err != nil {
		var ge *goerrors.Error
		if errors.As(err, &ge) {
			stack = ge.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}
	return &Error{Kind: kind, Message: message, Err: err, Stack: stack}
}

func AuthenticationError(message string, err error) *Error {
	return NewError(KindAuthentication, message, err)
}

func RateLimitError(err error) *Error {
	return NewError(KindRateLimit, RateLimitMessage, err)
}

func NetworkError(message string, err error) *Error {
	return NewError(KindNetwork, message, err)
}

func EmptyInputError(message string) *Error {
	return NewError(KindEmptyInput, message, nil)
}

func StorageError(message string, err error) *Error {
	return NewError(KindStorage, message, err)
}

func SettingsIncompleteError(message string) *Error {
	return NewError(KindSettingsIncomplete, message, nil)
}

func InvalidInputError(message string, err error) *Error {
	return NewError(KindInvalidInput, message, err)
}

// IsKind reports whether err (or anything it wraps) is an Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindNetwork && e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	return err.Error()
}
