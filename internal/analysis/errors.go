package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes an upload failure
type ErrorKind string

const (
	// KindUserInput indicates the user did something the workflow cannot accept
	KindUserInput ErrorKind = "user_input"

	// KindTransport indicates the request failed or returned a non-success status
	KindTransport ErrorKind = "transport"

	// KindShapeValidation indicates a success response whose body was unusable
	KindShapeValidation ErrorKind = "shape_validation"
)

// User-facing messages. These strings are shown verbatim.
const (
	MsgNoFileSelected  = "Please select a file."
	MsgUploadFailed    = "Error uploading file. Please try again."
	MsgUnsupportedFile = "We don't support this type of file. Try uploading different file."
)

// Sentinels for errors.Is matching by kind.
var (
	ErrUserInput       = &Error{Kind: KindUserInput}
	ErrTransport       = &Error{Kind: KindTransport}
	ErrShapeValidation = &Error{Kind: KindShapeValidation}
)

// Error is a classified upload failure
type Error struct {
	// Kind categorizes the error
	Kind ErrorKind

	// Message is shown to the user
	Message string

	// StatusCode for HTTP failures, zero otherwise
	StatusCode int

	// Detail is diagnostic text meant for logs
	Detail string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("kind=%s", e.Kind)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.UserMessage())

	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// UserMessage returns the text to show for this error
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindUserInput:
		return MsgNoFileSelected
	case KindShapeValidation:
		return MsgUnsupportedFile
	default:
		return MsgUploadFailed
	}
}

// NewUserInputError creates a user input error with the given message
func NewUserInputError(message string) *Error {
	return &Error{Kind: KindUserInput, Message: message}
}

// NewTransportError creates a transport error. The service message, when
// present, replaces the generic upload failure message.
func NewTransportError(statusCode int, serviceMessage string, cause error) *Error {
	message := strings.TrimSpace(serviceMessage)
	if message == "" {
		message = MsgUploadFailed
	}
	return &Error{
		Kind:       KindTransport,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewShapeError creates a shape validation error
func NewShapeError(detail string, cause error) *Error {
	return &Error{
		Kind:    KindShapeValidation,
		Message: MsgUnsupportedFile,
		Detail:  detail,
		Cause:   cause,
	}
}

// UserMessage returns the text to show for any error. Unclassified errors
// are reported as upload failures.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return MsgUploadFailed
}

// KindOf returns the kind of err, or KindTransport for unclassified errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}
