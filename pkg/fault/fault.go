// Package fault defines the closed error taxonomy used across the
// extraction engine. Every failure is classified into a Kind, and
// retryability is carried as data so the retry controller can branch on
// classification rather than on concrete error types.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindConnection covers network/transport failures that occurred
	// before a response was obtained, including timeouts.
	KindConnection Kind = "connection"

	// KindResponse covers non-2xx statuses returned by a provider.
	KindResponse Kind = "response"

	// KindParsing covers provider response bodies that are not
	// interpretable as structured content.
	KindParsing Kind = "parsing"

	// KindValidation covers parsed content that fails schema constraints
	// the validator cannot repair.
	KindValidation Kind = "validation"

	// KindConfiguration covers unknown provider or model names.
	KindConfiguration Kind = "configuration"
)

// Error is a classified failure. StatusCode is set for KindResponse;
// Attempt records the attempt number at which the failure occurred
// (0 when the operation never ran under the retry controller).
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Attempt    int

	err error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindResponse && e.err != nil:
		return fmt.Sprintf("%s (status %d): %s: %v", e.Kind, e.StatusCode, e.Message, e.err)
	case e.Kind == KindResponse:
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

// Retryable reports whether the same operation may succeed if attempted
// again. Connection failures are always retryable; response failures only
// for 429 and 5xx; everything else is permanent.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindConnection:
		return true
	case KindResponse:
		return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode <= 599)
	default:
		return false
	}
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// Response creates a KindResponse error for the given HTTP-style status.
func Response(statusCode int, message string) *Error {
	return &Error{Kind: KindResponse, Message: message, StatusCode: statusCode}
}

// FromStatus classifies a non-2xx status, wrapping an optional cause.
// 429 and 5xx become retryable response errors; other statuses are
// permanent response errors.
func FromStatus(statusCode int, message string, err error) *Error {
	return &Error{Kind: KindResponse, Message: message, StatusCode: statusCode, err: err}
}

// KindOf extracts the Kind from an error chain. ok is false when the
// chain contains no classified error.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsRetryable reports whether an error chain contains a retryable
// classified error. Unclassified errors are treated as permanent: the
// boundaries that produce transient failures are responsible for wrapping
// them as KindConnection or KindResponse.
func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}

// WithAttempt returns a copy of the classified error annotated with the
// attempt number, or the original error unchanged if it is unclassified.
func WithAttempt(err error, attempt int) error {
	var fe *Error
	if !errors.As(err, &fe) {
		return err
	}
	annotated := *fe
	annotated.Attempt = attempt
	return &annotated
}
