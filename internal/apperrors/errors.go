// Package apperrors carries the failure taxonomy shared by the intake
// pipeline, the verification gate and the plan engine. Every layer maps its
// own failure domain into exactly one Kind before returning; handlers
// translate kinds to HTTP statuses and never re-wrap a structured error.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unauthorized Kind = iota + 1
	BadRequest
	Invalid
	Conflict
	NotFound
	OutOfRange
	Expired
	Mismatch
	UpstreamUnavailable
	Internal
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case BadRequest:
		return "bad_request"
	case Invalid:
		return "invalid"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case OutOfRange:
		return "out_of_range"
	case Expired:
		return "expired"
	case Mismatch:
		return "mismatch"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case Internal:
		return "internal"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	// Reasons echoes structured reasons from the assessment service.
	Reasons []string
	// SimilarIDs carries matched prior-record ids on Conflict, so the caller
	// can offer to reuse an existing record.
	SimilarIDs []string
	// SubmissionID is set when the failure happened after a submission was
	// already persisted (plan generation/persist), so the caller can retry
	// plan generation alone.
	SubmissionID string
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	// already structured -> keep as is, do not add a second layer
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of a structured error, or Internal for anything else.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to the status the routing layer should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthorized:
		return http.StatusUnauthorized
	case BadRequest, Invalid, Expired, Mismatch:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case OutOfRange:
		return http.StatusUnprocessableEntity
	case UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
