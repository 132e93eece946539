package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure for callers.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindFetchFailure        Kind = "fetch_failure"
	KindExtractionFailure   Kind = "extraction_failure"
	KindInsufficientContent Kind = "insufficient_content"
	KindTimeout             Kind = "timeout"
	KindUpstreamFailure     Kind = "upstream_failure"
	KindInternal            Kind = "internal"
)

// Error is a stage-tagged pipeline failure. The underlying cause is preserved
// for errors.Is/As, but only Message is intended for callers.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to an HTTP-equivalent status class.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput, KindInsufficientContent:
		return http.StatusBadRequest
	case KindExtractionFailure:
		return http.StatusUnprocessableEntity
	case KindFetchFailure:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindUpstreamFailure:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// wrapStage tags err with a stage and kind, upgrading to a timeout kind when
// the underlying cause is a deadline trip so callers can suggest retrying
// with a shorter document.
func wrapStage(stage Stage, kind Kind, message string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
		message = "operation exceeded its time budget"
	}
	return &Error{Kind: kind, Stage: stage, Message: message, Err: err}
}

// AsError extracts a *Error from err, or wraps err as an internal failure.
func AsError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindInternal, Stage: StageContentExtraction, Message: "unexpected failure", Err: err}
}
