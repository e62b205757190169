package model

import (
	"context"
	"errors"
	"fmt"
)

// Failure taxonomy shared by the pipeline and its collaborators
var (
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrNotFound              = errors.New("not found")
	ErrEmptyTranscript       = errors.New("transcript text is empty")
	ErrCapabilityUnavailable = errors.New("language model unavailable")
	ErrMalformedResponse     = errors.New("malformed response")
	ErrSearchUnavailable     = errors.New("evidence search unavailable")
	ErrRateLimited           = errors.New("rate limited")
	ErrQuotaExceeded         = errors.New("quota exceeded")
	ErrInvalidInput          = errors.New("invalid input")
)

// ExtractionError reports that claim extraction failed. It is fatal to a run.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// FailureClass describes an error by its category rather than its raw text
func FailureClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "Verification timed out"
	case errors.Is(err, context.Canceled):
		return "Verification was cancelled"
	case errors.Is(err, ErrRateLimited) && errors.Is(err, ErrSearchUnavailable):
		return "Evidence source rate limit reached"
	case errors.Is(err, ErrRateLimited):
		return "Verdict judging rate limit reached"
	case errors.Is(err, ErrSearchUnavailable):
		return "Evidence search is unavailable"
	case errors.Is(err, ErrMalformedResponse):
		return "Verdict judging returned a malformed response"
	case errors.Is(err, ErrCapabilityUnavailable):
		return "Verdict judging service is unavailable"
	default:
		return "Verification failed unexpectedly"
	}
}
