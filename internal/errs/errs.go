package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error.
type Kind string

const (
	KindConfiguration  Kind = "CONFIGURATION"  // missing credential/key; fatal, never retried
	KindAuthentication Kind = "AUTHENTICATION" // session establishment failed; fatal for the run
	KindSearch         Kind = "SEARCH"         // catalog query failed; fatal, no jobs can be formed
	KindDownload       Kind = "DOWNLOAD"       // scoped to one job
	KindTranscription  Kind = "TRANSCRIPTION"  // scoped to one job
	KindSummarization  Kind = "SUMMARIZATION"  // scoped to one job
)

// Error is a classified pipeline error. Stage is set by the orchestrator
// when the error is recorded against a job.
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error aborts the whole run rather than one job.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case KindConfiguration, KindAuthentication, KindSearch:
		return true
	}
	return false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// NewConfiguration creates a configuration error for a missing or invalid value.
func NewConfiguration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

// NewAuthentication creates an authentication error wrapping the underlying cause.
func NewAuthentication(msg string, err error) *Error {
	return &Error{Kind: KindAuthentication, Message: msg, Err: err}
}

// NewSearch creates a search error wrapping the underlying cause.
func NewSearch(msg string, err error) *Error {
	return &Error{Kind: KindSearch, Message: msg, Err: err}
}

// NewDownload creates a download error wrapping the underlying cause.
func NewDownload(msg string, err error) *Error {
	return &Error{Kind: KindDownload, Message: msg, Err: err}
}

// NewTranscription creates a transcription error wrapping the underlying cause.
func NewTranscription(msg string, err error) *Error {
	return &Error{Kind: KindTranscription, Message: msg, Err: err}
}

// NewSummarization creates a summarization error wrapping the underlying cause.
func NewSummarization(msg string, err error) *Error {
	return &Error{Kind: KindSummarization, Message: msg, Err: err}
}
