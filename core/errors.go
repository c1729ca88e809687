package core

import "github.com/pkg/errors"

// FieldError names one invalid field in a request payload, keyed by its
// JSON name so the error map lines up with what the client sent.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned by services for rejected payloads (a missing
// userId on a progress update, an import with no lessons). The API error
// handler renders it as a 400 with the per-field map when Fields is set,
// or the bare message otherwise.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

// NewShutdownError marks an error as unrecoverable, telling the API server
// to stop taking requests rather than limp along.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
