package core

import "github.com/pkg/errors"

// ErrRemoteUnavailable is returned when the remote endpoint cannot be reached or answers
// with a non-2xx status.
var ErrRemoteUnavailable = errors.New("remote endpoint unavailable")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// RemoteError is an application-level failure reported by the remote endpoint (`success:false`).
// Message is surfaced to the user verbatim.
type RemoteError struct {
	Action  string
	Message string
}

func (err RemoteError) Error() string {
	if err.Message == "" {
		return err.Action + ": request failed"
	}
	return err.Message
}

// IsRemoteError reports whether the cause of err is a *RemoteError.
func IsRemoteError(err error) bool {
	_, ok := errors.Cause(err).(*RemoteError)
	return ok
}

type shutdown struct {
	message string
}

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
