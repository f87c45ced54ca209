// Package httperr carries an HTTP status alongside an error so failures
// propagating out of route handlers can be rendered with the right code.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// FallbackMessage is rendered when a failure carries no usable message.
const FallbackMessage = "Something went wrong!"

// Error is a failure with a declared HTTP status and a user-facing
// message. Err, when set, holds the internal cause; it is logged but
// never rendered.
type Error struct {
	Status  int
	Message string
	Err     error
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolve normalizes any propagated failure into a response status and a
// message safe to show an end user. A declared status is honored when it
// is a valid HTTP error code; anything else becomes a 500 with the
// generic fallback message.
func Resolve(err error) (status int, message string) {
	var herr *Error
	if errors.As(err, &herr) {
		status = herr.Status
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		message = herr.Message
		if message == "" {
			message = FallbackMessage
		}
		return status, message
	}
	return http.StatusInternalServerError, FallbackMessage
}
