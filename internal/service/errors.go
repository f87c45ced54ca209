package service

// ValidationError marks malformed input to an operation. Route handlers
// surface it as a 4xx close to where it happened instead of letting it
// reach persistence.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// NewValidationError builds a ValidationError with the given user-facing message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}
