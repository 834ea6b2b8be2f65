package validation

// Error marks a rejected input. Handlers map it to 400.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(msg string) error {
	return &Error{Message: msg}
}
