package service

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must surface one message for both so accounts cannot be
	// enumerated through the login form.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailExists is returned when registering with an email that is
	// already taken.
	ErrEmailExists = errors.New("user with this email already exists")
)

// ValidationError carries per-field messages for rejected input. The input
// never reached the user store.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
