package api

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks requests rejected before anything is sent.
var ErrInvalidInput = errors.New("invalid input")

// StatusError is an application failure: the server answered with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s status %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s status %s", e.Op, e.Status)
}

// TransportError is a network-level failure or an unreadable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func invalid(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrInvalidInput, err)
}
