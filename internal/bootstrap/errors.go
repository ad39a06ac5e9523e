package bootstrap

import (
	"errors"
	"fmt"
)

// ErrAlreadyBound is returned by Bind when its Binding was written before.
var ErrAlreadyBound = errors.New("content server already bound")

// bindExhaustedError signals that every bind attempt failed.
type bindExhaustedError struct {
	attempts int
	last     error
}

func (e bindExhaustedError) Error() string {
	return fmt.Sprintf("could not bind content server after %d random ports: %v", e.attempts, e.last)
}

func (e bindExhaustedError) Unwrap() error { return e.last }

// ErrBindExhausted constructs a bindExhaustedError wrapping last.
func ErrBindExhausted(attempts int, last error) error {
	return bindExhaustedError{attempts: attempts, last: last}
}

// IsBindExhausted reports whether err (or anything it wraps) is a bind
// exhaustion error.
func IsBindExhausted(err error) bool {
	var e bindExhaustedError
	return errors.As(err, &e)
}
