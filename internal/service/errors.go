package service

import (
	"errors"
	"strings"
)

// ErrInvalidCredentials deliberately does not distinguish an unknown username
// from a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports every field that failed its range or format check.
// It is returned before any persistence or classification happens.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
