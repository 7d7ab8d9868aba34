package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is matched by every ValidationError raised for request data
// outside the credential checks.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError carries the user-facing reasons an input was rejected.
// errors.Is matches it against Kind.
type ValidationError struct {
	Kind    error
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(e.Reasons, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Message joins the reasons for display.
func (e *ValidationError) Message() string {
	return strings.Join(e.Reasons, "; ")
}

func invalidInput(format string, args ...any) error {
	return &ValidationError{Kind: ErrInvalidInput, Reasons: []string{fmt.Sprintf(format, args...)}}
}
